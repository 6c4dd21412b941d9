package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/conflict"
	"hotel-booking-engine/models"
)

var (
	// ErrIgnored is returned for events that have no meaning in the current state.
	ErrIgnored       = errors.New("event ignored in current state")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrUnknownRoom   = errors.New("unknown room")
)

// Cell is a pending date x room selection. It gets its price when the batch
// is committed as draft room-bookings.
type Cell struct {
	Date   time.Time   `json:"date"`
	RoomID uint        `json:"roomId"`
	Room   models.Room `json:"room"`
}

type cellKey struct {
	date   string
	roomID uint
}

func keyOf(date time.Time, roomID uint) cellKey {
	return cellKey{date: models.DateKey(date), roomID: roomID}
}

// change is one undoable mutation of the committed cells.
type change struct {
	added   []models.RoomBooking
	removed []models.RoomBooking
}

// Config wires a grid to the data of one loaded date range.
type Config struct {
	HotelID  uint
	Rooms    []models.Room
	Dates    []time.Time
	Detector *conflict.Detector
	// UndoDepth is how many commit batches can be undone. Values below one
	// mean one.
	UndoDepth int
}

// Grid is the single-owner selection state machine. It is not safe for
// concurrent use.
type Grid struct {
	hotelID  uint
	rooms    map[uint]models.Room
	dates    []time.Time
	detector *conflict.Detector

	state         State
	single        bool
	multiExplicit bool
	modifierHeld  bool
	returnState   State

	pending        map[cellKey]Cell
	deselectTarget *models.RoomBooking

	committed []models.RoomBooking
	history   []change
	undoDepth int
}

func New(conf Config) *Grid {
	g := &Grid{
		hotelID:   conf.HotelID,
		pending:   make(map[cellKey]Cell),
		undoDepth: conf.UndoDepth,
	}
	if g.undoDepth < 1 {
		g.undoDepth = 1
	}
	g.Reload(conf.Rooms, conf.Dates, conf.Detector)
	return g
}

// Reload swaps in freshly fetched data for a new range or hotel. All
// uncommitted state is discarded.
func (g *Grid) Reload(rooms []models.Room, dates []time.Time, detector *conflict.Detector) {
	g.rooms = make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		g.rooms[r.ID] = r
	}
	g.dates = make([]time.Time, 0, len(dates))
	for _, d := range dates {
		g.dates = append(g.dates, models.NormalizeDate(d))
	}
	if detector == nil {
		detector = conflict.New(nil, nil, nil)
	}
	g.detector = detector
	g.discard()
}

// LoadCommitted seeds the committed cells, e.g. with the nights of the
// booking being edited. History is cleared.
func (g *Grid) LoadCommitted(roomBookings []models.RoomBooking) {
	g.committed = make([]models.RoomBooking, 0, len(roomBookings))
	seen := make(map[cellKey]struct{}, len(roomBookings))
	for _, rb := range roomBookings {
		k := keyOf(rb.Date, rb.RoomID)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rb.Date = models.NormalizeDate(rb.Date)
		g.committed = append(g.committed, rb)
	}
	g.history = nil
}

func (g *Grid) State() State {
	return g.state
}

func (g *Grid) MultiSelect() bool {
	return g.multiExplicit
}

func (g *Grid) ModifierHeld() bool {
	return g.modifierHeld
}

// Pending returns the pending cells ordered by date then room.
func (g *Grid) Pending() []Cell {
	out := make([]Cell, 0, len(g.pending))
	for _, c := range g.pending {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.Before(out[b].Date)
		}
		return out[a].RoomID < out[b].RoomID
	})
	return out
}

// Committed returns a copy of the committed draft room-bookings.
func (g *Grid) Committed() []models.RoomBooking {
	out := make([]models.RoomBooking, len(g.committed))
	copy(out, g.committed)
	return out
}

// DeselectTarget is the committed cell awaiting confirmation, if any.
func (g *Grid) DeselectTarget() *models.RoomBooking {
	if g.deselectTarget == nil {
		return nil
	}
	rb := *g.deselectTarget
	return &rb
}

func (g *Grid) CanUndo() bool {
	return len(g.history) > 0
}

// Cell statuses reported by Status.
const (
	StatusFree      = "free"
	StatusPending   = "pending"
	StatusCommitted = "committed"
	StatusOccupied  = "occupied"
	StatusClosed    = "closed"
)

// Status describes a cell the way the grid renders it.
func (g *Grid) Status(date time.Time, roomID uint) string {
	k := keyOf(date, roomID)
	if _, ok := g.pending[k]; ok {
		return StatusPending
	}
	if g.committedIndex(k) >= 0 {
		return StatusCommitted
	}
	if _, ok := g.detector.FindExistingBooking(date, roomID); ok {
		return StatusOccupied
	}
	if !g.detector.IsOpen(date, roomID) {
		return StatusClosed
	}
	return StatusFree
}

func (g *Grid) committedIndex(k cellKey) int {
	for i, rb := range g.committed {
		if keyOf(rb.Date, rb.RoomID) == k {
			return i
		}
	}
	return -1
}

// Apply feeds one event into the state machine. A returned error leaves the
// grid unchanged.
func (g *Grid) Apply(ev Event) error {
	switch e := ev.(type) {
	case Click:
		return g.click(e)
	case ModifierDown:
		return g.modifierDown()
	case ModifierUp:
		return g.modifierUp()
	case ToggleMultiSelect:
		return g.toggleMultiSelect(e.On)
	case OpenPriceDialog:
		return g.openPriceDialog()
	case SubmitPrice:
		return g.submitPrice(e.Input)
	case Cancel:
		return g.cancel()
	case HeaderClick:
		return g.headerClick(e.RoomID)
	case ConfirmDeselect:
		return g.confirmDeselect()
	case UndoLastCommit:
		return g.undo()
	case Discard:
		g.discard()
		return nil
	}
	return fmt.Errorf("unsupported event %T: %w", ev, ErrIgnored)
}

func (g *Grid) newCell(date time.Time, roomID uint) (Cell, error) {
	room, ok := g.rooms[roomID]
	if !ok {
		return Cell{}, fmt.Errorf("room %d: %w", roomID, ErrUnknownRoom)
	}
	return Cell{Date: models.NormalizeDate(date), RoomID: roomID, Room: room}, nil
}

func (g *Grid) click(e Click) error {
	if g.state != Idle && g.state != MultiSelecting {
		return ErrIgnored
	}

	k := keyOf(e.Date, e.RoomID)
	if i := g.committedIndex(k); i >= 0 {
		target := g.committed[i]
		g.deselectTarget = &target
		g.returnState = g.state
		g.state = ConfirmingDeselect
		return nil
	}

	if g.state == MultiSelecting {
		if _, ok := g.pending[k]; ok {
			delete(g.pending, k)
			return nil
		}
	}

	cell, err := g.newCell(e.Date, e.RoomID)
	if err != nil {
		return err
	}
	if err := g.detector.Check(e.Date, e.RoomID); err != nil {
		return err
	}

	g.pending[k] = cell
	if g.state == Idle {
		// a single selection goes straight to the price dialog
		g.single = true
		g.state = PendingPriceConfirmation
	}
	return nil
}

func (g *Grid) modifierDown() error {
	switch {
	case g.state == Idle, g.state == MultiSelecting:
	case g.state == PendingPriceConfirmation && g.single:
		// the single selection turns into the first cell of a multi selection
	default:
		return ErrIgnored
	}
	g.single = false
	g.modifierHeld = true
	g.state = MultiSelecting
	return nil
}

func (g *Grid) modifierUp() error {
	if !g.modifierHeld {
		return ErrIgnored
	}
	g.modifierHeld = false
	if g.state != MultiSelecting || g.multiExplicit {
		return nil
	}
	if len(g.pending) > 0 {
		g.state = PendingPriceConfirmation
		return nil
	}
	g.state = Idle
	return nil
}

func (g *Grid) toggleMultiSelect(on bool) error {
	if g.state != Idle && g.state != MultiSelecting {
		return ErrIgnored
	}
	if on {
		g.multiExplicit = true
		g.state = MultiSelecting
		return nil
	}
	g.multiExplicit = false
	if g.modifierHeld {
		return nil
	}
	g.clearPending()
	g.state = Idle
	return nil
}

func (g *Grid) openPriceDialog() error {
	if g.state != MultiSelecting || len(g.pending) == 0 {
		return ErrIgnored
	}
	g.state = PendingPriceConfirmation
	return nil
}

// ParsePrice accepts only strictly positive numbers.
func ParsePrice(input string) (decimal.Decimal, error) {
	ve := apperror.NewValidationError()
	raw := strings.TrimSpace(input)
	if raw == "" {
		ve.Add("price", "price is required")
		return decimal.Zero, ve
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		ve.Add("price", "price must be numeric")
		return decimal.Zero, ve
	}
	if !price.IsPositive() {
		ve.Add("price", "price must be greater than zero")
		return decimal.Zero, ve
	}
	return price, nil
}

func (g *Grid) submitPrice(input string) error {
	if g.state != PendingPriceConfirmation {
		return ErrIgnored
	}
	price, err := ParsePrice(input)
	if err != nil {
		return err
	}

	cells := g.Pending()
	var conflicts []apperror.Cell
	for _, c := range cells {
		if g.committedIndex(keyOf(c.Date, c.RoomID)) >= 0 || !g.detector.IsSelectable(c.Date, c.RoomID) {
			conflicts = append(conflicts, apperror.Cell{RoomID: c.RoomID, Date: c.Date})
		}
	}
	if len(conflicts) > 0 {
		return apperror.NewConflictError(apperror.ReasonOccupied, conflicts...)
	}

	batch := make([]models.RoomBooking, 0, len(cells))
	for _, c := range cells {
		room := c.Room
		batch = append(batch, models.RoomBooking{
			HotelID:   g.hotelID,
			RoomID:    c.RoomID,
			Date:      c.Date,
			BookingID: g.detector.Editing(),
			Price:     price,
			Room:      &room,
		})
	}
	g.committed = append(g.committed, batch...)
	g.pushHistory(change{added: batch})

	g.clearPending()
	g.multiExplicit = false
	g.state = Idle
	return nil
}

func (g *Grid) cancel() error {
	switch g.state {
	case PendingPriceConfirmation:
		if g.multiExplicit {
			g.state = MultiSelecting
			return nil
		}
		g.clearPending()
		g.state = Idle
		return nil
	case ConfirmingDeselect:
		g.deselectTarget = nil
		g.leaveDeselect()
		return nil
	case MultiSelecting:
		g.clearPending()
		if !g.multiExplicit && !g.modifierHeld {
			g.state = Idle
		}
		return nil
	}
	return ErrIgnored
}

// Revalidate drops pending cells that stopped being selectable, e.g. after
// availability changed underneath the grid, and reports how many were dropped.
// An emptied price dialog falls back to multi-select when that mode is still
// on, otherwise to Idle.
func (g *Grid) Revalidate() int {
	dropped := 0
	for k, c := range g.pending {
		if !g.detector.IsSelectable(c.Date, c.RoomID) {
			delete(g.pending, k)
			dropped++
		}
	}
	if dropped == 0 || len(g.pending) > 0 {
		return dropped
	}

	g.single = false
	switch {
	case g.multiExplicit || g.modifierHeld:
		if g.state == PendingPriceConfirmation {
			g.state = MultiSelecting
		}
	case g.state == PendingPriceConfirmation, g.state == MultiSelecting:
		g.state = Idle
	}
	return dropped
}

func (g *Grid) headerClick(roomID uint) error {
	if g.state != Idle && g.state != MultiSelecting {
		return ErrIgnored
	}
	if _, ok := g.rooms[roomID]; !ok {
		return fmt.Errorf("room %d: %w", roomID, ErrUnknownRoom)
	}

	var clickable []time.Time
	for _, d := range g.dates {
		if g.committedIndex(keyOf(d, roomID)) >= 0 {
			continue
		}
		if !g.detector.IsSelectable(d, roomID) {
			continue
		}
		clickable = append(clickable, d)
	}
	if len(clickable) == 0 {
		return ErrIgnored
	}

	allPending := true
	for _, d := range clickable {
		if _, ok := g.pending[keyOf(d, roomID)]; !ok {
			allPending = false
			break
		}
	}

	for _, d := range clickable {
		k := keyOf(d, roomID)
		if allPending {
			delete(g.pending, k)
			continue
		}
		if _, ok := g.pending[k]; !ok {
			cell, _ := g.newCell(d, roomID)
			g.pending[k] = cell
		}
	}

	if !g.modifierHeld {
		g.multiExplicit = true
	}
	g.state = MultiSelecting
	return nil
}

func (g *Grid) confirmDeselect() error {
	if g.state != ConfirmingDeselect || g.deselectTarget == nil {
		return ErrIgnored
	}
	k := keyOf(g.deselectTarget.Date, g.deselectTarget.RoomID)
	if i := g.committedIndex(k); i >= 0 {
		removed := g.committed[i]
		g.committed = append(g.committed[:i:i], g.committed[i+1:]...)
		g.pushHistory(change{removed: []models.RoomBooking{removed}})
	}
	g.deselectTarget = nil
	g.leaveDeselect()
	return nil
}

// leaveDeselect returns to the state the deselect dialog was opened from. A
// modifier released while the dialog was open is applied now.
func (g *Grid) leaveDeselect() {
	g.state = g.returnState
	if g.state != MultiSelecting || g.multiExplicit || g.modifierHeld {
		return
	}
	if len(g.pending) > 0 {
		g.state = PendingPriceConfirmation
		return
	}
	g.state = Idle
}

func (g *Grid) undo() error {
	if g.state != Idle && g.state != MultiSelecting {
		return ErrIgnored
	}
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	for _, rb := range last.added {
		if i := g.committedIndex(keyOf(rb.Date, rb.RoomID)); i >= 0 {
			g.committed = append(g.committed[:i:i], g.committed[i+1:]...)
		}
	}
	for _, rb := range last.removed {
		k := keyOf(rb.Date, rb.RoomID)
		delete(g.pending, k)
		if g.committedIndex(k) < 0 {
			g.committed = append(g.committed, rb)
		}
	}
	return nil
}

func (g *Grid) pushHistory(c change) {
	g.history = append(g.history, c)
	if over := len(g.history) - g.undoDepth; over > 0 {
		g.history = append([]change(nil), g.history[over:]...)
	}
}

func (g *Grid) clearPending() {
	g.pending = make(map[cellKey]Cell)
	g.single = false
}

func (g *Grid) discard() {
	g.clearPending()
	g.deselectTarget = nil
	g.modifierHeld = false
	g.multiExplicit = false
	g.state = Idle
	g.returnState = Idle
}
