package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/engine/conflict"
	"hotel-booking-engine/engine/pricing"
	"hotel-booking-engine/engine/selection"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

// ErrSessionNotFound is returned for unknown or expired grid sessions.
var ErrSessionNotFound = fmt.Errorf("grid session: %w", apperror.ErrNotFound)

type GridSessionConfig struct {
	UndoDepth int
	TTL       time.Duration
}

// gridSession is one operator's grid. Every field is guarded by mu.
type gridSession struct {
	mu sync.Mutex

	id        string
	hotelID   uint
	bookingID *uint
	dr        DateRange

	grid     *selection.Grid
	rooms    []models.Room
	index    *availability.Index
	detector *conflict.Detector
	charges  []models.ExtraCharge

	extraChargeIDs []uint
	personalized   []models.PersonalizedCharge
	adultGuests    int
	childGuests    int

	lastUsed time.Time
}

// GridSessionService keeps selection grids in process, keyed by a random id.
// Sessions expire after TTL without use.
type GridSessionService struct {
	Store        store.Store
	Bookings     *BookingService
	Availability *AvailabilityService

	conf GridSessionConfig
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*gridSession
}

func NewGridSessionService(s store.Store, bookings *BookingService, avail *AvailabilityService, conf GridSessionConfig) *GridSessionService {
	if conf.UndoDepth < 1 {
		conf.UndoDepth = 1
	}
	if conf.TTL <= 0 {
		conf.TTL = 30 * time.Minute
	}
	return &GridSessionService{
		Store:        s,
		Bookings:     bookings,
		Availability: avail,
		conf:         conf,
		now:          time.Now,
		sessions:     make(map[string]*gridSession),
	}
}

// CreateGridSessionInput opens a grid on a range. With BookingID set the grid
// edits that booking: its nights start out committed and stay selectable.
type CreateGridSessionInput struct {
	Range     DateRange
	BookingID *uint
}

type GridCell struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

type GridRow struct {
	RoomID   uint       `json:"roomId"`
	RoomName string     `json:"roomName"`
	Cells    []GridCell `json:"cells"`
}

// GridSnapshot is everything a client needs to render the grid.
type GridSnapshot struct {
	ID                  string                      `json:"id"`
	HotelID             uint                        `json:"hotelId"`
	BookingID           *uint                       `json:"bookingId,omitempty"`
	Start               time.Time                   `json:"start"`
	End                 time.Time                   `json:"end"`
	State               string                      `json:"state"`
	MultiSelect         bool                        `json:"multiSelect"`
	ModifierHeld        bool                        `json:"modifierHeld"`
	CanUndo             bool                        `json:"canUndo"`
	Pending             []selection.Cell            `json:"pending"`
	Committed           []models.RoomBooking        `json:"committed"`
	DeselectTarget      *models.RoomBooking         `json:"deselectTarget,omitempty"`
	Rows                []GridRow                   `json:"rows"`
	ExtraChargeIDs      []uint                      `json:"extraChargeIds"`
	PersonalizedCharges []models.PersonalizedCharge `json:"personalizedCharges"`
	AdultGuests         int                         `json:"adultGuests"`
	ChildGuests         int                         `json:"childGuests"`
	Totals              pricing.Totals              `json:"totals"`
	ExpiresAt           time.Time                   `json:"expiresAt"`
}

// EventResult reports an applied event. Ignored is set when the event had no
// meaning in the current state; the grid is unchanged then.
type EventResult struct {
	Snapshot GridSnapshot `json:"snapshot"`
	Ignored  bool         `json:"ignored"`
	Reason   string       `json:"reason,omitempty"`
}

func (s *GridSessionService) Create(ctx context.Context, hotelID uint, in CreateGridSessionInput) (GridSnapshot, error) {
	sess := &gridSession{
		id:           uuid.NewString(),
		hotelID:      hotelID,
		adultGuests:  1,
		personalized: []models.PersonalizedCharge{},
	}

	var committed []models.RoomBooking
	if in.BookingID != nil {
		b, err := s.Bookings.GetBooking(ctx, *in.BookingID)
		if err != nil {
			return GridSnapshot{}, err
		}
		if b.HotelID != hotelID {
			return GridSnapshot{}, fmt.Errorf("booking %d: %w", *in.BookingID, apperror.ErrNotFound)
		}
		if b.Status == models.BookingStatusCancelled {
			ve := apperror.NewValidationError()
			ve.Add("bookingId", "a cancelled booking cannot be edited")
			return GridSnapshot{}, ve
		}
		id := b.ID
		sess.bookingID = &id
		sess.extraChargeIDs = b.ExtraChargeIDs()
		sess.adultGuests = b.AdultGuests
		sess.childGuests = b.ChildGuests
		for _, p := range b.PersonalizedCharges {
			sess.personalized = append(sess.personalized, models.PersonalizedCharge{Name: p.Name, Amount: p.Amount})
		}
		committed = b.RoomBookings
	}

	if err := s.load(ctx, sess, in.Range); err != nil {
		return GridSnapshot{}, err
	}
	sess.grid.LoadCommitted(committed)
	sess.lastUsed = s.now()

	s.mu.Lock()
	s.sweepLocked()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Printf("🗓️ grid session %s opened for hotel %d", sess.id, hotelID)
	return s.snapshot(sess), nil
}

// load fetches the data of a range and (re)builds the index, the detector and
// the grid. Uncommitted grid state is discarded. Nothing changes on error.
func (s *GridSessionService) load(ctx context.Context, sess *gridSession, dr DateRange) error {
	rooms, err := fetchRooms(ctx, s.Store, sess.hotelID)
	if err != nil {
		return err
	}
	existing, err := fetchRoomBookings(ctx, s.Store, sess.hotelID, dr)
	if err != nil {
		return err
	}
	flags, err := fetchAvailability(ctx, s.Store, sess.hotelID, dr)
	if err != nil {
		return err
	}
	charges, err := fetchExtraCharges(ctx, s.Store, sess.hotelID)
	if err != nil {
		return err
	}

	index := availability.New(flags)
	detector := conflict.New(existing, index, sess.bookingID)

	sess.dr = dr
	sess.rooms = rooms
	sess.index = index
	sess.detector = detector
	sess.charges = charges
	if sess.grid == nil {
		sess.grid = selection.New(selection.Config{
			HotelID:   sess.hotelID,
			Rooms:     rooms,
			Dates:     dr.Dates(),
			Detector:  detector,
			UndoDepth: s.conf.UndoDepth,
		})
		return nil
	}
	sess.grid.Reload(rooms, dr.Dates(), detector)
	return nil
}

func (s *GridSessionService) sweepLocked() {
	cutoff := s.now().Add(-s.conf.TTL)
	for id, sess := range s.sessions {
		// TryLock skips sessions that are busy and therefore in use
		if !sess.mu.TryLock() {
			continue
		}
		expired := sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			log.Printf("⌛ grid session %s expired", id)
		}
	}
}

// acquire returns the locked session. The caller must unlock it.
func (s *GridSessionService) acquire(id string) (*gridSession, error) {
	s.mu.Lock()
	s.sweepLocked()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastUsed = s.now()
	return sess, nil
}

func (s *GridSessionService) Get(id string) (GridSnapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return GridSnapshot{}, err
	}
	defer sess.mu.Unlock()
	return s.snapshot(sess), nil
}

func (s *GridSessionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Apply feeds one event into the session's grid.
func (s *GridSessionService) Apply(id string, ev selection.Event) (EventResult, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return EventResult{}, err
	}
	defer sess.mu.Unlock()

	err = sess.grid.Apply(ev)
	switch {
	case errors.Is(err, selection.ErrIgnored), errors.Is(err, selection.ErrNothingToUndo):
		return EventResult{Snapshot: s.snapshot(sess), Ignored: true, Reason: err.Error()}, nil
	case errors.Is(err, selection.ErrUnknownRoom):
		ve := apperror.NewValidationError()
		ve.Add("roomId", "room does not belong to this hotel")
		return EventResult{}, ve
	case err != nil:
		// clicks on occupied or closed cells leave the grid untouched
		if ce, ok := apperror.AsConflict(err); ok {
			return EventResult{Snapshot: s.snapshot(sess), Ignored: true, Reason: ce.Reason}, nil
		}
		return EventResult{}, err
	}
	return EventResult{Snapshot: s.snapshot(sess)}, nil
}

// SetRange refetches everything for the new range. Pending cells are dropped,
// committed drafts are kept.
func (s *GridSessionService) SetRange(ctx context.Context, id string, dr DateRange) (GridSnapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return GridSnapshot{}, err
	}
	defer sess.mu.Unlock()

	if err := s.load(ctx, sess, dr); err != nil {
		return GridSnapshot{}, err
	}
	return s.snapshot(sess), nil
}

// SetAvailability upserts flags for the session's hotel and merges the
// written cells into the loaded index once the write succeeded. Pending cells
// that were just closed are dropped from the selection.
func (s *GridSessionService) SetAvailability(ctx context.Context, id string, in UpsertAvailabilityInput) (GridSnapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return GridSnapshot{}, err
	}
	defer sess.mu.Unlock()

	cells, err := s.Availability.Upsert(ctx, sess.hotelID, in)
	if err != nil {
		return GridSnapshot{}, err
	}
	sess.index.Merge(in.IsOpen, cells)
	if n := sess.grid.Revalidate(); n > 0 {
		log.Printf("🗓️ grid session %s dropped %d pending cell(s) after availability change", sess.id, n)
	}
	return s.snapshot(sess), nil
}

// SessionChargesInput replaces the pricing inputs of a session.
type SessionChargesInput struct {
	ExtraChargeIDs      []uint
	PersonalizedCharges []models.PersonalizedCharge
	AdultGuests         int
	ChildGuests         int
}

func (s *GridSessionService) SetCharges(id string, in SessionChargesInput) (GridSnapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return GridSnapshot{}, err
	}
	defer sess.mu.Unlock()

	ve := apperror.NewValidationError()
	if in.AdultGuests < 0 {
		ve.Add("adultGuests", "adultGuests must not be negative")
	}
	if in.ChildGuests < 0 {
		ve.Add("childGuests", "childGuests must not be negative")
	}
	validatePersonalized(in.PersonalizedCharges, ve)
	resolved := resolveExtraCharges(sess.charges, in.ExtraChargeIDs, ve)
	if err := ve.OrNil(); err != nil {
		return GridSnapshot{}, err
	}

	ids := make([]uint, 0, len(resolved))
	for _, c := range resolved {
		ids = append(ids, c.ID)
	}
	sess.extraChargeIDs = ids
	sess.personalized = append([]models.PersonalizedCharge{}, in.PersonalizedCharges...)
	sess.adultGuests = in.AdultGuests
	sess.childGuests = in.ChildGuests
	return s.snapshot(sess), nil
}

// SessionSubmitInput carries the booking fields the grid does not hold.
// Zero dates default to the span of the committed nights.
type SessionSubmitInput struct {
	CustomerID        uint
	BookingProviderID *uint
	ExternalID        string
	ArrivalDate       time.Time
	DepartureDate     time.Time
}

// Submit persists the committed drafts. On failure the session is left as it
// was; on success it keeps editing the saved booking.
func (s *GridSessionService) Submit(ctx context.Context, id string, in SessionSubmitInput) (models.Booking, GridSnapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return models.Booking{}, GridSnapshot{}, err
	}
	defer sess.mu.Unlock()

	committed := sess.grid.Committed()
	arrival, departure := in.ArrivalDate, in.DepartureDate
	if len(committed) > 0 {
		first, last := committed[0].Date, committed[0].Date
		for _, rb := range committed[1:] {
			if rb.Date.Before(first) {
				first = rb.Date
			}
			if rb.Date.After(last) {
				last = rb.Date
			}
		}
		if arrival.IsZero() {
			arrival = first
		}
		if departure.IsZero() {
			departure = last.AddDate(0, 0, 1)
		}
	}

	saved, err := s.Bookings.SubmitBooking(ctx, SubmitBookingInput{
		BookingID:           sess.bookingID,
		HotelID:             sess.hotelID,
		CustomerID:          in.CustomerID,
		BookingProviderID:   in.BookingProviderID,
		ExternalID:          in.ExternalID,
		ArrivalDate:         arrival,
		DepartureDate:       departure,
		AdultGuests:         sess.adultGuests,
		ChildGuests:         sess.childGuests,
		RoomBookings:        committed,
		ExtraChargeIDs:      sess.extraChargeIDs,
		PersonalizedCharges: sess.personalized,
	})
	if err != nil {
		return models.Booking{}, GridSnapshot{}, err
	}

	bookingID := saved.ID
	sess.bookingID = &bookingID
	if err := s.load(ctx, sess, sess.dr); err != nil {
		// the booking is saved, so a retried submit must update it rather
		// than create another one
		log.Printf("⚠️ grid session %s saved booking %d but reload failed: %v", sess.id, saved.ID, err)
		return saved, GridSnapshot{}, err
	}
	sess.grid.LoadCommitted(saved.RoomBookings)
	log.Printf("✅ grid session %s submitted booking %d", sess.id, saved.ID)
	return saved, s.snapshot(sess), nil
}

func (s *GridSessionService) snapshot(sess *gridSession) GridSnapshot {
	committed := sess.grid.Committed()
	selected := resolveSelected(sess.charges, sess.extraChargeIDs)

	rows := make([]GridRow, 0, len(sess.rooms))
	dates := sess.dr.Dates()
	for _, room := range sess.rooms {
		row := GridRow{RoomID: room.ID, RoomName: room.Name, Cells: make([]GridCell, 0, len(dates))}
		for _, d := range dates {
			row.Cells = append(row.Cells, GridCell{Date: d, Status: sess.grid.Status(d, room.ID)})
		}
		rows = append(rows, row)
	}

	sort.Slice(committed, func(a, b int) bool {
		if !committed[a].Date.Equal(committed[b].Date) {
			return committed[a].Date.Before(committed[b].Date)
		}
		return committed[a].RoomID < committed[b].RoomID
	})

	return GridSnapshot{
		ID:                  sess.id,
		HotelID:             sess.hotelID,
		BookingID:           sess.bookingID,
		Start:               sess.dr.Start,
		End:                 sess.dr.End,
		State:               sess.grid.State().String(),
		MultiSelect:         sess.grid.MultiSelect(),
		ModifierHeld:        sess.grid.ModifierHeld(),
		CanUndo:             sess.grid.CanUndo(),
		Pending:             sess.grid.Pending(),
		Committed:           committed,
		DeselectTarget:      sess.grid.DeselectTarget(),
		Rows:                rows,
		ExtraChargeIDs:      append([]uint{}, sess.extraChargeIDs...),
		PersonalizedCharges: append([]models.PersonalizedCharge{}, sess.personalized...),
		AdultGuests:         sess.adultGuests,
		ChildGuests:         sess.childGuests,
		Totals:              pricing.ComputeTotals(committed, selected, sess.personalized, sess.adultGuests),
		ExpiresAt:           sess.lastUsed.Add(s.conf.TTL),
	}
}

// resolveSelected returns the charges by id, skipping ids no longer defined.
func resolveSelected(all []models.ExtraCharge, ids []uint) []models.ExtraCharge {
	byID := make(map[uint]models.ExtraCharge, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.ExtraCharge, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
