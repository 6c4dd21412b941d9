package conflict

import (
	"fmt"
	"time"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/models"
)

type cellKey struct {
	date   string
	roomID uint
}

func keyOf(date time.Time, roomID uint) cellKey {
	return cellKey{date: models.DateKey(date), roomID: roomID}
}

// Detector decides whether a room-night can still be claimed by the booking
// being edited (or by a new booking when editing is nil).
type Detector struct {
	owned   map[cellKey]models.RoomBooking
	index   *availability.Index
	editing *uint
}

// New indexes the existing room-bookings of a fetched range. Room-nights of
// the booking under edit are ignored so the booking can see through them.
func New(existing []models.RoomBooking, index *availability.Index, editing *uint) *Detector {
	d := &Detector{
		owned: make(map[cellKey]models.RoomBooking, len(existing)),
		index: index,
	}
	if editing != nil {
		id := *editing
		d.editing = &id
	}
	for _, rb := range existing {
		if rb.BelongsTo(d.editing) {
			continue
		}
		d.owned[keyOf(rb.Date, rb.RoomID)] = rb
	}
	return d
}

// Editing returns the id of the booking under edit, if any.
func (d *Detector) Editing() *uint {
	if d.editing == nil {
		return nil
	}
	id := *d.editing
	return &id
}

// FindExistingBooking returns the room-booking of another booking that
// occupies the room-night.
func (d *Detector) FindExistingBooking(date time.Time, roomID uint) (models.RoomBooking, bool) {
	rb, ok := d.owned[keyOf(date, roomID)]
	return rb, ok
}

func (d *Detector) IsOpen(date time.Time, roomID uint) bool {
	return d.index.IsOpen(date, roomID)
}

// Check returns a ConflictError when the room-night is occupied or closed.
func (d *Detector) Check(date time.Time, roomID uint) error {
	cell := apperror.Cell{RoomID: roomID, Date: models.NormalizeDate(date)}
	if rb, ok := d.FindExistingBooking(date, roomID); ok {
		err := apperror.NewConflictError(apperror.ReasonOccupied, cell)
		if rb.BookingID != nil {
			return fmt.Errorf("owned by booking %d: %w", *rb.BookingID, err)
		}
		return err
	}
	if !d.IsOpen(date, roomID) {
		return apperror.NewConflictError(apperror.ReasonClosed, cell)
	}
	return nil
}

// IsSelectable reports whether the room-night passes both checks.
func (d *Detector) IsSelectable(date time.Time, roomID uint) bool {
	return d.Check(date, roomID) == nil
}
