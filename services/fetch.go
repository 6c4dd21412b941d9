package services

import (
	"context"
	"time"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

// MaxRangeDays caps the number of nights a single range fetch may cover.
const MaxRangeDays = 366

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange reads a YYYY-MM-DD range. End must not be before start.
func ParseDateRange(start, end string) (DateRange, error) {
	ve := apperror.NewValidationError()
	s, err := models.ParseDate(start)
	if err != nil {
		ve.Add("start", "start must be a YYYY-MM-DD date")
	}
	e, err := models.ParseDate(end)
	if err != nil {
		ve.Add("end", "end must be a YYYY-MM-DD date")
	}
	if ve.HasErrors() {
		return DateRange{}, ve
	}
	return NewDateRange(s, e)
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: models.NormalizeDate(start), End: models.NormalizeDate(end)}
	ve := apperror.NewValidationError()
	if r.End.Before(r.Start) {
		ve.Add("end", "end must not be before start")
	} else if len(r.Dates()) > MaxRangeDays {
		ve.Add("end", "range is too long")
	}
	if err := ve.OrNil(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Dates lists every date of the range, both ends included.
func (r DateRange) Dates() []time.Time {
	return models.DatesBetween(r.Start, r.End.AddDate(0, 0, 1))
}

// The fetch helpers treat a missing collection as empty and wrap any other
// failure as transient.

func fetchRooms(ctx context.Context, r store.Reader, hotelID uint) ([]models.Room, error) {
	rooms, err := r.RoomsByHotel(ctx, hotelID)
	if apperror.IsNotFound(err) {
		return []models.Room{}, nil
	}
	return rooms, apperror.Transient("fetch rooms", err)
}

func fetchRoomBookings(ctx context.Context, r store.Reader, hotelID uint, dr DateRange) ([]models.RoomBooking, error) {
	rbs, err := r.RoomBookingsByRange(ctx, hotelID, dr.Start, dr.End)
	if apperror.IsNotFound(err) {
		return []models.RoomBooking{}, nil
	}
	return rbs, apperror.Transient("fetch room bookings", err)
}

func fetchAvailability(ctx context.Context, r store.Reader, hotelID uint, dr DateRange) ([]models.RoomAvailability, error) {
	records, err := r.AvailabilityByRange(ctx, hotelID, dr.Start, dr.End)
	if apperror.IsNotFound(err) {
		return []models.RoomAvailability{}, nil
	}
	return records, apperror.Transient("fetch availability", err)
}

func fetchExtraCharges(ctx context.Context, r store.Reader, hotelID uint) ([]models.ExtraCharge, error) {
	charges, err := r.ExtraChargesByHotel(ctx, hotelID)
	if apperror.IsNotFound(err) {
		return []models.ExtraCharge{}, nil
	}
	return charges, apperror.Transient("fetch extra charges", err)
}

// resolveExtraCharges picks the hotel's charges by id, keeping the order of
// first appearance and dropping repeats.
func resolveExtraCharges(all []models.ExtraCharge, ids []uint, ve *apperror.ValidationError) []models.ExtraCharge {
	byID := make(map[uint]models.ExtraCharge, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	out := make([]models.ExtraCharge, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c, ok := byID[id]
		if !ok {
			ve.Add("extraChargeIds", "unknown extra charge for this hotel")
			continue
		}
		out = append(out, c)
	}
	return out
}
