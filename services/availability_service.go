package services

import (
	"context"
	"fmt"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

type AvailabilityService struct {
	Store store.Store
}

func NewAvailabilityService(s store.Store) *AvailabilityService {
	return &AvailabilityService{Store: s}
}

func (s *AvailabilityService) Range(ctx context.Context, hotelID uint, dr DateRange) ([]models.RoomAvailability, error) {
	return fetchAvailability(ctx, s.Store, hotelID, dr)
}

// UpsertAvailabilityInput sets every listed room-night to the same flag.
type UpsertAvailabilityInput struct {
	IsOpen   bool
	Requests []availability.Cell
}

// Upsert validates and writes the flags. The returned cells are the ones
// written, ready to be merged into a loaded index.
func (s *AvailabilityService) Upsert(ctx context.Context, hotelID uint, in UpsertAvailabilityInput) ([]availability.Cell, error) {
	ve := apperror.NewValidationError()
	if len(in.Requests) == 0 {
		ve.Add("requests", "at least one room-night is required")
		return nil, ve
	}

	rooms, err := fetchRooms(ctx, s.Store, hotelID)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]struct{}, len(rooms))
	for _, r := range rooms {
		known[r.ID] = struct{}{}
	}

	cells := make([]availability.Cell, 0, len(in.Requests))
	records := make([]models.RoomAvailability, 0, len(in.Requests))
	for i, req := range in.Requests {
		if _, ok := known[req.RoomID]; !ok {
			ve.Add(fmt.Sprintf("requests[%d].roomId", i), "room does not belong to this hotel")
			continue
		}
		if req.Date.IsZero() {
			ve.Add(fmt.Sprintf("requests[%d].date", i), "date is required")
			continue
		}
		cell := availability.Cell{RoomID: req.RoomID, Date: models.NormalizeDate(req.Date)}
		cells = append(cells, cell)
		records = append(records, models.RoomAvailability{
			HotelID: hotelID,
			RoomID:  cell.RoomID,
			Date:    cell.Date,
			IsOpen:  in.IsOpen,
		})
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.Store.UpsertAvailability(ctx, records); err != nil {
		return nil, apperror.Transient("upsert availability", err)
	}
	return cells, nil
}
