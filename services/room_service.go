package services

import (
	"context"

	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

// RoomService serves the read side of the grid: rooms, occupied room-nights
// and the hotel's extra charge definitions.
type RoomService struct {
	Store store.Reader
}

func NewRoomService(s store.Reader) *RoomService {
	return &RoomService{Store: s}
}

func (s *RoomService) ListByHotel(ctx context.Context, hotelID uint) ([]models.Room, error) {
	return fetchRooms(ctx, s.Store, hotelID)
}

func (s *RoomService) RoomBookings(ctx context.Context, hotelID uint, dr DateRange) ([]models.RoomBooking, error) {
	return fetchRoomBookings(ctx, s.Store, hotelID, dr)
}

func (s *RoomService) ExtraCharges(ctx context.Context, hotelID uint) ([]models.ExtraCharge, error) {
	return fetchExtraCharges(ctx, s.Store, hotelID)
}
