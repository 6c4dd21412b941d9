// Package store is the persistence boundary of the booking engine. Date
// ranges are inclusive on both ends. Lookups of a single record return
// apperror.ErrNotFound when it does not exist; collection fetches return an
// empty slice instead.
package store

import (
	"context"
	"time"

	"hotel-booking-engine/models"
)

type Reader interface {
	RoomsByHotel(ctx context.Context, hotelID uint) ([]models.Room, error)
	RoomBookingsByRange(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error)
	AvailabilityByRange(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomAvailability, error)
	ExtraChargesByHotel(ctx context.Context, hotelID uint) ([]models.ExtraCharge, error)
	Customer(ctx context.Context, id uint) (models.Customer, error)
	// Booking loads a booking with its customer, room-nights (and their
	// rooms), extra charges and personalized charges.
	Booking(ctx context.Context, id uint) (models.Booking, error)
}

type Writer interface {
	CreateHotel(ctx context.Context, h *models.Hotel) error
	CreateRoom(ctx context.Context, r *models.Room) error
	CreateCustomer(ctx context.Context, c *models.Customer) error
	CreateExtraCharge(ctx context.Context, c *models.ExtraCharge) error

	// LockRoomNights returns the room-nights of a hotel in the range and
	// keeps them locked until the surrounding transaction ends.
	LockRoomNights(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error)
	// SaveBooking creates or updates the booking header and replaces its
	// room-nights, extra charges and personalized charges with the ones set
	// on b. A room-night already taken by another booking yields an
	// *apperror.ConflictError.
	SaveBooking(ctx context.Context, b *models.Booking) error
	// CancelBooking marks the booking cancelled and frees its room-nights.
	CancelBooking(ctx context.Context, id uint) error
	// UpsertAvailability inserts or updates the open flag of each record.
	UpsertAvailability(ctx context.Context, records []models.RoomAvailability) error
}

type Store interface {
	Reader
	Writer
	// Transaction runs fn against a Store bound to a single transaction. The
	// transaction is rolled back when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
