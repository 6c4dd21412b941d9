package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoomBooking is one room-night. The (hotel, room, date) triple is unique,
// so a room-night can only belong to one active booking.
type RoomBooking struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	HotelID   uint            `gorm:"column:hotel_id;not null;uniqueIndex:idx_room_night,priority:1" json:"hotelId"`
	RoomID    uint            `gorm:"column:room_id;not null;uniqueIndex:idx_room_night,priority:2" json:"roomId"`
	Date      time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:idx_room_night,priority:3" json:"date"`
	BookingID *uint           `gorm:"column:booking_id;index" json:"bookingId"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(12,2);not null" json:"price"`
	CreatedAt time.Time       `json:"-"`

	Room *Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}

// BelongsTo reports whether the room-night is owned by the given booking.
// A nil id matches nothing.
func (rb RoomBooking) BelongsTo(bookingID *uint) bool {
	return bookingID != nil && rb.BookingID != nil && *rb.BookingID == *bookingID
}
