package models

import "time"

// RoomAvailability is an explicit open/closed flag for one room-night.
// Missing rows mean the room is open.
type RoomAvailability struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	HotelID   uint      `gorm:"column:hotel_id;not null;uniqueIndex:idx_room_availability,priority:1" json:"hotelId"`
	RoomID    uint      `gorm:"column:room_id;not null;uniqueIndex:idx_room_availability,priority:2" json:"roomId"`
	Date      time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_room_availability,priority:3" json:"date"`
	IsOpen    bool      `gorm:"column:is_open;not null" json:"isOpen"`
	UpdatedAt time.Time `json:"-"`
}
