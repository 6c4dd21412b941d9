package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	HotelID   uint           `gorm:"index;column:hotel_id" json:"hotelId"`
	FullName  string         `gorm:"size:255" json:"fullName"`
	Email     string         `gorm:"size:150" json:"email"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
