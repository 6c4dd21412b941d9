package models

import "github.com/shopspring/decimal"

// PersonalizedCharge is a one-off amount attached to a single booking.
type PersonalizedCharge struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"column:booking_id;index" json:"bookingId"`
	Name      string          `gorm:"size:150;not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}
