package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HotelID           uint      `gorm:"column:hotel_id;index;not null" json:"hotelId"`
	CustomerID        uint      `gorm:"column:customer_id;index" json:"customerId"`
	BookingProviderID *uint     `gorm:"column:booking_provider_id" json:"bookingProviderId,omitempty"`
	ExternalID        string    `gorm:"column:external_id;size:100" json:"externalId,omitempty"`
	ArrivalDate       time.Time `gorm:"column:arrival_date;type:date" json:"arrivalDate"`
	DepartureDate     time.Time `gorm:"column:departure_date;type:date" json:"departureDate"`
	AdultGuests       int       `gorm:"column:adult_guests" json:"adultGuests"`
	ChildGuests       int       `gorm:"column:child_guests" json:"childGuests"`
	Status            string    `gorm:"column:status;size:32;index" json:"status"`

	// Figures recomputed server side on every submit.
	Subtotal        decimal.Decimal `gorm:"type:decimal(14,4)" json:"subtotal"`
	Charges         decimal.Decimal `gorm:"type:decimal(14,4)" json:"charges"`
	Total           decimal.Decimal `gorm:"type:decimal(14,4)" json:"total"`
	ChargeBreakdown datatypes.JSON  `gorm:"column:charge_breakdown" json:"chargeBreakdown,omitempty"`

	Customer            *Customer            `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
	RoomBookings        []RoomBooking        `gorm:"foreignKey:BookingID" json:"roomBookings"`
	ExtraCharges        []ExtraCharge        `gorm:"many2many:booking_extra_charges" json:"extraCharges"`
	PersonalizedCharges []PersonalizedCharge `gorm:"foreignKey:BookingID" json:"personalizedCharges"`
}

// ExtraChargeIDs lists the ids of the hotel charges applied to the booking.
func (b *Booking) ExtraChargeIDs() []uint {
	ids := make([]uint, 0, len(b.ExtraCharges))
	for _, c := range b.ExtraCharges {
		ids = append(ids, c.ID)
	}
	return ids
}
