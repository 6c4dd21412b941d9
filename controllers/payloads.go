package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/models"
)

// Dates travel as YYYY-MM-DD strings, checked by the isodate tag before they
// are parsed.

type RoomNightPayload struct {
	RoomID uint            `json:"roomId" binding:"required"`
	Date   string          `json:"date" binding:"required,isodate"`
	Price  decimal.Decimal `json:"price"`
}

type PersonalizedChargePayload struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type SubmitBookingPayload struct {
	CustomerID          uint                        `json:"customerId"`
	BookingProviderID   *uint                       `json:"bookingProviderId"`
	ExternalID          string                      `json:"externalId"`
	ArrivalDate         string                      `json:"arrivalDate" binding:"required,isodate"`
	DepartureDate       string                      `json:"departureDate" binding:"required,isodate"`
	AdultGuests         int                         `json:"adultGuests"`
	ChildGuests         int                         `json:"childGuests"`
	RoomBookings        []RoomNightPayload          `json:"roomBookings" binding:"dive"`
	ExtraChargeIDs      []uint                      `json:"extraChargeIds"`
	PersonalizedCharges []PersonalizedChargePayload `json:"personalizedCharges" binding:"dive"`
}

type PricingDraftPayload struct {
	RoomBookings        []RoomNightPayload          `json:"roomBookings" binding:"dive"`
	ExtraChargeIDs      []uint                      `json:"extraChargeIds"`
	PersonalizedCharges []PersonalizedChargePayload `json:"personalizedCharges" binding:"dive"`
	AdultGuests         int                         `json:"adultGuests"`
}

type AvailabilityCellPayload struct {
	RoomID uint   `json:"roomId" binding:"required"`
	Date   string `json:"date" binding:"required,isodate"`
}

type UpsertAvailabilityPayload struct {
	IsOpen   bool                      `json:"isOpen"`
	Requests []AvailabilityCellPayload `json:"requests" binding:"required,min=1,dive"`
}

// mustDate parses a date already validated by the isodate tag.
func mustDate(raw string) time.Time {
	t, _ := models.ParseDate(raw)
	return t
}

func toNights(in []RoomNightPayload) []models.RoomBooking {
	out := make([]models.RoomBooking, 0, len(in))
	for _, p := range in {
		out = append(out, models.RoomBooking{RoomID: p.RoomID, Date: mustDate(p.Date), Price: p.Price})
	}
	return out
}

func toPersonalized(in []PersonalizedChargePayload) []models.PersonalizedCharge {
	out := make([]models.PersonalizedCharge, 0, len(in))
	for _, p := range in {
		out = append(out, models.PersonalizedCharge{Name: p.Name, Amount: p.Amount})
	}
	return out
}

func toCells(in []AvailabilityCellPayload) []availability.Cell {
	out := make([]availability.Cell, 0, len(in))
	for _, p := range in {
		out = append(out, availability.Cell{RoomID: p.RoomID, Date: mustDate(p.Date)})
	}
	return out
}
