package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func (bc *BookingController) submit(c *gin.Context, bookingID *uint) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	var p SubmitBookingPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := bc.BookingSvc.SubmitBooking(c.Request.Context(), services.SubmitBookingInput{
		BookingID:           bookingID,
		HotelID:             hotelID,
		CustomerID:          p.CustomerID,
		BookingProviderID:   p.BookingProviderID,
		ExternalID:          p.ExternalID,
		ArrivalDate:         mustDate(p.ArrivalDate),
		DepartureDate:       mustDate(p.DepartureDate),
		AdultGuests:         p.AdultGuests,
		ChildGuests:         p.ChildGuests,
		RoomBookings:        toNights(p.RoomBookings),
		ExtraChargeIDs:      p.ExtraChargeIDs,
		PersonalizedCharges: toPersonalized(p.PersonalizedCharges),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if bookingID != nil {
		status = http.StatusOK
	}
	log.Printf("✅ booking %d saved for hotel %d (total %s)", booking.ID, hotelID, booking.Total)
	utils.JSONSuccess(c, status, booking)
}

// CreateBooking handles POST /api/hotels/:hotelId/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	bc.submit(c, nil)
}

// UpdateBooking handles PUT /api/hotels/:hotelId/bookings/:id
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bc.submit(c, &id)
}

// GetSummary handles GET /api/bookings/:id/summary
func (bc *BookingController) GetSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := bc.BookingSvc.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, summary)
}

// GetInvoice handles GET /api/bookings/:id/invoice
func (bc *BookingController) GetInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := bc.BookingSvc.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, inv)
}

// CancelBooking handles POST /api/bookings/:id/cancel
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("🗑️ booking %d cancelled", id)
	utils.JSONSuccess(c, http.StatusOK, booking)
}
