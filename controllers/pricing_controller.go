package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type PricingController struct {
	PricingSvc *services.PricingService
}

func NewPricingController(svc *services.PricingService) *PricingController {
	return &PricingController{PricingSvc: svc}
}

func bindDraft(c *gin.Context) (uint, services.PricingDraft, bool) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return 0, services.PricingDraft{}, false
	}
	var p PricingDraftPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return 0, services.PricingDraft{}, false
	}
	return hotelID, services.PricingDraft{
		RoomBookings:        toNights(p.RoomBookings),
		ExtraChargeIDs:      p.ExtraChargeIDs,
		PersonalizedCharges: toPersonalized(p.PersonalizedCharges),
		AdultGuests:         p.AdultGuests,
	}, true
}

// Preview handles POST /api/hotels/:hotelId/pricing/preview
func (pc *PricingController) Preview(c *gin.Context) {
	hotelID, draft, ok := bindDraft(c)
	if !ok {
		return
	}
	totals, err := pc.PricingSvc.Preview(c.Request.Context(), hotelID, draft)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, totals)
}

// Groups handles POST /api/hotels/:hotelId/pricing/groups
func (pc *PricingController) Groups(c *gin.Context) {
	hotelID, draft, ok := bindDraft(c)
	if !ok {
		return
	}
	view, err := pc.PricingSvc.Groups(c.Request.Context(), hotelID, draft)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, view)
}
