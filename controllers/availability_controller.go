package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type AvailabilityController struct {
	AvailabilitySvc *services.AvailabilityService
}

func NewAvailabilityController(svc *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{AvailabilitySvc: svc}
}

// GetAvailability handles GET /api/hotels/:hotelId/availability?start=&end=
func (ac *AvailabilityController) GetAvailability(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	dr, err := services.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := ac.AvailabilitySvc.Range(c.Request.Context(), hotelID, dr)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, records)
}

// UpsertAvailability handles PUT /api/hotels/:hotelId/availability
func (ac *AvailabilityController) UpsertAvailability(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	var p UpsertAvailabilityPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	cells, err := ac.AvailabilitySvc.Upsert(c.Request.Context(), hotelID, services.UpsertAvailabilityInput{
		IsOpen:   p.IsOpen,
		Requests: toCells(p.Requests),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"isOpen": p.IsOpen, "updated": cells})
}
