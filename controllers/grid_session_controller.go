package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/selection"
	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type GridSessionController struct {
	GridSvc *services.GridSessionService
}

func NewGridSessionController(svc *services.GridSessionService) *GridSessionController {
	return &GridSessionController{GridSvc: svc}
}

type CreateGridSessionPayload struct {
	Start     string `json:"start" binding:"required,isodate"`
	End       string `json:"end" binding:"required,isodate"`
	BookingID *uint  `json:"bookingId"`
}

type GridRangePayload struct {
	Start string `json:"start" binding:"required,isodate"`
	End   string `json:"end" binding:"required,isodate"`
}

// GridEventPayload is one grid interaction. Type picks which of the other
// fields are read.
type GridEventPayload struct {
	Type     string                    `json:"type" binding:"required"`
	Date     string                    `json:"date" binding:"omitempty,isodate"`
	RoomID   uint                      `json:"roomId"`
	On       bool                      `json:"on"`
	Input    string                    `json:"input"`
	IsOpen   bool                      `json:"isOpen"`
	Requests []AvailabilityCellPayload `json:"requests" binding:"dive"`
}

type SessionChargesPayload struct {
	ExtraChargeIDs      []uint                      `json:"extraChargeIds"`
	PersonalizedCharges []PersonalizedChargePayload `json:"personalizedCharges" binding:"dive"`
	AdultGuests         int                         `json:"adultGuests"`
	ChildGuests         int                         `json:"childGuests"`
}

type SessionSubmitPayload struct {
	CustomerID        uint   `json:"customerId"`
	BookingProviderID *uint  `json:"bookingProviderId"`
	ExternalID        string `json:"externalId"`
	ArrivalDate       string `json:"arrivalDate" binding:"omitempty,isodate"`
	DepartureDate     string `json:"departureDate" binding:"omitempty,isodate"`
}

func toEvent(p GridEventPayload) (selection.Event, error) {
	ve := apperror.NewValidationError()
	needCell := func() {
		if p.Date == "" {
			ve.Add("date", "date is required for this event")
		}
		if p.RoomID == 0 {
			ve.Add("roomId", "roomId is required for this event")
		}
	}

	var ev selection.Event
	switch strings.ToLower(p.Type) {
	case "click":
		needCell()
		ev = selection.Click{Date: mustDate(p.Date), RoomID: p.RoomID}
	case "modifier_down":
		ev = selection.ModifierDown{}
	case "modifier_up":
		ev = selection.ModifierUp{}
	case "toggle_multi_select":
		ev = selection.ToggleMultiSelect{On: p.On}
	case "open_price_dialog":
		ev = selection.OpenPriceDialog{}
	case "submit_price":
		ev = selection.SubmitPrice{Input: p.Input}
	case "cancel":
		ev = selection.Cancel{}
	case "header_click":
		if p.RoomID == 0 {
			ve.Add("roomId", "roomId is required for this event")
		}
		ev = selection.HeaderClick{RoomID: p.RoomID}
	case "confirm_deselect":
		ev = selection.ConfirmDeselect{}
	case "undo_last_commit":
		ev = selection.UndoLastCommit{}
	case "discard":
		ev = selection.Discard{}
	default:
		ve.Add("type", "unknown event type")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return ev, nil
}

// CreateSession handles POST /api/hotels/:hotelId/grid-sessions
func (gc *GridSessionController) CreateSession(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	var p CreateGridSessionPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	dr, err := services.ParseDateRange(p.Start, p.End)
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := gc.GridSvc.Create(c.Request.Context(), hotelID, services.CreateGridSessionInput{
		Range:     dr,
		BookingID: p.BookingID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, snap)
}

// GetSession handles GET /api/grid-sessions/:sessionId
func (gc *GridSessionController) GetSession(c *gin.Context) {
	snap, err := gc.GridSvc.Get(c.Param("sessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, snap)
}

// DeleteSession handles DELETE /api/grid-sessions/:sessionId
func (gc *GridSessionController) DeleteSession(c *gin.Context) {
	if err := gc.GridSvc.Delete(c.Param("sessionId")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// ApplyEvent handles POST /api/grid-sessions/:sessionId/events
func (gc *GridSessionController) ApplyEvent(c *gin.Context) {
	id := c.Param("sessionId")
	var p GridEventPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}

	// availability toggles write through to the store, unlike the other events
	if strings.EqualFold(p.Type, "availability") {
		if len(p.Requests) == 0 {
			ve := apperror.NewValidationError()
			ve.Add("requests", "requests must not be empty")
			respondError(c, ve)
			return
		}
		snap, err := gc.GridSvc.SetAvailability(c.Request.Context(), id, services.UpsertAvailabilityInput{
			IsOpen:   p.IsOpen,
			Requests: toCells(p.Requests),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, services.EventResult{Snapshot: snap})
		return
	}

	ev, err := toEvent(p)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := gc.GridSvc.Apply(id, ev)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// SetRange handles PUT /api/grid-sessions/:sessionId/range
func (gc *GridSessionController) SetRange(c *gin.Context) {
	var p GridRangePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	dr, err := services.ParseDateRange(p.Start, p.End)
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := gc.GridSvc.SetRange(c.Request.Context(), c.Param("sessionId"), dr)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, snap)
}

// SetCharges handles PUT /api/grid-sessions/:sessionId/charges
func (gc *GridSessionController) SetCharges(c *gin.Context) {
	var p SessionChargesPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	snap, err := gc.GridSvc.SetCharges(c.Param("sessionId"), services.SessionChargesInput{
		ExtraChargeIDs:      p.ExtraChargeIDs,
		PersonalizedCharges: toPersonalized(p.PersonalizedCharges),
		AdultGuests:         p.AdultGuests,
		ChildGuests:         p.ChildGuests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, snap)
}

// SubmitSession handles POST /api/grid-sessions/:sessionId/submit
func (gc *GridSessionController) SubmitSession(c *gin.Context) {
	var p SessionSubmitPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	in := services.SessionSubmitInput{
		CustomerID:        p.CustomerID,
		BookingProviderID: p.BookingProviderID,
		ExternalID:        p.ExternalID,
	}
	if p.ArrivalDate != "" {
		in.ArrivalDate = mustDate(p.ArrivalDate)
	}
	if p.DepartureDate != "" {
		in.DepartureDate = mustDate(p.DepartureDate)
	}

	booking, snap, err := gc.GridSvc.Submit(c.Request.Context(), c.Param("sessionId"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking, "session": snap})
}
