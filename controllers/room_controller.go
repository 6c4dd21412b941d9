package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// GetRooms handles GET /api/hotels/:hotelId/rooms
func (rc *RoomController) GetRooms(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	rooms, err := rc.RoomSvc.ListByHotel(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GetRoomBookings handles GET /api/hotels/:hotelId/room-bookings?start=&end=
func (rc *RoomController) GetRoomBookings(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	dr, err := services.ParseDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	rbs, err := rc.RoomSvc.RoomBookings(c.Request.Context(), hotelID, dr)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rbs)
}

// GetExtraCharges handles GET /api/hotels/:hotelId/extra-charges
func (rc *RoomController) GetExtraCharges(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	charges, err := rc.RoomSvc.ExtraCharges(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, charges)
}
