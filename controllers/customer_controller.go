package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-booking-engine/models"
	"hotel-booking-engine/services"
	"hotel-booking-engine/utils"
)

type CustomerController struct {
	CustomerSvc *services.CustomerService
}

func NewCustomerController(svc *services.CustomerService) *CustomerController {
	return &CustomerController{CustomerSvc: svc}
}

type CreateCustomerPayload struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// CreateCustomer handles POST /api/hotels/:hotelId/customers
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "hotelId")
	if !ok {
		return
	}
	var p CreateCustomerPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}

	customer := models.Customer{HotelID: hotelID, FullName: p.FullName, Email: p.Email}
	if err := ctrl.CustomerSvc.Create(c.Request.Context(), &customer); err != nil {
		respondError(c, err)
		return
	}
	log.Printf("👤 customer %d created for hotel %d", customer.ID, hotelID)
	utils.JSONSuccess(c, http.StatusCreated, customer)
}

// GetCustomer handles GET /api/customers/:id
func (ctrl *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	customer, err := ctrl.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, customer)
}
