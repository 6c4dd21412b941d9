package services

import (
	"context"
	"strings"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

type CustomerService struct {
	Store store.Store
}

func NewCustomerService(s store.Store) *CustomerService {
	return &CustomerService{Store: s}
}

// Create registers a customer of the hotel. The id is filled in on success.
func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) error {
	customer.FullName = strings.TrimSpace(customer.FullName)
	customer.Email = strings.TrimSpace(customer.Email)

	ve := apperror.NewValidationError()
	if customer.HotelID == 0 {
		ve.Add("hotelId", "hotelId is required")
	}
	if customer.FullName == "" {
		ve.Add("fullName", "fullName is required")
	}
	if err := ve.OrNil(); err != nil {
		return err
	}

	if err := s.Store.CreateCustomer(ctx, customer); err != nil {
		return apperror.Transient("create customer", err)
	}
	return nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (models.Customer, error) {
	c, err := s.Store.Customer(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return models.Customer{}, err
		}
		return models.Customer{}, apperror.Transient("load customer", err)
	}
	return c, nil
}
