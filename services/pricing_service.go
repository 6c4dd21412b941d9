package services

import (
	"context"
	"fmt"
	"strings"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/grouping"
	"hotel-booking-engine/engine/pricing"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

// PricingDraft is an unsaved selection to be priced.
type PricingDraft struct {
	RoomBookings        []models.RoomBooking
	ExtraChargeIDs      []uint
	PersonalizedCharges []models.PersonalizedCharge
	AdultGuests         int
}

// GroupsView is the grouped display of a set of room-nights: one card per
// room plus the booking level charges.
type GroupsView struct {
	Groups         []grouping.Result    `json:"groups"`
	GeneralCharges []pricing.ChargeLine `json:"generalCharges"`
	Totals         pricing.Totals       `json:"totals"`
}

func buildGroupsView(
	nights []models.RoomBooking,
	charges []models.ExtraCharge,
	personalized []models.PersonalizedCharge,
	adults int,
) GroupsView {
	return GroupsView{
		Groups:         grouping.Group(nights, charges),
		GeneralCharges: grouping.GeneralCharges(nights, charges, personalized, adults),
		Totals:         pricing.ComputeTotals(nights, charges, personalized, adults),
	}
}

type PricingService struct {
	Store store.Reader
}

func NewPricingService(s store.Reader) *PricingService {
	return &PricingService{Store: s}
}

func (s *PricingService) resolve(ctx context.Context, hotelID uint, d PricingDraft) ([]models.ExtraCharge, error) {
	ve := apperror.NewValidationError()
	for i, rb := range d.RoomBookings {
		if !rb.Price.IsPositive() {
			ve.Add(fmt.Sprintf("roomBookings[%d].price", i), "price must be greater than zero")
		}
	}
	validatePersonalized(d.PersonalizedCharges, ve)
	if d.AdultGuests < 0 {
		ve.Add("adultGuests", "adultGuests must not be negative")
	}

	all, err := fetchExtraCharges(ctx, s.Store, hotelID)
	if err != nil {
		return nil, err
	}
	charges := resolveExtraCharges(all, d.ExtraChargeIDs, ve)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	return charges, nil
}

// Preview prices a draft with the same rules the submit path persists.
func (s *PricingService) Preview(ctx context.Context, hotelID uint, d PricingDraft) (pricing.Totals, error) {
	charges, err := s.resolve(ctx, hotelID, d)
	if err != nil {
		return pricing.Totals{}, err
	}
	return pricing.ComputeTotals(d.RoomBookings, charges, d.PersonalizedCharges, d.AdultGuests), nil
}

func (s *PricingService) Groups(ctx context.Context, hotelID uint, d PricingDraft) (GroupsView, error) {
	charges, err := s.resolve(ctx, hotelID, d)
	if err != nil {
		return GroupsView{}, err
	}
	rooms, err := fetchRooms(ctx, s.Store, hotelID)
	if err != nil {
		return GroupsView{}, err
	}
	return buildGroupsView(attachRooms(d.RoomBookings, rooms), charges, d.PersonalizedCharges, d.AdultGuests), nil
}

// attachRooms fills the Room snapshot of nights that arrive without one.
func attachRooms(nights []models.RoomBooking, rooms []models.Room) []models.RoomBooking {
	byID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	out := make([]models.RoomBooking, len(nights))
	for i, rb := range nights {
		if rb.Room == nil {
			if room, ok := byID[rb.RoomID]; ok {
				rb.Room = &room
			}
		}
		out[i] = rb
	}
	return out
}

func validatePersonalized(charges []models.PersonalizedCharge, ve *apperror.ValidationError) {
	for i, p := range charges {
		if strings.TrimSpace(p.Name) == "" {
			ve.Add(fmt.Sprintf("personalizedCharges[%d].name", i), "name is required")
		}
		if !p.Amount.IsPositive() {
			ve.Add(fmt.Sprintf("personalizedCharges[%d].amount", i), "amount must be greater than zero")
		}
	}
}
