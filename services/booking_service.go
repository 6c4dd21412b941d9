package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/engine/conflict"
	"hotel-booking-engine/engine/pricing"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

// SubmitBookingInput creates a booking, or edits one when BookingID is set.
// Totals are never taken from the caller.
type SubmitBookingInput struct {
	BookingID           *uint
	HotelID             uint
	CustomerID          uint
	BookingProviderID   *uint
	ExternalID          string
	ArrivalDate         time.Time
	DepartureDate       time.Time
	AdultGuests         int
	ChildGuests         int
	RoomBookings        []models.RoomBooking
	ExtraChargeIDs      []uint
	PersonalizedCharges []models.PersonalizedCharge
}

type BookingService struct {
	Store store.Store
}

func NewBookingService(s store.Store) *BookingService {
	return &BookingService{Store: s}
}

type nightKey struct {
	roomID uint
	date   string
}

func validateSubmit(in SubmitBookingInput) *apperror.ValidationError {
	ve := apperror.NewValidationError()

	if in.CustomerID == 0 {
		ve.Add("customerId", "customerId is required")
	}
	if in.AdultGuests < 1 {
		ve.Add("adultGuests", "at least one adult guest is required")
	}
	if in.ChildGuests < 0 {
		ve.Add("childGuests", "childGuests must not be negative")
	}
	if in.BookingProviderID != nil && strings.TrimSpace(in.ExternalID) == "" {
		ve.Add("externalId", "externalId is required when a booking provider is set")
	}

	arrival := models.NormalizeDate(in.ArrivalDate)
	departure := models.NormalizeDate(in.DepartureDate)
	datesOK := true
	if in.ArrivalDate.IsZero() {
		ve.Add("arrivalDate", "arrivalDate is required")
		datesOK = false
	}
	if in.DepartureDate.IsZero() {
		ve.Add("departureDate", "departureDate is required")
		datesOK = false
	}
	if datesOK && !arrival.Before(departure) {
		ve.Add("departureDate", "departureDate must be after arrivalDate")
		datesOK = false
	}
	if datesOK && departure.Sub(arrival) > MaxRangeDays*24*time.Hour {
		ve.Add("departureDate", "stay is too long")
		datesOK = false
	}

	if len(in.RoomBookings) == 0 {
		ve.Add("roomBookings", "at least one room-night is required")
	}
	covered := make(map[string]bool)
	seen := make(map[nightKey]struct{}, len(in.RoomBookings))
	for i, rb := range in.RoomBookings {
		field := fmt.Sprintf("roomBookings[%d]", i)
		if rb.RoomID == 0 {
			ve.Add(field+".roomId", "roomId is required")
		}
		if !rb.Price.IsPositive() {
			ve.Add(field+".price", "price must be greater than zero")
		}
		if rb.Date.IsZero() {
			ve.Add(field+".date", "date is required")
			continue
		}
		d := models.NormalizeDate(rb.Date)
		if datesOK && (d.Before(arrival) || !d.Before(departure)) {
			ve.Add(field+".date", "date is outside the stay")
		}
		k := nightKey{roomID: rb.RoomID, date: models.DateKey(d)}
		if _, dup := seen[k]; dup {
			ve.Add(field, "room-night is listed twice")
		}
		seen[k] = struct{}{}
		covered[k.date] = true
	}
	if datesOK && len(in.RoomBookings) > 0 {
		for _, d := range models.DatesBetween(arrival, departure) {
			if !covered[models.DateKey(d)] {
				ve.Add("roomBookings", fmt.Sprintf("night %s has no room", models.DateKey(d)))
			}
		}
	}

	validatePersonalized(in.PersonalizedCharges, ve)
	return ve
}

// SubmitBooking validates the draft, re-checks every room-night under lock
// and persists the booking with totals recomputed by the pricing package.
// On any error nothing is written.
func (s *BookingService) SubmitBooking(ctx context.Context, in SubmitBookingInput) (models.Booking, error) {
	if err := validateSubmit(in).OrNil(); err != nil {
		return models.Booking{}, err
	}

	var saved models.Booking
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		ve := apperror.NewValidationError()

		booking := models.Booking{Status: models.BookingStatusActive}
		ownedBefore := make(map[nightKey]bool)
		if in.BookingID != nil {
			existing, err := tx.Booking(ctx, *in.BookingID)
			if err != nil {
				return fmt.Errorf("load booking %d: %w", *in.BookingID, err)
			}
			if existing.HotelID != in.HotelID {
				return fmt.Errorf("booking %d: %w", *in.BookingID, apperror.ErrNotFound)
			}
			if existing.Status == models.BookingStatusCancelled {
				ve.Add("bookingId", "a cancelled booking cannot be edited")
				return ve
			}
			for _, rb := range existing.RoomBookings {
				ownedBefore[nightKey{roomID: rb.RoomID, date: models.DateKey(rb.Date)}] = true
			}
			booking = existing
		}

		customer, err := tx.Customer(ctx, in.CustomerID)
		switch {
		case apperror.IsNotFound(err):
			ve.Add("customerId", "customer not found")
		case err != nil:
			return apperror.Transient("load customer", err)
		case customer.HotelID != 0 && customer.HotelID != in.HotelID:
			ve.Add("customerId", "customer belongs to another hotel")
		}

		rooms, err := fetchRooms(ctx, tx, in.HotelID)
		if err != nil {
			return err
		}
		roomByID := make(map[uint]models.Room, len(rooms))
		for _, r := range rooms {
			roomByID[r.ID] = r
		}
		for i, rb := range in.RoomBookings {
			if _, ok := roomByID[rb.RoomID]; !ok {
				ve.Add(fmt.Sprintf("roomBookings[%d].roomId", i), "room does not belong to this hotel")
			}
		}

		all, err := fetchExtraCharges(ctx, tx, in.HotelID)
		if err != nil {
			return err
		}
		charges := resolveExtraCharges(all, in.ExtraChargeIDs, ve)
		if err := ve.OrNil(); err != nil {
			return err
		}

		nights := make([]models.RoomBooking, 0, len(in.RoomBookings))
		for _, rb := range in.RoomBookings {
			room := roomByID[rb.RoomID]
			nights = append(nights, models.RoomBooking{
				HotelID: in.HotelID,
				RoomID:  rb.RoomID,
				Date:    models.NormalizeDate(rb.Date),
				Price:   rb.Price,
				Room:    &room,
			})
		}
		if err := s.checkNights(ctx, tx, in.HotelID, in.BookingID, nights, ownedBefore); err != nil {
			return err
		}

		personalized := make([]models.PersonalizedCharge, 0, len(in.PersonalizedCharges))
		for _, p := range in.PersonalizedCharges {
			personalized = append(personalized, models.PersonalizedCharge{Name: strings.TrimSpace(p.Name), Amount: p.Amount})
		}

		totals := pricing.ComputeTotals(nights, charges, personalized, in.AdultGuests)
		breakdown, err := json.Marshal(totals.Lines)
		if err != nil {
			return fmt.Errorf("encode charge breakdown: %w", err)
		}

		booking.HotelID = in.HotelID
		booking.CustomerID = in.CustomerID
		booking.BookingProviderID = in.BookingProviderID
		booking.ExternalID = strings.TrimSpace(in.ExternalID)
		booking.ArrivalDate = models.NormalizeDate(in.ArrivalDate)
		booking.DepartureDate = models.NormalizeDate(in.DepartureDate)
		booking.AdultGuests = in.AdultGuests
		booking.ChildGuests = in.ChildGuests
		booking.Subtotal = totals.Subtotal
		booking.Charges = totals.Charges
		booking.Total = totals.Total
		booking.ChargeBreakdown = datatypes.JSON(breakdown)
		booking.Customer = nil
		booking.RoomBookings = nights
		booking.ExtraCharges = charges
		booking.PersonalizedCharges = personalized

		if err := tx.SaveBooking(ctx, &booking); err != nil {
			return err
		}
		saved, err = tx.Booking(ctx, booking.ID)
		return err
	})
	if err != nil {
		return models.Booking{}, classify("submit booking", err)
	}
	return saved, nil
}

// checkNights rejects nights claimed by another booking since the draft was
// loaded, and nights closed for sale unless the booking already held them.
func (s *BookingService) checkNights(
	ctx context.Context,
	tx store.Store,
	hotelID uint,
	editing *uint,
	nights []models.RoomBooking,
	ownedBefore map[nightKey]bool,
) error {
	start, end := nights[0].Date, nights[0].Date
	for _, rb := range nights[1:] {
		if rb.Date.Before(start) {
			start = rb.Date
		}
		if rb.Date.After(end) {
			end = rb.Date
		}
	}

	locked, err := tx.LockRoomNights(ctx, hotelID, start, end)
	if err != nil && !apperror.IsNotFound(err) {
		return apperror.Transient("lock room nights", err)
	}
	flags, err := fetchAvailability(ctx, tx, hotelID, DateRange{Start: start, End: end})
	if err != nil {
		return err
	}
	detector := conflict.New(locked, availability.New(flags), editing)

	var occupied, closed []apperror.Cell
	for _, rb := range nights {
		cell := apperror.Cell{RoomID: rb.RoomID, Date: rb.Date}
		if _, taken := detector.FindExistingBooking(rb.Date, rb.RoomID); taken {
			occupied = append(occupied, cell)
			continue
		}
		if !detector.IsOpen(rb.Date, rb.RoomID) && !ownedBefore[nightKey{roomID: rb.RoomID, date: models.DateKey(rb.Date)}] {
			closed = append(closed, cell)
		}
	}
	if len(occupied) > 0 {
		return apperror.NewConflictError(apperror.ReasonOccupied, occupied...)
	}
	if len(closed) > 0 {
		return apperror.NewConflictError(apperror.ReasonClosed, closed...)
	}
	return nil
}

// classify keeps domain errors as they are and marks everything else as a
// transient failure of op.
func classify(op string, err error) error {
	if _, ok := apperror.AsValidation(err); ok {
		return err
	}
	if _, ok := apperror.AsConflict(err); ok {
		return err
	}
	var te *apperror.TransientError
	if apperror.IsNotFound(err) || errors.As(err, &te) {
		return err
	}
	return apperror.Transient(op, err)
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (models.Booking, error) {
	b, err := s.Store.Booking(ctx, id)
	if err != nil {
		return models.Booking{}, classify("load booking", err)
	}
	return b, nil
}

// Cancel frees the booking's room-nights. Cancelling twice is a no-op.
func (s *BookingService) Cancel(ctx context.Context, id uint) (models.Booking, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if b.Status == models.BookingStatusCancelled {
		return b, nil
	}
	if err := s.Store.CancelBooking(ctx, id); err != nil {
		return models.Booking{}, classify("cancel booking", err)
	}
	return s.GetBooking(ctx, id)
}

// BookingSummary is the read-only view of a persisted booking.
type BookingSummary struct {
	Booking models.Booking `json:"booking"`
	GroupsView
	// StoredTotalsMatch is false when the persisted figures no longer agree
	// with a fresh computation, e.g. after a charge definition changed.
	StoredTotalsMatch bool `json:"storedTotalsMatch"`
}

func (s *BookingService) Summary(ctx context.Context, id uint) (BookingSummary, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return BookingSummary{}, err
	}
	view := buildGroupsView(b.RoomBookings, b.ExtraCharges, b.PersonalizedCharges, b.AdultGuests)
	stored := pricing.Totals{Subtotal: b.Subtotal, Charges: b.Charges, Total: b.Total}
	return BookingSummary{
		Booking:           b,
		GroupsView:        view,
		StoredTotalsMatch: stored.Equal(view.Totals),
	}, nil
}

// Invoice line kinds.
const (
	LineRoom         = "room"
	LineRoomCharge   = "room_charge"
	LineGeneral      = "general"
	LinePersonalized = "personalized"
)

type InvoiceLine struct {
	Kind        string          `json:"kind"`
	RoomID      uint            `json:"roomId,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

type Invoice struct {
	BookingID     uint            `json:"bookingId"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customerName"`
	ArrivalDate   time.Time       `json:"arrivalDate"`
	DepartureDate time.Time       `json:"departureDate"`
	Lines         []InvoiceLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Charges       decimal.Decimal `json:"charges"`
	Total         decimal.Decimal `json:"total"`
}

// Invoice lists one line per room group and per room charge, followed by
// the booking level charges.
func (s *BookingService) Invoice(ctx context.Context, id uint) (Invoice, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	view := buildGroupsView(b.RoomBookings, b.ExtraCharges, b.PersonalizedCharges, b.AdultGuests)

	inv := Invoice{
		BookingID:     b.ID,
		Status:        b.Status,
		ArrivalDate:   b.ArrivalDate,
		DepartureDate: b.DepartureDate,
		Lines:         make([]InvoiceLine, 0),
		Subtotal:      view.Totals.Subtotal,
		Charges:       view.Totals.Charges,
		Total:         view.Totals.Total,
	}
	if b.Customer != nil {
		inv.CustomerName = b.Customer.FullName
	}

	for _, g := range view.Groups {
		inv.Lines = append(inv.Lines, InvoiceLine{
			Kind:        LineRoom,
			RoomID:      g.RoomID,
			Description: g.RoomName,
			Quantity:    len(g.Segments),
			Amount:      g.Subtotal,
		})
		for _, rc := range g.RoomCharges {
			inv.Lines = append(inv.Lines, InvoiceLine{
				Kind:        LineRoomCharge,
				RoomID:      g.RoomID,
				Description: fmt.Sprintf("%s: %s", g.RoomName, rc.Name),
				Quantity:    1,
				Amount:      rc.Total,
			})
		}
	}
	for _, line := range view.GeneralCharges {
		kind := LineGeneral
		if line.Personalized {
			kind = LinePersonalized
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			Kind:        kind,
			Description: line.Name,
			Quantity:    1,
			Amount:      line.Amount,
		})
	}
	return inv, nil
}
