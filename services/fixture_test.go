package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/models"
	"hotel-booking-engine/store/memory"
)

func may(d int) time.Time {
	return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func uintPtr(v uint) *uint { return &v }

type fixture struct {
	store    *memory.Store
	hotel    models.Hotel
	other    models.Hotel
	rooms    []models.Room
	foreign  models.Room
	customer models.Customer
	charges  map[string]models.ExtraCharge
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: memory.New(), charges: make(map[string]models.ExtraCharge)}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	f.hotel = models.Hotel{Name: "Seaside"}
	must(f.store.CreateHotel(ctx, &f.hotel))
	f.other = models.Hotel{Name: "Hillside"}
	must(f.store.CreateHotel(ctx, &f.other))

	for _, name := range []string{"101", "102"} {
		r := models.Room{HotelID: f.hotel.ID, Name: name, Description: "Double room"}
		must(f.store.CreateRoom(ctx, &r))
		f.rooms = append(f.rooms, r)
	}
	f.foreign = models.Room{HotelID: f.other.ID, Name: "H1"}
	must(f.store.CreateRoom(ctx, &f.foreign))

	f.customer = models.Customer{HotelID: f.hotel.ID, FullName: "Ana Lima", Email: "ana@example.com"}
	must(f.store.CreateCustomer(ctx, &f.customer))

	defs := []models.ExtraCharge{
		{Name: "Tax", TypeID: models.ChargeTypePercentage, Amount: dec("0.10")},
		{Name: "Breakfast", TypeID: models.ChargeTypeDaily, Amount: dec("5000")},
		{Name: "Cleaning", TypeID: models.ChargeTypePerRoom, Amount: dec("15000")},
		{Name: "Parking", TypeID: models.ChargeTypeGeneral, Amount: dec("2000")},
		{Name: "City tax", TypeID: models.ChargeTypePerPerson, Amount: dec("1000")},
	}
	for _, c := range defs {
		c.HotelID = f.hotel.ID
		must(f.store.CreateExtraCharge(ctx, &c))
		f.charges[c.Name] = c
	}
	return f
}

func (f *fixture) chargeIDs(names ...string) []uint {
	ids := make([]uint, 0, len(names))
	for _, n := range names {
		ids = append(ids, f.charges[n].ID)
	}
	return ids
}

func night(roomID uint, d int, price string) models.RoomBooking {
	return models.RoomBooking{RoomID: roomID, Date: may(d), Price: dec(price)}
}

// validInput books room 101 on May 1-2 and room 102 on May 2 with every
// charge applied: subtotal 300000, charges 79500, total 379500.
func (f *fixture) validInput() SubmitBookingInput {
	return SubmitBookingInput{
		HotelID:       f.hotel.ID,
		CustomerID:    f.customer.ID,
		ArrivalDate:   may(1),
		DepartureDate: may(3),
		AdultGuests:   2,
		RoomBookings: []models.RoomBooking{
			night(f.rooms[0].ID, 1, "100000"),
			night(f.rooms[0].ID, 2, "120000"),
			night(f.rooms[1].ID, 2, "80000"),
		},
		ExtraChargeIDs:      f.chargeIDs("Tax", "Breakfast", "Cleaning", "Parking", "City tax"),
		PersonalizedCharges: []models.PersonalizedCharge{{Name: "Late checkout", Amount: dec("500")}},
	}
}
