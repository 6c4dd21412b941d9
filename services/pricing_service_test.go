package services

import (
	"context"
	"testing"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/models"
)

func TestPreviewUsesHotelCharges(t *testing.T) {
	f := newFixture(t)
	svc := NewPricingService(f.store)
	in := f.validInput()

	totals, err := svc.Preview(context.Background(), f.hotel.ID, PricingDraft{
		RoomBookings:        in.RoomBookings,
		ExtraChargeIDs:      in.ExtraChargeIDs,
		PersonalizedCharges: in.PersonalizedCharges,
		AdultGuests:         in.AdultGuests,
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !totals.Total.Equal(dec("379500")) {
		t.Errorf("unexpected total %s", totals.Total)
	}

	// charges of another hotel are not visible
	_, err = svc.Preview(context.Background(), f.other.ID, PricingDraft{
		RoomBookings:   in.RoomBookings,
		ExtraChargeIDs: in.ExtraChargeIDs,
	})
	if _, ok := apperror.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGroupsAttachRoomNames(t *testing.T) {
	f := newFixture(t)
	svc := NewPricingService(f.store)
	in := f.validInput()

	view, err := svc.Groups(context.Background(), f.hotel.ID, PricingDraft{
		RoomBookings:   []models.RoomBooking{in.RoomBookings[2], in.RoomBookings[1], in.RoomBookings[0]},
		ExtraChargeIDs: f.chargeIDs("Cleaning", "Parking"),
		AdultGuests:    2,
	})
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	if len(view.Groups) != 2 || view.Groups[0].RoomName != "101" || view.Groups[1].RoomName != "102" {
		t.Fatalf("unexpected groups %+v", view.Groups)
	}
	if !view.Groups[0].Segments[0].Date.Equal(may(1)) {
		t.Error("segments must be ordered by date")
	}
	if len(view.Groups[0].RoomCharges) != 1 || len(view.GeneralCharges) != 1 {
		t.Errorf("cleaning is per room, parking is general: %+v / %+v", view.Groups[0].RoomCharges, view.GeneralCharges)
	}
}

func TestUpsertAvailabilityValidatesRooms(t *testing.T) {
	f := newFixture(t)
	svc := NewAvailabilityService(f.store)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, f.hotel.ID, UpsertAvailabilityInput{
		Requests: []availability.Cell{{RoomID: f.foreign.ID, Date: may(1)}},
	})
	if _, ok := apperror.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Upsert(ctx, f.hotel.ID, UpsertAvailabilityInput{}); err == nil {
		t.Fatal("empty request must be rejected")
	}

	cells, err := svc.Upsert(ctx, f.hotel.ID, UpsertAvailabilityInput{
		Requests: []availability.Cell{{RoomID: f.rooms[0].ID, Date: may(1)}, {RoomID: f.rooms[1].ID, Date: may(1)}},
	})
	if err != nil || len(cells) != 2 {
		t.Fatalf("upsert: %v %v", cells, err)
	}

	dr, _ := NewDateRange(may(1), may(1))
	flags, err := svc.Range(ctx, f.hotel.ID, dr)
	if err != nil || len(flags) != 2 || flags[0].IsOpen {
		t.Fatalf("unexpected flags %+v %v", flags, err)
	}
}

func TestParseDateRange(t *testing.T) {
	if _, err := ParseDateRange("2025-05-03", "2025-05-01"); err == nil {
		t.Error("reversed range must be rejected")
	}
	if _, err := ParseDateRange("05/01/2025", "2025-05-01"); err == nil {
		t.Error("bad format must be rejected")
	}
	if _, err := ParseDateRange("2025-01-01", "2026-06-01"); err == nil {
		t.Error("overlong range must be rejected")
	}
	dr, err := ParseDateRange("2025-05-01", "2025-05-01")
	if err != nil || len(dr.Dates()) != 1 {
		t.Fatalf("single day range: %+v %v", dr, err)
	}
}
