package grouping

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func night(roomID uint, d int, price string) models.RoomBooking {
	return models.RoomBooking{
		RoomID: roomID,
		Date:   day(d),
		Price:  dec(price),
		Room:   &models.Room{ID: roomID, Name: map[uint]string{1: "101", 2: "102", 3: "201"}[roomID], Description: "Double"},
	}
}

func TestGroupOrdersGroupsByEarliestNight(t *testing.T) {
	rbs := []models.RoomBooking{
		night(1, 6, "100"),
		night(1, 5, "100"),
		night(2, 3, "200"),
		night(2, 2, "200"),
	}

	got := Group(rbs, nil)

	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].RoomName != "102" || got[1].RoomName != "101" {
		t.Errorf("expected room 102 first, got %s then %s", got[0].RoomName, got[1].RoomName)
	}
	for _, g := range got {
		for i := 1; i < len(g.Segments); i++ {
			if g.Segments[i].Date.Before(g.Segments[i-1].Date) {
				t.Errorf("segments of %s not sorted", g.RoomName)
			}
		}
	}
	if !got[0].Subtotal.Equal(dec("400")) {
		t.Errorf("room 102 subtotal = %s", got[0].Subtotal)
	}
}

func TestGroupRoomCharges(t *testing.T) {
	rbs := []models.RoomBooking{
		night(1, 1, "100000"),
		night(1, 2, "100000"),
		night(2, 1, "50000"),
	}
	charges := []models.ExtraCharge{
		{Name: "Tax", TypeID: models.ChargeTypePercentage, Amount: dec("0.10")},
		{Name: "Breakfast", TypeID: models.ChargeTypeDaily, Amount: dec("5000")},
		{Name: "Cleaning", TypeID: models.ChargeTypePerRoom, Amount: dec("15000")},
		{Name: "Parking", TypeID: models.ChargeTypeGeneral, Amount: dec("8000")},
		{Name: "City tax", TypeID: models.ChargeTypePerPerson, Amount: dec("2000")},
		{Name: "Custom", TypeID: models.ChargeTypeCustom, Amount: dec("1")},
	}

	got := Group(rbs, charges)

	want := map[string][]string{
		"101": {"20000", "10000", "15000"},
		"102": {"5000", "5000", "15000"},
	}
	for _, g := range got {
		exp := want[g.RoomName]
		if len(g.RoomCharges) != len(exp) {
			t.Fatalf("%s: expected %d room charges, got %d", g.RoomName, len(exp), len(g.RoomCharges))
		}
		for i, rc := range g.RoomCharges {
			if !rc.Total.Equal(dec(exp[i])) {
				t.Errorf("%s %s = %s, want %s", g.RoomName, rc.Name, rc.Total, exp[i])
			}
		}
	}

	general := GeneralCharges(rbs, charges, []models.PersonalizedCharge{{Name: "Minibar", Amount: dec("700")}}, 2)
	if len(general) != 3 {
		t.Fatalf("expected 3 general lines, got %d", len(general))
	}
	if !general[1].Amount.Equal(dec("4000")) || !general[2].Personalized {
		t.Errorf("unexpected general lines %+v", general)
	}
}

func TestGroupIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	rbs := []models.RoomBooking{
		night(3, 9, "10"),
		night(1, 4, "20"),
		night(3, 7, "30"),
	}
	charges := []models.ExtraCharge{{Name: "Tax", TypeID: models.ChargeTypePercentage, Amount: dec("0.05")}}
	before := make([]models.RoomBooking, len(rbs))
	copy(before, rbs)

	first := Group(rbs, charges)
	second := Group(rbs, charges)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("group output differs between calls")
	}
	if !reflect.DeepEqual(before, rbs) {
		t.Fatal("input was reordered or modified")
	}
}

func TestSortResultsPutsEmptyGroupsLast(t *testing.T) {
	results := []Result{
		{RoomID: 9},
		{RoomID: 2, Segments: []Segment{{Date: day(5)}}},
		{RoomID: 1, Segments: []Segment{{Date: day(2)}}},
	}

	SortResults(results)

	ids := []uint{results[0].RoomID, results[1].RoomID, results[2].RoomID}
	if !reflect.DeepEqual(ids, []uint{1, 2, 9}) {
		t.Errorf("unexpected order %v", ids)
	}
}

func TestGroupFallsBackToRoomID(t *testing.T) {
	got := Group([]models.RoomBooking{{RoomID: 42, Date: day(1), Price: dec("1")}}, nil)
	if got[0].RoomName != "Room 42" {
		t.Errorf("unexpected fallback name %q", got[0].RoomName)
	}
}
