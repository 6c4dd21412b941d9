package grouping

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/engine/pricing"
	"hotel-booking-engine/models"
)

type Segment struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

type RoomCharge struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Result is the read-only view of one room's nights in a booking.
type Result struct {
	RoomID          uint            `json:"roomId"`
	RoomName        string          `json:"roomName"`
	RoomDescription string          `json:"roomDescription"`
	Segments        []Segment       `json:"segments"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	RoomCharges     []RoomCharge    `json:"roomCharges"`
}

func (r Result) minDate() (time.Time, bool) {
	if len(r.Segments) == 0 {
		return time.Time{}, false
	}
	return r.Segments[0].Date, true
}

// Group partitions room-bookings by room, orders each room's nights by date
// and attaches the room's share of the per-room charges. General, per-person
// and custom charges stay with the booking and are not split. Groups come
// back ordered by their earliest night. The inputs are not modified.
func Group(roomBookings []models.RoomBooking, extraCharges []models.ExtraCharge) []Result {
	byRoom := make(map[uint]*Result)
	order := make([]uint, 0)

	for _, rb := range roomBookings {
		g, ok := byRoom[rb.RoomID]
		if !ok {
			g = &Result{RoomID: rb.RoomID, RoomName: fmt.Sprintf("Room %d", rb.RoomID)}
			byRoom[rb.RoomID] = g
			order = append(order, rb.RoomID)
		}
		if rb.Room != nil {
			g.RoomName = rb.Room.Name
			g.RoomDescription = rb.Room.Description
		}
		g.Segments = append(g.Segments, Segment{Date: models.NormalizeDate(rb.Date), Price: rb.Price})
	}

	results := make([]Result, 0, len(order))
	for _, roomID := range order {
		g := byRoom[roomID]
		sort.SliceStable(g.Segments, func(a, b int) bool {
			return g.Segments[a].Date.Before(g.Segments[b].Date)
		})

		g.Subtotal = decimal.Zero
		for _, s := range g.Segments {
			g.Subtotal = g.Subtotal.Add(s.Price)
		}

		basis := pricing.Basis{Subtotal: g.Subtotal, Nights: len(g.Segments), Rooms: 1}
		g.RoomCharges = make([]RoomCharge, 0, len(extraCharges))
		for _, c := range extraCharges {
			if c.TypeID.IsGeneralBucket() {
				continue
			}
			amount, ok := pricing.ChargeAmount(c, basis)
			if !ok {
				continue
			}
			g.RoomCharges = append(g.RoomCharges, RoomCharge{Name: c.Name, Total: amount})
		}
		results = append(results, *g)
	}

	SortResults(results)
	return results
}

// SortResults orders groups by earliest night; groups without nights go last.
func SortResults(results []Result) {
	sort.SliceStable(results, func(a, b int) bool {
		da, okA := results[a].minDate()
		db, okB := results[b].minDate()
		switch {
		case okA && !okB:
			return true
		case !okA:
			return false
		case !da.Equal(db):
			return da.Before(db)
		}
		return results[a].RoomID < results[b].RoomID
	})
}

// GeneralCharges returns the booking level lines that Group leaves out.
func GeneralCharges(
	roomBookings []models.RoomBooking,
	extraCharges []models.ExtraCharge,
	personalized []models.PersonalizedCharge,
	guestCount int,
) []pricing.ChargeLine {
	general := make([]models.ExtraCharge, 0, len(extraCharges))
	for _, c := range extraCharges {
		if c.TypeID.IsGeneralBucket() {
			general = append(general, c)
		}
	}
	return pricing.ComputeTotals(roomBookings, general, personalized, guestCount).Lines
}
