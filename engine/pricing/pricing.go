// Package pricing holds the one charge rule table used by every caller that
// shows or stores booking totals: live grid previews, summaries, invoices and
// the submit path. Callers must not reimplement the dispatch.
package pricing

import (
	"github.com/shopspring/decimal"

	"hotel-booking-engine/models"
)

// Basis is what a charge rule is evaluated against.
type Basis struct {
	Subtotal decimal.Decimal
	Nights   int // room-booking rows, not distinct dates
	Rooms    int // distinct rooms
	Guests   int // adult guests
}

// BasisOf derives the basis of a set of room-bookings.
func BasisOf(roomBookings []models.RoomBooking, guestCount int) Basis {
	subtotal := decimal.Zero
	rooms := make(map[uint]struct{})
	for _, rb := range roomBookings {
		subtotal = subtotal.Add(rb.Price)
		rooms[rb.RoomID] = struct{}{}
	}
	if guestCount < 0 {
		guestCount = 0
	}
	return Basis{
		Subtotal: subtotal,
		Nights:   len(roomBookings),
		Rooms:    len(rooms),
		Guests:   guestCount,
	}
}

// ChargeAmount evaluates a single extra charge. Custom charges are never
// evaluated here (they arrive as personalized charges) and report false.
func ChargeAmount(c models.ExtraCharge, b Basis) (decimal.Decimal, bool) {
	switch c.TypeID {
	case models.ChargeTypePercentage:
		return b.Subtotal.Mul(c.Amount), true
	case models.ChargeTypeDaily:
		return c.Amount.Mul(decimal.NewFromInt(int64(b.Nights))), true
	case models.ChargeTypePerRoom:
		return c.Amount.Mul(decimal.NewFromInt(int64(b.Rooms))), true
	case models.ChargeTypeGeneral:
		return c.Amount, true
	case models.ChargeTypePerPerson:
		return c.Amount.Mul(decimal.NewFromInt(int64(b.Guests))), true
	}
	return decimal.Zero, false
}

// ChargeLine is one evaluated charge of a booking.
type ChargeLine struct {
	ExtraChargeID uint              `json:"extraChargeId,omitempty"`
	Name          string            `json:"name"`
	TypeID        models.ChargeType `json:"typeId,omitempty"`
	Personalized  bool              `json:"personalized,omitempty"`
	Amount        decimal.Decimal   `json:"amount"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Charges  decimal.Decimal `json:"charges"`
	Total    decimal.Decimal `json:"total"`
	Lines    []ChargeLine    `json:"lines"`
}

// Equal compares the money figures of two totals.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) && t.Charges.Equal(o.Charges) && t.Total.Equal(o.Total)
}

// ComputeTotals prices a booking:
//
//	subtotal = sum of room-night prices
//	charges  = sum of extra-charge contributions + sum of personalized amounts
//	total    = subtotal + charges
func ComputeTotals(
	roomBookings []models.RoomBooking,
	extraCharges []models.ExtraCharge,
	personalized []models.PersonalizedCharge,
	guestCount int,
) Totals {
	basis := BasisOf(roomBookings, guestCount)

	charges := decimal.Zero
	lines := make([]ChargeLine, 0, len(extraCharges)+len(personalized))
	for _, c := range extraCharges {
		amount, ok := ChargeAmount(c, basis)
		if !ok {
			continue
		}
		charges = charges.Add(amount)
		lines = append(lines, ChargeLine{
			ExtraChargeID: c.ID,
			Name:          c.Name,
			TypeID:        c.TypeID,
			Amount:        amount,
		})
	}
	for _, p := range personalized {
		charges = charges.Add(p.Amount)
		lines = append(lines, ChargeLine{Name: p.Name, Personalized: true, Amount: p.Amount})
	}

	return Totals{
		Subtotal: basis.Subtotal,
		Charges:  charges,
		Total:    basis.Subtotal.Add(charges),
		Lines:    lines,
	}
}
