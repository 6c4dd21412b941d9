package selection

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/engine/availability"
	"hotel-booking-engine/engine/conflict"
	"hotel-booking-engine/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func uintPtr(v uint) *uint { return &v }

var testRooms = []models.Room{
	{ID: 1, HotelID: 1, Name: "101"},
	{ID: 2, HotelID: 1, Name: "102"},
	{ID: 3, HotelID: 1, Name: "103"},
}

func rangeDays(from, to int) []time.Time {
	var out []time.Time
	for d := from; d <= to; d++ {
		out = append(out, day(d))
	}
	return out
}

// newGrid builds a grid over Jan 1-5 where booking 10 owns room 1 on Jan 2
// and room 3 is closed on Jan 4.
func newGrid(t *testing.T, editing *uint) *Grid {
	t.Helper()
	existing := []models.RoomBooking{
		{HotelID: 1, RoomID: 1, Date: day(2), BookingID: uintPtr(10), Price: decimal.NewFromInt(100)},
	}
	idx := availability.New([]models.RoomAvailability{{RoomID: 3, Date: day(4), IsOpen: false}})
	return New(Config{
		HotelID:  1,
		Rooms:    testRooms,
		Dates:    rangeDays(1, 5),
		Detector: conflict.New(existing, idx, editing),
	})
}

func mustApply(t *testing.T, g *Grid, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		if err := g.Apply(ev); err != nil {
			t.Fatalf("apply %s: %v", Name(ev), err)
		}
	}
}

func assertState(t *testing.T, g *Grid, want State) {
	t.Helper()
	if g.State() != want {
		t.Fatalf("state = %s, want %s", g.State(), want)
	}
}

func TestSingleClickOpensPriceDialogAndCommits(t *testing.T) {
	g := newGrid(t, nil)

	mustApply(t, g, Click{Date: day(1), RoomID: 2})
	assertState(t, g, PendingPriceConfirmation)
	if len(g.Pending()) != 1 {
		t.Fatalf("expected one pending cell, got %d", len(g.Pending()))
	}

	mustApply(t, g, SubmitPrice{Input: "120000"})
	assertState(t, g, Idle)

	committed := g.Committed()
	if len(committed) != 1 {
		t.Fatalf("expected one committed cell, got %d", len(committed))
	}
	if !committed[0].Price.Equal(decimal.NewFromInt(120000)) || committed[0].BookingID != nil {
		t.Errorf("unexpected draft %+v", committed[0])
	}
	if committed[0].Room == nil || committed[0].Room.Name != "102" {
		t.Errorf("room snapshot missing: %+v", committed[0].Room)
	}
	if len(g.Pending()) != 0 {
		t.Error("pending must be cleared after commit")
	}
}

func TestSubmitPriceValidation(t *testing.T) {
	for _, input := range []string{"", "  ", "abc", "0", "-5"} {
		t.Run(input, func(t *testing.T) {
			g := newGrid(t, nil)
			mustApply(t, g, Click{Date: day(1), RoomID: 2})

			err := g.Apply(SubmitPrice{Input: input})
			if _, ok := apperror.AsValidation(err); !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			assertState(t, g, PendingPriceConfirmation)
			if len(g.Committed()) != 0 || len(g.Pending()) != 1 {
				t.Error("a rejected price must not change the selection")
			}
		})
	}
}

func TestCancelSingleSelectionClearsPending(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, Click{Date: day(1), RoomID: 2}, Cancel{})

	assertState(t, g, Idle)
	if len(g.Pending()) != 0 {
		t.Error("pending must be cleared")
	}
}

func TestClickOnOtherBookingIsRejected(t *testing.T) {
	g := newGrid(t, nil)

	err := g.Apply(Click{Date: day(2), RoomID: 1})
	ce, ok := apperror.AsConflict(err)
	if !ok || ce.Reason != apperror.ReasonOccupied {
		t.Fatalf("expected occupied conflict, got %v", err)
	}
	assertState(t, g, Idle)
	if len(g.Pending()) != 0 {
		t.Error("rejected click must not change state")
	}
}

func TestClickOnOwnNightWhileEditingIsAllowed(t *testing.T) {
	g := newGrid(t, uintPtr(10))

	mustApply(t, g, Click{Date: day(2), RoomID: 1})
	assertState(t, g, PendingPriceConfirmation)

	mustApply(t, g, SubmitPrice{Input: "150"})
	committed := g.Committed()
	if len(committed) != 1 || committed[0].BookingID == nil || *committed[0].BookingID != 10 {
		t.Fatalf("expected draft owned by booking 10, got %+v", committed)
	}
}

func TestClosedCellCannotBePending(t *testing.T) {
	g := newGrid(t, nil)

	err := g.Apply(Click{Date: day(4), RoomID: 3})
	ce, ok := apperror.AsConflict(err)
	if !ok || ce.Reason != apperror.ReasonClosed {
		t.Fatalf("expected closed conflict, got %v", err)
	}

	mustApply(t, g, ToggleMultiSelect{On: true}, HeaderClick{RoomID: 3})
	for _, c := range g.Pending() {
		if c.RoomID == 3 && c.Date.Equal(day(4)) {
			t.Fatal("closed cell was bulk selected")
		}
	}
	if len(g.Pending()) != 4 {
		t.Errorf("expected 4 clickable dates for room 3, got %d", len(g.Pending()))
	}
}

func TestRevalidateDropsCellsClosedAfterSelection(t *testing.T) {
	existing := []models.RoomBooking{}
	idx := availability.New(nil)
	g := New(Config{
		HotelID:  1,
		Rooms:    testRooms,
		Dates:    rangeDays(1, 5),
		Detector: conflict.New(existing, idx, nil),
	})

	t.Run("single selection falls back to idle", func(t *testing.T) {
		mustApply(t, g, Click{Date: day(1), RoomID: 1})
		assertState(t, g, PendingPriceConfirmation)

		idx.Merge(false, []availability.Cell{{Date: day(1), RoomID: 1}})
		if n := g.Revalidate(); n != 1 {
			t.Fatalf("dropped = %d, want 1", n)
		}
		assertState(t, g, Idle)
		if got := g.Status(day(1), 1); got != StatusClosed {
			t.Errorf("status = %s, want %s", got, StatusClosed)
		}
	})

	t.Run("explicit multi-select keeps the mode and the open cells", func(t *testing.T) {
		mustApply(t, g, ToggleMultiSelect{On: true},
			Click{Date: day(2), RoomID: 2}, Click{Date: day(3), RoomID: 2})

		idx.Merge(false, []availability.Cell{{Date: day(2), RoomID: 2}})
		if n := g.Revalidate(); n != 1 {
			t.Fatalf("dropped = %d, want 1", n)
		}
		assertState(t, g, MultiSelecting)
		if len(g.Pending()) != 1 {
			t.Errorf("pending = %d, want 1", len(g.Pending()))
		}

		idx.Merge(false, []availability.Cell{{Date: day(3), RoomID: 2}})
		g.Revalidate()
		assertState(t, g, MultiSelecting)
		if len(g.Pending()) != 0 {
			t.Errorf("pending = %d, want 0", len(g.Pending()))
		}
	})

	if n := g.Revalidate(); n != 0 {
		t.Errorf("second pass dropped %d", n)
	}
}

func TestUnknownRoom(t *testing.T) {
	g := newGrid(t, nil)
	if err := g.Apply(Click{Date: day(1), RoomID: 99}); !errors.Is(err, ErrUnknownRoom) {
		t.Fatalf("expected unknown room, got %v", err)
	}
}

func TestMultiSelectToggleAndCommit(t *testing.T) {
	g := newGrid(t, nil)

	mustApply(t, g,
		ToggleMultiSelect{On: true},
		Click{Date: day(1), RoomID: 1},
		Click{Date: day(3), RoomID: 1},
		Click{Date: day(1), RoomID: 2},
		Click{Date: day(1), RoomID: 2}, // toggled off again
	)
	assertState(t, g, MultiSelecting)
	if len(g.Pending()) != 2 {
		t.Fatalf("expected 2 pending cells, got %d", len(g.Pending()))
	}

	mustApply(t, g, OpenPriceDialog{})
	assertState(t, g, PendingPriceConfirmation)

	// cancel keeps the selection in explicit multi-select mode
	mustApply(t, g, Cancel{})
	assertState(t, g, MultiSelecting)
	if len(g.Pending()) != 2 {
		t.Fatal("cancel must keep pending cells in explicit multi-select")
	}

	mustApply(t, g, OpenPriceDialog{}, SubmitPrice{Input: "90000"})
	assertState(t, g, Idle)
	if g.MultiSelect() {
		t.Error("explicit multi-select must be switched off after commit")
	}
	committed := g.Committed()
	if len(committed) != 2 {
		t.Fatalf("expected 2 committed cells, got %d", len(committed))
	}
	for _, rb := range committed {
		if !rb.Price.Equal(decimal.NewFromInt(90000)) {
			t.Errorf("expected shared price, got %s", rb.Price)
		}
	}
}

func TestOpenPriceDialogNeedsPending(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, ToggleMultiSelect{On: true})
	if err := g.Apply(OpenPriceDialog{}); !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ignored, got %v", err)
	}
}

func TestModifierDrivenSelection(t *testing.T) {
	g := newGrid(t, nil)

	mustApply(t, g, ModifierDown{})
	assertState(t, g, MultiSelecting)

	mustApply(t, g, Click{Date: day(1), RoomID: 1}, Click{Date: day(1), RoomID: 2}, ModifierUp{})
	assertState(t, g, PendingPriceConfirmation)

	// modifier driven: cancel drops the selection
	mustApply(t, g, Cancel{})
	assertState(t, g, Idle)
	if len(g.Pending()) != 0 {
		t.Error("cancel after modifier selection must clear pending")
	}
}

func TestModifierUpWithoutSelectionReturnsToIdle(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, ModifierDown{}, ModifierUp{})
	assertState(t, g, Idle)
}

func TestModifierDownAfterSingleClickKeepsCell(t *testing.T) {
	g := newGrid(t, nil)

	mustApply(t, g, Click{Date: day(1), RoomID: 1}, ModifierDown{})
	assertState(t, g, MultiSelecting)

	mustApply(t, g, Click{Date: day(3), RoomID: 1}, ModifierUp{})
	assertState(t, g, PendingPriceConfirmation)
	if len(g.Pending()) != 2 {
		t.Fatalf("expected 2 pending cells, got %d", len(g.Pending()))
	}
}

func TestModifierUpKeepsExplicitMultiSelect(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, ToggleMultiSelect{On: true}, ModifierDown{}, Click{Date: day(1), RoomID: 1}, ModifierUp{})
	assertState(t, g, MultiSelecting)
}

func TestHeaderClickSelectsThenDeselectsRoom(t *testing.T) {
	g := newGrid(t, nil)

	mustApply(t, g, HeaderClick{RoomID: 1})
	assertState(t, g, MultiSelecting)
	// Jan 2 belongs to booking 10
	if len(g.Pending()) != 4 {
		t.Fatalf("expected 4 clickable dates, got %d", len(g.Pending()))
	}

	mustApply(t, g, HeaderClick{RoomID: 1})
	if len(g.Pending()) != 0 {
		t.Fatalf("second header click must deselect all, got %d", len(g.Pending()))
	}

	mustApply(t, g, Click{Date: day(1), RoomID: 1}, HeaderClick{RoomID: 1})
	if len(g.Pending()) != 4 {
		t.Fatalf("partial selection must be completed, got %d", len(g.Pending()))
	}
}

func TestDeselectRequiresConfirmationAndUndoRestores(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, Click{Date: day(1), RoomID: 2}, SubmitPrice{Input: "100"})

	mustApply(t, g, Click{Date: day(1), RoomID: 2})
	assertState(t, g, ConfirmingDeselect)
	if g.DeselectTarget() == nil {
		t.Fatal("expected deselect target")
	}

	mustApply(t, g, Cancel{})
	assertState(t, g, Idle)
	if len(g.Committed()) != 1 {
		t.Fatal("cancelled deselect must keep the cell")
	}

	mustApply(t, g, Click{Date: day(1), RoomID: 2}, ConfirmDeselect{})
	assertState(t, g, Idle)
	if len(g.Committed()) != 0 {
		t.Fatal("confirmed deselect must remove the cell")
	}

	mustApply(t, g, UndoLastCommit{})
	if len(g.Committed()) != 1 {
		t.Fatal("undo must restore the removed cell")
	}
	if err := g.Apply(UndoLastCommit{}); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo is one step deep, got %v", err)
	}
}

func TestUndoRemovesLastCommitBatch(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, Click{Date: day(1), RoomID: 2}, SubmitPrice{Input: "100"})
	mustApply(t, g,
		ToggleMultiSelect{On: true},
		Click{Date: day(3), RoomID: 2},
		Click{Date: day(4), RoomID: 2},
		OpenPriceDialog{},
		SubmitPrice{Input: "200"},
	)
	if len(g.Committed()) != 3 {
		t.Fatalf("expected 3 committed cells, got %d", len(g.Committed()))
	}

	mustApply(t, g, UndoLastCommit{})
	committed := g.Committed()
	if len(committed) != 1 || !committed[0].Date.Equal(day(1)) {
		t.Fatalf("undo must remove the whole last batch, got %+v", committed)
	}
}

func TestUndoDepth(t *testing.T) {
	g := newGrid(t, nil)
	g.undoDepth = 2
	mustApply(t, g,
		Click{Date: day(1), RoomID: 2}, SubmitPrice{Input: "1"},
		Click{Date: day(2), RoomID: 2}, SubmitPrice{Input: "1"},
		Click{Date: day(3), RoomID: 2}, SubmitPrice{Input: "1"},
		UndoLastCommit{}, UndoLastCommit{},
	)
	if len(g.Committed()) != 1 {
		t.Fatalf("expected 1 committed cell after two undos, got %d", len(g.Committed()))
	}
	if g.CanUndo() {
		t.Error("history must be capped at depth 2")
	}
}

func TestDiscardAndReload(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, Click{Date: day(1), RoomID: 2}, SubmitPrice{Input: "1"})
	mustApply(t, g, ToggleMultiSelect{On: true}, Click{Date: day(3), RoomID: 2}, Discard{})

	assertState(t, g, Idle)
	if len(g.Pending()) != 0 || g.MultiSelect() {
		t.Error("discard must drop uncommitted state")
	}
	if len(g.Committed()) != 1 {
		t.Error("discard keeps committed drafts")
	}

	mustApply(t, g, ToggleMultiSelect{On: true}, Click{Date: day(3), RoomID: 2})
	g.Reload(testRooms, rangeDays(6, 10), conflict.New(nil, nil, nil))
	assertState(t, g, Idle)
	if len(g.Pending()) != 0 {
		t.Error("reload must drop pending cells")
	}
}

func TestStatus(t *testing.T) {
	g := newGrid(t, nil)
	mustApply(t, g, Click{Date: day(1), RoomID: 2}, SubmitPrice{Input: "1"})
	mustApply(t, g, ToggleMultiSelect{On: true}, Click{Date: day(3), RoomID: 2})

	cases := map[string]string{
		StatusCommitted: g.Status(day(1), 2),
		StatusPending:   g.Status(day(3), 2),
		StatusOccupied:  g.Status(day(2), 1),
		StatusClosed:    g.Status(day(4), 3),
		StatusFree:      g.Status(day(5), 3),
	}
	for want, got := range cases {
		if got != want {
			t.Errorf("status = %s, want %s", got, want)
		}
	}
}

// Random event streams must never produce two drafts on one room-night, a
// draft on another booking's night, or a draft on a closed night.
func TestRandomEventsNeverDoubleBook(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	prices := []string{"100", "", "abc", "0", "250.50"}

	for run := 0; run < 200; run++ {
		g := newGrid(t, nil)
		for step := 0; step < 60; step++ {
			var ev Event
			switch rnd.Intn(11) {
			case 0, 1, 2:
				ev = Click{Date: day(1 + rnd.Intn(5)), RoomID: uint(1 + rnd.Intn(3))}
			case 3:
				ev = ModifierDown{}
			case 4:
				ev = ModifierUp{}
			case 5:
				ev = ToggleMultiSelect{On: rnd.Intn(2) == 0}
			case 6:
				ev = SubmitPrice{Input: prices[rnd.Intn(len(prices))]}
			case 7:
				ev = Cancel{}
			case 8:
				ev = HeaderClick{RoomID: uint(1 + rnd.Intn(3))}
			case 9:
				ev = ConfirmDeselect{}
			default:
				ev = UndoLastCommit{}
			}
			_ = g.Apply(ev)

			seen := make(map[cellKey]bool)
			for _, rb := range g.Committed() {
				key := keyOf(rb.Date, rb.RoomID)
				if seen[key] {
					t.Fatalf("run %d step %d: double booked %+v", run, step, key)
				}
				seen[key] = true
				if rb.RoomID == 1 && rb.Date.Equal(day(2)) {
					t.Fatalf("run %d step %d: claimed booking 10's night", run, step)
				}
				if rb.RoomID == 3 && rb.Date.Equal(day(4)) {
					t.Fatalf("run %d step %d: claimed a closed night", run, step)
				}
			}
			for _, c := range g.Pending() {
				if c.RoomID == 3 && c.Date.Equal(day(4)) {
					t.Fatalf("run %d step %d: closed night pending", run, step)
				}
			}
		}
	}
}
