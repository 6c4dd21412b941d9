package availability

import (
	"testing"
	"time"

	"hotel-booking-engine/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestIsOpenDefaultsToTrue(t *testing.T) {
	idx := New(nil)
	if !idx.IsOpen(day(1), 7) {
		t.Error("room without records must be open")
	}

	var nilIdx *Index
	if !nilIdx.IsOpen(day(1), 7) {
		t.Error("nil index must report open")
	}
}

func TestIsOpenUsesRecords(t *testing.T) {
	idx := New([]models.RoomAvailability{
		{RoomID: 1, Date: day(2), IsOpen: false},
		{RoomID: 2, Date: day(2), IsOpen: true},
		// clock part and zone must not matter
		{RoomID: 3, Date: time.Date(2025, 1, 3, 15, 30, 0, 0, time.FixedZone("X", 7*3600)), IsOpen: false},
	})

	cases := []struct {
		name   string
		date   time.Time
		roomID uint
		want   bool
	}{
		{"closed record", day(2), 1, false},
		{"open record", day(2), 2, true},
		{"other date", day(3), 1, true},
		{"zoned record", day(3), 3, false},
		{"unknown room", day(2), 9, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := idx.IsOpen(tc.date, tc.roomID); got != tc.want {
				t.Errorf("IsOpen(%s, %d) = %v, want %v", models.DateKey(tc.date), tc.roomID, got, tc.want)
			}
		})
	}
}

func TestMergeKeepsOtherRoomsInBucket(t *testing.T) {
	idx := New([]models.RoomAvailability{
		{RoomID: 1, Date: day(5), IsOpen: false},
		{RoomID: 2, Date: day(5), IsOpen: false},
	})

	idx.Merge(true, []Cell{{RoomID: 1, Date: day(5)}})
	idx.Merge(false, []Cell{{RoomID: 4, Date: day(6)}})

	if !idx.IsOpen(day(5), 1) {
		t.Error("room 1 should be reopened")
	}
	if idx.IsOpen(day(5), 2) {
		t.Error("room 2 must stay closed after merging room 1")
	}
	if idx.IsOpen(day(6), 4) {
		t.Error("room 4 should be closed on day 6")
	}

	closed := idx.Closed()
	if len(closed) != 2 {
		t.Fatalf("expected 2 closed cells, got %d", len(closed))
	}
	if closed[0].RoomID != 2 || !closed[0].Date.Equal(day(5)) {
		t.Errorf("unexpected first closed cell %+v", closed[0])
	}
	if closed[1].RoomID != 4 || !closed[1].Date.Equal(day(6)) {
		t.Errorf("unexpected second closed cell %+v", closed[1])
	}
}
