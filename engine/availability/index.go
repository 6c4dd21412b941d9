package availability

import (
	"sort"
	"time"

	"hotel-booking-engine/models"
)

// Index answers open/closed lookups for room-nights. Room-nights without an
// explicit record are open.
type Index struct {
	byDate map[string]map[uint]bool
}

// New builds an index from the records of one fetched range. A later record
// for the same room-night wins.
func New(records []models.RoomAvailability) *Index {
	idx := &Index{byDate: make(map[string]map[uint]bool)}
	for _, r := range records {
		idx.set(r.Date, r.RoomID, r.IsOpen)
	}
	return idx
}

func (i *Index) set(date time.Time, roomID uint, isOpen bool) {
	key := models.DateKey(date)
	bucket, ok := i.byDate[key]
	if !ok {
		bucket = make(map[uint]bool)
		i.byDate[key] = bucket
	}
	bucket[roomID] = isOpen
}

func (i *Index) IsOpen(date time.Time, roomID uint) bool {
	if i == nil {
		return true
	}
	isOpen, ok := i.byDate[models.DateKey(date)][roomID]
	if !ok {
		return true
	}
	return isOpen
}

// Cell is a room-night addressed by an availability upsert.
type Cell struct {
	RoomID uint
	Date   time.Time
}

// Merge applies a successful availability upsert to the index. Other rooms in
// the touched date buckets keep their flags.
func (i *Index) Merge(isOpen bool, cells []Cell) {
	for _, c := range cells {
		i.set(c.Date, c.RoomID, isOpen)
	}
}

// Closed returns the explicitly closed room-nights, ordered by date then room.
func (i *Index) Closed() []Cell {
	var out []Cell
	for key, bucket := range i.byDate {
		date, err := models.ParseDate(key)
		if err != nil {
			continue
		}
		for roomID, isOpen := range bucket {
			if !isOpen {
				out = append(out, Cell{RoomID: roomID, Date: date})
			}
		}
	}
	sortCells(out)
	return out
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(a, b int) bool {
		if !cells[a].Date.Equal(cells[b].Date) {
			return cells[a].Date.Before(cells[b].Date)
		}
		return cells[a].RoomID < cells[b].RoomID
	})
}
