// Package memory is a mutex guarded in-process store.Store. It backs the
// tests and DB_DRIVER=memory demos and enforces the same room-night
// uniqueness as the SQL schema.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hotel-booking-engine/apperror"
	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

type nightKey struct {
	hotelID uint
	roomID  uint
	date    string
}

func keyOf(hotelID, roomID uint, date time.Time) nightKey {
	return nightKey{hotelID: hotelID, roomID: roomID, date: models.DateKey(date)}
}

type sequences struct {
	hotel, room, customer, charge, booking, night, availability, personalized uint
}

type data struct {
	seq sequences

	hotels       map[uint]models.Hotel
	rooms        map[uint]models.Room
	customers    map[uint]models.Customer
	charges      map[uint]models.ExtraCharge
	bookings     map[uint]models.Booking
	nights       map[nightKey]models.RoomBooking
	availability map[nightKey]models.RoomAvailability

	bookingCharges map[uint][]uint
	personalized   map[uint][]models.PersonalizedCharge
}

func newData() *data {
	return &data{
		hotels:         make(map[uint]models.Hotel),
		rooms:          make(map[uint]models.Room),
		customers:      make(map[uint]models.Customer),
		charges:        make(map[uint]models.ExtraCharge),
		bookings:       make(map[uint]models.Booking),
		nights:         make(map[nightKey]models.RoomBooking),
		availability:   make(map[nightKey]models.RoomAvailability),
		bookingCharges: make(map[uint][]uint),
		personalized:   make(map[uint][]models.PersonalizedCharge),
	}
}

func (d *data) clone() *data {
	c := newData()
	c.seq = d.seq
	for k, v := range d.hotels {
		c.hotels[k] = v
	}
	for k, v := range d.rooms {
		c.rooms[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.charges {
		c.charges[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.nights {
		c.nights[k] = v
	}
	for k, v := range d.availability {
		c.availability[k] = v
	}
	for k, v := range d.bookingCharges {
		c.bookingCharges[k] = append([]uint(nil), v...)
	}
	for k, v := range d.personalized {
		c.personalized[k] = append([]models.PersonalizedCharge(nil), v...)
	}
	return c
}

// Store holds every table in maps. Transactions work on a copy that replaces
// the live data on commit and serialize with every other call.
type Store struct {
	mu   *sync.Mutex
	d    *data
	inTx bool
}

func New() *Store {
	return &Store{mu: &sync.Mutex{}, d: newData()}
}

var _ store.Store = (*Store)(nil)

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, d: s.d.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.d = tx.d
	return nil
}

func inRange(date, start, end time.Time) bool {
	date = models.NormalizeDate(date)
	return !date.Before(models.NormalizeDate(start)) && !date.After(models.NormalizeDate(end))
}

func sortNights(rbs []models.RoomBooking) {
	sort.Slice(rbs, func(a, b int) bool {
		if !rbs[a].Date.Equal(rbs[b].Date) {
			return rbs[a].Date.Before(rbs[b].Date)
		}
		return rbs[a].RoomID < rbs[b].RoomID
	})
}

func (s *Store) RoomsByHotel(_ context.Context, hotelID uint) ([]models.Room, error) {
	defer s.lock()()

	rooms := make([]models.Room, 0)
	for _, r := range s.d.rooms {
		if r.HotelID == hotelID {
			rooms = append(rooms, r)
		}
	}
	sort.Slice(rooms, func(a, b int) bool { return rooms[a].ID < rooms[b].ID })
	return rooms, nil
}

func (s *Store) withRoom(rb models.RoomBooking) models.RoomBooking {
	if room, ok := s.d.rooms[rb.RoomID]; ok {
		rb.Room = &room
	}
	return rb
}

func (s *Store) nightsWhere(match func(models.RoomBooking) bool) []models.RoomBooking {
	out := make([]models.RoomBooking, 0)
	for _, rb := range s.d.nights {
		if match(rb) {
			out = append(out, s.withRoom(rb))
		}
	}
	sortNights(out)
	return out
}

func (s *Store) RoomBookingsByRange(_ context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error) {
	defer s.lock()()
	return s.nightsWhere(func(rb models.RoomBooking) bool {
		return rb.HotelID == hotelID && inRange(rb.Date, start, end)
	}), nil
}

// LockRoomNights reads like RoomBookingsByRange. Isolation comes from the
// transaction holding the store mutex.
func (s *Store) LockRoomNights(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error) {
	return s.RoomBookingsByRange(ctx, hotelID, start, end)
}

func (s *Store) AvailabilityByRange(_ context.Context, hotelID uint, start, end time.Time) ([]models.RoomAvailability, error) {
	defer s.lock()()

	out := make([]models.RoomAvailability, 0)
	for _, a := range s.d.availability {
		if a.HotelID == hotelID && inRange(a.Date, start, end) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.Before(out[b].Date)
		}
		return out[a].RoomID < out[b].RoomID
	})
	return out, nil
}

func (s *Store) ExtraChargesByHotel(_ context.Context, hotelID uint) ([]models.ExtraCharge, error) {
	defer s.lock()()

	out := make([]models.ExtraCharge, 0)
	for _, c := range s.d.charges {
		if c.HotelID == hotelID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *Store) Customer(_ context.Context, id uint) (models.Customer, error) {
	defer s.lock()()

	c, ok := s.d.customers[id]
	if !ok {
		return models.Customer{}, fmt.Errorf("find customer %d: %w", id, apperror.ErrNotFound)
	}
	return c, nil
}

func (s *Store) Booking(_ context.Context, id uint) (models.Booking, error) {
	defer s.lock()()

	b, ok := s.d.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("find booking %d: %w", id, apperror.ErrNotFound)
	}
	if c, ok := s.d.customers[b.CustomerID]; ok {
		b.Customer = &c
	}
	b.RoomBookings = s.nightsWhere(func(rb models.RoomBooking) bool {
		return rb.BookingID != nil && *rb.BookingID == id
	})
	b.ExtraCharges = make([]models.ExtraCharge, 0, len(s.d.bookingCharges[id]))
	for _, cid := range s.d.bookingCharges[id] {
		if c, ok := s.d.charges[cid]; ok {
			b.ExtraCharges = append(b.ExtraCharges, c)
		}
	}
	b.PersonalizedCharges = append([]models.PersonalizedCharge{}, s.d.personalized[id]...)
	return b, nil
}

func (s *Store) CreateHotel(_ context.Context, h *models.Hotel) error {
	defer s.lock()()

	s.d.seq.hotel++
	h.ID = s.d.seq.hotel
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	s.d.hotels[h.ID] = *h
	return nil
}

func (s *Store) CreateRoom(_ context.Context, r *models.Room) error {
	defer s.lock()()

	s.d.seq.room++
	r.ID = s.d.seq.room
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	s.d.rooms[r.ID] = *r
	return nil
}

func (s *Store) CreateCustomer(_ context.Context, c *models.Customer) error {
	defer s.lock()()

	s.d.seq.customer++
	c.ID = s.d.seq.customer
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.d.customers[c.ID] = *c
	return nil
}

func (s *Store) CreateExtraCharge(_ context.Context, c *models.ExtraCharge) error {
	defer s.lock()()

	s.d.seq.charge++
	c.ID = s.d.seq.charge
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.d.charges[c.ID] = *c
	return nil
}

func (s *Store) SaveBooking(_ context.Context, b *models.Booking) error {
	defer s.lock()()

	if b.ID != 0 {
		if _, ok := s.d.bookings[b.ID]; !ok {
			return fmt.Errorf("update booking %d: %w", b.ID, apperror.ErrNotFound)
		}
	}

	// uniqueness is checked before anything is written
	var taken []apperror.Cell
	seen := make(map[nightKey]struct{}, len(b.RoomBookings))
	for _, rb := range b.RoomBookings {
		k := keyOf(b.HotelID, rb.RoomID, rb.Date)
		cell := apperror.Cell{RoomID: rb.RoomID, Date: models.NormalizeDate(rb.Date)}
		if _, dup := seen[k]; dup {
			taken = append(taken, cell)
			continue
		}
		seen[k] = struct{}{}
		if existing, ok := s.d.nights[k]; ok && (b.ID == 0 || !existing.BelongsTo(&b.ID)) {
			taken = append(taken, cell)
		}
	}
	if len(taken) > 0 {
		return fmt.Errorf("create room nights: %w", apperror.NewConflictError(apperror.ReasonOccupied, taken...))
	}

	now := time.Now()
	if b.ID == 0 {
		s.d.seq.booking++
		b.ID = s.d.seq.booking
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	header := *b
	header.Customer = nil
	header.RoomBookings = nil
	header.ExtraCharges = nil
	header.PersonalizedCharges = nil
	s.d.bookings[b.ID] = header

	for k, rb := range s.d.nights {
		if rb.BelongsTo(&b.ID) {
			delete(s.d.nights, k)
		}
	}
	nights := make([]models.RoomBooking, 0, len(b.RoomBookings))
	for _, rb := range b.RoomBookings {
		s.d.seq.night++
		id := b.ID
		row := models.RoomBooking{
			ID:        s.d.seq.night,
			HotelID:   b.HotelID,
			RoomID:    rb.RoomID,
			Date:      models.NormalizeDate(rb.Date),
			BookingID: &id,
			Price:     rb.Price,
			CreatedAt: now,
		}
		s.d.nights[keyOf(row.HotelID, row.RoomID, row.Date)] = row
		nights = append(nights, s.withRoom(row))
	}

	ids := make([]uint, 0, len(b.ExtraCharges))
	for _, c := range b.ExtraCharges {
		ids = append(ids, c.ID)
	}
	s.d.bookingCharges[b.ID] = ids

	personalized := make([]models.PersonalizedCharge, 0, len(b.PersonalizedCharges))
	for _, p := range b.PersonalizedCharges {
		s.d.seq.personalized++
		personalized = append(personalized, models.PersonalizedCharge{
			ID:        s.d.seq.personalized,
			BookingID: b.ID,
			Name:      p.Name,
			Amount:    p.Amount,
		})
	}
	s.d.personalized[b.ID] = personalized

	b.RoomBookings = nights
	b.PersonalizedCharges = append([]models.PersonalizedCharge(nil), personalized...)
	return nil
}

func (s *Store) CancelBooking(_ context.Context, id uint) error {
	defer s.lock()()

	b, ok := s.d.bookings[id]
	if !ok {
		return fmt.Errorf("find booking %d: %w", id, apperror.ErrNotFound)
	}
	b.Status = models.BookingStatusCancelled
	b.UpdatedAt = time.Now()
	s.d.bookings[id] = b

	for k, rb := range s.d.nights {
		if rb.BelongsTo(&id) {
			delete(s.d.nights, k)
		}
	}
	return nil
}

func (s *Store) UpsertAvailability(_ context.Context, records []models.RoomAvailability) error {
	defer s.lock()()

	now := time.Now()
	for _, r := range records {
		r.Date = models.NormalizeDate(r.Date)
		r.UpdatedAt = now
		k := keyOf(r.HotelID, r.RoomID, r.Date)
		if existing, ok := s.d.availability[k]; ok {
			r.ID = existing.ID
		} else {
			s.d.seq.availability++
			r.ID = s.d.seq.availability
		}
		s.d.availability[k] = r
	}
	return nil
}
