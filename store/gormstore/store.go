// Package gormstore implements store.Store on top of gorm for MySQL and
// PostgreSQL.
package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-booking-engine/models"
	"hotel-booking-engine/store"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) RoomsByHotel(ctx context.Context, hotelID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := s.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id").
		Find(&rooms).Error
	return rooms, translate("find rooms", err)
}

func (s *Store) RoomBookingsByRange(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error) {
	var rbs []models.RoomBooking
	err := s.db.WithContext(ctx).
		Preload("Room").
		Where("hotel_id = ? AND date BETWEEN ? AND ?", hotelID, models.NormalizeDate(start), models.NormalizeDate(end)).
		Order("date, room_id").
		Find(&rbs).Error
	return normalizeNights(rbs), translate("find room bookings", err)
}

func (s *Store) LockRoomNights(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomBooking, error) {
	var rbs []models.RoomBooking
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("hotel_id = ? AND date BETWEEN ? AND ?", hotelID, models.NormalizeDate(start), models.NormalizeDate(end)).
		Find(&rbs).Error
	return normalizeNights(rbs), translate("lock room nights", err)
}

func (s *Store) AvailabilityByRange(ctx context.Context, hotelID uint, start, end time.Time) ([]models.RoomAvailability, error) {
	var records []models.RoomAvailability
	err := s.db.WithContext(ctx).
		Where("hotel_id = ? AND date BETWEEN ? AND ?", hotelID, models.NormalizeDate(start), models.NormalizeDate(end)).
		Order("date, room_id").
		Find(&records).Error
	for i := range records {
		records[i].Date = models.NormalizeDate(records[i].Date)
	}
	return records, translate("find availability", err)
}

func (s *Store) ExtraChargesByHotel(ctx context.Context, hotelID uint) ([]models.ExtraCharge, error) {
	var charges []models.ExtraCharge
	err := s.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("id").
		Find(&charges).Error
	return charges, translate("find extra charges", err)
}

func (s *Store) Customer(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, translate("find customer", err)
}

func (s *Store) Booking(ctx context.Context, id uint) (models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("RoomBookings", func(db *gorm.DB) *gorm.DB {
			return db.Order("date, room_id")
		}).
		Preload("RoomBookings.Room").
		Preload("ExtraCharges").
		Preload("PersonalizedCharges").
		First(&b, id).Error
	if err != nil {
		return b, translate("find booking", err)
	}
	b.ArrivalDate = models.NormalizeDate(b.ArrivalDate)
	b.DepartureDate = models.NormalizeDate(b.DepartureDate)
	b.RoomBookings = normalizeNights(b.RoomBookings)
	return b, nil
}

func (s *Store) CreateHotel(ctx context.Context, h *models.Hotel) error {
	return translate("create hotel", s.db.WithContext(ctx).Create(h).Error)
}

func (s *Store) CreateRoom(ctx context.Context, r *models.Room) error {
	return translate("create room", s.db.WithContext(ctx).Create(r).Error)
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return translate("create customer", s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) CreateExtraCharge(ctx context.Context, c *models.ExtraCharge) error {
	return translate("create extra charge", s.db.WithContext(ctx).Create(c).Error)
}

func (s *Store) SaveBooking(ctx context.Context, b *models.Booking) error {
	nights := b.RoomBookings
	charges := b.ExtraCharges
	personalized := b.PersonalizedCharges

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if b.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
				return translate("create booking", err)
			}
		} else if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
			return translate("update booking", err)
		}

		// old nights go first so the unique index only sees the new set
		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.RoomBooking{}).Error; err != nil {
			return translate("delete room nights", err)
		}
		if len(nights) > 0 {
			rows := make([]models.RoomBooking, len(nights))
			for i, rb := range nights {
				id := b.ID
				rows[i] = models.RoomBooking{
					HotelID:   b.HotelID,
					RoomID:    rb.RoomID,
					Date:      models.NormalizeDate(rb.Date),
					BookingID: &id,
					Price:     rb.Price,
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return translate("create room nights", err)
			}
			for i := range rows {
				rows[i].Room = nights[i].Room
			}
			nights = rows
		}

		assoc := tx.Model(b).Association("ExtraCharges")
		if len(charges) == 0 {
			if err := assoc.Clear(); err != nil {
				return translate("clear extra charges", err)
			}
		} else if err := assoc.Replace(charges); err != nil {
			return translate("replace extra charges", err)
		}

		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.PersonalizedCharge{}).Error; err != nil {
			return translate("delete personalized charges", err)
		}
		if len(personalized) > 0 {
			rows := make([]models.PersonalizedCharge, len(personalized))
			for i, p := range personalized {
				rows[i] = models.PersonalizedCharge{BookingID: b.ID, Name: p.Name, Amount: p.Amount}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return translate("create personalized charges", err)
			}
			personalized = rows
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.RoomBookings = nights
	b.ExtraCharges = charges
	b.PersonalizedCharges = personalized
	return nil
}

func (s *Store) CancelBooking(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return translate("find booking", err)
		}
		if err := tx.Model(&b).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return translate("cancel booking", err)
		}
		if err := tx.Where("booking_id = ?", id).Delete(&models.RoomBooking{}).Error; err != nil {
			return translate("free room nights", err)
		}
		return nil
	})
}

func (s *Store) UpsertAvailability(ctx context.Context, records []models.RoomAvailability) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.RoomAvailability, len(records))
	for i, r := range records {
		r.ID = 0
		r.Date = models.NormalizeDate(r.Date)
		rows[i] = r
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "room_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_open", "updated_at"}),
		}).
		Create(&rows).Error
	return translate("upsert availability", err)
}

func normalizeNights(rbs []models.RoomBooking) []models.RoomBooking {
	for i := range rbs {
		rbs[i].Date = models.NormalizeDate(rbs[i].Date)
	}
	return rbs
}
