package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChargeType selects how an ExtraCharge amount is turned into money.
type ChargeType int

const (
	ChargeTypePercentage ChargeType = iota + 1
	ChargeTypeDaily
	ChargeTypePerRoom
	ChargeTypeGeneral
	ChargeTypePerPerson
	ChargeTypeCustom
)

func (t ChargeType) String() string {
	switch t {
	case ChargeTypePercentage:
		return "percentage"
	case ChargeTypeDaily:
		return "daily"
	case ChargeTypePerRoom:
		return "per_room"
	case ChargeTypeGeneral:
		return "general"
	case ChargeTypePerPerson:
		return "per_person"
	case ChargeTypeCustom:
		return "custom"
	}
	return "unknown"
}

func (t ChargeType) Valid() bool {
	return t >= ChargeTypePercentage && t <= ChargeTypeCustom
}

// IsGeneralBucket reports whether the charge is billed once for the whole
// booking instead of being split across room groups.
func (t ChargeType) IsGeneralBucket() bool {
	return t == ChargeTypeGeneral || t == ChargeTypePerPerson || t == ChargeTypeCustom
}

// ExtraCharge is a hotel level charge definition. Percentage amounts are
// stored as fractions (0.10 is ten percent).
type ExtraCharge struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	HotelID   uint            `gorm:"column:hotel_id;index;not null" json:"hotelId"`
	Name      string          `gorm:"size:150;not null" json:"name"`
	TypeID    ChargeType      `gorm:"column:type_id;not null" json:"typeId"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"amount"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}
