package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FruitInfo carries pricing and stock for exactly one fruit.
// Invariant: 0 <= available_quantity <= total_quantity. AvailableQuantity is
// the only field checkout mutates, and only through the conditional decrement
// in internal/checkout/reservation.
type FruitInfo struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FruitID           uuid.UUID       `gorm:"column:fruit_id;type:uuid;not null;uniqueIndex"`
	Weight            decimal.Decimal `gorm:"column:weight;type:numeric(10,2);not null"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	TotalQuantity     int             `gorm:"column:total_quantity;not null"`
	AvailableQuantity int             `gorm:"column:available_quantity;not null;default:0"`
	SellByDate        time.Time       `gorm:"column:sell_by_date;not null"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (FruitInfo) TableName() string {
	return "fruit_info"
}
