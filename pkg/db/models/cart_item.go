package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one pending (fruit, quantity) line for a user. ItemPrice is the
// quantity times the unit price at add time; checkout deliberately ignores it
// and re-reads the live FruitInfo price.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	FruitID   uuid.UUID       `gorm:"column:fruit_id;type:uuid;not null"`
	InfoID    uuid.UUID       `gorm:"column:info_id;type:uuid;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	ItemPrice decimal.Decimal `gorm:"column:item_price;type:numeric(10,2)"`
	AddedDate time.Time       `gorm:"column:added_date;autoCreateTime"`

	Fruit *Fruit     `gorm:"foreignKey:FruitID;constraint:OnDelete:CASCADE"`
	Info  *FruitInfo `gorm:"foreignKey:InfoID;references:ID;constraint:OnDelete:CASCADE"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
