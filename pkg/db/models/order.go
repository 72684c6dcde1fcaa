package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one immutable line of a placed order. FruitID and InfoID are weak
// references: the fruit may be deleted later, so display fields degrade while
// the price/quantity snapshot survives.
type Order struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentOrderID uuid.UUID       `gorm:"column:parent_order_id;type:uuid;not null;index"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	FruitID       *uuid.UUID      `gorm:"column:fruit_id;type:uuid"`
	InfoID        *uuid.UUID      `gorm:"column:info_id;type:uuid"`
	IsSeeded      bool            `gorm:"column:is_seeded;not null;default:false"`
	Quantity      int             `gorm:"column:quantity;not null"`
	PriceByFruit  decimal.Decimal `gorm:"column:price_by_fruit;type:numeric(10,2);not null"`
	OrderDate     time.Time       `gorm:"column:order_date;autoCreateTime"`

	Fruit *Fruit `gorm:"foreignKey:FruitID;constraint:OnDelete:SET NULL"`
	User  *User  `gorm:"foreignKey:UserID"`
}

// TotalPrice is derived, never stored.
func (o Order) TotalPrice() decimal.Decimal {
	return o.PriceByFruit.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// FruitName returns the live fruit name or empty when the weak reference
// has been severed by a catalog delete.
func (o Order) FruitName() string {
	if o.Fruit == nil {
		return ""
	}
	return o.Fruit.Name
}

// FruitSize mirrors FruitName for the size display field.
func (o Order) FruitSize() string {
	if o.Fruit == nil {
		return ""
	}
	return o.Fruit.Size
}
