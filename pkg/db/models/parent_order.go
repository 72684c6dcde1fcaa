package models

import (
	"time"

	"github.com/google/uuid"
)

// ParentOrder groups all Order rows created by one checkout call.
type ParentOrder struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	OrderDate time.Time `gorm:"column:order_date;autoCreateTime"`

	User  *User   `gorm:"foreignKey:UserID"`
	Items []Order `gorm:"foreignKey:ParentOrderID"`
}
