package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a shopper. The guest sentinel is a seeded singleton row
// with IsGuest set; business logic checks the flag, never a magic id.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Email       string    `gorm:"column:email;not null;uniqueIndex"`
	PhoneNumber *string   `gorm:"column:phone_number;uniqueIndex"`
	IsGuest     bool      `gorm:"column:is_guest;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
