package models

import (
	"github.com/google/uuid"
)

// Fruit is a catalog entry. Identity is the descriptive tuple
// (name, color, size, has_seeds, description) enforced by the catalog
// service with a pre-insert existence check.
type Fruit struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Color       string    `gorm:"column:color;not null"`
	Description *string   `gorm:"column:description"`
	Size        string    `gorm:"column:size;not null"`
	HasSeeds    bool      `gorm:"column:has_seeds;not null;default:false"`
	ImageURL    *string   `gorm:"column:image_url"`

	Info *FruitInfo `gorm:"foreignKey:FruitID;constraint:OnDelete:CASCADE"`
}
