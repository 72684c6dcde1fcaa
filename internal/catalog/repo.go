package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	"gorm.io/gorm"
)

// FruitFilter narrows catalog listings.
type FruitFilter struct {
	Name     string
	Color    string
	HasSeeds *bool
}

// Identity is the descriptive tuple that makes a fruit unique.
type Identity struct {
	Name        string
	Color       string
	Size        string
	HasSeeds    bool
	Description *string
}

// Repository exposes catalog persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateFruit(ctx context.Context, fruit *models.Fruit) (*models.Fruit, error)
	FindFruitByID(ctx context.Context, id uuid.UUID) (*models.Fruit, error)
	FruitExists(ctx context.Context, identity Identity) (bool, error)
	ListFruits(ctx context.Context, filter FruitFilter) ([]models.Fruit, error)
	SaveFruit(ctx context.Context, fruit *models.Fruit) error
	DeleteFruit(ctx context.Context, id uuid.UUID) error
	CreateInfo(ctx context.Context, info *models.FruitInfo) (*models.FruitInfo, error)
	FindInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error)
	FindInfoByID(ctx context.Context, id uuid.UUID) (*models.FruitInfo, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateFruit(ctx context.Context, fruit *models.Fruit) (*models.Fruit, error) {
	if err := r.db.WithContext(ctx).Create(fruit).Error; err != nil {
		return nil, err
	}
	return fruit, nil
}

func (r *repository) FindFruitByID(ctx context.Context, id uuid.UUID) (*models.Fruit, error) {
	var fruit models.Fruit
	err := r.db.WithContext(ctx).
		Preload("Info").
		First(&fruit, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &fruit, nil
}

func (r *repository) FruitExists(ctx context.Context, identity Identity) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Fruit{}).
		Where("name = ? AND color = ? AND size = ? AND has_seeds = ?",
			identity.Name, identity.Color, identity.Size, identity.HasSeeds)
	if identity.Description != nil {
		query = query.Where("description = ?", *identity.Description)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListFruits(ctx context.Context, filter FruitFilter) ([]models.Fruit, error) {
	query := r.db.WithContext(ctx).Preload("Info")
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Color != "" {
		query = query.Where("color = ?", filter.Color)
	}
	if filter.HasSeeds != nil {
		query = query.Where("has_seeds = ?", *filter.HasSeeds)
	}
	var fruits []models.Fruit
	if err := query.Order("name ASC").Find(&fruits).Error; err != nil {
		return nil, err
	}
	return fruits, nil
}

func (r *repository) SaveFruit(ctx context.Context, fruit *models.Fruit) error {
	return r.db.WithContext(ctx).Save(fruit).Error
}

func (r *repository) DeleteFruit(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Fruit{}, "id = ?", id).Error
}

func (r *repository) CreateInfo(ctx context.Context, info *models.FruitInfo) (*models.FruitInfo, error) {
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

func (r *repository) FindInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error) {
	var info models.FruitInfo
	err := r.db.WithContext(ctx).
		Where("fruit_id = ?", fruitID).
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *repository) FindInfoByID(ctx context.Context, id uuid.UUID) (*models.FruitInfo, error) {
	var info models.FruitInfo
	err := r.db.WithContext(ctx).
		First(&info, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}
