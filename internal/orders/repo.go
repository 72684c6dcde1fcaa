package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to placed orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.ParentOrder, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListParents(ctx context.Context) ([]models.ParentOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]models.ParentOrder, error) {
	var parents []models.ParentOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Fruit").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&parents).Error
	if err != nil {
		return nil, err
	}
	return parents, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Fruit").
		Preload("User").
		Order("order_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListParents(ctx context.Context) ([]models.ParentOrder, error) {
	var parents []models.ParentOrder
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items").
		Preload("Items.Fruit").
		Order("order_date DESC").
		Find(&parents).Error
	if err != nil {
		return nil, err
	}
	return parents, nil
}
