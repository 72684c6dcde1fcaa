package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes cart persistence operations. SelectLines and DeleteLine
// are the contract checkout consumes inside its transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	SelectLines(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error)
	Save(ctx context.Context, item *models.CartItem) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Reassign(ctx context.Context, fromUserID, toUserID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Fruit").
		Preload("Info").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Fruit").
		Preload("Info").
		Where("user_id = ?", userID).
		Order("added_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SelectLines returns the user's cart lines, narrowed to ids when the caller
// supplies a list. A nil list means the whole cart; an empty non-nil list is
// an explicit empty selection and resolves to no lines. Ids owned by a
// different user fall out of the WHERE clause silently; the caller only ever
// sees lines it owns.
func (r *repository) SelectLines(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.CartItem, error) {
	if ids != nil && len(ids) == 0 {
		return []models.CartItem{}, nil
	}
	query := r.db.WithContext(ctx).
		Preload("Fruit").
		Preload("Info").
		Where("user_id = ?", userID)
	if ids != nil {
		query = query.Where("id IN ?", ids)
	}
	var items []models.CartItem
	if err := query.Order("added_date ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// Reassign moves every cart line from one user to another and reports how
// many lines moved.
func (r *repository) Reassign(ctx context.Context, fromUserID, toUserID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID)
	return result.RowsAffected, result.Error
}
