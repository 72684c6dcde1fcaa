package reservation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when the conditional decrement matches no
// row, either because the stock record vanished or available quantity fell
// below the requested amount.
var ErrInsufficientStock = fmt.Errorf("insufficient stock")

// Reserver decrements available stock inside the caller's transaction.
type Reserver interface {
	Reserve(ctx context.Context, infoID uuid.UUID, quantity int) error
}

type reserver struct {
	db *gorm.DB
}

// New builds a Reserver bound to the provided DB handle, usually a tx.
func New(db *gorm.DB) Reserver {
	return &reserver{db: db}
}

// Reserve performs a single conditional UPDATE so the availability check and
// the decrement are one atomic statement. RowsAffected == 0 means the guard
// failed and no stock was taken.
func (r *reserver) Reserve(ctx context.Context, infoID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}
	result := r.db.WithContext(ctx).
		Model(&models.FruitInfo{}).
		Where("id = ? AND available_quantity >= ?", infoID, quantity).
		Update("available_quantity", gorm.Expr("available_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
