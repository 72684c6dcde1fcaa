package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AddInput carries a new cart line request.
type AddInput struct {
	UserID   uuid.UUID
	FruitID  uuid.UUID
	Quantity int
}

// Service owns pending cart lines. Lines belong to a real user or to the
// guest sentinel; checkout later rehomes guest lines onto a durable user.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Associate(ctx context.Context, fromUserID, toUserID uuid.UUID) (int64, error)
}

type service struct {
	repo        Repository
	catalogRepo catalog.Repository
	userRepo    users.Repository
}

// NewService builds the cart service.
func NewService(repo Repository, catalogRepo catalog.Repository, userRepo users.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, catalogRepo: catalogRepo, userRepo: userRepo}, nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.CartItem, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if err := s.ensureUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	info, err := s.catalogRepo.FindInfoByFruit(ctx, input.FruitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fruit has no stock record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock record")
	}

	item := &models.CartItem{
		ID:        uuid.New(),
		UserID:    input.UserID,
		FruitID:   input.FruitID,
		InfoID:    info.ID,
		Quantity:  input.Quantity,
		ItemPrice: snapshotPrice(info.Price, input.Quantity),
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return created, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return items, nil
}

// UpdateQuantity changes a line's quantity and re-snapshots ItemPrice at the
// live unit price.
func (s *service) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	info, err := s.catalogRepo.FindInfoByID(ctx, item.InfoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock record")
	}

	item.Quantity = quantity
	item.ItemPrice = snapshotPrice(info.Price, quantity)
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.getItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteLine(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// Associate rehomes every line from one user onto another, typically moving
// a guest cart onto a freshly registered user.
func (s *service) Associate(ctx context.Context, fromUserID, toUserID uuid.UUID) (int64, error) {
	if fromUserID == toUserID {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "source and target user must differ")
	}
	if err := s.ensureUser(ctx, toUserID); err != nil {
		return 0, err
	}
	moved, err := s.repo.Reassign(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "associate cart")
	}
	return moved, nil
}

func (s *service) getItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	return item, nil
}

// ensureUser verifies the owner exists. The guest sentinel is seeded at
// startup so it passes the same lookup as everyone else.
func (s *service) ensureUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return nil
}

func snapshotPrice(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
