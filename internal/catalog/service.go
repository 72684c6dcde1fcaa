package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateFruitInput carries the descriptive attributes of a new fruit.
type CreateFruitInput struct {
	Name        string
	Color       string
	Description *string
	Size        string
	HasSeeds    bool
	ImageURL    *string
}

// UpdateFruitInput holds the only fields editable after creation.
type UpdateFruitInput struct {
	Description *string
	ImageURL    *string
}

// CreateInfoInput carries the stock/pricing record for a fruit.
type CreateInfoInput struct {
	Weight        decimal.Decimal
	Price         decimal.Decimal
	TotalQuantity int
	SellByDate    time.Time
}

// Service owns the fruit catalog.
type Service interface {
	CreateFruit(ctx context.Context, input CreateFruitInput) (*models.Fruit, error)
	GetFruit(ctx context.Context, id uuid.UUID) (*models.Fruit, error)
	ListFruits(ctx context.Context, filter FruitFilter) ([]models.Fruit, error)
	UpdateFruit(ctx context.Context, id uuid.UUID, input UpdateFruitInput) (*models.Fruit, error)
	DeleteFruit(ctx context.Context, id uuid.UUID) error
	CreateInfo(ctx context.Context, fruitID uuid.UUID, input CreateInfoInput) (*models.FruitInfo, error)
	GetInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) CreateFruit(ctx context.Context, input CreateFruitInput) (*models.Fruit, error) {
	name := strings.TrimSpace(input.Name)
	color := strings.TrimSpace(input.Color)
	size := strings.TrimSpace(input.Size)
	if name == "" || color == "" || size == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, color and size are required")
	}

	identity := Identity{
		Name:        name,
		Color:       color,
		Size:        size,
		HasSeeds:    input.HasSeeds,
		Description: input.Description,
	}
	exists, err := s.repo.FruitExists(ctx, identity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check fruit identity")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "fruit with these attributes already exists")
	}

	fruit := &models.Fruit{
		ID:          uuid.New(),
		Name:        name,
		Color:       color,
		Description: input.Description,
		Size:        size,
		HasSeeds:    input.HasSeeds,
		ImageURL:    input.ImageURL,
	}
	created, err := s.repo.CreateFruit(ctx, fruit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create fruit")
	}
	return created, nil
}

func (s *service) GetFruit(ctx context.Context, id uuid.UUID) (*models.Fruit, error) {
	fruit, err := s.repo.FindFruitByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load fruit")
	}
	return fruit, nil
}

func (s *service) ListFruits(ctx context.Context, filter FruitFilter) ([]models.Fruit, error) {
	fruits, err := s.repo.ListFruits(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list fruits")
	}
	return fruits, nil
}

// UpdateFruit applies image/description edits only; the identity tuple is
// immutable once created.
func (s *service) UpdateFruit(ctx context.Context, id uuid.UUID, input UpdateFruitInput) (*models.Fruit, error) {
	fruit, err := s.GetFruit(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Description != nil {
		fruit.Description = input.Description
	}
	if input.ImageURL != nil {
		fruit.ImageURL = input.ImageURL
	}
	if err := s.repo.SaveFruit(ctx, fruit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update fruit")
	}
	return fruit, nil
}

func (s *service) DeleteFruit(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetFruit(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteFruit(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete fruit")
	}
	return nil
}

func (s *service) CreateInfo(ctx context.Context, fruitID uuid.UUID, input CreateInfoInput) (*models.FruitInfo, error) {
	if _, err := s.GetFruit(ctx, fruitID); err != nil {
		return nil, err
	}

	details := map[string]string{}
	if !input.Weight.IsPositive() {
		details["weight"] = "must be greater than zero"
	}
	if !input.Price.IsPositive() {
		details["price"] = "must be greater than zero"
	}
	if input.TotalQuantity <= 0 {
		details["total_quantity"] = "must be greater than zero"
	}
	if !input.SellByDate.After(s.now()) {
		details["sell_by_date"] = "must be in the future"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	if _, err := s.repo.FindInfoByFruit(ctx, fruitID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "fruit already has a stock record")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check stock record")
	}

	info := &models.FruitInfo{
		ID:                uuid.New(),
		FruitID:           fruitID,
		Weight:            input.Weight,
		Price:             input.Price,
		TotalQuantity:     input.TotalQuantity,
		AvailableQuantity: input.TotalQuantity,
		SellByDate:        input.SellByDate,
	}
	created, err := s.repo.CreateInfo(ctx, info)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create stock record")
	}
	return created, nil
}

func (s *service) GetInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error) {
	info, err := s.repo.FindInfoByFruit(ctx, fruitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found for fruit")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock record")
	}
	return info, nil
}
