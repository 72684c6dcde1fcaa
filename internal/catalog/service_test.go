package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestCreateFruitRequiresFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{})

	_, err := svc.CreateFruit(context.Background(), CreateFruitInput{Name: " ", Color: "Red", Size: "Small"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFruitDuplicateIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{exists: true})

	_, err := svc.CreateFruit(context.Background(), CreateFruitInput{Name: "Apple", Color: "Red", Size: "Medium"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateFruitTrimsIdentity(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc := newTestService(t, repo)

	fruit, err := svc.CreateFruit(context.Background(), CreateFruitInput{Name: " Apple ", Color: " Red ", Size: " Medium "})
	if err != nil {
		t.Fatalf("create fruit: %v", err)
	}
	if fruit.Name != "Apple" || fruit.Color != "Red" || fruit.Size != "Medium" {
		t.Fatalf("expected trimmed identity, got %+v", fruit)
	}
}

func TestUpdateFruitOnlyMutableFields(t *testing.T) {
	t.Parallel()

	existing := &models.Fruit{ID: uuid.New(), Name: "Apple", Color: "Red", Size: "Medium"}
	repo := &stubCatalogRepo{fruit: existing}
	svc := newTestService(t, repo)

	desc := "crisp and sweet"
	img := "https://cdn.example.com/apple.png"
	updated, err := svc.UpdateFruit(context.Background(), existing.ID, UpdateFruitInput{Description: &desc, ImageURL: &img})
	if err != nil {
		t.Fatalf("update fruit: %v", err)
	}
	if updated.Description == nil || *updated.Description != desc {
		t.Fatal("expected description updated")
	}
	if updated.ImageURL == nil || *updated.ImageURL != img {
		t.Fatal("expected image url updated")
	}
	if updated.Name != "Apple" {
		t.Fatal("identity fields must not change")
	}
}

func TestCreateInfoValidation(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{fruit: &models.Fruit{ID: uuid.New()}, infoErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo)

	_, err := svc.CreateInfo(context.Background(), repo.fruit.ID, CreateInfoInput{
		Weight:        decimal.Zero,
		Price:         decimal.NewFromFloat(-1),
		TotalQuantity: 0,
		SellByDate:    time.Now().Add(-24 * time.Hour),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	for _, field := range []string{"weight", "price", "total_quantity", "sell_by_date"} {
		if _, found := details[field]; !found {
			t.Fatalf("expected detail for %s", field)
		}
	}
}

func TestCreateInfoStartsFullyAvailable(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{fruit: &models.Fruit{ID: uuid.New()}, infoErr: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo)

	info, err := svc.CreateInfo(context.Background(), repo.fruit.ID, CreateInfoInput{
		Weight:        decimal.NewFromFloat(0.3),
		Price:         decimal.NewFromFloat(1.25),
		TotalQuantity: 40,
		SellByDate:    time.Now().Add(96 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create info: %v", err)
	}
	if info.AvailableQuantity != 40 {
		t.Fatalf("expected available to start at total, got %d", info.AvailableQuantity)
	}
}

func TestCreateInfoSecondRecordConflicts(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{
		fruit: &models.Fruit{ID: uuid.New()},
		info:  &models.FruitInfo{ID: uuid.New()},
	}
	svc := newTestService(t, repo)

	_, err := svc.CreateInfo(context.Background(), repo.fruit.ID, CreateInfoInput{
		Weight:        decimal.NewFromFloat(0.3),
		Price:         decimal.NewFromFloat(1.25),
		TotalQuantity: 10,
		SellByDate:    time.Now().Add(96 * time.Hour),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetFruitNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubCatalogRepo{fruitErr: gorm.ErrRecordNotFound})

	_, err := svc.GetFruit(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubCatalogRepo struct {
	exists   bool
	fruit    *models.Fruit
	fruitErr error
	info     *models.FruitInfo
	infoErr  error
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateFruit(ctx context.Context, fruit *models.Fruit) (*models.Fruit, error) {
	return fruit, nil
}

func (s *stubCatalogRepo) FindFruitByID(ctx context.Context, id uuid.UUID) (*models.Fruit, error) {
	if s.fruitErr != nil {
		return nil, s.fruitErr
	}
	if s.fruit != nil {
		return s.fruit, nil
	}
	return &models.Fruit{ID: id}, nil
}

func (s *stubCatalogRepo) FruitExists(ctx context.Context, identity Identity) (bool, error) {
	return s.exists, nil
}

func (s *stubCatalogRepo) ListFruits(ctx context.Context, filter FruitFilter) ([]models.Fruit, error) {
	return nil, nil
}

func (s *stubCatalogRepo) SaveFruit(ctx context.Context, fruit *models.Fruit) error {
	return nil
}

func (s *stubCatalogRepo) DeleteFruit(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubCatalogRepo) CreateInfo(ctx context.Context, info *models.FruitInfo) (*models.FruitInfo, error) {
	return info, nil
}

func (s *stubCatalogRepo) FindInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	if s.info != nil {
		return s.info, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindInfoByID(ctx context.Context, id uuid.UUID) (*models.FruitInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return s.info, nil
}
