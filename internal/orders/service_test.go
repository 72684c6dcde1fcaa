package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestHistoryByUserNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := seedUser(t, db, "alice@example.com")
	fruitID := seedFruit(t, db, "Apple")

	older := seedParent(t, db, userID, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	newer := seedParent(t, db, userID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	seedLine(t, db, older, userID, &fruitID, 2, decimal.NewFromFloat(1.50))
	seedLine(t, db, newer, userID, &fruitID, 1, decimal.NewFromFloat(2.00))

	history, err := svc.HistoryByUser(ctx, userID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(history))
	}
	if history[0].ParentOrderID != newer {
		t.Fatal("expected newest order first")
	}
	if !history[0].TotalPrice.Equal(decimal.NewFromFloat(2.00)) {
		t.Fatalf("expected total 2.00, got %s", history[0].TotalPrice)
	}
	if !history[1].TotalPrice.Equal(decimal.NewFromFloat(3.00)) {
		t.Fatalf("expected total 3.00, got %s", history[1].TotalPrice)
	}
}

func TestHistoryByUserEmpty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.HistoryByUser(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListAllDegradesDeletedFruit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := seedUser(t, db, "bob@example.com")
	parentID := seedParent(t, db, userID, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	// A severed weak reference: the fruit was deleted after purchase.
	seedLine(t, db, parentID, userID, nil, 3, decimal.NewFromFloat(1.00))

	flat, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(flat) != 1 {
		t.Fatalf("expected 1 row, got %d", len(flat))
	}
	if flat[0].FruitName != "Unknown" {
		t.Fatalf("expected Unknown fruit name, got %q", flat[0].FruitName)
	}
	if !flat[0].TotalPrice.Equal(decimal.NewFromFloat(3.00)) {
		t.Fatalf("snapshot price must survive deletion, got %s", flat[0].TotalPrice)
	}
	if flat[0].UserName != "Shopper" {
		t.Fatalf("expected buyer name, got %q", flat[0].UserName)
	}
}

func TestListGrouped(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	userID := seedUser(t, db, "carol@example.com")
	fruitID := seedFruit(t, db, "Mango")
	parentID := seedParent(t, db, userID, time.Date(2026, 5, 2, 15, 0, 0, 0, time.UTC))
	seedLine(t, db, parentID, userID, &fruitID, 2, decimal.NewFromFloat(3.00))
	seedLine(t, db, parentID, userID, &fruitID, 1, decimal.NewFromFloat(3.00))

	grouped, err := svc.ListGrouped(ctx)
	if err != nil {
		t.Fatalf("list grouped: %v", err)
	}
	if len(grouped) != 1 {
		t.Fatalf("expected 1 group, got %d", len(grouped))
	}
	if len(grouped[0].Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(grouped[0].Lines))
	}
	if !grouped[0].TotalPrice.Equal(decimal.NewFromFloat(9.00)) {
		t.Fatalf("expected total 9.00, got %s", grouped[0].TotalPrice)
	}
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	user := models.User{ID: uuid.New(), Name: "Shopper", Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID
}

func seedFruit(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	fruit := models.Fruit{ID: uuid.New(), Name: name, Color: "Red", Size: "Medium"}
	if err := db.Create(&fruit).Error; err != nil {
		t.Fatalf("seed fruit: %v", err)
	}
	return fruit.ID
}

func seedParent(t *testing.T, db *gorm.DB, userID uuid.UUID, at time.Time) uuid.UUID {
	t.Helper()
	parent := models.ParentOrder{ID: uuid.New(), UserID: userID, OrderDate: at}
	if err := db.Create(&parent).Error; err != nil {
		t.Fatalf("seed parent order: %v", err)
	}
	return parent.ID
}

func seedLine(t *testing.T, db *gorm.DB, parentID, userID uuid.UUID, fruitID *uuid.UUID, qty int, price decimal.Decimal) {
	t.Helper()
	line := models.Order{
		ID:            uuid.New(),
		ParentOrderID: parentID,
		UserID:        userID,
		FruitID:       fruitID,
		Quantity:      qty,
		PriceByFruit:  price,
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed order line: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone_number TEXT UNIQUE,
  is_guest INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS fruits (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT NOT NULL,
  description TEXT,
  size TEXT NOT NULL,
  has_seeds INTEGER NOT NULL DEFAULT 0,
  image_url TEXT
);`, `
CREATE TABLE IF NOT EXISTS parent_orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_date DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  parent_order_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  fruit_id TEXT,
  info_id TEXT,
  is_seeded INTEGER NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL,
  price_by_fruit NUMERIC NOT NULL,
  order_date DATETIME
);`}
	for _, ddl := range statements {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
