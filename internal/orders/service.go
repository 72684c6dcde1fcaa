package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// unknownFruit is the display fallback when a catalog delete severed the
// weak fruit reference on an order line.
const unknownFruit = "Unknown"

// HistoryLine is one line of a past order as shown to its buyer.
type HistoryLine struct {
	OrderID   uuid.UUID       `json:"order_id"`
	FruitName string          `json:"fruit_name"`
	FruitSize string          `json:"fruit_size"`
	IsSeeded  bool            `json:"is_seeded"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// HistoryOrder is one past checkout with its lines.
type HistoryOrder struct {
	ParentOrderID uuid.UUID       `json:"parent_order_id"`
	OrderDate     time.Time       `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Lines         []HistoryLine   `json:"lines"`
}

// FlatOrder is one denormalized order line for the admin listing.
type FlatOrder struct {
	OrderID       uuid.UUID       `json:"order_id"`
	ParentOrderID uuid.UUID       `json:"parent_order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user_name"`
	FruitName     string          `json:"fruit_name"`
	FruitSize     string          `json:"fruit_size"`
	IsSeeded      bool            `json:"is_seeded"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	OrderDate     time.Time       `json:"order_date"`
}

// GroupedOrder is one checkout with buyer identity for the admin view.
type GroupedOrder struct {
	ParentOrderID uuid.UUID       `json:"parent_order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	UserName      string          `json:"user_name"`
	OrderDate     time.Time       `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Lines         []HistoryLine   `json:"lines"`
}

// Service is the read side of placed orders.
type Service interface {
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryOrder, error)
	ListAll(ctx context.Context) ([]FlatOrder, error)
	ListGrouped(ctx context.Context) ([]GroupedOrder, error)
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

// HistoryByUser returns the user's checkouts, newest first. An unknown user
// and a user with no orders look the same to callers: NOT_FOUND.
func (s *service) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryOrder, error) {
	parents, err := s.repo.HistoryByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order history")
	}
	if len(parents) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found for user")
	}

	history := make([]HistoryOrder, 0, len(parents))
	for _, parent := range parents {
		lines, total := buildLines(parent.Items)
		history = append(history, HistoryOrder{
			ParentOrderID: parent.ID,
			OrderDate:     parent.OrderDate,
			TotalPrice:    total,
			Lines:         lines,
		})
	}
	return history, nil
}

func (s *service) ListAll(ctx context.Context) ([]FlatOrder, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	flat := make([]FlatOrder, 0, len(rows))
	for _, row := range rows {
		flat = append(flat, FlatOrder{
			OrderID:       row.ID,
			ParentOrderID: row.ParentOrderID,
			UserID:        row.UserID,
			UserName:      userName(row.User),
			FruitName:     displayName(row.FruitName()),
			FruitSize:     row.FruitSize(),
			IsSeeded:      row.IsSeeded,
			Quantity:      row.Quantity,
			UnitPrice:     row.PriceByFruit,
			TotalPrice:    row.TotalPrice().Round(2),
			OrderDate:     row.OrderDate,
		})
	}
	return flat, nil
}

func (s *service) ListGrouped(ctx context.Context) ([]GroupedOrder, error) {
	parents, err := s.repo.ListParents(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list grouped orders")
	}

	grouped := make([]GroupedOrder, 0, len(parents))
	for _, parent := range parents {
		lines, total := buildLines(parent.Items)
		grouped = append(grouped, GroupedOrder{
			ParentOrderID: parent.ID,
			UserID:        parent.UserID,
			UserName:      userName(parent.User),
			OrderDate:     parent.OrderDate,
			TotalPrice:    total,
			Lines:         lines,
		})
	}
	return grouped, nil
}

func buildLines(items []models.Order) ([]HistoryLine, decimal.Decimal) {
	lines := make([]HistoryLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		lineTotal := item.TotalPrice()
		total = total.Add(lineTotal)
		lines = append(lines, HistoryLine{
			OrderID:   item.ID,
			FruitName: displayName(item.FruitName()),
			FruitSize: item.FruitSize(),
			IsSeeded:  item.IsSeeded,
			Quantity:  item.Quantity,
			UnitPrice: item.PriceByFruit,
			LineTotal: lineTotal.Round(2),
		})
	}
	return lines, total.Round(2)
}

func displayName(name string) string {
	if name == "" {
		return unknownFruit
	}
	return name
}

func userName(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.Name
}
