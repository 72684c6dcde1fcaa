package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/internal/cart"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	"github.com/orchardworks/fruitstand-backend/internal/checkout/reservation"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
	"github.com/orchardworks/fruitstand-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TxRunner is the atomic-commit boundary checkout runs inside.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PlaceOrderInput is one checkout request. UserID addresses the cart being
// checked out; for the guest sentinel, Guest must carry contact details so
// the order lands on a durable user. A nil CartItemIDs checks out the whole
// cart; an empty non-nil list is an explicit empty selection and fails.
type PlaceOrderInput struct {
	UserID      uuid.UUID
	Guest       *users.GuestInfo
	CartItemIDs []uuid.UUID
}

// LineSummary is one committed order line in the checkout response.
type LineSummary struct {
	OrderID   uuid.UUID       `json:"order_id"`
	FruitID   uuid.UUID       `json:"fruit_id"`
	FruitName string          `json:"fruit_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderSummary is the full checkout response.
type OrderSummary struct {
	ParentOrderID uuid.UUID       `json:"parent_order_id"`
	UserID        uuid.UUID       `json:"user_id"`
	OrderDate     time.Time       `json:"order_date"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Lines         []LineSummary   `json:"lines"`
}

// Service places orders.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderSummary, error)
}

type service struct {
	tx          TxRunner
	cartRepo    cart.Repository
	catalogRepo catalog.Repository
	userSvc     users.Service
	metrics     *metrics.CheckoutMetrics
	log         *logger.Logger
}

// NewService builds the checkout service. Metrics and logger may be nil.
func NewService(
	tx TxRunner,
	cartRepo cart.Repository,
	catalogRepo catalog.Repository,
	userSvc users.Service,
	checkoutMetrics *metrics.CheckoutMetrics,
	log *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if userSvc == nil {
		return nil, fmt.Errorf("users service required")
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
		userSvc:     userSvc,
		metrics:     checkoutMetrics,
		log:         log,
	}, nil
}

// PlaceOrder drains the selected cart lines into an immutable parent order.
// Stock checks, order rows and cart deletions share one transaction, so a
// failure on any line leaves stock and cart untouched.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderSummary, error) {
	start := time.Now()
	summary, err := s.placeOrder(ctx, input)
	if err != nil {
		reason := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			reason = string(typed.Code())
		}
		s.metrics.IncFailed(reason)
		s.metrics.ObserveDuration("failure", time.Since(start))
		return nil, err
	}

	units := 0
	for _, line := range summary.Lines {
		units += line.Quantity
	}
	s.metrics.IncPlaced()
	s.metrics.AddUnitsSold(units)
	s.metrics.ObserveDuration("success", time.Since(start))

	if s.log != nil {
		logCtx := s.log.WithFields(ctx, map[string]any{
			"parent_order_id": summary.ParentOrderID,
			"user_id":         summary.UserID,
			"lines":           len(summary.Lines),
			"total_price":     summary.TotalPrice,
		})
		s.log.Info(logCtx, "order placed")
	}
	return summary, nil
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*OrderSummary, error) {
	buyer, err := s.resolveBuyer(ctx, input)
	if err != nil {
		return nil, err
	}

	// Cart lines stay keyed by the requested user, guest sentinel included;
	// only the committed order rows land on the resolved buyer.
	lines, err := s.cartRepo.SelectLines(ctx, input.UserID, input.CartItemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "select cart lines")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items found in cart to checkout")
	}

	var summary *OrderSummary
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		built, txErr := s.commitLines(ctx, tx, buyer, lines)
		if txErr != nil {
			return txErr
		}
		summary = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *service) commitLines(ctx context.Context, tx *gorm.DB, buyer *models.User, lines []models.CartItem) (*OrderSummary, error) {
	parent := &models.ParentOrder{ID: uuid.New(), UserID: buyer.ID}
	if err := tx.WithContext(ctx).Create(parent).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create parent order")
	}

	reserver := reservation.New(tx)
	txCatalog := s.catalogRepo.WithTx(tx)
	txCart := s.cartRepo.WithTx(tx)

	total := decimal.Zero
	summaries := make([]LineSummary, 0, len(lines))
	for _, line := range lines {
		// Price is re-read inside the transaction; the cart's ItemPrice
		// snapshot is only a display value.
		info, err := txCatalog.FindInfoByID(ctx, line.InfoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, missingStockRecord(line)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock record")
		}

		if err := reserver.Reserve(ctx, info.ID, line.Quantity); err != nil {
			if errors.Is(err, reservation.ErrInsufficientStock) {
				return nil, insufficientStock(line, info.AvailableQuantity)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
		}

		fruitID := line.FruitID
		infoID := line.InfoID
		order := &models.Order{
			ID:            uuid.New(),
			ParentOrderID: parent.ID,
			UserID:        buyer.ID,
			FruitID:       &fruitID,
			InfoID:        &infoID,
			IsSeeded:      line.Fruit != nil && line.Fruit.HasSeeds,
			Quantity:      line.Quantity,
			PriceByFruit:  info.Price,
		}
		if err := tx.WithContext(ctx).Create(order).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order line")
		}

		if err := txCart.DeleteLine(ctx, line.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
		}

		lineTotal := order.TotalPrice()
		total = total.Add(lineTotal)
		summaries = append(summaries, LineSummary{
			OrderID:   order.ID,
			FruitID:   line.FruitID,
			FruitName: fruitName(line),
			Quantity:  line.Quantity,
			UnitPrice: info.Price,
			LineTotal: lineTotal.Round(2),
		})
	}

	return &OrderSummary{
		ParentOrderID: parent.ID,
		UserID:        buyer.ID,
		OrderDate:     parent.OrderDate,
		TotalPrice:    total.Round(2),
		Lines:         summaries,
	}, nil
}

func (s *service) resolveBuyer(ctx context.Context, input PlaceOrderInput) (*models.User, error) {
	if users.IsGuestID(input.UserID) {
		if input.Guest == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest checkout requires contact details").
				WithDetails(map[string]string{"guest": "name, email and phone_number are required"})
		}
		return s.userSvc.ResolveGuest(ctx, *input.Guest)
	}
	return s.userSvc.GetByID(ctx, input.UserID)
}

// missingStockRecord reports a cart line whose stock record row is gone. That
// is a data-integrity condition, not a quantity shortfall, so it carries its
// own message instead of a misleading "available: 0".
func missingStockRecord(line models.CartItem) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock record missing for cart item").
		WithDetails(map[string]any{
			"fruit_id": line.FruitID,
			"fruit":    fruitName(line),
		})
}

func insufficientStock(line models.CartItem, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for cart item").
		WithDetails(map[string]any{
			"fruit_id":  line.FruitID,
			"fruit":     fruitName(line),
			"requested": line.Quantity,
			"available": available,
		})
}

func fruitName(line models.CartItem) string {
	if line.Fruit == nil {
		return ""
	}
	return line.Fruit.Name
}
