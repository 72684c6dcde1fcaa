package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orchardworks/fruitstand-backend/api/responses"
	"github.com/orchardworks/fruitstand-backend/api/validators"
	cartsvc "github.com/orchardworks/fruitstand-backend/internal/cart"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
)

type addCartItemRequest struct {
	UserID   string    `json:"user_id" validate:"required"`
	FruitID  uuid.UUID `json:"fruit_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type associateCartRequest struct {
	FromUserID string    `json:"from_user_id" validate:"required"`
	ToUserID   uuid.UUID `json:"to_user_id" validate:"required"`
}

type cartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	FruitID   uuid.UUID       `json:"fruit_id"`
	FruitName string          `json:"fruit_name,omitempty"`
	Quantity  int             `json:"quantity"`
	ItemPrice decimal.Decimal `json:"item_price"`
	AddedDate time.Time       `json:"added_date"`
}

func newCartItemResponse(item *models.CartItem) cartItemResponse {
	resp := cartItemResponse{
		ID:        item.ID,
		UserID:    item.UserID,
		FruitID:   item.FruitID,
		Quantity:  item.Quantity,
		ItemPrice: item.ItemPrice,
		AddedDate: item.AddedDate,
	}
	if item.Fruit != nil {
		resp.FruitName = item.Fruit.Name
	}
	return resp
}

// parseUserID accepts either a UUID or the literal "guest".
func parseUserID(raw string) (uuid.UUID, error) {
	if strings.EqualFold(raw, "guest") {
		return users.GuestUserID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user_id")
	}
	return id, nil
}

func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := parseUserID(payload.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Add(r.Context(), cartsvc.AddInput{
			UserID:   userID,
			FruitID:  payload.FruitID,
			Quantity: payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartItemResponse(item))
	}
}

func CartList(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.UserIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]cartItemResponse, 0, len(items))
		for i := range items {
			out = append(out, newCartItemResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.UUIDParam(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateQuantity(r.Context(), itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartItemResponse(item))
	}
}

func CartDeleteItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.UUIDParam(r, "cartId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.UserIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func CartAssociate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload associateCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fromID, err := parseUserID(payload.FromUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		moved, err := svc.Associate(r.Context(), fromID, payload.ToUserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"moved": moved})
	}
}
