package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/orchardworks/fruitstand-backend/api/responses"
	"github.com/orchardworks/fruitstand-backend/api/validators"
	checkoutsvc "github.com/orchardworks/fruitstand-backend/internal/checkout"
	ordersvc "github.com/orchardworks/fruitstand-backend/internal/orders"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
)

type placeOrderRequest struct {
	CartItemIDs []uuid.UUID       `json:"cart_item_ids"`
	Guest       *guestInfoPayload `json:"guest"`
}

type guestInfoPayload struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,len=10,numeric"`
}

// OrderPlace runs checkout for the user's cart. The "guest" path alias (or
// the sentinel UUID) selects the guest flow, which requires contact details
// in the body.
func OrderPlace(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.UserIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Body is optional: registered users can check out their whole cart
		// with an empty request.
		var payload placeOrderRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := checkoutsvc.PlaceOrderInput{
			UserID:      userID,
			CartItemIDs: payload.CartItemIDs,
		}
		if payload.Guest != nil {
			input.Guest = &users.GuestInfo{
				Name:        payload.Guest.Name,
				Email:       payload.Guest.Email,
				PhoneNumber: payload.Guest.PhoneNumber,
			}
		}

		summary, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, summary)
	}
}

func OrderHistory(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := validators.UserIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.HistoryByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func OrderListAll(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flat, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, flat)
	}
}

func OrderListGrouped(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grouped, err := svc.ListGrouped(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, grouped)
	}
}
