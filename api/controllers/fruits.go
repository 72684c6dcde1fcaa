package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orchardworks/fruitstand-backend/api/responses"
	"github.com/orchardworks/fruitstand-backend/api/validators"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
)

type createFruitRequest struct {
	Name        string                  `json:"name" validate:"required"`
	Color       string                  `json:"color" validate:"required"`
	Description *string                 `json:"description"`
	Size        string                  `json:"size" validate:"required"`
	HasSeeds    bool                    `json:"has_seeds"`
	ImageURL    *string                 `json:"image_url"`
	Info        *createFruitInfoRequest `json:"info"`
}

type updateFruitRequest struct {
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type createFruitInfoRequest struct {
	Weight        decimal.Decimal `json:"weight" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	TotalQuantity int             `json:"total_quantity" validate:"required,min=1"`
	SellByDate    time.Time       `json:"sell_by_date" validate:"required"`
}

type fruitInfoResponse struct {
	ID                uuid.UUID       `json:"id"`
	FruitID           uuid.UUID       `json:"fruit_id"`
	Weight            decimal.Decimal `json:"weight"`
	Price             decimal.Decimal `json:"price"`
	TotalQuantity     int             `json:"total_quantity"`
	AvailableQuantity int             `json:"available_quantity"`
	SellByDate        time.Time       `json:"sell_by_date"`
	CreatedAt         time.Time       `json:"created_at"`
}

type fruitResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Color       string             `json:"color"`
	Description *string            `json:"description,omitempty"`
	Size        string             `json:"size"`
	HasSeeds    bool               `json:"has_seeds"`
	ImageURL    *string            `json:"image_url,omitempty"`
	Info        *fruitInfoResponse `json:"info,omitempty"`
}

func newFruitResponse(fruit *models.Fruit) fruitResponse {
	resp := fruitResponse{
		ID:          fruit.ID,
		Name:        fruit.Name,
		Color:       fruit.Color,
		Description: fruit.Description,
		Size:        fruit.Size,
		HasSeeds:    fruit.HasSeeds,
		ImageURL:    fruit.ImageURL,
	}
	if fruit.Info != nil {
		info := newFruitInfoResponse(fruit.Info)
		resp.Info = &info
	}
	return resp
}

func newFruitInfoResponse(info *models.FruitInfo) fruitInfoResponse {
	return fruitInfoResponse{
		ID:                info.ID,
		FruitID:           info.FruitID,
		Weight:            info.Weight,
		Price:             info.Price,
		TotalQuantity:     info.TotalQuantity,
		AvailableQuantity: info.AvailableQuantity,
		SellByDate:        info.SellByDate,
		CreatedAt:         info.CreatedAt,
	}
}

// FruitCreate adds a catalog entry, optionally with its stock record in the
// same request.
func FruitCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createFruitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fruit, err := svc.CreateFruit(r.Context(), catalog.CreateFruitInput{
			Name:        payload.Name,
			Color:       payload.Color,
			Description: payload.Description,
			Size:        payload.Size,
			HasSeeds:    payload.HasSeeds,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Info != nil {
			info, infoErr := svc.CreateInfo(r.Context(), fruit.ID, catalog.CreateInfoInput{
				Weight:        payload.Info.Weight,
				Price:         payload.Info.Price,
				TotalQuantity: payload.Info.TotalQuantity,
				SellByDate:    payload.Info.SellByDate,
			})
			if infoErr != nil {
				responses.WriteError(r.Context(), logg, w, infoErr)
				return
			}
			fruit.Info = info
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newFruitResponse(fruit))
	}
}

func FruitList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.FruitFilter{
			Name:  r.URL.Query().Get("name"),
			Color: r.URL.Query().Get("color"),
		}
		if raw := r.URL.Query().Get("has_seeds"); raw != "" {
			hasSeeds, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid has_seeds filter"))
				return
			}
			filter.HasSeeds = &hasSeeds
		}

		fruits, err := svc.ListFruits(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]fruitResponse, 0, len(fruits))
		for i := range fruits {
			out = append(out, newFruitResponse(&fruits[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func FruitGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitID, err := validators.UUIDParam(r, "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fruit, err := svc.GetFruit(r.Context(), fruitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFruitResponse(fruit))
	}
}

func FruitUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitID, err := validators.UUIDParam(r, "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateFruitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fruit, err := svc.UpdateFruit(r.Context(), fruitID, catalog.UpdateFruitInput{
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFruitResponse(fruit))
	}
}

func FruitDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitID, err := validators.UUIDParam(r, "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteFruit(r.Context(), fruitID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func FruitInfoCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitID, err := validators.UUIDParam(r, "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createFruitInfoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.CreateInfo(r.Context(), fruitID, catalog.CreateInfoInput{
			Weight:        payload.Weight,
			Price:         payload.Price,
			TotalQuantity: payload.TotalQuantity,
			SellByDate:    payload.SellByDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newFruitInfoResponse(info))
	}
}

func FruitInfoGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruitID, err := validators.UUIDParam(r, "fruitId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.GetInfoByFruit(r.Context(), fruitID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newFruitInfoResponse(info))
	}
}
