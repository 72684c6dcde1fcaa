package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	"github.com/orchardworks/fruitstand-backend/pkg/db/models"
	pkgerrors "github.com/orchardworks/fruitstand-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogService struct {
	fruit      *models.Fruit
	fruits     []models.Fruit
	info       *models.FruitInfo
	err        error
	infoErr    error
	lastFilter catalog.FruitFilter
}

func (s *stubCatalogService) CreateFruit(ctx context.Context, input catalog.CreateFruitInput) (*models.Fruit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fruit, nil
}

func (s *stubCatalogService) GetFruit(ctx context.Context, id uuid.UUID) (*models.Fruit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fruit, nil
}

func (s *stubCatalogService) ListFruits(ctx context.Context, filter catalog.FruitFilter) ([]models.Fruit, error) {
	s.lastFilter = filter
	return s.fruits, s.err
}

func (s *stubCatalogService) UpdateFruit(ctx context.Context, id uuid.UUID, input catalog.UpdateFruitInput) (*models.Fruit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fruit, nil
}

func (s *stubCatalogService) DeleteFruit(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubCatalogService) CreateInfo(ctx context.Context, fruitID uuid.UUID, input catalog.CreateInfoInput) (*models.FruitInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return s.info, nil
}

func (s *stubCatalogService) GetInfoByFruit(ctx context.Context, fruitID uuid.UUID) (*models.FruitInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return s.info, nil
}

func TestFruitCreateWithInlineInfo(t *testing.T) {
	fruitID := uuid.New()
	stub := &stubCatalogService{
		fruit: &models.Fruit{ID: fruitID, Name: "Kiwi", Color: "Brown", Size: "Small"},
		info: &models.FruitInfo{
			ID:                uuid.New(),
			FruitID:           fruitID,
			Weight:            decimal.RequireFromString("0.08"),
			Price:             decimal.RequireFromString("0.99"),
			TotalQuantity:     50,
			AvailableQuantity: 50,
			SellByDate:        time.Now().Add(72 * time.Hour),
		},
	}
	handler := FruitCreate(stub, nil)

	body := `{
		"name": "Kiwi",
		"color": "Brown",
		"size": "Small",
		"has_seeds": true,
		"info": {"weight": 0.08, "price": 0.99, "total_quantity": 50, "sell_by_date": "2026-10-01T00:00:00Z"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fruits/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var envelope struct {
		Data fruitResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Kiwi", envelope.Data.Name)
	require.NotNil(t, envelope.Data.Info)
	assert.Equal(t, 50, envelope.Data.Info.AvailableQuantity)
	assert.True(t, envelope.Data.Info.Price.Equal(decimal.RequireFromString("0.99")))
}

func TestFruitCreateMissingName(t *testing.T) {
	handler := FruitCreate(&stubCatalogService{}, nil)

	body := `{"color": "Red", "size": "Medium"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fruits/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
	assert.Contains(t, envelope.Error.Details, "name")
}

func TestFruitListParsesSeedFilter(t *testing.T) {
	stub := &stubCatalogService{}
	handler := FruitList(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fruits/?color=Red&has_seeds=true", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Red", stub.lastFilter.Color)
	require.NotNil(t, stub.lastFilter.HasSeeds)
	assert.True(t, *stub.lastFilter.HasSeeds)
}

func TestFruitListRejectsBadSeedFilter(t *testing.T) {
	handler := FruitList(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fruits/?has_seeds=maybe", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestFruitGetNotFound(t *testing.T) {
	stub := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "fruit not found")}
	handler := FruitGet(stub, nil)

	fruitID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/fruits/"+fruitID.String(), nil)
	resp := serveWithParam(handler, req, "fruitId", fruitID.String())

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFruitInfoCreateConflict(t *testing.T) {
	stub := &stubCatalogService{infoErr: pkgerrors.New(pkgerrors.CodeConflict, "fruit already has a stock record")}
	handler := FruitInfoCreate(stub, nil)

	fruitID := uuid.New()
	body := `{"weight": 0.2, "price": 1.50, "total_quantity": 10, "sell_by_date": "2026-10-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fruits/"+fruitID.String()+"/info", strings.NewReader(body))
	resp := serveWithParam(handler, req, "fruitId", fruitID.String())

	require.Equal(t, http.StatusConflict, resp.Code)
}
