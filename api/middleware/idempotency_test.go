package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memoryStore struct {
	records map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]string{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.records[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := m.records[key]; ok {
		return false, nil
	}
	m.records[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.records, key)
	}
	return nil
}

func placeOrderHandler(calls *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"parent_order_id":"abc"}}`))
	})
}

func placeRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/place/guest", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotency(newMemoryStore(), time.Minute, nil)(placeOrderHandler(&calls))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, placeRequest("key-1", `{}`))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, placeRequest("key-1", `{}`))

	if calls.Load() != 1 {
		t.Fatalf("expected single handler invocation, got %d", calls.Load())
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected replayed content type, got %q", ct)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotency(newMemoryStore(), time.Minute, nil)(placeOrderHandler(&calls))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, placeRequest("key-1", `{"cart_item_ids":[]}`))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, placeRequest("key-1", `{"guest":{"name":"x"}}`))

	if calls.Load() != 1 {
		t.Fatalf("expected single handler invocation, got %d", calls.Load())
	}
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 for hash mismatch, got %d", second.Code)
	}
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotency(newMemoryStore(), time.Minute, nil)(placeOrderHandler(&calls))

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, placeRequest("", `{}`))
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.Code)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected handler to run every time, got %d", calls.Load())
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotency(newMemoryStore(), time.Minute, nil)(placeOrderHandler(&calls))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "key-1")
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected handler to run every time, got %d", calls.Load())
	}
}

func TestIdempotencyNilStorePassesThrough(t *testing.T) {
	var calls atomic.Int32
	handler := Idempotency(nil, time.Minute, nil)(placeOrderHandler(&calls))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, placeRequest("key-1", `{}`))
	if calls.Load() != 1 || resp.Code != http.StatusCreated {
		t.Fatalf("expected pass-through, calls=%d code=%d", calls.Load(), resp.Code)
	}
}
