package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/babyland-store/babyland/internal/domain"
)

type fakeLookup struct {
	products map[string]domain.Product
}

func (f *fakeLookup) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func newTestHandler() *Handler {
	lookup := &fakeLookup{products: map[string]domain.Product{
		"p1": product("p1", 10),
		"p2": product("p2", 25),
	}}
	return NewHandler(NewStore(NewMemoryStorage(), testLogger()), lookup, testLogger())
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

func TestHandler_AddItem(t *testing.T) {
	t.Run("adds a product and mints a session cookie", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"p1","quantity":2}`))
		rec := httptest.NewRecorder()
		handler.HandleAddItem(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		resp := decodeCart(t, rec)
		if resp.TotalItems != 2 {
			t.Errorf("expected 2 items, got %d", resp.TotalItems)
		}
		if !resp.TotalAmount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected amount 20, got %s", resp.TotalAmount)
		}

		cookie := sessionCookie(t, rec)
		if cookie.Value == "" {
			t.Error("expected non-empty session id")
		}
	})

	t.Run("returns 404 for an unknown product", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"missing","quantity":1}`))
		rec := httptest.NewRecorder()
		handler.HandleAddItem(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns 400 for a bad body", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		handler.HandleAddItem(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_CartFlow(t *testing.T) {
	handler := newTestHandler()

	// Add p1 twice and p2 once under one session.
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"p1","quantity":1}`))
	rec := httptest.NewRecorder()
	handler.HandleAddItem(rec, req)
	cookie := sessionCookie(t, rec)

	for _, body := range []string{
		`{"product_id":"p1","quantity":2}`,
		`{"product_id":"p2","quantity":1}`,
	} {
		req = httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		handler.HandleAddItem(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("add failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.HandleGet(rec, req)

	resp := decodeCart(t, rec)
	if len(resp.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resp.Lines))
	}
	if resp.TotalItems != 4 {
		t.Errorf("expected 4 items, got %d", resp.TotalItems)
	}
	if !resp.TotalAmount.Equal(decimal.NewFromInt(55)) {
		t.Errorf("expected amount 55, got %s", resp.TotalAmount)
	}

	// Clamp the quantity of p1 down.
	req = httptest.NewRequest(http.MethodPatch, "/cart/items/p1", strings.NewReader(`{"quantity":-1}`))
	req.SetPathValue("productId", "p1")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.HandleUpdateQuantity(rec, req)

	resp = decodeCart(t, rec)
	if resp.Lines[0].Quantity != 1 {
		t.Errorf("expected clamped quantity 1, got %d", resp.Lines[0].Quantity)
	}

	// Remove p2.
	req = httptest.NewRequest(http.MethodDelete, "/cart/items/p2", nil)
	req.SetPathValue("productId", "p2")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.HandleRemoveItem(rec, req)

	resp = decodeCart(t, rec)
	if len(resp.Lines) != 1 || resp.Lines[0].Product.ID != "p1" {
		t.Fatalf("expected only p1 left, got %+v", resp.Lines)
	}

	// Clear everything.
	req = httptest.NewRequest(http.MethodDelete, "/cart", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.HandleClear(rec, req)

	resp = decodeCart(t, rec)
	if resp.TotalItems != 0 || !resp.TotalAmount.IsZero() {
		t.Errorf("expected empty cart, got items=%d amount=%s", resp.TotalItems, resp.TotalAmount)
	}
	if resp.Lines == nil || len(resp.Lines) != 0 {
		t.Errorf("expected empty lines array, got %+v", resp.Lines)
	}
}

func TestHandler_GetEmptyCart(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	handler.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	resp := decodeCart(t, rec)
	if resp.TotalItems != 0 {
		t.Errorf("expected 0 items, got %d", resp.TotalItems)
	}
}
