package checkout

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

type fakeSubmitter struct {
	order *domain.Order
	err   error

	gotDetails CustomerDetails
}

func (f *fakeSubmitter) Submit(_ context.Context, _ string, details CustomerDetails) (*domain.Order, error) {
	f.gotDetails = details
	return f.order, f.err
}

func TestHandler_HandleSubmit(t *testing.T) {
	t.Run("returns 201 with the created order", func(t *testing.T) {
		submitter := &fakeSubmitter{order: &domain.Order{
			ID:          "order-1",
			Status:      domain.OrderStatusPending,
			TotalAmount: decimal.NewFromInt(40),
		}}
		handler := NewHandler(submitter, testLogger())

		body := `{"name":"Amal","phone":"091","location":"12 Harbor St","store_name":"Corner Shop","deposit":"5"}`
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var got domain.Order
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if got.ID != "order-1" {
			t.Errorf("unexpected order: %+v", got)
		}
		if submitter.gotDetails.StoreName != "Corner Shop" {
			t.Errorf("expected store name to pass through, got %q", submitter.gotDetails.StoreName)
		}
		if !submitter.gotDetails.Deposit.Equal(decimal.NewFromInt(5)) {
			t.Errorf("expected deposit 5, got %s", submitter.gotDetails.Deposit)
		}
	})

	t.Run("maps an empty cart to 422", func(t *testing.T) {
		handler := NewHandler(&fakeSubmitter{err: ErrEmptyCart}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"name":"a","phone":"1","location":"x"}`))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d", rec.Code)
		}
	})

	t.Run("maps invalid details to 400", func(t *testing.T) {
		handler := NewHandler(&fakeSubmitter{err: ErrInvalidCustomer}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("surfaces other failures as a generic retryable error", func(t *testing.T) {
		handler := NewHandler(&fakeSubmitter{err: context.DeadlineExceeded}, testLogger())

		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"name":"a","phone":"1","location":"x"}`))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "failed to submit order, please try again" {
			t.Errorf("unexpected error message: %s", resp["error"])
		}
	})
}
