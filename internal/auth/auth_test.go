package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService("open-sesame", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestService_Login(t *testing.T) {
	t.Run("grants a token for the right password", func(t *testing.T) {
		service := newTestService(t)

		token, err := service.Login("open-sesame")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if token == "" {
			t.Fatal("expected a token")
		}
		if !service.Validate(token) {
			t.Error("expected token to validate")
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		service := newTestService(t)

		if _, err := service.Login("wrong"); err != ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("refuses an empty configured password", func(t *testing.T) {
		if _, err := NewService("", time.Hour, testLogger()); err == nil {
			t.Error("expected an error for empty password")
		}
	})
}

func TestService_SessionLifecycle(t *testing.T) {
	t.Run("expired sessions stop validating", func(t *testing.T) {
		service := newTestService(t)

		current := time.Now()
		service.now = func() time.Time { return current }

		token, err := service.Login("open-sesame")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		current = current.Add(2 * time.Hour)
		if service.Validate(token) {
			t.Error("expected expired token to fail validation")
		}
	})

	t.Run("logout invalidates the token", func(t *testing.T) {
		service := newTestService(t)

		token, _ := service.Login("open-sesame")
		service.Logout(token)

		if service.Validate(token) {
			t.Error("expected logged-out token to fail validation")
		}
	})

	t.Run("unknown tokens never validate", func(t *testing.T) {
		if newTestService(t).Validate("made-up") {
			t.Error("expected unknown token to fail validation")
		}
	})
}

func TestService_Middleware(t *testing.T) {
	service := newTestService(t)
	protected := service.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects requests without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects a bogus token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("passes a live session through", func(t *testing.T) {
		token, err := service.Login("open-sesame")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestHandler_Login(t *testing.T) {
	t.Run("returns the token", func(t *testing.T) {
		handler := NewHandler(newTestService(t), testLogger())

		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"open-sesame"}`))
		rec := httptest.NewRecorder()

		handler.HandleLogin(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp loginResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token in the response")
		}
	})

	t.Run("returns 401 for a wrong password", func(t *testing.T) {
		handler := NewHandler(newTestService(t), testLogger())

		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"guess"}`))
		rec := httptest.NewRecorder()

		handler.HandleLogin(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestHandler_Logout(t *testing.T) {
	service := newTestService(t)
	handler := NewHandler(service, testLogger())

	token, err := service.Login("open-sesame")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if service.Validate(token) {
		t.Error("expected token to be invalidated")
	}
}
