package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/babyland-store/babyland/internal/cart"
	"github.com/babyland-store/babyland/internal/domain"
)

type Submitter interface {
	Submit(ctx context.Context, sessionID string, details CustomerDetails) (*domain.Order, error)
}

type Handler struct {
	service Submitter
	logger  *slog.Logger
}

func NewHandler(service Submitter, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var details CustomerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := cart.SessionID(w, r)

	order, err := h.service.Submit(r.Context(), sessionID, details)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusUnprocessableEntity, "cart is empty")
		case errors.Is(err, ErrInvalidCustomer):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to submit order", "error", err, "session_id", sessionID)
			h.writeError(w, http.StatusInternalServerError, "failed to submit order, please try again")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
