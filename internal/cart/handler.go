package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/babyland-store/babyland/internal/domain"
)

// SessionCookie carries the shopper's cart session id across requests.
const SessionCookie = "babyland_cart"

// SessionID returns the cart session for the request, minting a new one and
// setting the cookie when the shopper has none yet.
func SessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
	})
	return id
}

// ProductLookup resolves the product to embed in a new cart line.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Handler struct {
	store    *Store
	products ProductLookup
	logger   *slog.Logger
}

func NewHandler(store *Store, products ProductLookup, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		products: products,
		logger:   logger,
	}
}

type cartResponse struct {
	Lines       []Line          `json:"lines"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func newCartResponse(c *Cart) cartResponse {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return cartResponse{
		Lines:       lines,
		TotalItems:  c.TotalItems(),
		TotalAmount: c.TotalAmount(),
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)
	c := h.store.Get(r.Context(), sessionID)
	h.writeJSON(w, http.StatusOK, newCartResponse(c))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Error("failed to look up product", "error", err, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	sessionID := SessionID(w, r)
	c := h.store.Add(r.Context(), sessionID, *product, req.Quantity)

	h.logger.Info("item added to cart", "session_id", sessionID, "product_id", product.ID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, newCartResponse(c))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := SessionID(w, r)
	c := h.store.SetQuantity(r.Context(), sessionID, productID, req.Quantity)
	h.writeJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	sessionID := SessionID(w, r)
	c := h.store.Remove(r.Context(), sessionID, productID)
	h.writeJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(w, r)
	h.store.Clear(r.Context(), sessionID)
	h.writeJSON(w, http.StatusOK, newCartResponse(&Cart{}))
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
