package scanner

import (
	"context"
	"encoding/json"
	"image"
	"log/slog"
	"net/http"

	_ "image/jpeg"
	_ "image/png"

	"github.com/babyland-store/babyland/internal/domain"
)

// ProductLookup resolves a decoded code to the product the shopper scanned.
type ProductLookup interface {
	GetByCode(ctx context.Context, code string) (*domain.Product, error)
}

// Handler decodes a single uploaded camera frame and resolves the product.
type Handler struct {
	decoder  Decoder
	products ProductLookup
	logger   *slog.Logger
}

func NewHandler(decoder Decoder, products ProductLookup, logger *slog.Logger) *Handler {
	return &Handler{
		decoder:  decoder,
		products: products,
		logger:   logger,
	}
}

type scanResponse struct {
	Code    string          `json:"code"`
	Product *domain.Product `json:"product"`
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	frame, _, err := image.Decode(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid frame image")
		return
	}

	code, ok, err := h.decoder.Decode(frame)
	if err != nil {
		h.logger.Error("failed to decode frame", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		h.writeError(w, http.StatusUnprocessableEntity, "no QR code found in frame")
		return
	}

	product, err := h.products.GetByCode(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to look up scanned product", "error", err, "code", code)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.logger.Info("product scanned", "code", code, "product_id", product.ID)
	h.writeJSON(w, http.StatusOK, scanResponse{Code: code, Product: product})
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
