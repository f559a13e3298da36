package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/babyland-store/babyland/internal/domain"
)

// Handler reacts to submitted orders: it emails a confirmation to the
// customer and moves the order to processing so it shows up in the
// admin fulfilment queue.
type Handler struct {
	emailServiceURL string
	shopServiceURL  string
	adminToken      string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewHandler(emailServiceURL, shopServiceURL, adminToken string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		emailServiceURL: emailServiceURL,
		shopServiceURL:  shopServiceURL,
		adminToken:      adminToken,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderSubmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order submitted event: %w", err)
	}

	h.logger.Info("processing order submitted event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	if event.CustomerEmail == "" {
		h.logger.Info("customer has no email, skipping confirmation", "order_id", event.OrderID)
	} else if err := h.sendConfirmationEmail(ctx, event); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	if err := h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusProcessing); err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("update order status: %w", err)
	}

	h.logger.Info("order notification complete", "order_id", event.OrderID)
	return nil
}

func (h *Handler) sendConfirmationEmail(ctx context.Context, event domain.OrderSubmittedEvent) error {
	body := map[string]string{
		"to":      event.CustomerEmail,
		"subject": "Baby Land order received: " + event.OrderID,
		"body": fmt.Sprintf("Hi %s, we received your order %s with %d items, totalling %s. We will be in touch shortly.",
			event.CustomerName, event.OrderID, len(event.Items), event.TotalAmount.StringFixed(2)),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}

func (h *Handler) updateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	data, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/admin/orders/%s/status", h.shopServiceURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.adminToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shop service returned status %d", resp.StatusCode)
	}

	return nil
}
