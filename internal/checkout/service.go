package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/babyland-store/babyland/internal/cart"
	"github.com/babyland-store/babyland/internal/domain"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

type CartStore interface {
	Get(ctx context.Context, sessionID string) *cart.Cart
	Clear(ctx context.Context, sessionID string)
}

type OrderWriter interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// CustomerDetails is what the checkout form collects. StoreName and Deposit
// ride along with the submission even though they live outside the shared
// customer shape (store_name on customers, deposit_amount on orders).
type CustomerDetails struct {
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Location  string          `json:"location"`
	StoreName string          `json:"store_name"`
	Deposit   decimal.Decimal `json:"deposit"`
}

// Service commits a cart plus customer details into persistent order records
// and clears the cart exactly once, only after the order is written.
type Service struct {
	carts     CartStore
	orders    OrderWriter
	publisher EventPublisher
	logger    *slog.Logger
	submitted metric.Int64Counter
}

func NewService(carts CartStore, orders OrderWriter, publisher EventPublisher, logger *slog.Logger) *Service {
	submitted, err := otel.Meter("checkout").Int64Counter("babyland.orders.submitted")
	if err != nil {
		logger.Error("failed to create submitted counter", "error", err)
	}

	return &Service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		submitted: submitted,
	}
}

func (s *Service) Submit(ctx context.Context, sessionID string, details CustomerDetails) (*domain.Order, error) {
	c := s.carts.Get(ctx, sessionID)
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	if err := validate(details); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	customer := &domain.Customer{
		Name:      details.Name,
		Phone:     details.Phone,
		Email:     details.Email,
		Location:  details.Location,
		StoreName: details.StoreName,
		CreatedAt: now,
	}
	if err := s.orders.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, domain.OrderItem{
			ProductID:   line.Product.ID,
			ProductCode: line.Product.Code,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			Subtotal:    line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	order := &domain.Order{
		CustomerID:    customer.ID,
		Customer:      customer,
		TotalAmount:   c.TotalAmount(),
		DepositAmount: details.Deposit,
		Status:        domain.OrderStatusPending,
		Items:         items,
		CreatedAt:     now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.publisher != nil {
		event := domain.OrderSubmittedEvent{
			OrderID:       order.ID,
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			TotalAmount:   order.TotalAmount,
			Items:         order.Items,
			Timestamp:     order.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
			s.logger.Error("failed to publish order submitted event", "error", err, "order_id", order.ID)
		}
	}

	s.carts.Clear(ctx, sessionID)

	if s.submitted != nil {
		s.submitted.Add(ctx, 1)
	}

	s.logger.Info("order submitted", "order_id", order.ID, "customer_id", customer.ID, "total", order.TotalAmount)
	return order, nil
}

func validate(details CustomerDetails) error {
	switch {
	case details.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCustomer)
	case details.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidCustomer)
	case details.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidCustomer)
	case details.Deposit.IsNegative():
		return fmt.Errorf("%w: deposit must not be negative", ErrInvalidCustomer)
	}
	return nil
}
