package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/babyland-store/babyland/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	customer.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, email, location, store_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, customer.ID, customer.Name, customer.Phone, customer.Email,
		customer.Location, customer.StoreName, customer.CreatedAt)
	return err
}

// CreateOrder writes the order row and its item snapshots in one transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_amount, deposit_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.CustomerID, order.TotalAmount, order.DepositAmount, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New().String()
		item.OrderID = order.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_code, product_name, unit_price, quantity, subtotal, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, item.OrderID, item.ProductID, item.ProductCode, item.ProductName,
			item.UnitPrice, item.Quantity, item.Subtotal, order.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{Customer: &domain.Customer{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.customer_id, o.total_amount, o.deposit_amount, o.status, o.created_at, o.updated_at,
		       c.id, c.name, c.phone, c.email, c.location, c.store_name
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.TotalAmount, &order.DepositAmount,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
		&order.Customer.ID, &order.Customer.Name, &order.Customer.Phone,
		&order.Customer.Email, &order.Customer.Location, &order.Customer.StoreName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_code, product_name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductCode,
			&item.ProductName, &item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// List returns orders newest first with a customer summary and items. Items
// for all orders are fetched in one batched query.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.listWhere(ctx, "", nil)
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.listWhere(ctx, "WHERE o.status = $1", []any{status})
}

func (r *OrderRepository) listWhere(ctx context.Context, where string, args []any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.total_amount, o.deposit_amount, o.status, o.created_at, o.updated_at,
		       c.name, c.phone
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		`+where+`
		ORDER BY o.created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		order := domain.Order{Customer: &domain.Customer{}}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.TotalAmount, &order.DepositAmount,
			&order.Status, &order.CreatedAt, &order.UpdatedAt,
			&order.Customer.Name, &order.Customer.Phone); err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_code, product_name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductCode,
			&item.ProductName, &item.UnitPrice, &item.Quantity, &item.Subtotal); err != nil {
			return nil, err
		}
		order := orderMap[item.OrderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Stats backs the admin dashboard counters.
func (r *OrderRepository) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products),
			COUNT(*),
			COALESCE(SUM(total_amount), 0)
		FROM orders
	`).Scan(&stats.TotalProducts, &stats.TotalOrders, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
