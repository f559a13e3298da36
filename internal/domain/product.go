package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog. Code is the business key printed on the
// QR label; ID is the surrogate key everything else references.
type Product struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
