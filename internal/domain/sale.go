package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sale represents a recorded checkout. Immutable once created.
type Sale struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	ClientID   uuid.UUID   `json:"client_id" db:"client_id"`
	ClientName string      `json:"client_name,omitempty" db:"-"`
	Total      float64     `json:"total" db:"total"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	Items      []*SaleItem `json:"items,omitempty" db:"-"`
}

// SaleItem represents one line of a sale. UnitPrice is the product price
// captured when the sale was validated, not the current catalog price.
type SaleItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SaleID    uuid.UUID `json:"sale_id" db:"sale_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
	Position  int       `json:"position" db:"position"`
}

// BasketLine is one requested line of a sale before it is recorded.
type BasketLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
