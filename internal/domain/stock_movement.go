package domain

import (
	"time"

	"github.com/google/uuid"
)

// MovementDirection indicates whether a stock movement adds or removes units
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// Valid reports whether the direction is one of the known values
func (d MovementDirection) Valid() bool {
	return d == MovementIn || d == MovementOut
}

// StockMovement is one row of the append-only stock audit log.
// Movements are never updated or deleted.
type StockMovement struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	ProductID   uuid.UUID         `json:"product_id" db:"product_id"`
	ProductName string            `json:"product_name,omitempty" db:"-"`
	Direction   MovementDirection `json:"direction" db:"direction"`
	Quantity    int               `json:"quantity" db:"quantity"`
	Reason      string            `json:"reason" db:"reason"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}
