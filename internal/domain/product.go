package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Brand     string     `json:"brand" db:"brand"`
	Price     float64    `json:"price" db:"price"`
	Stock     int        `json:"stock" db:"stock"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Active    bool       `json:"active" db:"active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}
