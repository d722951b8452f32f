package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a purchaser registered in the system
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	TaxID     string    `json:"tax_id" db:"tax_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
