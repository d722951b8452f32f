package repository

import (
	"context"
	"fmt"

	"stockdesk/internal/domain"
)

// StockMovementRepository defines the interface for the append-only stock
// audit log. Movements are only ever inserted and read.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *domain.StockMovement) error
	List(ctx context.Context, page, pageSize int) ([]*domain.StockMovement, int, error)
	WithTx(tx DBTX) StockMovementRepository
}

type stockMovementRepository struct {
	db DBTX
}

// NewStockMovementRepository creates a new instance of StockMovementRepository
func NewStockMovementRepository(db DBTX) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *stockMovementRepository) WithTx(tx DBTX) StockMovementRepository {
	return &stockMovementRepository{db: tx}
}

// Create appends one audit row using parameterized queries
func (r *stockMovementRepository) Create(ctx context.Context, movement *domain.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, direction, quantity, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		movement.ID,
		movement.ProductID,
		movement.Direction,
		movement.Quantity,
		movement.Reason,
		movement.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create stock movement: %w", err)
	}

	return nil
}

// List retrieves stock movements with the product name joined, newest first
func (r *stockMovementRepository) List(ctx context.Context, page, pageSize int) ([]*domain.StockMovement, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_movements`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count stock movements: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT m.id, m.product_id, p.name, m.direction, m.quantity, m.reason, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	movements := []*domain.StockMovement{}
	for rows.Next() {
		movement := &domain.StockMovement{}
		err := rows.Scan(
			&movement.ID,
			&movement.ProductID,
			&movement.ProductName,
			&movement.Direction,
			&movement.Quantity,
			&movement.Reason,
			&movement.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, movement)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating stock movements: %w", err)
	}

	return movements, total, nil
}
