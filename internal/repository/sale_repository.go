package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"stockdesk/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository defines the interface for sale data access. Sales are
// append-only: there is no update or delete.
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error)
	WithTx(tx DBTX) SaleRepository
}

type saleRepository struct {
	db DBTX
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db DBTX) SaleRepository {
	return &saleRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *saleRepository) WithTx(tx DBTX) SaleRepository {
	return &saleRepository{db: tx}
}

// Create inserts a sale and its line items using parameterized queries.
// Callers are expected to run it inside a transaction via WithTx.
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	query := `
		INSERT INTO sales (id, client_id, total, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, sale.ID, sale.ClientID, sale.Total, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range sale.Items {
		_, err := r.db.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.SaleID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create sale item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves a sale with its line items in basket order
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `
		SELECT s.id, s.client_id, c.name, s.total, s.created_at
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = $1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.ClientID,
		&sale.ClientName,
		&sale.Total,
		&sale.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	itemQuery := `
		SELECT id, sale_id, product_id, quantity, unit_price, position
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.SaleItem{}
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		sale.Items = append(sale.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return sale, nil
}

// List retrieves sales with the purchaser name joined, newest first
func (r *saleRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT s.id, s.client_id, c.name, s.total, s.created_at
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		ORDER BY s.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID,
			&sale.ClientID,
			&sale.ClientName,
			&sale.Total,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, total, nil
}
