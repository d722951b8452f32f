package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"stockdesk/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrStockWouldGoNegative is returned by AdjustStock when applying the
	// delta would leave the stock quantity below zero. Nothing is mutated.
	ErrStockWouldGoNegative = errors.New("stock would go negative")
	// ErrProductHasDependencies is returned by Delete when stock movements or
	// sale items still reference the product.
	ErrProductHasDependencies = errors.New("product has dependent records")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// FindForUpdate reads a product holding a row lock. Only meaningful when
	// the repository is bound to a transaction via WithTx.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, activeOnly bool, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	GetStock(ctx context.Context, id uuid.UUID) (int, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	WithTx(tx DBTX) ProductRepository
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *productRepository) WithTx(tx DBTX) ProductRepository {
	return &productRepository{db: tx}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, price, stock, expires_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.Price,
		product.Stock,
		product.ExpiresAt,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, brand = $3, price = $4, stock = $5,
		    expires_at = $6, active = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.Price,
		product.Stock,
		product.ExpiresAt,
		product.Active,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. Products referenced by stock movements or sale
// items cannot be deleted; the audit history must stay intact.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var hasMovements bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)`,
		id,
	).Scan(&hasMovements)
	if err != nil {
		return fmt.Errorf("failed to check stock movements: %w", err)
	}
	if hasMovements {
		return ErrProductHasDependencies
	}

	var hasSaleItems bool
	err = r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)`,
		id,
	).Scan(&hasSaleItems)
	if err != nil {
		return fmt.Errorf("failed to check sale items: %w", err)
	}
	if hasSaleItems {
		return ErrProductHasDependencies
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, brand, price, stock, expires_at, active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	return r.scanProduct(r.db.QueryRowContext(ctx, query, id))
}

// FindForUpdate retrieves a product holding a row-level lock so that a
// validate-then-decrement sequence cannot race a concurrent sale.
func (r *productRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, brand, price, stock, expires_at, active, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	return r.scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *productRepository) scanProduct(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.Price,
		&product.Stock,
		&product.ExpiresAt,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// GetStock returns the current stock quantity for a product
func (r *productRepository) GetStock(ctx context.Context, id uuid.UUID) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to get stock: %w", err)
	}
	return stock, nil
}

// AdjustStock applies delta to the product stock in a single conditional
// update. The WHERE clause keeps the quantity from ever dropping below zero;
// when the guard rejects the update nothing is mutated.
func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`

	var newStock int
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&newStock)
	if err != nil {
		if err == sql.ErrNoRows {
			// Either the product is missing or the guard rejected the delta.
			if _, stockErr := r.GetStock(ctx, id); stockErr != nil {
				return 0, stockErr
			}
			return 0, ErrStockWouldGoNegative
		}
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return newStock, nil
}

// List retrieves products with optional active filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, activeOnly bool, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"brand":      true,
		"price":      true,
		"stock":      true,
		"created_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "name" // Default sort field
	}

	// Validate sort order
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderAsc // Default sort order
	}

	whereClause := ""
	if activeOnly {
		whereClause = "WHERE active = TRUE"
	}

	// Count total products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, name, brand, price, stock, expires_at, active, created_at, updated_at
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $1 OFFSET $2
	`, whereClause, sortBy, sortOrder)

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Search searches for products by name or brand with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	// If query is empty, return all products
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, false, page, pageSize, "name", SortOrderAsc)
	}

	// Use ILIKE for case-insensitive search
	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := `
		SELECT id, name, brand, price, stock, expires_at, active, created_at, updated_at
		FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Brand,
			&product.Price,
			&product.Stock,
			&product.ExpiresAt,
			&product.Active,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
