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
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("client with this tax id already exists")
)

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	FindByTaxID(ctx context.Context, taxID string) (*domain.Client, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Client, int, error)
	WithTx(tx DBTX) ClientRepository
}

type clientRepository struct {
	db DBTX
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *clientRepository) WithTx(tx DBTX) ClientRepository {
	return &clientRepository{db: tx}
}

// Create inserts a new client into the database using parameterized queries
func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, name, email, tax_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.Email,
		client.TaxID,
		client.CreatedAt,
		client.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "clients_tax_id_key") {
			return ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// Update updates an existing client in the database using parameterized queries
func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, tax_id = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.Email,
		client.TaxID,
		client.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "clients_tax_id_key") {
			return ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// Delete removes a client from the database using parameterized queries
func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}

// FindByID retrieves a client by ID using parameterized queries
func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, name, email, tax_id, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	return r.scanClient(r.db.QueryRowContext(ctx, query, id))
}

// FindByTaxID retrieves a client by its normalized tax id
func (r *clientRepository) FindByTaxID(ctx context.Context, taxID string) (*domain.Client, error) {
	query := `
		SELECT id, name, email, tax_id, created_at, updated_at
		FROM clients
		WHERE tax_id = $1
	`

	return r.scanClient(r.db.QueryRowContext(ctx, query, taxID))
}

func (r *clientRepository) scanClient(row *sql.Row) (*domain.Client, error) {
	client := &domain.Client{}
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.TaxID,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	return client, nil
}

// Search searches for clients by name or tax id with pagination. An empty
// query lists everyone ordered by name.
func (r *clientRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Client, int, error) {
	whereClause := ""
	args := []any{}
	argIndex := 1

	if strings.TrimSpace(query) != "" {
		whereClause = fmt.Sprintf("WHERE name ILIKE $%d OR tax_id ILIKE $%d", argIndex, argIndex)
		args = append(args, "%"+query+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clients %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`
		SELECT id, name, email, tax_id, created_at, updated_at
		FROM clients
		%s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search clients: %w", err)
	}
	defer rows.Close()

	clients := []*domain.Client{}
	for rows.Next() {
		client := &domain.Client{}
		err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Email,
			&client.TaxID,
			&client.CreatedAt,
			&client.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, total, nil
}
