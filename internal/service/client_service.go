package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

var nonDigits = regexp.MustCompile(`\D`)

var (
	// ErrInvalidTaxID is returned when a tax id has no digits at all
	ErrInvalidTaxID = errors.New("tax id must contain digits")
)

// NormalizeTaxID strips every non-digit character from a tax id so that
// formatted and unformatted inputs compare equal.
func NormalizeTaxID(taxID string) string {
	return nonDigits.ReplaceAllString(taxID, "")
}

// ClientService defines the interface for client business logic
type ClientService interface {
	CreateClient(ctx context.Context, name, email, taxID string) (*domain.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, name, email, taxID string) (*domain.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	SearchClients(ctx context.Context, query string, page, pageSize int) ([]*domain.Client, int, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new instance of ClientService
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

// CreateClient registers a client. The tax id is normalized to digits and
// must be unique.
func (s *clientService) CreateClient(ctx context.Context, name, email, taxID string) (*domain.Client, error) {
	normalized := NormalizeTaxID(taxID)
	if normalized == "" {
		return nil, ErrInvalidTaxID
	}

	existing, err := s.clientRepo.FindByTaxID(ctx, normalized)
	if err != nil && err != repository.ErrClientNotFound {
		return nil, fmt.Errorf("failed to check existing client: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrClientAlreadyExists
	}

	client := &domain.Client{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		TaxID:     normalized,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// UpdateClient replaces the attributes of a client, re-normalizing the tax id
func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, name, email, taxID string) (*domain.Client, error) {
	normalized := NormalizeTaxID(taxID)
	if normalized == "" {
		return nil, ErrInvalidTaxID
	}

	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Another client already holding this tax id is a conflict
	existing, err := s.clientRepo.FindByTaxID(ctx, normalized)
	if err != nil && err != repository.ErrClientNotFound {
		return nil, fmt.Errorf("failed to check existing client: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, repository.ErrClientAlreadyExists
	}

	client.Name = name
	client.Email = email
	client.TaxID = normalized
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient removes a client
func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, id)
}

// GetClient retrieves a client by ID
func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// SearchClients searches clients by name or tax id
func (s *clientService) SearchClients(ctx context.Context, query string, page, pageSize int) ([]*domain.Client, int, error) {
	return s.clientRepo.Search(ctx, query, page, pageSize)
}
