package service

import (
	"context"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

// ProductService defines the interface for catalog business logic
type ProductService interface {
	CreateProduct(ctx context.Context, name, brand string, price float64, expiresAt *time.Time) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, name, brand string, price float64, stock int, expiresAt *time.Time, active bool) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, activeOnly bool, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// CreateProduct adds a product to the catalog. Stock always starts at zero;
// units only enter through stock movements.
func (s *productService) CreateProduct(ctx context.Context, name, brand string, price float64, expiresAt *time.Time) (*domain.Product, error) {
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Brand:     brand,
		Price:     price,
		Stock:     0,
		ExpiresAt: expiresAt,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// UpdateProduct replaces the editable attributes of a product
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, name, brand string, price float64, stock int, expiresAt *time.Time, active bool) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = name
	product.Brand = brand
	product.Price = price
	product.Stock = stock
	product.ExpiresAt = expiresAt
	product.Active = active
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes a product unless movements or sales still reference it
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts retrieves products with pagination and sorting
func (s *productService) ListProducts(ctx context.Context, activeOnly bool, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, activeOnly, page, pageSize, sortBy, sortOrder)
}

// SearchProducts searches products by name or brand
func (s *productService) SearchProducts(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}
