package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockdesk/internal/domain"

	"github.com/google/uuid"
)

func insertTestClient(t *testing.T, taxID string) uuid.UUID {
	t.Helper()

	repo := NewClientRepository(testDB)
	client := &domain.Client{
		ID:        uuid.New(),
		Name:      "Test Client",
		Email:     "client@example.com",
		TaxID:     taxID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := repo.Create(context.Background(), client); err != nil {
		t.Fatalf("failed to insert test client: %v", err)
	}
	return client.ID
}

func TestSaleRoundTrip_PreservesItemsInBasketOrder(t *testing.T) {
	saleRepo := NewSaleRepository(testDB)
	ctx := context.Background()

	clientID := insertTestClient(t, "98765432100")
	firstProduct := insertTestProduct(t, 10)
	secondProduct := insertTestProduct(t, 10)

	saleID := uuid.New()
	sale := &domain.Sale{
		ID:        saleID,
		ClientID:  clientID,
		Total:     34.97,
		CreatedAt: time.Now(),
		Items: []*domain.SaleItem{
			{ID: uuid.New(), SaleID: saleID, ProductID: firstProduct, Quantity: 2, UnitPrice: 9.99, Position: 0},
			{ID: uuid.New(), SaleID: saleID, ProductID: secondProduct, Quantity: 3, UnitPrice: 4.99, Position: 1},
		},
	}

	if err := saleRepo.Create(ctx, sale); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := saleRepo.FindByID(ctx, saleID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}

	if loaded.ClientName != "Test Client" {
		t.Errorf("expected purchaser name joined, got %q", loaded.ClientName)
	}
	if loaded.Total != 34.97 {
		t.Errorf("expected total 34.97, got %v", loaded.Total)
	}
	if len(loaded.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(loaded.Items))
	}
	if loaded.Items[0].ProductID != firstProduct || loaded.Items[1].ProductID != secondProduct {
		t.Error("items not returned in basket order")
	}
	if loaded.Items[0].Quantity != 2 || loaded.Items[1].Quantity != 3 {
		t.Errorf("item quantities wrong: %d, %d", loaded.Items[0].Quantity, loaded.Items[1].Quantity)
	}
}

func TestFindSale_Unknown(t *testing.T) {
	repo := NewSaleRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestDeleteProduct_BlockedBySaleItems(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	saleRepo := NewSaleRepository(testDB)
	ctx := context.Background()

	clientID := insertTestClient(t, "11223344556")
	productID := insertTestProduct(t, 10)

	saleID := uuid.New()
	sale := &domain.Sale{
		ID:        saleID,
		ClientID:  clientID,
		Total:     9.99,
		CreatedAt: time.Now(),
		Items: []*domain.SaleItem{
			{ID: uuid.New(), SaleID: saleID, ProductID: productID, Quantity: 1, UnitPrice: 9.99, Position: 0},
		},
	}
	if err := saleRepo.Create(ctx, sale); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := productRepo.Delete(ctx, productID)
	if !errors.Is(err, ErrProductHasDependencies) {
		t.Fatalf("expected ErrProductHasDependencies, got %v", err)
	}
}

func TestCreateClient_DuplicateTaxID(t *testing.T) {
	repo := NewClientRepository(testDB)
	ctx := context.Background()

	insertTestClient(t, "55544433322")

	duplicate := &domain.Client{
		ID:        uuid.New(),
		Name:      "Someone Else",
		TaxID:     "55544433322",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err := repo.Create(ctx, duplicate)
	if !errors.Is(err, ErrClientAlreadyExists) {
		t.Fatalf("expected ErrClientAlreadyExists, got %v", err)
	}
}
