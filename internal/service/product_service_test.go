package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

func newProductServiceFixture() (*memStore, ProductService) {
	store := newMemStore()
	return store, NewProductService(&fakeProductRepo{store: store})
}

func TestCreateProduct_StartsWithZeroStock(t *testing.T) {
	_, svc := newProductServiceFixture()

	expiry := time.Now().AddDate(1, 0, 0)
	product, err := svc.CreateProduct(context.Background(), "Widget", "Acme", 9.99, &expiry)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if product.Stock != 0 {
		t.Errorf("new product must start with zero stock, got %d", product.Stock)
	}
	if !product.Active {
		t.Error("new product must start active")
	}
	if product.ExpiresAt == nil || !product.ExpiresAt.Equal(expiry) {
		t.Errorf("expiry not stored: %v", product.ExpiresAt)
	}
}

func TestDeleteProduct_BlockedByMovementHistory(t *testing.T) {
	store, svc := newProductServiceFixture()
	productID := store.addProduct("Widget", 9.99, 10)

	store.movements = append(store.movements, &domain.StockMovement{
		ID:        uuid.New(),
		ProductID: productID,
		Direction: domain.MovementIn,
		Quantity:  10,
		CreatedAt: time.Now(),
	})

	err := svc.DeleteProduct(context.Background(), productID)
	if !errors.Is(err, repository.ErrProductHasDependencies) {
		t.Fatalf("expected ErrProductHasDependencies, got %v", err)
	}
	if _, ok := store.products[productID]; !ok {
		t.Error("product was deleted despite movement history")
	}
}

func TestDeleteProduct_UnreferencedProductIsRemoved(t *testing.T) {
	store, svc := newProductServiceFixture()
	productID := store.addProduct("Widget", 9.99, 0)

	if err := svc.DeleteProduct(context.Background(), productID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	if _, ok := store.products[productID]; ok {
		t.Error("product still present after delete")
	}

	if err := svc.DeleteProduct(context.Background(), productID); !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound on second delete, got %v", err)
	}
}

func TestUpdateProduct_UnknownProduct(t *testing.T) {
	_, svc := newProductServiceFixture()

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), "Widget", "Acme", 9.99, 5, nil, true)
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
