package service

import (
	"context"
	"fmt"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

// SaleService records sales against the catalog. Recording a sale validates
// the whole basket before touching any stock, then decrements stock, appends
// one audit movement per line, and persists the sale with its items, all in
// one transaction.
type SaleService interface {
	RecordSale(ctx context.Context, clientID uuid.UUID, basket []domain.BasketLine) (*domain.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	ListSales(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error)
}

type saleService struct {
	txm          repository.TxManager
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	saleRepo     repository.SaleRepository
	clientRepo   repository.ClientRepository
}

// NewSaleService creates a new instance of SaleService
func NewSaleService(
	txm repository.TxManager,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
) SaleService {
	return &saleService{
		txm:          txm,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
		clientRepo:   clientRepo,
	}
}

// RecordSale validates the basket and applies it atomically. Infrastructure
// failures are retried once; the failed attempt was rolled back, so the retry
// starts from clean state.
func (s *saleService) RecordSale(ctx context.Context, clientID uuid.UUID, basket []domain.BasketLine) (*domain.Sale, error) {
	if len(basket) == 0 {
		return nil, ErrInvalidBasket
	}
	for _, line := range basket {
		if line.Quantity <= 0 {
			return nil, ErrInvalidBasket
		}
	}

	sale, err := s.recordOnce(ctx, clientID, basket)
	if err != nil && isStorageFailure(err) {
		sale, err = s.recordOnce(ctx, clientID, basket)
	}
	if err != nil {
		return nil, classifyLedgerErr(err)
	}

	return sale, nil
}

func (s *saleService) recordOnce(ctx context.Context, clientID uuid.UUID, basket []domain.BasketLine) (*domain.Sale, error) {
	var sale *domain.Sale

	err := s.txm.RunInTx(ctx, func(tx repository.DBTX) error {
		products := s.productRepo.WithTx(tx)
		movements := s.movementRepo.WithTx(tx)
		sales := s.saleRepo.WithTx(tx)
		clients := s.clientRepo.WithTx(tx)

		client, err := clients.FindByID(ctx, clientID)
		if err != nil {
			return err
		}

		// Read and lock every product up front. Prices are captured here so
		// a concurrent price edit cannot change what the sale records, and
		// the row locks serialize concurrent sales on the same products.
		snapshots := make([]*domain.Product, len(basket))
		for i, line := range basket {
			product, err := products.FindForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			snapshots[i] = product
		}

		// Availability check for every line before any mutation. reserved
		// tracks quantities already claimed by earlier lines of the same
		// product so a duplicated product cannot oversell.
		reserved := make(map[uuid.UUID]int)
		for i, line := range basket {
			available := snapshots[i].Stock - reserved[line.ProductID]
			if line.Quantity > available {
				return &InsufficientStockError{
					ProductID:   line.ProductID,
					ProductName: snapshots[i].Name,
					Requested:   line.Quantity,
					Available:   available,
				}
			}
			reserved[line.ProductID] += line.Quantity
		}

		now := time.Now()
		saleID := uuid.New()
		total := 0.0
		items := make([]*domain.SaleItem, 0, len(basket))

		for i, line := range basket {
			if _, err := products.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return err
			}

			movement := &domain.StockMovement{
				ID:        uuid.New(),
				ProductID: line.ProductID,
				Direction: domain.MovementOut,
				Quantity:  line.Quantity,
				Reason:    fmt.Sprintf("sale to %s", client.Name),
				CreatedAt: now,
			}
			if err := movements.Create(ctx, movement); err != nil {
				return err
			}

			total += float64(line.Quantity) * snapshots[i].Price
			items = append(items, &domain.SaleItem{
				ID:        uuid.New(),
				SaleID:    saleID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: snapshots[i].Price,
				Position:  i,
			})
		}

		sale = &domain.Sale{
			ID:         saleID,
			ClientID:   clientID,
			ClientName: client.Name,
			Total:      total,
			CreatedAt:  now,
			Items:      items,
		}

		return sales.Create(ctx, sale)
	})

	if err != nil {
		return nil, err
	}

	return sale, nil
}

// GetSale retrieves a sale with its line items
func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	return s.saleRepo.FindByID(ctx, id)
}

// ListSales retrieves sales with purchaser names, newest first
func (s *saleService) ListSales(ctx context.Context, page, pageSize int) ([]*domain.Sale, int, error) {
	return s.saleRepo.List(ctx, page, pageSize)
}
