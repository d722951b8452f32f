package service

import (
	"context"
	"time"

	"stockdesk/internal/domain"
	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

// StockService handles manual stock adjustments and the movement history
type StockService interface {
	AdjustManually(ctx context.Context, productID uuid.UUID, direction domain.MovementDirection, quantity int, reason string) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, page, pageSize int) ([]*domain.StockMovement, int, error)
}

type stockService struct {
	txm          repository.TxManager
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

// NewStockService creates a new instance of StockService
func NewStockService(
	txm repository.TxManager,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) StockService {
	return &stockService{
		txm:          txm,
		productRepo:  productRepo,
		movementRepo: movementRepo,
	}
}

// AdjustManually applies a stock delta and appends one audit row, as one
// transaction. An OUT adjustment larger than the current stock fails with
// InsufficientStockError and leaves state unchanged.
func (s *stockService) AdjustManually(ctx context.Context, productID uuid.UUID, direction domain.MovementDirection, quantity int, reason string) (*domain.StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}

	movement, err := s.adjustOnce(ctx, productID, direction, quantity, reason)
	if err != nil && isStorageFailure(err) {
		movement, err = s.adjustOnce(ctx, productID, direction, quantity, reason)
	}
	if err != nil {
		return nil, classifyLedgerErr(err)
	}

	return movement, nil
}

func (s *stockService) adjustOnce(ctx context.Context, productID uuid.UUID, direction domain.MovementDirection, quantity int, reason string) (*domain.StockMovement, error) {
	var movement *domain.StockMovement

	err := s.txm.RunInTx(ctx, func(tx repository.DBTX) error {
		products := s.productRepo.WithTx(tx)
		movements := s.movementRepo.WithTx(tx)

		product, err := products.FindForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		delta := quantity
		if direction == domain.MovementOut {
			if product.Stock < quantity {
				return &InsufficientStockError{
					ProductID:   productID,
					ProductName: product.Name,
					Requested:   quantity,
					Available:   product.Stock,
				}
			}
			delta = -quantity
		}

		if _, err := products.AdjustStock(ctx, productID, delta); err != nil {
			return err
		}

		movement = &domain.StockMovement{
			ID:        uuid.New(),
			ProductID: productID,
			Direction: direction,
			Quantity:  quantity,
			Reason:    reason,
			CreatedAt: time.Now(),
		}

		return movements.Create(ctx, movement)
	})

	if err != nil {
		return nil, err
	}

	return movement, nil
}

// ListMovements retrieves the stock audit log with product names, newest first
func (s *stockService) ListMovements(ctx context.Context, page, pageSize int) ([]*domain.StockMovement, int, error) {
	return s.movementRepo.List(ctx, page, pageSize)
}
