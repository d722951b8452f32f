package transport

import (
	"errors"
	"net/http"

	"stockdesk/internal/domain"
	"stockdesk/internal/middleware"
	"stockdesk/internal/repository"
	"stockdesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjustStockRequest represents the manual stock adjustment payload
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Direction string    `json:"direction" validate:"required,oneof=IN OUT"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	Reason    string    `json:"reason" validate:"required"`
}

// StockHandler handles HTTP requests for stock movement operations
type StockHandler struct {
	stockService service.StockService
	logger       *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// RegisterRoutes registers all stock routes. Stock management is admin-only.
func (h *StockHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/stock", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/movements", h.ListMovements)
		r.Post("/movements", h.AdjustStock)
	})
}

// AdjustStock handles a manual IN/OUT stock adjustment
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	movement, err := h.stockService.AdjustManually(
		r.Context(),
		req.ProductID,
		domain.MovementDirection(req.Direction),
		req.Quantity,
		req.Reason,
	)
	if err != nil {
		h.respondStockErr(w, err)
		return
	}

	h.logger.Info("Stock movement recorded",
		zap.String("product_id", movement.ProductID.String()),
		zap.String("direction", string(movement.Direction)),
		zap.Int("quantity", movement.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, movement)
}

// ListMovements handles listing the stock audit log
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	movements, total, err := h.stockService.ListMovements(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list stock movements", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list stock movements")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: movements, Total: total, Page: page, PageSize: pageSize})
}

func (h *StockHandler) respondStockErr(w http.ResponseWriter, err error) {
	var insufficient *service.InsufficientStockError

	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, service.ErrInvalidDirection):
		middleware.RespondWithError(w, http.StatusBadRequest, "direction must be IN or OUT")
	case errors.As(err, &insufficient):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, insufficient.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrPartialApply):
		h.logger.Error("Stock adjustment partially applied, manual reconciliation may be needed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "adjustment failed and may be partially applied")
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.Error("Storage unavailable while adjusting stock", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "storage unavailable, try again later")
	default:
		h.logger.Error("Failed to adjust stock", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to adjust stock")
	}
}
