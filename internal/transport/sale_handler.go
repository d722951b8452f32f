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

// SaleLineRequest is one basket line of a sale request
type SaleLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// RecordSaleRequest represents the sale creation payload
type RecordSaleRequest struct {
	ClientID uuid.UUID         `json:"client_id" validate:"required"`
	Items    []SaleLineRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleHandler handles HTTP requests for sale operations
type SaleHandler struct {
	saleService service.SaleService
	logger      *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// RegisterRoutes registers all sale routes. Sales are admin-only.
func (h *SaleHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListSales)
		r.Get("/{id}", h.GetSale)
		r.Post("/", h.RecordSale)
	})
}

// RecordSale handles recording a new sale
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	basket := make([]domain.BasketLine, 0, len(req.Items))
	for _, item := range req.Items {
		basket = append(basket, domain.BasketLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	sale, err := h.saleService.RecordSale(r.Context(), req.ClientID, basket)
	if err != nil {
		h.respondSaleErr(w, err)
		return
	}

	h.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("client_id", sale.ClientID.String()),
		zap.Float64("total", sale.Total),
		zap.Int("items", len(sale.Items)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// GetSale handles retrieving a sale with its line items
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}
		h.logger.Error("Failed to get sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// ListSales handles listing sales, newest first
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	sales, total, err := h.saleService.ListSales(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: sales, Total: total, Page: page, PageSize: pageSize})
}

func (h *SaleHandler) respondSaleErr(w http.ResponseWriter, err error) {
	var insufficient *service.InsufficientStockError

	switch {
	case errors.Is(err, service.ErrInvalidBasket):
		middleware.RespondWithError(w, http.StatusBadRequest, "basket is empty or contains a non-positive quantity")
	case errors.As(err, &insufficient):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, insufficient.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrClientNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, service.ErrPartialApply):
		// The one failure mode where state may be inconsistent. Logged apart
		// from ordinary validation failures so it can be reconciled manually.
		h.logger.Error("Sale partially applied, manual reconciliation may be needed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "sale failed and may be partially applied")
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.Error("Storage unavailable while recording sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "storage unavailable, try again later")
	default:
		h.logger.Error("Failed to record sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record sale")
	}
}
