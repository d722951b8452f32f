package transport

import (
	"errors"
	"net/http"
	"time"

	"stockdesk/internal/middleware"
	"stockdesk/internal/repository"
	"stockdesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload. New products
// always start with zero stock.
type CreateProductRequest struct {
	Name      string  `json:"name" validate:"required"`
	Brand     string  `json:"brand" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	ExpiresAt string  `json:"expires_at,omitempty"`
}

// UpdateProductRequest represents the product update payload
type UpdateProductRequest struct {
	Name      string  `json:"name" validate:"required"`
	Brand     string  `json:"brand" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Stock     int     `json:"stock" validate:"gte=0"`
	ExpiresAt string  `json:"expires_at,omitempty"`
	Active    bool    `json:"active"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// ListProducts handles listing and searching products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	if query := r.URL.Query().Get("q"); query != "" {
		products, total, err := h.productService.SearchProducts(r.Context(), query, page, pageSize)
		if err != nil {
			h.logger.Error("Failed to search products", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: products, Total: total, Page: page, PageSize: pageSize})
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sort_order"))

	products, total, err := h.productService.ListProducts(r.Context(), activeOnly, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: products, Total: total, Page: page, PageSize: pageSize})
}

// GetProduct handles retrieving a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		h.respondProductErr(w, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a product to the catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expiresAt, ok := parseExpiry(w, req.ExpiresAt)
	if !ok {
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.Name, req.Brand, req.Price, expiresAt)
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles updating a product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expiresAt, ok := parseExpiry(w, req.ExpiresAt)
	if !ok {
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, req.Name, req.Brand, req.Price, req.Stock, expiresAt, req.Active)
	if err != nil {
		h.respondProductErr(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles deleting a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductHasDependencies) {
			middleware.RespondWithError(w, http.StatusConflict, "product has stock movements or sales and cannot be deleted")
			return
		}
		h.respondProductErr(w, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductHandler) respondProductErr(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, repository.ErrProductNotFound) {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	h.logger.Error(fallback, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
}

// parseExpiry parses an optional YYYY-MM-DD expiry date. Writes a 400 and
// returns ok=false when the value is present but malformed.
func parseExpiry(w http.ResponseWriter, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "expires_at must be YYYY-MM-DD")
		return nil, false
	}

	return &t, true
}
