package transport

import (
	"errors"
	"net/http"

	"stockdesk/internal/middleware"
	"stockdesk/internal/repository"
	"stockdesk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientRequest represents the client create/update payload
type ClientRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	TaxID string `json:"tax_id" validate:"required"`
}

// ClientHandler handles HTTP requests for client operations
type ClientHandler struct {
	clientService service.ClientService
	logger        *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// RegisterRoutes registers all client routes. Client management is admin-only.
func (h *ClientHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/clients", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/", h.ListClients)
		r.Get("/{id}", h.GetClient)
		r.Post("/", h.CreateClient)
		r.Put("/{id}", h.UpdateClient)
		r.Delete("/{id}", h.DeleteClient)
	})
}

// ListClients handles listing and searching clients by name or tax id
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	query := r.URL.Query().Get("q")

	clients, total, err := h.clientService.SearchClients(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListResponse{Items: clients, Total: total, Page: page, PageSize: pageSize})
}

// GetClient handles retrieving a single client
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(r.Context(), id)
	if err != nil {
		h.respondClientErr(w, err, "failed to get client")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, client)
}

// CreateClient handles registering a client
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(r.Context(), req.Name, req.Email, req.TaxID)
	if err != nil {
		h.respondClientErr(w, err, "failed to create client")
		return
	}

	h.logger.Info("Client created", zap.String("client_id", client.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, client)
}

// UpdateClient handles updating a client
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	var req ClientRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(r.Context(), id, req.Name, req.Email, req.TaxID)
	if err != nil {
		h.respondClientErr(w, err, "failed to update client")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, client)
}

// DeleteClient handles deleting a client
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(r.Context(), id); err != nil {
		h.respondClientErr(w, err, "failed to delete client")
		return
	}

	h.logger.Info("Client deleted", zap.String("client_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

func (h *ClientHandler) respondClientErr(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrClientNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "client not found")
	case errors.Is(err, repository.ErrClientAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "client with this tax id already exists")
	case errors.Is(err, service.ErrInvalidTaxID):
		middleware.RespondWithError(w, http.StatusBadRequest, "tax id must contain digits")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
