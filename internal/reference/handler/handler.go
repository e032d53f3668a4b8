package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"demandas/internal/form/models"
	"demandas/internal/form/textmatch"
	"demandas/internal/reference"
	dErrors "demandas/pkg/domain-errors"
	"demandas/pkg/platform/httputil"
	"demandas/pkg/requestcontext"
)

// Service is the catalog the handler reads from.
type Service interface {
	DocumentTypes(ctx context.Context) []reference.DocumentType
	Subjects(ctx context.Context, docType string) ([]string, error)
	Pool(ctx context.Context, name string) ([]models.SearchableValue, error)
	Addressing(ctx context.Context, recipient *models.SearchableValue) []models.SearchableValue
	Bootstrap(ctx context.Context) (*reference.Bootstrap, error)
}

// Handler exposes the reference catalog.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New builds a Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the catalog endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reference/bootstrap", h.HandleBootstrap)
	r.Get("/reference/document-types", h.HandleDocumentTypes)
	r.Get("/reference/document-types/{name}/subjects", h.HandleSubjects)
	r.Get("/reference/pools/{pool}", h.HandlePool)
	r.Get("/reference/recipients/{id}/addressing", h.HandleAddressing)
}

// HandleBootstrap handles GET /reference/bootstrap.
func (h *Handler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := h.service.Bootstrap(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to assemble reference bootstrap",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

// HandleDocumentTypes handles GET /reference/document-types.
func (h *Handler) HandleDocumentTypes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"document_types": h.service.DocumentTypes(r.Context()),
	})
}

// HandleSubjects handles GET /reference/document-types/{name}/subjects.
func (h *Handler) HandleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// HandlePool handles GET /reference/pools/{pool}?q=. The optional query is
// matched the same way the form's lookup fields match it.
func (h *Handler) HandlePool(w http.ResponseWriter, r *http.Request) {
	pool, err := h.service.Pool(r.Context(), chi.URLParam(r, "pool"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		pool = textmatch.FilterFunc(pool, q, func(v models.SearchableValue) string { return v.DisplayName })
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": pool})
}

// HandleAddressing handles GET /reference/recipients/{id}/addressing.
func (h *Handler) HandleAddressing(w http.ResponseWriter, r *http.Request) {
	recipientID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || recipientID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient id"))
		return
	}
	items := h.service.Addressing(r.Context(), &models.SearchableValue{ID: recipientID})
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
