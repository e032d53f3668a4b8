package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"demandas/internal/form/retification"
	"demandas/internal/form/service"
	id "demandas/pkg/domain"
	dErrors "demandas/pkg/domain-errors"
	"demandas/pkg/platform/httputil"
	"demandas/pkg/requestcontext"
)

// Service defines the form session operations.
type Service interface {
	Open(ctx context.Context, demandaID id.DemandaID, documentID *id.DocumentID) (*service.Outcome, error)
	Get(ctx context.Context, formID id.FormID) (*service.Outcome, error)
	Apply(ctx context.Context, formID id.FormID, cmd service.Command) (*service.Outcome, error)
	Validate(ctx context.Context, formID id.FormID) (*service.Outcome, error)
	Submit(ctx context.Context, formID id.FormID) (*service.Outcome, error)
	Discard(ctx context.Context, formID id.FormID) error
}

// Handler wires form endpoints to the form service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a form handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts form endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/forms", h.HandleOpen)
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Delete("/", h.HandleDiscard)
		r.Patch("/fields", h.HandleSetField)
		r.Post("/decision/amended", h.HandleSetAmended)
		r.Post("/retifications/{recordID}/further-amended", h.HandleSetFurtherAmended)
		r.Patch("/retifications/{recordID}", h.HandleUpdateRecord)
		r.Post("/combobox/search", h.HandleSearch)
		r.Post("/combobox/key", h.HandleKey)
		r.Post("/combobox/select", h.HandleSelect)
		r.Post("/combobox/focus", h.HandleFocus)
		r.Post("/research-rows", h.HandleAddResearchRow)
		r.Delete("/research-rows/{index}", h.HandleRemoveResearchRow)
		r.Delete("/recipients/{index}", h.HandleRemoveRecipient)
		r.Post("/validate", h.HandleValidate)
		r.Post("/submit", h.HandleSubmit)
	})
}

// HandleOpen handles POST /forms.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[OpenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	out, err := h.service.Open(ctx, req.parsedDemandaID, req.parsedDocumentID)
	if err != nil {
		h.fail(ctx, w, "open form failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromOutcome(out))
}

// HandleGet handles GET /forms/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	formID, ok := formIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.Get(r.Context(), formID)
	if err != nil {
		h.fail(r.Context(), w, "get form failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(out))
}

// HandleDiscard handles DELETE /forms/{id}.
func (h *Handler) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	formID, ok := formIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Discard(r.Context(), formID); err != nil {
		h.fail(r.Context(), w, "discard form failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetField handles PATCH /forms/{id}/fields.
func (h *Handler) HandleSetField(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *SetFieldRequest) service.Command {
		return service.SetField{Key: req.parsedKey, Value: req.Value}
	})
}

// HandleSetAmended handles POST /forms/{id}/decision/amended.
func (h *Handler) HandleSetAmended(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *AmendedRequest) service.Command {
		return service.SetAmended{Amended: *req.Amended}
	})
}

// HandleSetFurtherAmended handles POST /forms/{id}/retifications/{recordID}/further-amended.
func (h *Handler) HandleSetFurtherAmended(w http.ResponseWriter, r *http.Request) {
	recordID := retification.RecordID(chi.URLParam(r, "recordID"))
	decodeAndApply(h, w, r, func(req *AmendedRequest) service.Command {
		return service.SetFurtherAmended{RecordID: recordID, Amended: *req.Amended}
	})
}

// HandleUpdateRecord handles PATCH /forms/{id}/retifications/{recordID}.
func (h *Handler) HandleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	recordID := retification.RecordID(chi.URLParam(r, "recordID"))
	decodeAndApply(h, w, r, func(req *RecordRequest) service.Command {
		return service.UpdateRecordDate{RecordID: recordID, SigningDate: *req.SigningDate}
	})
}

// HandleSearch handles POST /forms/{id}/combobox/search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *SearchRequest) service.Command {
		return service.Search{Key: req.parsedKey, Query: req.Query}
	})
}

// HandleKey handles POST /forms/{id}/combobox/key.
func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *KeyRequest) service.Command {
		return service.PressKey{Key: req.parsedKey, Pressed: req.Key}
	})
}

// HandleSelect handles POST /forms/{id}/combobox/select.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *SelectRequest) service.Command {
		return service.Select{Key: req.parsedKey, Index: *req.Index}
	})
}

// HandleFocus handles POST /forms/{id}/combobox/focus.
func (h *Handler) HandleFocus(w http.ResponseWriter, r *http.Request) {
	decodeAndApply(h, w, r, func(req *FocusRequest) service.Command {
		return service.Focus{Key: req.parsedKey}
	})
}

// HandleAddResearchRow handles POST /forms/{id}/research-rows.
func (h *Handler) HandleAddResearchRow(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, service.AddResearchRow{}, http.StatusCreated)
}

// HandleRemoveResearchRow handles DELETE /forms/{id}/research-rows/{index}.
func (h *Handler) HandleRemoveResearchRow(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	h.apply(w, r, service.RemoveResearchRow{Index: index}, http.StatusOK)
}

// HandleRemoveRecipient handles DELETE /forms/{id}/recipients/{index}.
func (h *Handler) HandleRemoveRecipient(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}
	h.apply(w, r, service.RemoveRecipient{Index: index}, http.StatusOK)
}

// HandleValidate handles POST /forms/{id}/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	formID, ok := formIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.Validate(r.Context(), formID)
	if err != nil {
		h.fail(r.Context(), w, "validate form failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOutcome(out))
}

// HandleSubmit handles POST /forms/{id}/submit. A form that fails
// validation answers 422 with the validation result in the body.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID, ok := formIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.Submit(ctx, formID)
	if err != nil {
		h.fail(ctx, w, "submit form failed", err)
		return
	}
	status := http.StatusOK
	if out.Validation != nil && !out.Validation.OK {
		status = http.StatusUnprocessableEntity
	} else if out.Document != nil && out.Document.Version == 1 {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, FromOutcome(out))
}

func decodeAndApply[T any, PT interface {
	*T
	httputil.Validatable
}](h *Handler, w http.ResponseWriter, r *http.Request, build func(PT) service.Command) {
	ctx := r.Context()
	if _, ok := formIDParam(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[T, PT](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.apply(w, r, build(PT(req)), http.StatusOK)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, cmd service.Command, status int) {
	ctx := r.Context()
	formID, ok := formIDParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.Apply(ctx, formID, cmd)
	if err != nil {
		h.fail(ctx, w, cmd.Name()+" failed", err)
		return
	}
	httputil.WriteJSON(w, status, FromOutcome(out))
}

// fail logs server-side failures; client errors are only answered.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func formIDParam(w http.ResponseWriter, r *http.Request) (id.FormID, bool) {
	formID, err := id.ParseFormID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.FormID{}, false
	}
	return formID, true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid index"))
		return 0, false
	}
	return index, true
}
