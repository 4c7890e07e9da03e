package templatehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/template"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *template.Service
	Audit   *audit.Service
}

func NewHandler(service *template.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/review-templates", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{templateID}", h.handleGet)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Put("/{templateID}", h.handleUpdate)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Post("/{templateID}/clone", h.handleClone)
	})
}

type payload struct {
	Name     string               `json:"name" validate:"required"`
	Scale    template.RatingScale `json:"scale"`
	Sections []template.Section   `json:"sections" validate:"required,min=1"`
}

func (p payload) input() template.CreateInput {
	return template.CreateInput{Name: p.Name, Scale: p.Scale, Sections: p.Sections}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	templates, err := h.Service.List(r.Context())
	if err != nil {
		failTemplate(w, err, requestID)
		return
	}
	api.Success(w, templates, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	tpl, err := h.Service.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		failTemplate(w, err, requestID)
		return
	}
	api.Success(w, tpl, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(body)) {
		return
	}

	created, err := h.Service.Create(r.Context(), body.input())
	if err != nil {
		failTemplate(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionTemplateCreated, created.ID, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "templateID"), body.input())
	if err != nil {
		failTemplate(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

// handleClone creates the next version of a template. An empty body clones
// as-is; a payload applies changes on top of the copy.
func (h *Handler) handleClone(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var changes *template.CreateInput
	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Name != "" {
		input := body.input()
		changes = &input
	}

	cloned, err := h.Service.CloneAsNewVersion(r.Context(), chi.URLParam(r, "templateID"), changes)
	if err != nil {
		failTemplate(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionTemplateCloned, cloned.ID, cloned)
	api.Created(w, cloned, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, action, "template", entityID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failTemplate(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, template.ErrTemplateNotFound):
		api.Fail(w, http.StatusNotFound, "template_not_found", err.Error(), requestID)
	case errors.Is(err, template.ErrTemplateInUse):
		api.Fail(w, http.StatusConflict, "template_in_use", err.Error(), requestID)
	case errors.Is(err, template.ErrNameRequired),
		errors.Is(err, template.ErrNoSections),
		errors.Is(err, template.ErrInvalidScale),
		errors.Is(err, template.ErrInvalidQuestion),
		errors.Is(err, template.ErrSectionWeightage),
		errors.Is(err, template.ErrChoiceNeedsOptions):
		api.Fail(w, http.StatusBadRequest, "invalid_template", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "template_failed", "template operation failed", requestID)
	}
}
