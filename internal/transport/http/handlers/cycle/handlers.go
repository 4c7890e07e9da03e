package cyclehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/cycle"
	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/template"
	"perfreview/internal/platform/metrics"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *cycle.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *cycle.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)
	r.Route("/review-cycles", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{cycleID}", h.handleGet)
		r.With(admin).Post("/", h.handleCreate)
		r.With(admin).Put("/{cycleID}/roster", h.handleUpdateRoster)
		r.With(admin).Put("/{cycleID}/template", h.handleChangeTemplate)
		r.With(admin).Post("/{cycleID}/activate", h.handleActivate)
		r.With(admin).Post("/{cycleID}/complete", h.handleComplete)
		r.With(admin).Post("/{cycleID}/lock", h.handleLock)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	cycles, err := h.Service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	api.Success(w, cycles, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	api.Success(w, c, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		Name              string              `json:"name" validate:"required"`
		PeriodLabel       string              `json:"periodLabel"`
		Type              string              `json:"type" validate:"required,oneof=annual mid-year quarterly"`
		TemplateID        string              `json:"templateId" validate:"required"`
		StartDate         string              `json:"startDate" validate:"required"`
		EndDate           string              `json:"endDate" validate:"required"`
		SelfReviewEnabled bool                `json:"selfReviewEnabled"`
		Roster            []cycle.RosterEntry `json:"roster"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	startDate, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", requestID)
		return
	}
	endDate, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", requestID)
		return
	}

	created, err := h.Service.Create(r.Context(), cycle.CreateInput{
		Name:              payload.Name,
		PeriodLabel:       payload.PeriodLabel,
		Type:              payload.Type,
		TemplateID:        payload.TemplateID,
		StartDate:         startDate,
		EndDate:           endDate,
		SelfReviewEnabled: payload.SelfReviewEnabled,
		Roster:            payload.Roster,
	})
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdateRoster(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		Roster []cycle.RosterEntry `json:"roster" validate:"required,min=1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	updated, err := h.Service.UpdateRoster(r.Context(), chi.URLParam(r, "cycleID"), payload.Roster)
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleChangeTemplate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		TemplateID string `json:"templateId" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	updated, err := h.Service.ChangeTemplate(r.Context(), chi.URLParam(r, "cycleID"), payload.TemplateID)
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	activated, err := h.Service.Activate(r.Context(), cycleID)
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionCycleActivated, cycleID, activated)
	api.Success(w, activated, requestID)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	var payload struct {
		Force bool `json:"force"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	if r.URL.Query().Get("force") == "true" {
		payload.Force = true
	}

	completed, err := h.Service.Complete(r.Context(), user, cycleID, payload.Force)
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionCycleCompleted, cycleID, completed)
	api.Success(w, completed, requestID)
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	cycleID := chi.URLParam(r, "cycleID")

	locked, err := h.Service.Lock(r.Context(), cycleID)
	if err != nil {
		failCycle(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CyclesLocked.Inc()
	}
	h.record(r, user.EmployeeID, audit.ActionCycleLocked, cycleID, locked)
	api.Success(w, locked, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, action, "review_cycle", entityID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failCycle(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, cycle.ErrCycleNotFound):
		api.Fail(w, http.StatusNotFound, "cycle_not_found", err.Error(), requestID)
	case errors.Is(err, template.ErrTemplateNotFound):
		api.Fail(w, http.StatusBadRequest, "template_not_found", err.Error(), requestID)
	case errors.Is(err, cycle.ErrNameRequired),
		errors.Is(err, cycle.ErrInvalidType),
		errors.Is(err, cycle.ErrInvalidPeriod),
		errors.Is(err, cycle.ErrDuplicateReviewee),
		errors.Is(err, cycle.ErrManagerRequired),
		errors.Is(err, cycle.ErrSelfAsReviewer),
		errors.Is(err, cycle.ErrEmptyRoster):
		api.Fail(w, http.StatusBadRequest, "invalid_cycle", err.Error(), requestID)
	case errors.Is(err, cycle.ErrCycleNotEditable),
		errors.Is(err, cycle.ErrInvalidTransition),
		errors.Is(err, cycle.ErrReviewsIncomplete),
		errors.Is(err, cycle.ErrConcurrentModification):
		api.Fail(w, http.StatusConflict, "cycle_conflict", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "cycle_failed", "cycle operation failed", requestID)
	}
}
