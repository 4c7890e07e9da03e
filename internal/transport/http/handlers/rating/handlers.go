package ratinghandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/rating"
	"perfreview/internal/platform/metrics"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *rating.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *rating.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ratings", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/by-cycle/{cycleID}/{employeeID}", h.handleGet)
		r.Get("/{ratingID}", h.handleGetByID)
		r.With(middleware.RequireRole(identity.RoleManager, identity.RoleHR, identity.RoleAdmin)).Post("/", h.handleSubmit)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Post("/{ratingID}/approve", h.handleApprove)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	got, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "cycleID"))
	if err != nil {
		failRating(w, err, requestID)
		return
	}
	api.Success(w, got, requestID)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	got, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "ratingID"))
	if err != nil {
		failRating(w, err, requestID)
		return
	}
	api.Success(w, got, requestID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		EmployeeID string                   `json:"employeeId" validate:"required"`
		CycleID    string                   `json:"cycleId" validate:"required"`
		Scores     []rating.CompetencyScore `json:"scores" validate:"required,min=1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	submitted, err := h.Service.SubmitScores(r.Context(), user, payload.EmployeeID, payload.CycleID, payload.Scores)
	if err != nil {
		if errors.Is(err, rating.ErrConcurrentModification) && h.Metrics != nil {
			h.Metrics.ConcurrencyConflicts.Inc()
		}
		failRating(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionRatingSubmitted, submitted.ID, submitted)
	api.Created(w, submitted, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	ratingID := chi.URLParam(r, "ratingID")

	approved, err := h.Service.Approve(r.Context(), user, ratingID)
	if err != nil {
		if errors.Is(err, rating.ErrConcurrentModification) && h.Metrics != nil {
			h.Metrics.ConcurrencyConflicts.Inc()
		}
		failRating(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RatingsApproved.Inc()
	}
	h.record(r, user.EmployeeID, audit.ActionRatingApproved, ratingID, approved)
	api.Success(w, approved, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, action, "rating", entityID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failRating(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, rating.ErrRatingNotFound):
		api.Fail(w, http.StatusNotFound, "rating_not_found", err.Error(), requestID)
	case errors.Is(err, rating.ErrNotApprover):
		api.Fail(w, http.StatusForbidden, "not_approver", err.Error(), requestID)
	case errors.Is(err, rating.ErrRatingNotEditable), errors.Is(err, rating.ErrConcurrentModification):
		api.Fail(w, http.StatusConflict, "rating_conflict", err.Error(), requestID)
	case errors.Is(err, rating.ErrNoScores),
		errors.Is(err, rating.ErrNoWeightedCompetencies),
		errors.Is(err, rating.ErrScoreOutOfScale),
		errors.Is(err, rating.ErrInvalidWeightage),
		errors.Is(err, rating.ErrUnknownCompetency):
		api.Fail(w, http.StatusBadRequest, "invalid_rating", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "rating_failed", "rating operation failed", requestID)
	}
}
