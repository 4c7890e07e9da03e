package reviewhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/review"
	"perfreview/internal/platform/metrics"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
)

type Handler struct {
	Service *review.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *review.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/pending", h.handlePending)
		r.Get("/by-cycle/{cycleID}/{employeeID}", h.handleGetByCycleEmployee)
		r.Get("/{reviewID}", h.handleGet)
		r.Post("/{reviewID}/self", h.submitHandler(review.KindSelf))
		r.Post("/{reviewID}/manager", h.submitHandler(review.KindManager))
		r.Post("/{reviewID}/peer", h.submitHandler(review.KindPeer))
	})
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	items, err := h.Service.ListPendingFor(r.Context(), user.EmployeeID)
	if err != nil {
		failReview(w, err, requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	details, err := h.Service.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		failReview(w, err, requestID)
		return
	}
	api.Success(w, details, requestID)
}

func (h *Handler) handleGetByCycleEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	details, err := h.Service.GetByCycleEmployee(r.Context(), chi.URLParam(r, "cycleID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		failReview(w, err, requestID)
		return
	}
	api.Success(w, details, requestID)
}

func (h *Handler) submitHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		requestID := middleware.GetRequestID(r.Context())
		reviewID := chi.URLParam(r, "reviewID")

		var payload struct {
			Responses     []review.Answer `json:"responses"`
			Comments      string          `json:"comments"`
			AllowResubmit bool            `json:"allowResubmit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}

		input := review.SubmitInput{
			Responses:     payload.Responses,
			Comments:      payload.Comments,
			AllowResubmit: payload.AllowResubmit,
		}
		var details review.Details
		var err error
		switch kind {
		case review.KindSelf:
			details, err = h.Service.SubmitSelf(r.Context(), user, reviewID, input)
		case review.KindManager:
			details, err = h.Service.SubmitManager(r.Context(), user, reviewID, input)
		default:
			details, err = h.Service.SubmitPeer(r.Context(), user, reviewID, input)
		}
		if err != nil {
			if errors.Is(err, review.ErrAlreadySubmitted) && h.Metrics != nil {
				h.Metrics.ConcurrencyConflicts.Inc()
			}
			failReview(w, err, requestID)
			return
		}

		if h.Metrics != nil {
			h.Metrics.SubReviewsSubmitted.WithLabelValues(kind).Inc()
		}
		h.record(r, user.EmployeeID, reviewID, kind)
		api.Success(w, details, requestID)
	}
}

func (h *Handler) record(r *http.Request, actorID, reviewID, kind string) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, audit.ActionReviewSubmitted, "review", reviewID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), nil, map[string]string{"kind": kind})
	if err != nil {
		slog.Warn("audit record failed", "action", audit.ActionReviewSubmitted, "err", err)
	}
}

func failReview(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, review.ErrReviewNotFound):
		api.Fail(w, http.StatusNotFound, "review_not_found", err.Error(), requestID)
	case errors.Is(err, review.ErrNotAReviewer):
		api.Fail(w, http.StatusForbidden, "not_a_reviewer", err.Error(), requestID)
	case errors.Is(err, review.ErrReviewLocked), errors.Is(err, review.ErrAlreadySubmitted):
		api.Fail(w, http.StatusConflict, "review_conflict", err.Error(), requestID)
	case errors.Is(err, review.ErrInvalidResponses):
		api.Fail(w, http.StatusBadRequest, "invalid_responses", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "review_failed", "review operation failed", requestID)
	}
}
