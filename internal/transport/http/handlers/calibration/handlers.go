package calibrationhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/calibration"
	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/rating"
	"perfreview/internal/platform/metrics"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *calibration.Service
	Audit   *audit.Service
	Metrics *metrics.Collector
}

func NewHandler(service *calibration.Service, auditSvc *audit.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Audit: auditSvc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)
	r.Route("/calibrations", func(r chi.Router) {
		r.Use(middleware.RequireAuth, admin)
		r.Get("/", h.handleList)
		r.Get("/{calibrationID}", h.handleGet)
		r.Post("/", h.handleOpen)
		r.Post("/{calibrationID}/propose", h.handlePropose)
		r.Post("/{calibrationID}/decide", h.handleDecide)
	})
	r.Route("/calibration-sessions", func(r chi.Router) {
		r.Use(middleware.RequireAuth, admin)
		r.Get("/", h.handleListSessions)
		r.Post("/", h.handleScheduleSession)
		r.Get("/{sessionID}", h.handleGetSession)
		r.Get("/{sessionID}/progress", h.handleSessionProgress)
		r.Post("/{sessionID}/start", h.handleStartSession)
		r.Post("/{sessionID}/complete", h.handleCompleteSession)
		r.Post("/{sessionID}/calibrations", h.handleAddToSession)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	cycleID := r.URL.Query().Get("cycleId")
	if cycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycleId query parameter required", requestID)
		return
	}
	out, err := h.Service.ListByCycle(r.Context(), cycleID)
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "calibrationID"))
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, c, requestID)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		EmployeeID string `json:"employeeId" validate:"required"`
		CycleID    string `json:"cycleId" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	opened, err := h.Service.Open(r.Context(), user, payload.EmployeeID, payload.CycleID)
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionCalibrationOpened, opened.ID, opened)
	api.Created(w, opened, requestID)
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload calibration.ProposeInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	proposed, err := h.Service.Propose(r.Context(), user, chi.URLParam(r, "calibrationID"), payload)
	if err != nil {
		if errors.Is(err, calibration.ErrConcurrentModification) && h.Metrics != nil {
			h.Metrics.ConcurrencyConflicts.Inc()
		}
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, proposed, requestID)
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	calibrationID := chi.URLParam(r, "calibrationID")

	var payload struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	decided, err := h.Service.Decide(r.Context(), user, calibrationID, payload.Approve, payload.Reason)
	if err != nil {
		if errors.Is(err, calibration.ErrConcurrentModification) && h.Metrics != nil {
			h.Metrics.ConcurrencyConflicts.Inc()
		}
		failCalibration(w, err, requestID)
		return
	}
	if h.Metrics != nil {
		h.Metrics.CalibrationsDecided.WithLabelValues(decided.Status).Inc()
	}
	h.record(r, user.EmployeeID, audit.ActionCalibrationDecided, calibrationID, decided)
	api.Success(w, decided, requestID)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	cycleID := r.URL.Query().Get("cycleId")
	if cycleID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "cycleId query parameter required", requestID)
		return
	}
	sessions, err := h.Service.ListSessions(r.Context(), cycleID)
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, sessions, requestID)
}

func (h *Handler) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		CycleID        string   `json:"cycleId" validate:"required"`
		Name           string   `json:"name"`
		Department     string   `json:"department"`
		ScheduledAt    string   `json:"scheduledAt" validate:"required"`
		FacilitatorID  string   `json:"facilitatorId"`
		ParticipantIDs []string `json:"participantIds"`
		Notes          string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}
	scheduledAt, err := shared.ParseDate(payload.ScheduledAt)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid scheduledAt", requestID)
		return
	}

	session, err := h.Service.ScheduleSession(r.Context(), user, calibration.SessionInput{
		CycleID:        payload.CycleID,
		Name:           payload.Name,
		Department:     payload.Department,
		ScheduledAt:    scheduledAt,
		FacilitatorID:  payload.FacilitatorID,
		ParticipantIDs: payload.ParticipantIDs,
		Notes:          payload.Notes,
	})
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Created(w, session, requestID)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, err := h.Service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) handleSessionProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	progress, err := h.Service.SessionProgress(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, progress, requestID)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, err := h.Service.StartSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, err := h.Service.CompleteSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) handleAddToSession(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		CalibrationID string `json:"calibrationId" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	session, err := h.Service.AddToSession(r.Context(), chi.URLParam(r, "sessionID"), payload.CalibrationID)
	if err != nil {
		failCalibration(w, err, requestID)
		return
	}
	api.Success(w, session, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, action, "calibration", entityID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), nil, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failCalibration(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, calibration.ErrCalibrationNotFound),
		errors.Is(err, calibration.ErrSessionNotFound),
		errors.Is(err, rating.ErrRatingNotFound):
		api.Fail(w, http.StatusNotFound, "calibration_not_found", err.Error(), requestID)
	case errors.Is(err, rating.ErrNotApprover):
		api.Fail(w, http.StatusForbidden, "not_approver", err.Error(), requestID)
	case errors.Is(err, calibration.ErrCalibrationExists),
		errors.Is(err, calibration.ErrAlreadyDecided),
		errors.Is(err, calibration.ErrSessionNotEditable),
		errors.Is(err, calibration.ErrConcurrentModification),
		errors.Is(err, calibration.ErrCycleMismatch):
		api.Fail(w, http.StatusConflict, "calibration_conflict", err.Error(), requestID)
	case errors.Is(err, calibration.ErrJustificationRequired),
		errors.Is(err, calibration.ErrProposedOutOfScale),
		errors.Is(err, calibration.ErrNoProposal),
		errors.Is(err, calibration.ErrRatingNotApproved):
		api.Fail(w, http.StatusBadRequest, "invalid_calibration", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "calibration_failed", "calibration operation failed", requestID)
	}
}
