package goalhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/goal"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *goal.Service
	Audit   *audit.Service
}

func NewHandler(service *goal.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/goals", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{goalID}", h.handleGet)
		r.Put("/{goalID}/progress", h.handleProgress)
		r.Post("/{goalID}/comments", h.handleAddComment)
		r.Put("/{goalID}/alignment", h.handleRealign)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	query := r.URL.Query()
	goals, err := h.Service.List(r.Context(), user, goal.Filter{
		OwnerID:    query.Get("ownerId"),
		Department: query.Get("department"),
		Status:     query.Get("status"),
	})
	if err != nil {
		failGoal(w, err, requestID)
		return
	}
	api.Success(w, goals, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		Title      string  `json:"title" validate:"required"`
		Kind       string  `json:"kind" validate:"required,oneof=objective key-result"`
		OwnerID    string  `json:"ownerId"`
		Department string  `json:"department"`
		StartDate  string  `json:"startDate"`
		EndDate    string  `json:"endDate"`
		Weightage  float64 `json:"weightage" validate:"gte=0,lte=100"`
		Visibility string  `json:"visibility"`
		ParentID   string  `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}
	if payload.OwnerID == "" {
		payload.OwnerID = user.EmployeeID
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

	created, err := h.Service.Create(r.Context(), user, goal.CreateInput{
		Title:      payload.Title,
		Kind:       payload.Kind,
		OwnerID:    payload.OwnerID,
		Department: payload.Department,
		StartDate:  startDate,
		EndDate:    endDate,
		Weightage:  payload.Weightage,
		Visibility: payload.Visibility,
		ParentID:   payload.ParentID,
	})
	if err != nil {
		failGoal(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionGoalCreated, created.ID, nil, created)
	api.Created(w, created, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	details, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "goalID"))
	if err != nil {
		failGoal(w, err, requestID)
		return
	}
	api.Success(w, details, requestID)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	goalID := chi.URLParam(r, "goalID")

	var payload struct {
		Progress *float64 `json:"progress"`
		Delta    *float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Progress == nil && payload.Delta == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "progress or delta required", requestID)
		return
	}

	updated, err := h.Service.UpdateProgress(r.Context(), user, goalID, goal.ProgressInput{
		Absolute: payload.Progress,
		Delta:    payload.Delta,
	})
	if err != nil {
		failGoal(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionGoalProgress, goalID, nil, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		Body string `json:"body" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(payload)) {
		return
	}

	if err := h.Service.AddComment(r.Context(), user, chi.URLParam(r, "goalID"), payload.Body); err != nil {
		failGoal(w, err, requestID)
		return
	}
	api.Created(w, map[string]bool{"added": true}, requestID)
}

func (h *Handler) handleRealign(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	goalID := chi.URLParam(r, "goalID")

	var payload struct {
		ParentID string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Realign(r.Context(), user, goalID, payload.ParentID)
	if err != nil {
		failGoal(w, err, requestID)
		return
	}
	h.record(r, user.EmployeeID, audit.ActionGoalRealigned, goalID, nil, updated)
	api.Success(w, updated, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	ctx := r.Context()
	err := h.Audit.Record(ctx, actorID, action, "goal", entityID,
		middleware.GetRequestID(ctx), middleware.GetClientIP(ctx), before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func failGoal(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, goal.ErrGoalNotFound), errors.Is(err, goal.ErrAlignmentNotFound):
		api.Fail(w, http.StatusNotFound, "goal_not_found", err.Error(), requestID)
	case errors.Is(err, goal.ErrNotGoalOwner):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, goal.ErrTitleRequired),
		errors.Is(err, goal.ErrInvalidKind),
		errors.Is(err, goal.ErrInvalidVisibility),
		errors.Is(err, goal.ErrInvalidWeightage),
		errors.Is(err, goal.ErrEmptyComment):
		api.Fail(w, http.StatusBadRequest, "invalid_goal", err.Error(), requestID)
	case errors.Is(err, goal.ErrInvalidAlignment),
		errors.Is(err, goal.ErrCyclicAlignment),
		errors.Is(err, goal.ErrSelfAlignment):
		api.Fail(w, http.StatusConflict, "invalid_alignment", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "goal_failed", "goal operation failed", requestID)
	}
}
