package competencyhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfreview/internal/domain/competency"
	"perfreview/internal/domain/identity"
	"perfreview/internal/transport/http/api"
	"perfreview/internal/transport/http/middleware"
	"perfreview/internal/transport/http/shared"
)

type Handler struct {
	Service *competency.Service
}

func NewHandler(service *competency.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/competencies", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{competencyID}", h.handleGet)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(identity.RoleHR, identity.RoleAdmin)).Put("/{competencyID}", h.handleUpdate)
	})
}

type payload struct {
	Name        string                       `json:"name" validate:"required"`
	Category    string                       `json:"category"`
	Departments []string                     `json:"departments"`
	Criteria    []competency.RatingCriterion `json:"criteria"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	competencies, err := h.Service.List(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		failCompetency(w, err, requestID)
		return
	}
	api.Success(w, competencies, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "competencyID"))
	if err != nil {
		failCompetency(w, err, requestID)
		return
	}
	api.Success(w, c, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if shared.Reject(w, requestID, shared.CheckStruct(body)) {
		return
	}

	created, err := h.Service.Create(r.Context(), competency.CreateInput{
		Name:        body.Name,
		Category:    body.Category,
		Departments: body.Departments,
		Criteria:    body.Criteria,
	})
	if err != nil {
		failCompetency(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var body payload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "competencyID"), competency.CreateInput{
		Name:        body.Name,
		Category:    body.Category,
		Departments: body.Departments,
		Criteria:    body.Criteria,
	})
	if err != nil {
		failCompetency(w, err, requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func failCompetency(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, competency.ErrCompetencyNotFound):
		api.Fail(w, http.StatusNotFound, "competency_not_found", err.Error(), requestID)
	case errors.Is(err, competency.ErrNameTaken):
		api.Fail(w, http.StatusConflict, "name_taken", err.Error(), requestID)
	case errors.Is(err, competency.ErrCompetencyInUse):
		api.Fail(w, http.StatusConflict, "competency_in_use", err.Error(), requestID)
	case errors.Is(err, competency.ErrNameRequired), errors.Is(err, competency.ErrCriteriaOrder):
		api.Fail(w, http.StatusBadRequest, "invalid_competency", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "competency_failed", "competency operation failed", requestID)
	}
}
