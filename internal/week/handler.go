package week

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// StatusProvider derives the payment completeness of a week
type StatusProvider interface {
	Status(ctx context.Context, w *Week) (Status, error)
}

// Handler handles HTTP requests for week operations
type Handler struct {
	service *Service
	status  StatusProvider
	log     zerolog.Logger
}

// NewHandler creates a new week handler
func NewHandler(service *Service, status StatusProvider, log zerolog.Logger) *Handler {
	return &Handler{service: service, status: status, log: log}
}

// Routes returns the router for week endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/finalize", h.Finalize)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /weeks
// @Summary      Open a week
// @Description  Start date must be a Monday and must not overlap another week
// @Tags         weeks
// @Accept       json
// @Produce      json
// @Param        request body CreateWeekRequest true "Week creation request"
// @Success      201 {object} response.APIResponse{data=WeekResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /weeks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	week, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create week")
		return
	}

	response.JSON(w, http.StatusCreated, week.ToResponse())
}

// List handles GET /weeks
// @Summary      List weeks
// @Description  Newest first, with order count and payment completeness
// @Tags         weeks
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]WeekResponse}
// @Router       /weeks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list weeks")
		return
	}

	out := make([]*WeekResponse, 0, len(weeks))
	for _, wc := range weeks {
		status, err := h.status.Status(r.Context(), &wc.Week)
		if err != nil {
			h.writeError(w, err, "Failed to list weeks")
			return
		}
		out = append(out, wc.ToResponse(status))
	}

	response.JSON(w, http.StatusOK, out)
}

// GetByID handles GET /weeks/{id}
// @Summary      Get week by ID
// @Tags         weeks
// @Produce      json
// @Param        id path string true "Week ID"
// @Success      200 {object} response.APIResponse{data=WeekResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /weeks/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	week, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get week")
		return
	}

	response.JSON(w, http.StatusOK, week.ToResponse())
}

// Finalize handles POST /weeks/{id}/finalize
// @Summary      Finalize a week
// @Description  One-way transition. Payment links are only offered for finalized weeks.
// @Tags         weeks
// @Produce      json
// @Param        id path string true "Week ID"
// @Success      200 {object} response.APIResponse{data=WeekResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /weeks/{id}/finalize [post]
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	week, err := h.service.Finalize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to finalize week")
		return
	}

	response.JSON(w, http.StatusOK, week.ToResponse())
}

// Delete handles DELETE /weeks/{id}
// @Summary      Delete a week
// @Description  Only weeks without orders can be deleted
// @Tags         weeks
// @Produce      json
// @Param        id path string true "Week ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /weeks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "Failed to delete week")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Week deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrWeekNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrStartDateRequired),
		errors.Is(err, ErrInvalidStartDate),
		errors.Is(err, ErrNotMonday),
		errors.Is(err, ErrWeekOverlap),
		errors.Is(err, ErrWeekHasOrders),
		errors.Is(err, ErrWeekHasPayments):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}
