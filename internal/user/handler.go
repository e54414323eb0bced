package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// Handler handles HTTP requests for member operations
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new user handler with service dependency injected
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for user endpoints. Reads of the member list are
// public; everything else runs behind requireAdmin.
func (h *Handler) Routes(requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Post("/lookup", h.Lookup)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Create handles POST /users
// @Summary      Add members
// @Description  Create one or more members. Fails if any name already exists.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUsersRequest true "Members to add"
// @Success      201 {object} response.APIResponse{data=[]UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	users, err := h.service.CreateMany(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create members")
		return
	}

	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	response.JSON(w, http.StatusCreated, out)
}

// Lookup handles POST /users/lookup
// @Summary      Find or create a member by name
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LookupRequest true "Member name"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /users/lookup [post]
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, created, err := h.service.LookupOrCreate(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err, "Failed to look up member")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.JSON(w, status, user.ToResponse())
}

// GetByID handles GET /users/{id}
// @Summary      Get member by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get member")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// List handles GET /users
// @Summary      List members
// @Description  All members sorted by name, for pickers
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list members")
		return
	}

	out := make([]*UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Stats handles GET /users/stats
// @Summary      Member statistics
// @Description  Members with order-line count and lifetime total, busiest first
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]StatResponse}
// @Router       /users/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load member statistics")
		return
	}

	out := make([]*StatResponse, len(stats))
	for i, s := range stats {
		out[i] = s.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Update handles PUT /users/{id}
// @Summary      Update a member
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        request body UpdateUserRequest true "Member update"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update member")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Delete handles DELETE /users/{id}
// @Summary      Delete a member
// @Description  Only members without order items can be deleted
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "Failed to delete member")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNoMembers),
		errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrDuplicateNames),
		errors.Is(err, ErrUserHasOrders),
		errors.Is(err, ErrUserHasPayments):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}
