package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/internal/order/split"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// Handler handles HTTP requests for order operations
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new order handler with service dependency injected
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for order endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.ListByWeek)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /orders
// @Summary      Create an order
// @Description  Splits the discount evenly over every payer line and stores the order atomically
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body OrderRequest true "Order with dishes and payers"
// @Success      201 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /orders [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create order")
		return
	}

	response.JSON(w, http.StatusCreated, order.ToResponse())
}

// ListByWeek handles GET /orders?week_id=
// @Summary      List a week's orders
// @Tags         orders
// @Produce      json
// @Param        week_id query string true "Week ID"
// @Success      200 {object} response.APIResponse{data=[]OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /orders [get]
func (h *Handler) ListByWeek(w http.ResponseWriter, r *http.Request) {
	weekID := r.URL.Query().Get("week_id")
	if weekID == "" {
		response.BadRequest(w, "week_id is required")
		return
	}

	orders, err := h.service.ListByWeek(r.Context(), weekID)
	if err != nil {
		h.writeError(w, err, "Failed to list orders")
		return
	}

	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = o.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// GetByID handles GET /orders/{id}
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /orders/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get order")
		return
	}

	response.JSON(w, http.StatusOK, order.ToResponse())
}

// Update handles PUT /orders/{id}
// @Summary      Replace an order
// @Description  Header and every line are replaced in one transaction
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body OrderRequest true "Order with dishes and payers"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /orders/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	order, err := h.service.Replace(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update order")
		return
	}

	response.JSON(w, http.StatusOK, order.ToResponse())
}

// Delete handles DELETE /orders/{id}
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /orders/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "Failed to delete order")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, week.ErrWeekNotFound):
		response.NotFound(w, err.Error())
	case IsValidation(err):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}

// IsValidation reports whether err is a caller mistake rather than a server fault
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrWeekRequired,
		ErrDescriptionRequired,
		ErrWeekFinalized,
		ErrUnknownUser,
		split.ErrNoLines,
		split.ErrDishWithoutPayers,
		split.ErrInvalidFinalAmount,
		split.ErrFinalAmountExceedsTotal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
