package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListByWeek)
	r.Put("/", h.Update)

	return r
}

// Update handles PUT /payments
// @Summary      Set a member's paid flag for a week
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body UpdatePaymentRequest true "Payment status"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /payments [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.service.SetStatus(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update payment")
		return
	}

	response.JSON(w, http.StatusOK, p.ToResponse())
}

// ListByWeek handles GET /payments?week_id=
// @Summary      List a week's payments
// @Tags         payments
// @Produce      json
// @Param        week_id query string true "Week ID"
// @Success      200 {object} response.APIResponse{data=[]PaymentResponse}
// @Router       /payments [get]
func (h *Handler) ListByWeek(w http.ResponseWriter, r *http.Request) {
	weekID := r.URL.Query().Get("week_id")
	if weekID == "" {
		response.BadRequest(w, "week_id is required")
		return
	}

	payments, err := h.service.ListByWeek(r.Context(), weekID)
	if err != nil {
		h.writeError(w, err, "Failed to list payments")
		return
	}

	out := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = p.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingIDs), errors.Is(err, ErrUnknownReference):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error().Err(err).Msg(fallback)
		response.InternalError(w, fallback)
	}
}
