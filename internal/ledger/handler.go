package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/middleware"
	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

// LinkBuilder produces a gateway payment link for a member's unpaid week
type LinkBuilder interface {
	PaymentLink(ctx context.Context, w *week.Week, userID, userName string, amount float64, clientIP string) (string, error)
}

// Handler handles HTTP requests for ledger views
type Handler struct {
	service *Service
	links   LinkBuilder
	log     zerolog.Logger
}

// NewHandler creates a ledger handler. links may be nil, in which case no
// payment URLs are attached to the dashboard.
func NewHandler(service *Service, links LinkBuilder, log zerolog.Logger) *Handler {
	return &Handler{service: service, links: links, log: log}
}

// Routes returns the router for admin ledger endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/weeks/{id}", h.Summary)

	return r
}

// Summary handles GET /ledger/weeks/{id}
// @Summary      Week ledger
// @Description  Member totals with payment state, allPaid and hasUsers
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Week ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /ledger/weeks/{id} [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, week.ErrWeekNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to build week summary")
		response.InternalError(w, "Failed to load week summary")
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}

// Dashboard handles GET /dashboard
// @Summary      Dashboard
// @Description  Per-member totals of the selected week. Anonymous callers only see weeks with unpaid members.
// @Tags         ledger
// @Produce      json
// @Param        weekId query string false "Week ID"
// @Success      200 {object} response.APIResponse{data=DashboardResponse}
// @Router       /dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	weekID := r.URL.Query().Get("weekId")
	if weekID == "" {
		weekID = r.URL.Query().Get("week_id")
	}

	board, err := h.service.Dashboard(r.Context(), weekID, middleware.IsAdmin(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build dashboard")
		response.InternalError(w, "Failed to load dashboard")
		return
	}

	resp := board.ToResponse()
	if h.links != nil && board.Selected != nil && board.Selected.IsFinalized {
		ip := middleware.ClientIP(r)
		for _, u := range resp.UserTotals {
			if u.Paid {
				continue
			}
			url, err := h.links.PaymentLink(r.Context(), board.Selected, u.UserID, u.UserName, u.TotalAmount, ip)
			if err != nil {
				h.log.Error().Err(err).Str("user_id", u.UserID).Msg("failed to build payment link")
				continue
			}
			u.PaymentURL = url
		}
	}

	response.JSON(w, http.StatusOK, resp)
}
