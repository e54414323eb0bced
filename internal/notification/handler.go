package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

// Handler handles HTTP requests for the notification log
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new notification handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// List handles GET /notifications
// @Summary      Payment notification log
// @Description  Inbound gateway notifications, newest first
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Page size"
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	notifications, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list notifications")
		response.InternalError(w, "Failed to list notifications")
		return
	}

	resp := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = toResponse(n)
	}

	response.JSONWithMeta(w, http.StatusOK, resp, response.NewMeta(page, perPage, total))
}
