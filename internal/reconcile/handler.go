package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/pkg/middleware"
	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

// Handler handles the payment page and the gateway callbacks
type Handler struct {
	matcher  *Matcher
	checkout *Checkout
	log      zerolog.Logger
}

// NewHandler creates a new reconcile handler
func NewHandler(matcher *Matcher, checkout *Checkout, log zerolog.Logger) *Handler {
	return &Handler{matcher: matcher, checkout: checkout, log: log}
}

// Routes returns the router for gateway callbacks, mounted under /vnpay
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/webhook", h.Webhook)
	r.Post("/webhook", h.Webhook)
	r.Get("/return", h.Return)

	return r
}

// Pay handles GET /pay
// @Summary      Payment page
// @Description  Unpaid finalized weeks of a member, newest first, with gateway links
// @Tags         payments
// @Produce      json
// @Param        name query string true "Member name"
// @Success      200 {object} response.APIResponse{data=PayPageResponse}
// @Router       /pay [get]
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	due, err := h.checkout.DueWeeks(r.Context(), name, middleware.ClientIP(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load payment page")
		response.InternalError(w, "Failed to load unpaid weeks")
		return
	}

	response.JSON(w, http.StatusOK, toPayPageResponse(name, due))
}

// Webhook handles GET|POST /vnpay/webhook
// @Summary      Gateway payment notification
// @Description  Matches the memo and amount to a member's finalized week and marks it paid
// @Tags         vnpay
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Success      200 {object} response.APIResponse{data=WebhookResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /vnpay/webhook [post]
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	params, err := notificationParams(r)
	if err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	res, err := h.matcher.Reconcile(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &WebhookResponse{
		Message: "Payment updated successfully",
		UserID:  res.UserID,
		WeekID:  res.WeekID,
		Amount:  res.Amount,
	})
}

// Return handles GET /vnpay/return
// @Summary      Gateway return page
// @Description  Decodes the redirect back from the gateway for display. No state change.
// @Tags         vnpay
// @Produce      json
// @Success      200 {object} response.APIResponse{data=ReturnResponse}
// @Router       /vnpay/return [get]
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.checkout.Return(flatten(r.URL.Query())).toResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var mismatch *AmountMismatchError
	switch {
	case errors.As(err, &mismatch):
		response.ErrorWithDetails(w, http.StatusBadRequest, "AMOUNT_MISMATCH", mismatch.Error(), map[string]float64{
			"expected": mismatch.Expected,
			"received": mismatch.Received,
		})
	case errors.Is(err, ErrInvalidSignature):
		response.Error(w, http.StatusUnauthorized, "INVALID_SIGNATURE", ErrInvalidSignature.Error())
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrWeekNotFound):
		response.NotFound(w, err.Error())
	case IsRejection(err):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to process payment notification")
	}
}

// notificationParams collects the notification fields from the query string
// on GET, and from a JSON or form body on POST
func notificationParams(r *http.Request) (map[string]string, error) {
	if r.Method == http.MethodGet {
		return flatten(r.URL.Query()), nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.Contains(mediaType, "application/json") {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, err
		}
		params := make(map[string]string, len(body))
		for k, v := range body {
			switch val := v.(type) {
			case nil:
			case string:
				params[k] = val
			default:
				params[k] = fmt.Sprint(val)
			}
		}
		return params, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return flatten(r.PostForm), nil
}

func flatten(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params
}
