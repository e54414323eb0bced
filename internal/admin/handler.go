package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	"github.com/NALLOO/AnTruaNao-V2/pkg/middleware"
	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
	"github.com/NALLOO/AnTruaNao-V2/pkg/validation"
)

// CookieOptions controls the session cookie attributes
type CookieOptions struct {
	Secure bool
}

// Handler handles login, logout and the command endpoint
type Handler struct {
	service    *Service
	sessions   *SessionManager
	dispatcher *Dispatcher
	cookie     CookieOptions
	log        zerolog.Logger
}

// NewHandler creates a new admin handler
func NewHandler(service *Service, sessions *SessionManager, dispatcher *Dispatcher, cookie CookieOptions, log zerolog.Logger) *Handler {
	return &Handler{service: service, sessions: sessions, dispatcher: dispatcher, cookie: cookie, log: log}
}

// AuthRoutes returns the router for /auth. Login is throttled by loginLimit.
func (h *Handler) AuthRoutes(requireAdmin, loginLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(loginLimit).Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.With(requireAdmin).Get("/me", h.Me)

	return r
}

// CommandRoutes returns the router for /admin, all behind requireAdmin
func (h *Handler) CommandRoutes(requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireAdmin)

	r.Post("/commands", h.Command)

	return r
}

// Login handles POST /auth/login
// @Summary      Admin login
// @Description  Checks the credentials and sets the session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=AdminResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      429 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, ErrCredentialsRequired.Error())
		return
	}

	a, token, err := h.service.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialsRequired):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			h.log.Warn().Str("user_name", req.UserName).Str("ip", middleware.ClientIP(r)).Msg("failed admin login")
			response.Unauthorized(w, err.Error())
		default:
			h.log.Error().Err(err).Msg("failed to log in")
			response.InternalError(w, "Failed to log in")
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.sessions.TTL().Seconds())))
	response.JSON(w, http.StatusOK, a.ToResponse())
}

// Logout handles POST /auth/logout
// @Summary      Admin logout
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me handles GET /auth/me
// @Summary      Current admin
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse{data=AdminResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetAdminID(r.Context())

	a, err := h.service.GetByID(r.Context(), adminID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			response.Unauthorized(w, "Invalid or expired session")
			return
		}
		h.log.Error().Err(err).Msg("failed to load admin")
		response.InternalError(w, "Failed to load admin")
		return
	}

	response.JSON(w, http.StatusOK, a.ToResponse())
}

// Command handles POST /admin/commands
// @Summary      Run an admin command
// @Description  Tagged mutation: {"type": "week.create", "payload": {...}}
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body CommandRequest true "Command"
// @Success      200 {object} response.APIResponse{data=CommandResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /admin/commands [post]
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	cmd, err := Decode(req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), cmd)
	if err != nil {
		h.writeCommandError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &CommandResponse{Type: cmd.Kind(), Result: result})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, week.ErrWeekNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		response.NotFound(w, err.Error())
	case isCommandValidation(err):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error().Err(err).Msg("failed to run admin command")
		response.InternalError(w, "Failed to run command")
	}
}

func isCommandValidation(err error) bool {
	if order.IsValidation(err) {
		return true
	}
	for _, target := range []error{
		ErrUnknownCommand,
		ErrInvalidPayload,
		week.ErrStartDateRequired,
		week.ErrInvalidStartDate,
		week.ErrNotMonday,
		week.ErrWeekOverlap,
		week.ErrWeekHasOrders,
		week.ErrWeekHasPayments,
		user.ErrNameRequired,
		user.ErrNoMembers,
		user.ErrNameTaken,
		user.ErrDuplicateNames,
		user.ErrUserHasOrders,
		user.ErrUserHasPayments,
		payment.ErrMissingIDs,
		payment.ErrUnknownReference,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
