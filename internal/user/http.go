package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"admissions-service/internal/auth"
	"admissions-service/internal/httputil"
	"admissions-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	cookies  auth.CookieSettings
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, cookies auth.CookieSettings, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		cookies:  cookies,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

// RegisterPublicRoutes mounts the account endpoints that need no session.
func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)
	router.Post("/logout", h.Logout)
}

// RegisterAdminRoutes mounts the endpoints the caller must wrap with the
// admin guard.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/dashboard/users", h.Dashboard)
	router.Get("/users", h.GetAll)
	router.Get("/users/{id}", h.GetByID)
	router.Put("/users/{id}", h.Update)
	router.Delete("/users/{id}", h.Delete)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "signing up user", "email", req.Email)
	created, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordUserRegistered(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User signed up!",
		"user":    created,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		// malformed credentials get the same non-specific answer
		h.metrics.RecordFailedLogin(r.Context())
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	u, sess, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.RecordFailedLogin(r.Context())
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid email or password")
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", "email", u.Email)
	h.metrics.RecordLogin(r.Context())

	auth.SetSessionCookie(w, h.cookies, sess.Token)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    u,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r, h.cookies.Name)

	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	auth.ClearSessionCookie(w, h.cookies)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordDashboardView(r.Context())
	httputil.RespondWithJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    updated,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmailExists):
		httputil.RespondWithError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, ErrConflict):
		httputil.RespondWithError(w, http.StatusBadRequest, "Username or email already exists")
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "User not found")
	default:
		h.logger.ErrorContext(r.Context(), "user request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to process user request")
	}
}
