package contact

import (
	"errors"
	"log/slog"
	"net/http"

	"admissions-service/internal/httputil"
	"admissions-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/contact", h.Submit)
	router.Get("/contacts", h.GetAll)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var c Contact
	if err := httputil.DecodeJSON(r, &c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c.ID = 0

	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, ErrInvalidContact.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "submitting contact message", "email", c.Email)
	if _, err := h.service.Submit(r.Context(), &c); err != nil {
		if errors.Is(err, ErrInvalidContact) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to submit contact", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to submit contact info")
		return
	}

	h.metrics.RecordContactSubmitted(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "Contact info submitted!",
	})
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.GetAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch contacts", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, contacts)
}
