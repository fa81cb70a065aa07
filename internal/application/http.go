package application

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"admissions-service/internal/httputil"
	"admissions-service/internal/metrics"
	"admissions-service/internal/notify"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: m,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/apply", h.Submit)
	router.Get("/applications", h.GetAll)
	router.Get("/applications/{id}", h.GetByID)
	router.Put("/applications/{id}", h.Update)
	router.Delete("/applications/{id}", h.Delete)
	router.Delete("/applications", h.DeleteAll)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var app Application
	if err := httputil.DecodeJSON(r, &app); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	app.ID = 0

	h.logger.InfoContext(r.Context(), "submitting application", "email", app.Email)
	created, err := h.service.Submit(r.Context(), &app)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordApplicationSubmitted(r.Context())
	h.metrics.RecordNotificationDispatched(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Application submitted successfully!",
		"application": created,
	})
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	applications, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, applications)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, app)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var fields map[string]string
	if err := httputil.DecodeJSON(r, &fields); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, fields)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Application updated successfully",
		"application": updated,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Application deleted successfully",
	})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "All applications deleted",
		"deletedCount": count,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		httputil.RespondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, ErrDuplicate):
		h.metrics.RecordDuplicateApplication(r.Context())
		httputil.RespondWithError(w, http.StatusBadRequest, "Application already exists")
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, notify.ErrDeliveryFailed):
		h.logger.ErrorContext(r.Context(), "notification dispatch failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to send notification emails")
	default:
		h.logger.ErrorContext(r.Context(), "application request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to process application request")
	}
}
