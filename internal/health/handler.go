package health

import (
	"net/http"

	"admissions-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type Response struct {
	Status string `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, Response{Status: "ready"})
}
