package handler

import (
	"net/http"

	"github.com/ontohin26/ontohin/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	svc *service.DashboardService
	log *zap.Logger
}

func NewDashboardHandler(svc *service.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, log: log}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Summary(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Healthz reports liveness only; it never touches the store.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
