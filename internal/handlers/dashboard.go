package handlers

import (
	"net/http"

	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	log       *zap.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, log: log}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.dashboard.Overview(r.Context())
	if err != nil {
		fail(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}
