package handlers

import (
	"net/http"

	"github.com/terra-ansible-demo/status-page/internal/executioncontext"
	"github.com/terra-ansible-demo/status-page/internal/http_wrappers"
	"github.com/terra-ansible-demo/status-page/internal/logging"
	"github.com/terra-ansible-demo/status-page/internal/metrics"
)

// HandleStatus handles GET /api/v1/status, the JSON form of the status page.
func (h *Handlers) HandleStatus(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	status := h.snapshot()
	w.WriteJSON(status, http.StatusOK)

	metrics.StatusPageRenders.WithLabelValues("json").Inc()
	logging.LogRequestSuccess(ctx, http.StatusOK, status)
}
