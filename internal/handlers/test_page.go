package handlers

import (
	"bytes"
	_ "embed"
	"net/http"
	"text/template"

	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/executioncontext"
	"github.com/terra-ansible-demo/status-page/internal/http_wrappers"
	"github.com/terra-ansible-demo/status-page/internal/logging"
	"github.com/terra-ansible-demo/status-page/internal/messages"
	"github.com/terra-ansible-demo/status-page/internal/metrics"
	"github.com/terra-ansible-demo/status-page/internal/serviceerrors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed test_page.html
var testPageHTML string

// text/template on purpose: the values are operational metadata and are rendered as-is.
var testPageTemplate = template.Must(template.New("test_page").Parse(testPageHTML))

type testPage struct {
	Timestamp      string
	Hostname       string
	ActiveProfiles string
	Port           string
}

// HandleTestPage handles GET /test, the smoke test page of a freshly deployed host.
func (h *Handlers) HandleTestPage(ctx *executioncontext.ExecutionContext, r http_wrappers.RequestWrapper, w http_wrappers.ResponseWrapper) {
	logging.LogRequestStarted(ctx)

	status := h.snapshot()
	trace.SpanFromContext(ctx.Ctx).SetAttributes(
		attribute.String("status.hostname", status.Hostname),
		attribute.StringSlice("status.active_profiles", status.ActiveProfiles),
		attribute.String("status.port", status.Port),
	)

	var body bytes.Buffer
	err := testPageTemplate.Execute(&body, testPage{
		Timestamp:      formatTimestamp(status.Timestamp),
		Hostname:       status.Hostname,
		ActiveProfiles: config.FormatProfiles(status.ActiveProfiles),
		Port:           status.Port,
	})
	if err != nil {
		w.Error(serviceerrors.NewServiceError(messages.RenderingFailed, "Type", "status page", "Error", err.Error()).WithCause(err), ctx.RequestID)
		return
	}

	w.SetHeader("Content-Type", "text/html; charset=utf-8")
	w.SetStatusCode(http.StatusOK)
	_, _ = w.Write(body.Bytes())

	metrics.StatusPageRenders.WithLabelValues("html").Inc()
	logging.LogRequestSuccess(ctx, http.StatusOK, nil)
}
