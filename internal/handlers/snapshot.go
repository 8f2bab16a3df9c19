package handlers

import (
	"os"
	"time"

	"github.com/terra-ansible-demo/status-page/internal/constants"
	"github.com/terra-ansible-demo/status-page/pkg/api"
)

// LocalDateTimeLayout is an ISO-8601 local date-time without a zone, trailing
// zeros of the fractional seconds are dropped.
const LocalDateTimeLayout = "2006-01-02T15:04:05.999999999"

// snapshot gathers the process status at the time of the call. Every field is
// populated: missing values are replaced by their fallback literals.
func (h *Handlers) snapshot() api.StatusResource {
	hostname := os.Getenv(constants.EnvVarHostname)
	if hostname == "" {
		hostname = constants.DEFAULT_HOSTNAME
	}
	return api.StatusResource{
		Status:         api.STATUS_UP,
		Timestamp:      h.now().Local(),
		Hostname:       hostname,
		ActiveProfiles: h.environment.ActiveProfiles(),
		Port:           h.environment.GetProperty(constants.PROPERTY_LOCAL_SERVER_PORT, constants.DEFAULT_PORT),
	}
}

func formatTimestamp(t time.Time) string {
	return t.Format(LocalDateTimeLayout)
}
