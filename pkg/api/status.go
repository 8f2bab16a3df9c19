package api

import "time"

const (
	STATUS_UP = "UP"
)

// StatusResource is the JSON view of the status snapshot served on /api/v1/status.
// The same values are rendered as HTML on /test.
type StatusResource struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Hostname       string    `json:"hostname"`
	ActiveProfiles []string  `json:"active_profiles"`
	Port           string    `json:"port"`
}
