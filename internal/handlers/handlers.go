package handlers

import (
	"time"

	"github.com/terra-ansible-demo/status-page/internal/config"
)

type Handlers struct {
	environment   *config.Environment
	serviceConfig *config.Config
	now           func() time.Time
}

func New(environment *config.Environment, serviceConfig *config.Config) *Handlers {
	if environment == nil {
		environment = config.NewEnvironment(serviceConfig)
	}
	return &Handlers{
		environment:   environment,
		serviceConfig: serviceConfig,
		now:           time.Now,
	}
}

// WithClock replaces the clock used for the status timestamps.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	h.now = now
	return h
}
