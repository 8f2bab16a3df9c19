package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Environment answers the questions a handler may ask about the hosting process:
// which profiles are active and what value a named property resolves to.
//
// Properties are looked up first in the runtime properties published by the
// server (for example the port the listener was actually bound to) and then in
// the loaded configuration. The Environment is safe for concurrent use.
type Environment struct {
	profiles []string
	values   *viper.Viper

	mu         sync.RWMutex
	properties map[string]string
}

// NewEnvironment builds an Environment from the loaded configuration. A nil
// configuration gives an Environment with no profiles and no properties.
func NewEnvironment(conf *Config) *Environment {
	env := &Environment{
		profiles:   []string{},
		properties: make(map[string]string),
	}
	if conf == nil {
		return env
	}
	if conf.Profiles != nil {
		env.profiles = cleanProfiles(conf.Profiles.Active)
	}
	env.values = conf.values
	return env
}

func cleanProfiles(profiles []string) []string {
	cleaned := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		// a comma separated env value can still carry commas when it came from a YAML string
		for _, p := range strings.Split(profile, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
	}
	return cleaned
}

// ActiveProfiles returns the active profile names in configuration order.
// The returned slice is a copy.
func (e *Environment) ActiveProfiles() []string {
	profiles := make([]string, len(e.profiles))
	copy(profiles, e.profiles)
	return profiles
}

// ProfilesString renders the active profiles as "[a, b]", or "[]" when none are active.
func (e *Environment) ProfilesString() string {
	return FormatProfiles(e.profiles)
}

// FormatProfiles renders a list of profile names as "[a, b]".
func FormatProfiles(profiles []string) string {
	return "[" + strings.Join(profiles, ", ") + "]"
}

// GetProperty returns the value of the named property, or defaultValue when the
// property is not set or resolves to an empty string.
func (e *Environment) GetProperty(key string, defaultValue string) string {
	key = strings.ToLower(key)

	e.mu.RLock()
	value, ok := e.properties[key]
	e.mu.RUnlock()
	if ok && value != "" {
		return value
	}

	if e.values != nil {
		if v := e.values.Get(key); v != nil {
			if value := fmt.Sprintf("%v", v); value != "" {
				return value
			}
		}
	}
	return defaultValue
}

// SetProperty publishes a runtime property. An empty value removes it.
func (e *Environment) SetProperty(key string, value string) {
	key = strings.ToLower(key)

	e.mu.Lock()
	defer e.mu.Unlock()
	if value == "" {
		delete(e.properties, key)
		return
	}
	e.properties[key] = value
}
