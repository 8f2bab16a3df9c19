package config

import "github.com/spf13/viper"

type Config struct {
	Service  *ServiceConfig  `mapstructure:"service"`
	Profiles *ProfilesConfig `mapstructure:"profiles"`
	Logging  *LoggingConfig  `mapstructure:"logging"`
	OTEL     *OTELConfig     `mapstructure:"otel"`

	values *viper.Viper // not serialized, used by the Environment for property lookups
}

type ServiceConfig struct {
	Version         string `mapstructure:"version,omitempty"`
	Build           string `mapstructure:"build,omitempty"`
	BuildDate       string `mapstructure:"build_date,omitempty"`
	Port            int    `mapstructure:"port,omitempty" validate:"gte=0,lte=65535"`
	ReadyFile       string `mapstructure:"ready_file"`
	TerminationFile string `mapstructure:"termination_file"`
	LocalMode       bool   `mapstructure:"local_mode,omitempty"`
}

type ProfilesConfig struct {
	// Active is either a YAML list or a comma separated string (PROFILES_ACTIVE=prod,eu)
	Active []string `mapstructure:"active" validate:"dive,omitempty,profilename"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
}
