package config

import "time"

const (
	OTEL_EXPORTER_STDOUT = "stdout"
	OTEL_EXPORTER_OTLP   = "otlp"
)

type OTELConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Exporter     string        `mapstructure:"exporter" validate:"omitempty,oneof=stdout otlp"`
	Endpoint     string        `mapstructure:"endpoint" validate:"required_if=Exporter otlp"`
	Insecure     bool          `mapstructure:"insecure"`
	ServiceName  string        `mapstructure:"service_name"`
	SampleRatio  float64       `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}
