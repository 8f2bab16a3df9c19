package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs the global tracer provider and propagators described by conf.
// When tracing is disabled nothing is installed and the returned ShutdownFunc is a no-op,
// so callers can always defer it.
func Setup(ctx context.Context, conf *config.OTELConfig, serviceVersion string, logger *slog.Logger) (ShutdownFunc, error) {
	if conf == nil || !conf.Enabled {
		logger.Info("Tracing disabled")
		return noopShutdown, nil
	}

	exporter, err := newExporter(ctx, conf)
	if err != nil {
		return noopShutdown, err
	}

	serviceName := conf.ServiceName
	if serviceName == "" {
		serviceName = constants.SERVICE_NAME
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	)

	batchOptions := []sdktrace.BatchSpanProcessorOption{}
	if conf.BatchTimeout > 0 {
		batchOptions = append(batchOptions, sdktrace.WithBatchTimeout(conf.BatchTimeout))
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, batchOptions...),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(conf.SampleRatio))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Tracing enabled", "exporter", conf.Exporter, "endpoint", conf.Endpoint, "sample_ratio", conf.SampleRatio)
	return provider.Shutdown, nil
}

func newExporter(ctx context.Context, conf *config.OTELConfig) (sdktrace.SpanExporter, error) {
	switch conf.Exporter {
	case "", config.OTEL_EXPORTER_STDOUT:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	case config.OTEL_EXPORTER_OTLP:
		if conf.Endpoint == "" {
			return nil, errors.New("the otlp exporter requires an endpoint")
		}
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.Endpoint),
			otlptracehttp.WithTimeout(10 * time.Second),
		}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", conf.Exporter)
	}
}
