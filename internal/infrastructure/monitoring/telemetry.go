package monitoring

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.uber.org/zap"
)

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	TracingEnabled bool
	OTLPEndpoint   string
	OTLPInsecure   bool
	SamplingRate   float64

	MetricsEnabled bool
}

// Telemetry owns the tracer and meter providers of the process
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	meter          metric.Meter
	logger         *zap.Logger
}

// NewTelemetry installs the global tracer and meter providers. OTel metrics are
// exported through reg so that /metrics serves them next to the native ones.
func NewTelemetry(cfg TelemetryConfig, reg prometheus.Registerer, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger.Named("telemetry")}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithProcess(),
		resource.WithHost(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if cfg.TracingEnabled && cfg.OTLPEndpoint != "" {
		if err := t.initTracing(cfg, res); err != nil {
			return nil, err
		}
	}

	if cfg.MetricsEnabled {
		if err := t.initMetrics(reg, res); err != nil {
			return nil, err
		}
	}

	t.meter = otel.Meter(cfg.ServiceName)

	t.logger.Info("OpenTelemetry initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.Bool("tracing_enabled", t.tracerProvider != nil),
		zap.Bool("metrics_enabled", t.meterProvider != nil),
	)
	return t, nil
}

func (t *Telemetry) initTracing(cfg TelemetryConfig, res *resource.Resource) error {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	rate := cfg.SamplingRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	t.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)
	otel.SetTracerProvider(t.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.logger.Info("OTLP trace exporter configured", zap.String("endpoint", cfg.OTLPEndpoint))
	return nil
}

func (t *Telemetry) initMetrics(reg prometheus.Registerer, res *resource.Resource) error {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

// Meter returns the service meter. It is a no-op meter when metrics are disabled.
func (t *Telemetry) Meter() metric.Meter {
	return t.meter
}

// Shutdown flushes and stops both providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return stderrors.Join(errs...)
}
