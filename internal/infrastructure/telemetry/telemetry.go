// Package telemetry wires OpenTelemetry traces, metrics and logs, database
// tracing and Pyroscope profiling for the review service.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceVersion is reported on every exported resource.
const ServiceVersion = "1.0.0"

// Telemetry bundles the providers started for one process.
type Telemetry struct {
	Tracer   *TracerProvider
	Meter    *MeterProvider
	Logs     *LoggerProvider
	Profiler *Profiler
	Metrics  *ReviewMetrics
	logger   *zap.Logger
}

// Setup starts every provider enabled in cfg. Disabled providers are no-ops,
// so the returned value is always safe to use and to shut down.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}

	collector := Collector{
		Endpoint:    cfg.CollectorEndpoint,
		Insecure:    cfg.Insecure,
		ServiceName: cfg.ServiceName,
	}

	var err error
	t.Tracer, err = NewTracerProvider(ctx, TraceConfig{
		Collector:     collector,
		Enabled:       cfg.Enabled,
		SamplingRatio: cfg.SamplingRatio,
	}, logger)
	if err != nil {
		return nil, err
	}

	t.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Collector:      collector,
		Enabled:        cfg.Enabled && cfg.MetricsEnabled,
		ExportInterval: cfg.MetricsInterval,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Collector: collector,
		Enabled:   cfg.Enabled && cfg.LogsEnabled,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Profiler, err = NewProfiler(ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.PyroscopeEndpoint,
		ApplicationName: cfg.ServiceName,
		ProfileCPU:      true,
		ProfileAlloc:    true,
		ProfileInuse:    true,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}
	if t.Profiler.IsEnabled() {
		t.Tracer.EnableSpanProfiles()
	}

	t.Metrics, err = NewReviewMetrics(t.Meter.Meter(MeterName))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to register review metrics: %w", err), t.Shutdown(ctx))
	}

	return t, nil
}

// LogCore returns the zap core that forwards entries to the OTLP log
// exporter, or a no-op core when log export is off.
func (t *Telemetry) LogCore(serviceName string, level zapcore.Level) zapcore.Core {
	return t.Logs.Core(serviceName, level)
}

// Shutdown flushes and stops every provider, profiler first.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	if t.Meter != nil {
		errs = append(errs, t.Meter.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Collector is the OTLP/gRPC endpoint shared by traces, metrics and logs
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func (c Collector) resource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}
	return res, nil
}

const signalShutdownTimeout = 10 * time.Second

// shutdownSignal flushes one provider within signalShutdownTimeout
func shutdownSignal(ctx context.Context, signal string, logger *zap.Logger, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, signalShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Telemetry provider shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", signal, err)
	}
	logger.Debug("Telemetry provider shut down", zap.String("signal", signal))
	return nil
}
