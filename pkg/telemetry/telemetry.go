// Package telemetry wires OpenTelemetry for the report service: traces go to
// an OTLP collector, metrics are scraped from a Prometheus endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/verustcode/adreport/consts"
	"github.com/verustcode/adreport/pkg/logger"
)

const (
	exporterDialTimeout   = 10 * time.Second
	metricsServerTimeout  = 10 * time.Second
	defaultPrometheusPort = 9090
	defaultMetricsPath    = "/metrics"
)

// Config holds the telemetry configuration
type Config struct {
	Enabled     bool             `yaml:"enabled"`
	ServiceName string           `yaml:"service_name"`
	OTLP        OTLPConfig       `yaml:"otlp"`
	Prometheus  PrometheusConfig `yaml:"prometheus"`
}

// OTLPConfig configures trace export over OTLP/gRPC
type OTLPConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is host:port of the collector, e.g. "localhost:4317"
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
	// SampleRatio is the fraction of root traces kept; zero keeps every trace
	SampleRatio float64 `yaml:"sample_ratio"`
}

// PrometheusConfig configures the metrics scrape endpoint
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Telemetry owns the providers and the metrics server
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsServer  *http.Server
}

// withDefaults fills in unset values
func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = consts.ServiceName
	}
	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = defaultPrometheusPort
	}
	if c.Prometheus.Path == "" {
		c.Prometheus.Path = defaultMetricsPath
	} else if !strings.HasPrefix(c.Prometheus.Path, "/") {
		c.Prometheus.Path = "/" + c.Prometheus.Path
	}
	return c
}

// New sets up the global tracer and meter providers. With telemetry
// disabled it returns an inert Telemetry and the otel no-op globals stay.
func New(cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		logger.Info("Telemetry is disabled")
		return &Telemetry{config: cfg}, nil
	}
	if r := cfg.OTLP.SampleRatio; r < 0 || r > 1 {
		return nil, fmt.Errorf("otlp sample_ratio must be within [0, 1], got %v", r)
	}

	cfg = cfg.withDefaults()
	t := &Telemetry{config: cfg}

	// resource.New avoids schema URL conflicts with the SDK's default resource
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(consts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := t.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initMetrics(res); err != nil {
		_ = t.tracerProvider.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Telemetry initialized",
		zap.String("service_name", cfg.ServiceName),
		zap.Bool("otlp_enabled", cfg.OTLP.Enabled),
		zap.Float64("sample_ratio", cfg.OTLP.SampleRatio),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)
	return t, nil
}

// sampler keeps the parent's decision and samples new roots by ratio
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func (t *Telemetry) initTracing(res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(t.config.OTLP.SampleRatio)),
	}

	if t.config.OTLP.Enabled && t.config.OTLP.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), exporterDialTimeout)
		defer cancel()

		exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(t.config.OTLP.Endpoint)}
		if t.config.OTLP.Insecure {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Info("OTLP trace exporter initialized", zap.String("endpoint", t.config.OTLP.Endpoint))
	}

	t.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(t.tracerProvider)
	return nil
}

func (t *Telemetry) initMetrics(res *resource.Resource) error {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if t.config.Prometheus.Enabled {
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exporter))
		t.startMetricsServer()
	}

	t.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(t.meterProvider)
	return nil
}

func (t *Telemetry) startMetricsServer() {
	mux := http.NewServeMux()
	mux.Handle(t.config.Prometheus.Path, promhttp.Handler())

	t.metricsServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", t.config.Prometheus.Port),
		Handler:      mux,
		ReadTimeout:  metricsServerTimeout,
		WriteTimeout: metricsServerTimeout,
	}

	go func() {
		logger.Info("Starting Prometheus metrics server",
			zap.Int("port", t.config.Prometheus.Port),
			zap.String("path", t.config.Prometheus.Path),
		)
		if err := t.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Prometheus metrics server error", zap.Error(err))
		}
	}()
}

// Shutdown flushes pending spans and stops the metrics server.
// Every component is shut down even when an earlier one fails; the
// failures are returned joined.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.config.Enabled {
		return nil
	}
	logger.Info("Shutting down telemetry")

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
	if t.metricsServer != nil {
		if err := t.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	return errors.Join(errs...)
}

// IsEnabled reports whether telemetry was configured on
func (t *Telemetry) IsEnabled() bool {
	return t.config.Enabled
}
