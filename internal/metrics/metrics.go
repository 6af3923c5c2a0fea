package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/ovenside/pizza-storefront/pkg/config"
)

// AppMetrics holds all storefront metrics.
type AppMetrics struct {
	// Backend API client metrics
	APIRequestsTotal   metric.Int64Counter
	APIRequestErrors   metric.Int64Counter
	APIRequestDuration metric.Float64Histogram

	// Business metrics
	CartItemsCount metric.Int64Gauge
	CartValue      metric.Float64Gauge
	OrdersPlaced   metric.Int64Counter
	RevenueTotal   metric.Float64Counter
	LoginsTotal    metric.Int64Counter

	// Profile cache metrics
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	// Service name added to all metrics
	serviceName string
}

// InitMetrics initializes OpenTelemetry metrics with an OTLP HTTP exporter.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTEL.ServiceName),
			semconv.ServiceVersion(cfg.OTEL.ServiceVersion),
			attribute.String("deployment.environment", cfg.OTEL.DeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	// Explicit attributes take precedence over the environment.
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTEL.ExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.OTEL.ExporterOTLPHeaders != "" {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(parseHeaders(cfg.OTEL.ExporterOTLPHeaders)))
	}
	if cfg.OTEL.ExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	appMetrics, err := NewFromMeter(meterProvider.Meter(cfg.OTEL.ServiceName), cfg.OTEL.ServiceName)
	if err != nil {
		return nil, nil, err
	}
	return appMetrics, meterProvider, nil
}

// NewFromMeter builds the instrument set from an existing meter.
func NewFromMeter(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// Millisecond buckets, expanded to 60s for slow backends
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	apiRequestsTotal, err := meter.Int64Counter(
		"api.client.request.count",
		metric.WithDescription("Total number of backend API requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api requests counter: %w", err)
	}

	apiRequestErrors, err := meter.Int64Counter(
		"api.client.request.error.count",
		metric.WithDescription("Total number of failed backend API requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api errors counter: %w", err)
	}

	apiRequestDuration, err := meter.Float64Histogram(
		"api.client.request.duration",
		metric.WithDescription("Backend API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api duration histogram: %w", err)
	}

	cartItemsCount, err := meter.Int64Gauge(
		"cart_items_count",
		metric.WithDescription("Current number of items in the cart"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart items gauge: %w", err)
	}

	cartValue, err := meter.Float64Gauge(
		"cart_value",
		metric.WithDescription("Current cart subtotal"),
		metric.WithUnit("EUR"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart value gauge: %w", err)
	}

	ordersPlaced, err := meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of orders placed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}

	revenueTotal, err := meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total value of placed orders"),
		metric.WithUnit("EUR"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	loginsTotal, err := meter.Int64Counter(
		"logins_total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}

	cacheHits, err := meter.Int64Counter(
		"profile_cache_hits_total",
		metric.WithDescription("Profile cache hits"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"profile_cache_misses_total",
		metric.WithDescription("Profile cache misses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	return &AppMetrics{
		APIRequestsTotal:   apiRequestsTotal,
		APIRequestErrors:   apiRequestErrors,
		APIRequestDuration: apiRequestDuration,
		CartItemsCount:     cartItemsCount,
		CartValue:          cartValue,
		OrdersPlaced:       ordersPlaced,
		RevenueTotal:       revenueTotal,
		LoginsTotal:        loginsTotal,
		CacheHits:          cacheHits,
		CacheMisses:        cacheMisses,
		serviceName:        serviceName,
	}, nil
}

// NewNoop returns metrics backed by no-op instruments, for tests and for
// runs with the exporter disabled.
func NewNoop() *AppMetrics {
	m, _ := NewFromMeter(noop.NewMeterProvider().Meter("noop"), "noop")
	return m
}

// WithServiceName adds service.name to attributes.
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// RecordAPIRequest records one backend API call.
func (m *AppMetrics) RecordAPIRequest(ctx context.Context, method, endpoint string, status int, start time.Time) {
	duration := time.Since(start).Milliseconds()

	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("http.status_code", status),
	}

	m.APIRequestsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	if status == 0 || status >= 400 {
		m.APIRequestErrors.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	}
	m.APIRequestDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordCartState records the cart gauges after a mutation.
func (m *AppMetrics) RecordCartState(ctx context.Context, itemCount int, subtotal float64) {
	attrs := metric.WithAttributes(m.WithServiceName(nil)...)
	m.CartItemsCount.Record(ctx, int64(itemCount), attrs)
	m.CartValue.Record(ctx, subtotal, attrs)
}

// parseHeaders parses "key1=value1,key2=value2" into a header map.
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
