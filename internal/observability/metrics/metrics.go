package metrics

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	Protocol         string
	ServiceName      string
	Environment      string
}

// Metrics exposes inventory instruments. A nil *Metrics records nothing.
type Metrics struct {
	stockAdjustments metric.Int64Counter
	stockDelta       metric.Int64Counter
	guardRejections  metric.Int64Counter
	reconcileFixes   metric.Int64Counter
}

// NewProvider installs an OTLP meter provider, or a noop one when disabled.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized", zap.String("endpoint", cfg.ExporterEndpoint))
	}

	return provider, nil
}

func newExporter(cfg Config) (sdkmetric.Exporter, error) {
	if cfg.Protocol == "http" || cfg.Protocol == "http/protobuf" {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if cfg.ExporterEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.ExporterEndpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
	if cfg.ExporterEndpoint != "" {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.ExporterEndpoint))
	}
	return otlpmetricgrpc.New(context.Background(), opts...)
}

// New registers the inventory instruments on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "stockroom"
	}
	meter := provider.Meter(name)

	stockAdjustments, err := meter.Int64Counter("stockroom_stock_adjustments_total",
		metric.WithDescription("Aggregate adjustments applied to products and categories."))
	if err != nil {
		return nil, err
	}
	stockDelta, err := meter.Int64Counter("stockroom_stock_delta_units_total",
		metric.WithDescription("Absolute units moved by aggregate adjustments."))
	if err != nil {
		return nil, err
	}
	guardRejections, err := meter.Int64Counter("stockroom_guard_rejections_total",
		metric.WithDescription("Writes rejected because the key already exists."))
	if err != nil {
		return nil, err
	}
	reconcileFixes, err := meter.Int64Counter("stockroom_reconcile_fixes_total",
		metric.WithDescription("Aggregates corrected by the reconciler."))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		stockAdjustments: stockAdjustments,
		stockDelta:       stockDelta,
		guardRejections:  guardRejections,
		reconcileFixes:   reconcileFixes,
	}, nil
}

func (m *Metrics) RecordStockAdjustment(ctx context.Context, reason string, delta int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))...)
	m.stockAdjustments.Add(ctx, 1, attrs)
	if delta < 0 {
		delta = -delta
	}
	m.stockDelta.Add(ctx, delta, attrs)
}

func (m *Metrics) RecordGuardRejection(ctx context.Context, entity string) {
	if m == nil {
		return
	}
	m.guardRejections.Add(ctx, 1, metric.WithAttributes(
		FilterAttributes(attribute.String("entity", strings.TrimSpace(entity)))...,
	))
}

func (m *Metrics) RecordReconcileFix(ctx context.Context, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reconcileFixes.Add(ctx, int64(n), metric.WithAttributes(
		FilterAttributes(attribute.String("kind", strings.TrimSpace(kind)))...,
	))
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"reason":      {},
	"entity":      {},
	"kind":        {},
	"route":       {},
	"status_code": {},
}

// FilterAttributes strips labels outside the allow list to keep cardinality low.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
