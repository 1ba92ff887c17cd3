package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("reason", "variant_created"),
		attribute.String("product_id", "42"),
		attribute.String("entity", "color"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "product_id" {
			t.Fatalf("expected product_id to be dropped")
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordStockAdjustment(context.Background(), "variant_created", 5)
	m.RecordGuardRejection(context.Background(), "color")
	m.RecordReconcileFix(context.Background(), "product", 1)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordStockAdjustment(context.Background(), "variant_deleted", -3)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg, Config{ServiceName: "stockroom", Environment: "test"})
	if err != nil {
		t.Fatalf("new http metrics: %v", err)
	}

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/colors", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/colors", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/colors", "GET", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
}

func TestJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewJobMetrics(reg, Config{})
	if err != nil {
		t.Fatalf("new job metrics: %v", err)
	}

	m.ObserveRun("stock_reconcile", JobOutcomeSuccess, 20*time.Millisecond)
	m.ObserveRun("stock_reconcile", JobOutcomeSkipped, 0)
	m.AddFixed("stock_reconcile", "product", 3)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("stock_reconcile", JobOutcomeSuccess)); got != 1 {
		t.Fatalf("expected 1 successful run, got %v", got)
	}
	if got := testutil.ToFloat64(m.fixed.WithLabelValues("stock_reconcile", "product")); got != 3 {
		t.Fatalf("expected 3 fixed products, got %v", got)
	}
}
