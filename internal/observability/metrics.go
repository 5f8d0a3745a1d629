package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Business metric kinds accepted by RecordBusinessMetric
const (
	MetricAnalysis      = "analysis"
	MetricPlan          = "plan"
	MetricToggle        = "toggle"
	MetricRollback      = "rollback"
	MetricPortfolioView = "portfolio_view"
	MetricRateLimitHit  = "rate_limit_hit"
)

// Metrics holds all custom metrics for ProEduAlt
type Metrics struct {
	// Backend client metrics
	BackendRequestDuration metric.Float64Histogram
	BackendRequestCount    metric.Int64Counter
	BackendErrorCount      metric.Int64Counter

	// Business metrics
	Analyses        metric.Int64Counter
	PlansGenerated  metric.Int64Counter
	TasksToggled    metric.Int64Counter
	ToggleRollbacks metric.Int64Counter
	PortfolioViews  metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.BackendRequestDuration, err = meter.Float64Histogram(
		"proedualt_backend_request_duration_seconds",
		metric.WithDescription("Time spent waiting on backend requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend duration metric: %w", err)
	}

	if m.BackendRequestCount, err = meter.Int64Counter("proedualt_backend_requests_total",
		metric.WithDescription("Total number of backend requests")); err != nil {
		return nil, fmt.Errorf("failed to create backend request count metric: %w", err)
	}
	if m.BackendErrorCount, err = meter.Int64Counter("proedualt_backend_errors_total",
		metric.WithDescription("Backend requests that failed to complete or were rejected")); err != nil {
		return nil, fmt.Errorf("failed to create backend error count metric: %w", err)
	}
	if m.Analyses, err = meter.Int64Counter("proedualt_analyses_total",
		metric.WithDescription("Total number of analysis passes")); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}
	if m.PlansGenerated, err = meter.Int64Counter("proedualt_plans_generated_total",
		metric.WithDescription("Total number of learning plans generated")); err != nil {
		return nil, fmt.Errorf("failed to create plans metric: %w", err)
	}
	if m.TasksToggled, err = meter.Int64Counter("proedualt_task_toggles_total",
		metric.WithDescription("Total number of task completion toggles")); err != nil {
		return nil, fmt.Errorf("failed to create toggles metric: %w", err)
	}
	if m.ToggleRollbacks, err = meter.Int64Counter("proedualt_task_toggle_rollbacks_total",
		metric.WithDescription("Optimistic toggles reverted after a failed update")); err != nil {
		return nil, fmt.Errorf("failed to create rollbacks metric: %w", err)
	}
	if m.PortfolioViews, err = meter.Int64Counter("proedualt_portfolio_views_total",
		metric.WithDescription("Total number of portfolio renders")); err != nil {
		return nil, fmt.Errorf("failed to create portfolio views metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("proedualt_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return m, nil
}

// RecordBackendRequest records one backend round trip. status is 0 when the
// request never completed.
func (m *Metrics) RecordBackendRequest(ctx context.Context, endpoint string, status int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", strconv.Itoa(status)),
		attribute.Bool("success", err == nil),
	)
	m.BackendRequestDuration.Record(ctx, duration.Seconds(), attrs)
	m.BackendRequestCount.Add(ctx, 1, attrs)
	if err != nil {
		m.BackendErrorCount.Add(ctx, 1, attrs)
	}
}

// RecordBusinessMetric records business-specific metrics
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)...)

	switch metricType {
	case MetricAnalysis:
		m.Analyses.Add(ctx, 1, attrs)
	case MetricPlan:
		m.PlansGenerated.Add(ctx, 1, attrs)
	case MetricToggle:
		m.TasksToggled.Add(ctx, 1, attrs)
	case MetricRollback:
		m.ToggleRollbacks.Add(ctx, 1, attrs)
	case MetricPortfolioView:
		m.PortfolioViews.Add(ctx, 1, attrs)
	case MetricRateLimitHit:
		m.RateLimitHits.Add(ctx, 1, attrs)
	}
}
