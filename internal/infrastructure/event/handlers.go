package event

import (
	"context"
	"strconv"

	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/evaluation"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured audit line per domain event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler logging under "audit"
func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: l.Named("audit")}
}

// EventTypes subscribes the handler to every event
func (h *AuditLogHandler) EventTypes() []string { return nil }

// Handle implements shared.EventHandler
func (h *AuditLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}
	switch ev := e.(type) {
	case *category.ReviewCategoryCreatedEvent:
		fields = append(fields, zap.String("table", ev.Table), zap.String("field", ev.Field))
	case *category.ReviewCategoryDeletedEvent:
		fields = append(fields, zap.String("table", ev.Table), zap.String("field", ev.Field))
	case *evaluation.ReviewStartedEvent:
		fields = append(fields, zap.String("agency", ev.Agency), zap.Int("mode", ev.Mode), zap.Int("results", ev.ResultCount))
	case *evaluation.ReviewCompletedEvent:
		fields = append(fields, zap.String("agency", ev.Agency), zap.Int("mode", ev.Mode))
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	logger.WithTraceContext(ctx, h.logger).Info("Domain event", fields...)
	return nil
}

// MetricsHandler counts review lifecycle events
type MetricsHandler struct {
	metrics *telemetry.ReviewMetrics
}

// NewMetricsHandler creates a handler feeding metrics
func NewMetricsHandler(metrics *telemetry.ReviewMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes implements shared.EventHandler
func (h *MetricsHandler) EventTypes() []string {
	return []string{evaluation.EventTypeReviewStarted, evaluation.EventTypeReviewCompleted}
}

// Handle implements shared.EventHandler
func (h *MetricsHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *evaluation.ReviewStartedEvent:
		h.metrics.RecordReviewStarted(ctx, strconv.Itoa(ev.Mode))
	case *evaluation.ReviewCompletedEvent:
		h.metrics.RecordReviewCompleted(ctx)
	}
	return nil
}

var (
	_ shared.EventHandler = (*AuditLogHandler)(nil)
	_ shared.EventHandler = (*MetricsHandler)(nil)
)
