package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Upload outcomes reported on gtfsreview_feed_uploads_total.
const (
	UploadAccepted = "accepted"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// ReviewMetrics holds the review workflow instruments. A nil *ReviewMetrics
// is valid and records nothing.
type ReviewMetrics struct {
	feedUploads       metric.Int64Counter
	feedParseDuration metric.Float64Histogram
	resultsRecorded   metric.Int64Counter
	reviewsStarted    metric.Int64Counter
	reviewsCompleted  metric.Int64Counter
}

// NewReviewMetrics registers the review instruments on meter.
func NewReviewMetrics(meter metric.Meter) (*ReviewMetrics, error) {
	m := &ReviewMetrics{}
	var err error

	if m.feedUploads, err = meter.Int64Counter("gtfsreview_feed_uploads_total",
		metric.WithDescription("Feed archive uploads by outcome"),
		metric.WithUnit("{upload}"),
	); err != nil {
		return nil, err
	}
	if m.feedParseDuration, err = meter.Float64Histogram("gtfsreview_feed_parse_duration_seconds",
		metric.WithDescription("Time spent unpacking and indexing an uploaded feed"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	); err != nil {
		return nil, err
	}
	if m.resultsRecorded, err = meter.Int64Counter("gtfsreview_results_recorded_total",
		metric.WithDescription("Reviewer scores recorded"),
		metric.WithUnit("{result}"),
	); err != nil {
		return nil, err
	}
	if m.reviewsStarted, err = meter.Int64Counter("gtfsreview_reviews_started_total",
		metric.WithDescription("Reviews started"),
		metric.WithUnit("{review}"),
	); err != nil {
		return nil, err
	}
	if m.reviewsCompleted, err = meter.Int64Counter("gtfsreview_reviews_completed_total",
		metric.WithDescription("Reviews marked complete"),
		metric.WithUnit("{review}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordFeedUpload counts one upload with the given outcome.
func (m *ReviewMetrics) RecordFeedUpload(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.feedUploads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordFeedParse records how long a feed took to unpack.
func (m *ReviewMetrics) RecordFeedParse(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.feedParseDuration.Record(ctx, d.Seconds())
}

// RecordResult counts one recorded score for a review category.
func (m *ReviewMetrics) RecordResult(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.resultsRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordReviewStarted counts a new review for the given mode.
func (m *ReviewMetrics) RecordReviewStarted(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.reviewsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordReviewCompleted counts a review marked complete.
func (m *ReviewMetrics) RecordReviewCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.reviewsCompleted.Add(ctx, 1)
}
