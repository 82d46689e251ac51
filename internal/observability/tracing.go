package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a tracer for the given name
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartStoreSpan starts a span for document store operations
func StartStoreSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("Store %s %s", operation, key),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("store.operation", operation),
			attribute.String("store.key", key),
		),
	)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// StoreMetrics holds document-store metrics
type StoreMetrics struct {
	opDuration   metric.Float64Histogram
	opCount      metric.Int64Counter
	errorCount   metric.Int64Counter
	documentSize metric.Int64Histogram
}

var (
	storeMetrics     *StoreMetrics
	storeMetricsOnce sync.Once
)

// GetStoreMetrics returns the shared store metrics instruments. Instruments
// created before a meter provider is installed are valid no-ops, so callers
// never need to care about initialization order.
func GetStoreMetrics() *StoreMetrics {
	storeMetricsOnce.Do(func() {
		m, err := newStoreMetrics()
		if err != nil {
			m = &StoreMetrics{}
		}
		storeMetrics = m
	})
	return storeMetrics
}

func newStoreMetrics() (*StoreMetrics, error) {
	meter := otel.Meter(instrumentationName)

	opDuration, err := meter.Float64Histogram(
		"store.op.duration",
		metric.WithDescription("Document store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	opCount, err := meter.Int64Counter(
		"store.op.count",
		metric.WithDescription("Total number of document store operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"store.error.count",
		metric.WithDescription("Total number of document store errors"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, err
	}

	documentSize, err := meter.Int64Histogram(
		"store.document.size",
		metric.WithDescription("Serialized document size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{
		opDuration:   opDuration,
		opCount:      opCount,
		errorCount:   errorCount,
		documentSize: documentSize,
	}, nil
}

// RecordOp records one document store operation
func (m *StoreMetrics) RecordOp(ctx context.Context, operation, key string, duration time.Duration, size int, err error) {
	if m.opCount == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("store.operation", operation),
		attribute.String("store.key", key),
	}

	m.opCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.opDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if size > 0 {
		m.documentSize.Record(ctx, int64(size), metric.WithAttributes(attrs...))
	}
	if err != nil {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecipeMetrics holds custom business metrics
type RecipeMetrics struct {
	recipeSaves      metric.Int64Counter
	imageGenerations metric.Int64Counter
	shareChanges     metric.Int64Counter
	ingestDrafts     metric.Int64Counter
}

// NewRecipeMetrics creates business metrics instruments
func NewRecipeMetrics() (*RecipeMetrics, error) {
	meter := otel.Meter(instrumentationName)

	recipeSaves, err := meter.Int64Counter(
		"chameleon.recipe.saves",
		metric.WithDescription("Total number of recipe saves"),
		metric.WithUnit("{saves}"),
	)
	if err != nil {
		return nil, err
	}

	imageGenerations, err := meter.Int64Counter(
		"chameleon.image.generations",
		metric.WithDescription("Total number of recipe image generations"),
		metric.WithUnit("{generations}"),
	)
	if err != nil {
		return nil, err
	}

	shareChanges, err := meter.Int64Counter(
		"chameleon.recipe.share_changes",
		metric.WithDescription("Total number of share and unshare operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, err
	}

	ingestDrafts, err := meter.Int64Counter(
		"chameleon.ingest.drafts",
		metric.WithDescription("Total number of ingestion drafts produced"),
		metric.WithUnit("{drafts}"),
	)
	if err != nil {
		return nil, err
	}

	return &RecipeMetrics{
		recipeSaves:      recipeSaves,
		imageGenerations: imageGenerations,
		shareChanges:     shareChanges,
		ingestDrafts:     ingestDrafts,
	}, nil
}

// RecordRecipeSave records a recipe create or update
func (m *RecipeMetrics) RecordRecipeSave(ctx context.Context, userID string, created bool) {
	attrs := []attribute.KeyValue{
		attribute.String("user_id", userID),
		attribute.Bool("created", created),
	}
	m.recipeSaves.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordImageGeneration records an image generation attempt
func (m *RecipeMetrics) RecordImageGeneration(ctx context.Context, themeStyle string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("theme_style", themeStyle),
		attribute.Bool("success", success),
	}
	m.imageGenerations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordShareChange records a share or unshare operation
func (m *RecipeMetrics) RecordShareChange(ctx context.Context, targetType string) {
	attrs := []attribute.KeyValue{
		attribute.String("target_type", targetType),
	}
	m.shareChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordIngestDraft records a parsed ingestion draft
func (m *RecipeMetrics) RecordIngestDraft(ctx context.Context, source string) {
	attrs := []attribute.KeyValue{
		attribute.String("ingest_source", source),
	}
	m.ingestDrafts.Add(ctx, 1, metric.WithAttributes(attrs...))
}
