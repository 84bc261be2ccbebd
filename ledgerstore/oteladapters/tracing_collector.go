package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

// TracingCollector implements ledgerstore.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector on top of tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan opens a child span of whatever span ctx carries.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, ledgerstore.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan sets the final attributes and status and ends the span. Foreign SpanContext values are ignored.
func (t *TracingCollector) FinishSpan(spanCtx ledgerstore.SpanContext, status string, attrs map[string]string) {
	s, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	s.span.SetAttributes(attributes(attrs)...)
	s.SetStatus(status)
	s.span.End()
}

var _ ledgerstore.TracingCollector = (*TracingCollector)(nil)

// SpanContext wraps a trace.Span.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps ledgerstore status strings onto span status codes.
// Unknown statuses are only recorded as an attribute.
func (s *SpanContext) SetStatus(status string) {
	switch status {
	case ledgerstore.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case ledgerstore.StatusError:
		s.span.SetStatus(codes.Error, "operation failed")
	case ledgerstore.StatusConcurrencyConflict:
		s.span.SetStatus(codes.Error, "concurrency conflict")
	default:
		s.AddAttribute(ledgerstore.AttrStatus, status)
	}
}

func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attributes(map[string]string{key: value})...)
}

var _ ledgerstore.SpanContext = (*SpanContext)(nil)
