package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
)

var usecaseTracer = otel.Tracer("nba-lineups/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan only opens a child span when the caller already carries a
// sampled trace, so CLI runs without a tracer stay span-free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func requestAttributes(teamAbbr string, date time.Time) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("lineup.team", teamAbbr),
		attribute.String("lineup.date", date.Format(time.DateOnly)),
	}
}

// endWithOutcome annotates the span with the scrape outcome. Only internal
// failures mark the span as errored; the rest are expected results.
func endWithOutcome(span trace.Span, res lineup.Result) {
	span.SetAttributes(
		attribute.String("lineup.outcome", string(res.Outcome)),
		attribute.Int("lineup.roster_matches", res.MatchCount),
		attribute.Int("lineup.trail_events", len(res.Trail)),
	)
	if res.Outcome == lineup.OutcomeInternal {
		span.SetStatus(codes.Error, res.Reason)
	}
	span.End()
}
