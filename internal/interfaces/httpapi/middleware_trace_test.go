package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{method: http.MethodGet, path: "/v1/lineups/MIA", want: true},
		{method: http.MethodPost, path: "/v1/lineups/warmup", want: true},
		{method: http.MethodGet, path: " /V1/lineups/okc ", want: true},
		{method: http.MethodOptions, path: "/v1/lineups/MIA", want: false},
		{method: http.MethodGet, path: "/healthz", want: false},
		{method: http.MethodGet, path: "/favicon.ico", want: false},
		{method: http.MethodGet, path: "/", want: false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, "/", nil)
		r.URL.Path = tt.path
		if got := shouldTraceRequest(r); got != tt.want {
			t.Fatalf("shouldTraceRequest(%s %q)=%v want=%v", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "lineup handler", in: "httpapi.Handler.GetStartingLineup", want: true},
		{name: "warmup handler", in: "httpapi.Handler.RunWarmup", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldCreateHTTPAPISpan(tt.in); got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpan_WithoutParentIsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetStartingLineup")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span.IsRecording() || span.SpanContext().IsValid() {
		t.Fatalf("expected a non-recording span without a parent")
	}
}
