package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("got %q, want %q", got, "req-123")
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}

func TestJobIDRoundTrip(t *testing.T) {
	ctx := WithJobID(context.Background(), "job-42")
	if got := JobIDFromContext(ctx); got != "job-42" {
		t.Errorf("got %q, want %q", got, "job-42")
	}
}

func TestFromContextAttachesFields(t *testing.T) {
	base := New(slog.LevelInfo)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithJobID(ctx, "job-1")

	l := FromContext(ctx, base)
	if l == base {
		t.Error("expected a derived logger when context carries IDs")
	}

	// No IDs in context: the base logger is returned unchanged.
	if l := FromContext(context.Background(), base); l != base {
		t.Error("expected base logger when context has no IDs")
	}
}
