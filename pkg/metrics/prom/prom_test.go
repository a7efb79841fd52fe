package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := New(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	rec.PushOpened("browser")
	rec.PushOpened("browser")
	rec.TokenRegistered()
	rec.TrackingFailed("push_opened")
	rec.DelegateTransition("unhandled")
	rec.InterceptionsActive(2)

	if got := testutil.ToFloat64(rec.opened.WithLabelValues("browser")); got != 2 {
		t.Fatalf("expected 2 opened, got %v", got)
	}
	if got := testutil.ToFloat64(rec.tokens); got != 1 {
		t.Fatalf("expected 1 token, got %v", got)
	}
	if got := testutil.ToFloat64(rec.failures.WithLabelValues("push_opened")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(rec.transitions.WithLabelValues("unhandled")); got != 1 {
		t.Fatalf("expected 1 transition, got %v", got)
	}
	if got := testutil.ToFloat64(rec.interceptions); got != 2 {
		t.Fatalf("expected gauge 2, got %v", got)
	}
}

func TestRecorderRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
