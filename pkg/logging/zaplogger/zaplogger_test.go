package zaplogger

import (
	"errors"
	"testing"

	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lgr := New(zap.New(core)).With(logger.F("component", "monitor"))

	lgr.Error("unhandled delegate change", logger.Err(errors.New("boom")), logger.F("transition", "unhandled"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "monitor" {
		t.Fatalf("expected component field, got %v", ctx)
	}
	if ctx["transition"] != "unhandled" {
		t.Fatalf("expected transition field, got %v", ctx)
	}
	if ctx["error"] != "boom" {
		t.Fatalf("expected error field, got %v", ctx)
	}
}

func TestNewProductionRejectsUnknownLevel(t *testing.T) {
	if _, err := NewProduction("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
