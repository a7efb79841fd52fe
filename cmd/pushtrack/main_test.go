package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-push-tracking/internal/di"
	"github.com/goliatone/go-push-tracking/pkg/config"
	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"decode": false, "replay": false, "events": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %s not registered", name)
		}
	}
}

func TestDecodeCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(`{
		"attributes": {"campaign_id": "c1"},
		"actions": [{"url": "https://example.com/a"}, {"url": "https://example.com/b"}]
	}`))
	root.SetArgs([]string{"decode", "-", "--action", "OPEN_BROWSER_1"})

	if err := root.Execute(); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var got struct {
		Properties map[string]any `json:"properties"`
		Action     struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"action"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if got.Properties["campaign_id"] != "c1" || got.Properties["status"] != domain.StatusClicked {
		t.Fatalf("unexpected properties %v", got.Properties)
	}
	if got.Action.Kind != "browser" || got.Action.Value != "https://example.com/b" {
		t.Fatalf("unexpected action %+v", got.Action)
	}
}

func TestParseStepsSkipsCommentsAndBlankLines(t *testing.T) {
	steps, err := parseSteps([]byte("# header\n\n{\"kind\":\"token\",\"token_hex\":\"01ab\"}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(steps) != 1 || steps[0].Kind != stepToken {
		t.Fatalf("unexpected steps %+v", steps)
	}
	if _, err := parseSteps([]byte("{not json}")); err == nil {
		t.Fatalf("expected invalid line to fail")
	}
}

func TestRunReplayPrintsTrackedEvents(t *testing.T) {
	cfg := config.Defaults()
	cfg.Async.Enabled = config.Bool(false)
	steps := []replayStep{
		{Kind: stepToken, TokenHex: "01ab"},
		{Kind: stepOpened, Payload: map[string]any{"data": map[string]any{"campaign_id": "c1"}}, ActionIdentifier: "OPEN_APP"},
		{Kind: stepAssignDelegate},
		{Kind: stepOpened, Payload: map[string]any{}, ActionIdentifier: "OPEN_APP"},
		{Kind: stepClearDelegate},
		{Kind: stepOpened, Payload: map[string]any{}, ActionIdentifier: "OPEN_APP"},
	}

	var out bytes.Buffer
	err := runReplay(context.Background(), &out, receiverNone, steps, di.Options{Config: cfg, Logger: &logger.Nop{}})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 tracked events, got %d:\n%s", len(lines), out.String())
	}
	tokens := 0
	for _, line := range lines {
		var evt domain.TrackedEvent
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.EventType == "register_push_token" {
			tokens++
			if evt.Properties["token"] != "01ab" {
				t.Fatalf("unexpected token event %+v", evt)
			}
		}
	}
	if tokens != 1 {
		t.Fatalf("expected one token event, got %d", tokens)
	}
}

func TestRunReplayPrintsOpenedURLs(t *testing.T) {
	cfg := config.Defaults()
	cfg.Async.Enabled = config.Bool(false)
	steps := []replayStep{{
		Kind: stepOpened,
		Payload: map[string]any{
			"actions": []any{map[string]any{"url": "https://example.com/promo"}},
		},
		ActionIdentifier: "OPEN_BROWSER_0",
	}}

	for i := 0; i < 20; i++ {
		var out bytes.Buffer
		if err := runReplay(context.Background(), &out, receiverNone, steps, di.Options{Config: cfg, Logger: &logger.Nop{}}); err != nil {
			t.Fatalf("replay: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 || lines[0] != "open https://example.com/promo" {
			t.Fatalf("run %d: expected open line then one event, got:\n%s", i, out.String())
		}
	}
}

func TestRunReplayWithSQLiteStorage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Defaults()
	cfg.Async.Enabled = config.Bool(false)
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.DSN = "file::memory:"
	steps := []replayStep{
		{Kind: stepToken, TokenHex: "01ab"},
		{Kind: stepOpened, Payload: map[string]any{}, ActionIdentifier: "OPEN_APP"},
	}

	var out bytes.Buffer
	if err := runReplay(ctx, &out, receiverNone, steps, di.Options{Config: cfg, Logger: &logger.Nop{}}); err != nil {
		t.Fatalf("replay: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 exported events, got:\n%s", out.String())
	}
}

func TestRunReplayRejectsUnknownStep(t *testing.T) {
	cfg := config.Defaults()
	err := runReplay(context.Background(), &bytes.Buffer{}, receiverNone, []replayStep{{Kind: "explode"}}, di.Options{Config: cfg, Logger: &logger.Nop{}})
	if err == nil {
		t.Fatalf("expected unknown step to fail")
	}
}
