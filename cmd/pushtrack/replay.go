package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-push-tracking/internal/di"
	"github.com/goliatone/go-push-tracking/pkg/commands"
	"github.com/goliatone/go-push-tracking/pkg/config"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/goliatone/go-push-tracking/pkg/push"
	"github.com/spf13/cobra"
)

// Replay step kinds.
const (
	stepOpened         = "opened"
	stepToken          = "token"
	stepAssignDelegate = "assign_delegate"
	stepClearDelegate  = "clear_delegate"
)

type replayStep struct {
	Kind             string         `json:"kind"`
	Payload          map[string]any `json:"payload,omitempty"`
	ActionIdentifier string         `json:"action_identifier,omitempty"`
	TokenHex         string         `json:"token_hex,omitempty"`
}

func newReplayCmd(flags *rootFlags) *cobra.Command {
	var receiver string
	cmd := &cobra.Command{
		Use:   "replay [file]",
		Short: "Replay host callbacks and print the tracked events",
		Long: `Replay a JSON lines script of host callbacks against a simulated host.

Each line is one step:
  {"kind":"opened","payload":{...},"action_identifier":"OPEN_APP"}
  {"kind":"token","token_hex":"01ab"}
  {"kind":"assign_delegate"}
  {"kind":"clear_delegate"}

Tracked events are printed as JSON lines once the script completes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			content, err := readInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			steps, err := parseSteps(content)
			if err != nil {
				return err
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			cfg.Async.Enabled = config.Bool(false)
			lgr, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cmd.OutOrStdout(), receiver, steps, di.Options{Config: cfg, Logger: lgr})
		},
	}
	cmd.Flags().StringVar(&receiver, "receiver", receiverNone, "app delegate receive callback: none, completion or legacy")
	return cmd
}

func parseSteps(content []byte) ([]replayStep, error) {
	var steps []replayStep
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var step replayStep
		if err := json.Unmarshal([]byte(text), &step); err != nil {
			return nil, fmt.Errorf("pushtrack: line %d: %w", line, err)
		}
		steps = append(steps, step)
	}
	return steps, scanner.Err()
}

func runReplay(ctx context.Context, out io.Writer, receiver string, steps []replayStep, opts di.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	host, err := newSimHost(receiver)
	if err != nil {
		return err
	}
	opts.Host = host
	container, err := di.New(ctx, opts)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.Start(ctx); err != nil {
		return err
	}
	lgr := logger.OrNop(opts.Logger)

	for i, step := range steps {
		switch step.Kind {
		case stepOpened:
			host.deliverOpen(ctx, push.Call{Payload: step.Payload, ActionIdentifier: step.ActionIdentifier})
		case stepToken:
			token, err := hex.DecodeString(step.TokenHex)
			if err != nil {
				return fmt.Errorf("pushtrack: step %d: token_hex: %w", i+1, err)
			}
			host.deliverToken(ctx, token)
		case stepAssignDelegate:
			delegate := push.NewCallbackTable()
			delegate.Implement(push.CallbackDidReceiveResponse, func(_ context.Context, call push.Call) { call.Done() })
			if err := container.Commands.AssignDelegate.Execute(ctx, commands.AssignDelegate{Delegate: delegate}); err != nil {
				return err
			}
		case stepClearDelegate:
			if err := container.Commands.AssignDelegate.Execute(ctx, commands.AssignDelegate{}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("pushtrack: step %d: unknown kind %q", i+1, step.Kind)
		}
	}

	if container.Manager.Disabled() {
		lgr.Warn("pushtrack: automatic tracking was disabled during replay")
	}
	// Close waits for pending URL opens before anything is printed.
	if err := container.Manager.Close(); err != nil {
		return err
	}
	if err := host.flushOpened(out); err != nil {
		return err
	}
	return container.Commands.ExportEvents.Execute(ctx, commands.ExportEvents{Out: out})
}
