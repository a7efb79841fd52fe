package main

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/push"
	"github.com/spf13/cobra"
)

type decodeOutput struct {
	Properties domain.Properties    `json:"properties"`
	Action     domain.DecodedAction `json:"action"`
}

func newDecodeCmd() *cobra.Command {
	var action string
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a notification payload",
		Long: `Decode a notification payload into tracked properties and the routed action.

Examples:
  pushtrack decode payload.json --action OPEN_BROWSER_0
  cat payload.json | pushtrack decode -`,
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
			var raw map[string]any
			if err := json.Unmarshal(content, &raw); err != nil {
				return fmt.Errorf("pushtrack: payload is not a JSON object: %w", err)
			}

			decoder, err := push.NewDecoder(nil)
			if err != nil {
				return err
			}
			payload := push.ParsePayload(raw)
			out := decodeOutput{
				Properties: decoder.Decode(raw),
				Action:     push.Resolve(action, payload.Actions),
			}
			out.Action.ExtraData = payload.Attributes

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "action identifier reported by the platform")
	return cmd
}
