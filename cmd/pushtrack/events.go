package main

import (
	"github.com/goliatone/go-push-tracking/internal/di"
	"github.com/goliatone/go-push-tracking/pkg/commands"
	"github.com/spf13/cobra"
)

func newEventsCmd(flags *rootFlags) *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Inspect tracked events in the configured store",
	}

	var limit int
	export := &cobra.Command{
		Use:   "export",
		Short: "Print recorded events as JSON lines and mark them exported",
		Long: `Print recorded events as JSON lines and mark them exported.

Only useful with the sqlite storage driver; the memory store starts empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			lgr, err := newLogger(cfg)
			if err != nil {
				return err
			}
			host, err := newSimHost(receiverNone)
			if err != nil {
				return err
			}
			container, err := di.New(cmd.Context(), di.Options{Config: cfg, Logger: lgr, Host: host})
			if err != nil {
				return err
			}
			defer container.Close()
			return container.Commands.ExportEvents.Execute(cmd.Context(), commands.ExportEvents{
				Limit: limit,
				Out:   cmd.OutOrStdout(),
			})
		},
	}
	export.Flags().IntVar(&limit, "limit", 0, "maximum events to export (0 = all)")

	events.AddCommand(export)
	return events
}
