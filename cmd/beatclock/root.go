package main

import (
	"fmt"
	"os"

	"github.com/Garik-/beatclock/pkg/score"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "beatclock",
		Short:         "Schedule Standard MIDI File events on the wall clock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			enableDebugLogging(l)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = cliLog.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(NewEventsCommand())
	cmd.AddCommand(NewStreamCommand())
	cmd.AddCommand(NewRollCommand())

	return cmd
}

func loadEvents(name string) ([]score.Event, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	events, err := score.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	cliLog.Debug("loaded", zap.String("name", name), zap.Int("events", len(events)))
	return events, nil
}
