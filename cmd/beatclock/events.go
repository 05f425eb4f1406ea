package main

import (
	"fmt"
	"io"

	"github.com/Garik-/beatclock/pkg/midi"
	"github.com/Garik-/beatclock/pkg/score"
	"github.com/spf13/cobra"
)

func NewEventsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events <file.mid>",
		Short: "Print the merged event sequence with bar positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadEvents(args[0])
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), events, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "number of events to print, 0 for all")

	return cmd
}

func printEvents(w io.Writer, events []score.Event, limit int) error {
	for i, e := range events {
		if limit > 0 && i >= limit {
			break
		}
		bar, inBar := midi.BarPosition(e.Beat, 4)
		if _, err := fmt.Fprintf(w, "%3d:%.3f %v\n", bar+1, inBar+1, e); err != nil {
			return err
		}
	}
	return nil
}
