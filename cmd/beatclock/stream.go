package main

import (
	"fmt"
	"io"

	"github.com/Garik-/beatclock/pkg/playback"
	"github.com/spf13/cobra"
)

func NewStreamCommand() *cobra.Command {
	var realtime bool

	cmd := &cobra.Command{
		Use:   "stream <file.mid>",
		Short: "Print events with their wall-clock time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadEvents(args[0])
			if err != nil {
				return err
			}

			wait := playback.NoWait
			if realtime {
				wait = playback.Sleep
			}

			out := cmd.OutOrStdout()
			return playback.Pace(cmd.Context(), playback.NewDispatcher(events), wait, func(e playback.Dispatched) error {
				return printDispatched(out, e)
			})
		},
	}

	cmd.Flags().BoolVar(&realtime, "realtime", false, "sleep between events")

	return cmd
}

func printDispatched(w io.Writer, e playback.Dispatched) error {
	_, err := fmt.Fprintf(w, "time=%.3f dtime=%.3f bpm=%.1f %v\n", e.Time, e.DTime, e.BPM, e.Event)
	return err
}
