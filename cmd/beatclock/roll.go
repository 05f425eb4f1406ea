package main

import (
	"fmt"
	"time"

	"github.com/Garik-/beatclock/pkg/playback"
	"github.com/Garik-/beatclock/pkg/roll"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func NewRollCommand() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "roll <file.mid>",
		Short: "Draw sounding notes as a scrolling piano roll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("invalid interval %v: must be positive", interval)
			}

			events, err := loadEvents(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			keyboard := roll.NewKeyboard(lipgloss.NewRenderer(out))
			catchUp := playback.NewCatchUp(playback.NewDispatcher(events))
			start := time.Now()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				more := catchUp.Until(time.Since(start), keyboard.Apply)
				if _, err := fmt.Fprintln(out, keyboard.Render()); err != nil {
					return err
				}
				if !more {
					return nil
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "redraw interval")

	return cmd
}
