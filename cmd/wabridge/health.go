package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bft-labs/wabridge/internal/adapters/fs"
)

var errNotReady = errors.New("session not ready")

func (c *cli) healthCommand() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Exit 0 if the session is ready, 1 otherwise",
		Long: `Checks the readiness marker file written by a running bridge. No HTTP call
is made, so this is safe to use as a container or systemd health check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			since, err := fs.ReadMarker(c.cfg.MarkerPath)
			if err != nil && wait > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), wait)
				defer cancel()
				since, err = fs.WaitForMarker(ctx, c.cfg.MarkerPath)
			}
			if err != nil {
				if errors.Is(err, os.ErrNotExist) || errors.Is(err, context.DeadlineExceeded) {
					fmt.Fprintln(cmd.OutOrStdout(), "not ready")
					return errNotReady
				}
				return fmt.Errorf("read marker: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ready since %s (%s)\n", since.Format(time.RFC3339), humanize.Time(since))
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the session to become ready")
	return cmd
}
