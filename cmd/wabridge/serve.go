package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/wabridge/pkg/wabridge"
)

// serveCommand is the explicit spelling of the root command.
func (c *cli) serveCommand(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge (default command)",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
	cmd.Flags().AddFlagSet(root.Flags())
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	if err := c.load(cmd); err != nil {
		return err
	}
	c.log.Info().Interface("config", c.cfg).Msg("configuration")

	b, err := wabridge.New(c.cfg, wabridge.WithLogger(c.log))
	if err != nil {
		return fmt.Errorf("create bridge: %w", err)
	}
	defer b.Close()

	if err := b.Run(context.Background()); err != nil {
		return fmt.Errorf("run bridge: %w", err)
	}
	c.log.Info().Msg("bridge stopped")
	return nil
}
