package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bft-labs/wabridge/pkg/client"
)

// target holds the --chat-id / --number flags shared by send commands.
type target struct {
	chatID string
	number string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.chatID, "chat-id", "", "conversation id, e.g. 120363025246125486@g.us")
	cmd.Flags().StringVar(&t.number, "number", "", "phone number in international format without +")
	cmd.MarkFlagsOneRequired("chat-id", "number")
}

func (c *cli) apiClient(cmd *cobra.Command) (*client.Client, error) {
	if err := c.load(cmd); err != nil {
		return nil, err
	}
	cmd.SilenceUsage = true

	url, _ := cmd.Flags().GetString("url")
	if url == "" {
		url = "http://127.0.0.1:" + strconv.Itoa(c.cfg.Port)
	}
	return client.New(url), nil
}

func addURLFlag(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "bridge base URL (default: http://127.0.0.1:<port>)")
}

func (c *cli) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Ask a running bridge whether its session is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.apiClient(cmd)
			if err != nil {
				return err
			}
			ready, err := api.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("query status: %w", err)
			}
			if !ready {
				fmt.Fprintln(cmd.OutOrStdout(), "not ready")
				return errNotReady
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ready")
			return nil
		},
	}
	addURLFlag(cmd)
	return cmd
}

func (c *cli) sendCommand() *cobra.Command {
	var to target
	var message string

	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send a text message through a running bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				message = strings.Join(args, " ")
			}
			api, err := c.apiClient(cmd)
			if err != nil {
				return err
			}
			ack, err := api.SendText(cmd.Context(), client.TextMessage{
				ChatID:  to.chatID,
				Number:  to.number,
				Message: message,
			})
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ack)
			return nil
		},
	}
	to.register(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text (default: the remaining arguments)")
	addURLFlag(cmd)
	return cmd
}

func (c *cli) sendFileCommand() *cobra.Command {
	var to target

	cmd := &cobra.Command{
		Use:   "send-file <path>",
		Short: "Send a file attachment through a running bridge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := c.apiClient(cmd)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			if info.Size() > c.cfg.MaxUploadBytes {
				c.log.Warn().
					Str("file", info.Name()).
					Str("size", humanize.IBytes(uint64(info.Size()))).
					Str("limit", humanize.IBytes(uint64(c.cfg.MaxUploadBytes))).
					Msg("file is larger than the local upload limit, the bridge may reject it")
			}

			ack, err := api.SendFile(cmd.Context(), client.FileMessage{
				ChatID:   to.chatID,
				Number:   to.number,
				Filename: filepath.Base(args[0]),
				Content:  f,
			})
			if err != nil {
				return fmt.Errorf("send file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ack)
			return nil
		},
	}
	to.register(cmd)
	addURLFlag(cmd)
	return cmd
}
