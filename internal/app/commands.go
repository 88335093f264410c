package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// IDCommand asks the bridge to reply with the current conversation identifier.
const IDCommand = "!id"

// CommandsConfig contains configuration for command replies.
type CommandsConfig struct {
	// Timeout bounds each reply send. Zero waits forever.
	Timeout time.Duration
	// Go runs a reply in the background. Nil uses a plain goroutine.
	Go func(fn func())
}

// Commands dispatches inbound chat commands. Replies are sent in the
// background so a slow send never holds up the session event loop.
type Commands struct {
	config  CommandsConfig
	session ports.SessionClient
	history ports.HistoryLog
	logger  ports.Logger

	wg sync.WaitGroup
}

// NewCommands creates a command dispatcher that replies through session.
func NewCommands(config CommandsConfig, session ports.SessionClient, history ports.HistoryLog, logger ports.Logger) *Commands {
	if config.Go == nil {
		config.Go = func(fn func()) { go fn() }
	}
	return &Commands{config: config, session: session, history: history, logger: logger}
}

// Dispatch handles msg if it is a known command and ignores it otherwise.
// It returns before the reply has been sent.
func (c *Commands) Dispatch(ctx context.Context, msg domain.InboundMessage) {
	if msg.Body != IDCommand {
		return
	}

	label := "Chat ID"
	if msg.IsGroup {
		label = "Group ID"
	}
	reply := "*" + label + ":* " + msg.ChatID

	c.wg.Add(1)
	c.config.Go(func() {
		defer c.wg.Done()
		c.reply(ctx, msg, reply)
	})
}

// Wait blocks until every dispatched reply has finished.
func (c *Commands) Wait() {
	c.wg.Wait()
}

func (c *Commands) reply(ctx context.Context, msg domain.InboundMessage, reply string) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if err := c.session.SendText(ctx, domain.Target(msg.ChatID), reply); err != nil {
		c.logger.Error("id command reply failed", ports.String("chat", msg.ChatID), ports.Err(err))
		_ = c.history.Log("Error in message handler: " + err.Error())
		return
	}
	_ = c.history.Log("ID requested by " + msg.From + ": " + msg.ChatID)
}
