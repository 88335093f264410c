package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/wabridge/internal/cliconfig"
)

const helpBanner = `
                 _          _     _
 __      ____ _ | |__  _ __(_) __| | __ _  ___
 \ \ /\ / / _' || '_ \| '__| |/ _' |/ _' |/ _ \
  \ V  V / (_| || |_) | |  | | (_| | (_| |  __/
   \_/\_/ \__,_||_.__/|_|  |_|\__,_|\__, |\___|
                                    |___/
`

const helpDescription = `
Send WhatsApp messages and files from scripts, cron jobs and monitoring tools
over a tiny local HTTP API.

Highlights:
  - One linked device, paired once by scanning a QR code in the terminal.
  - GET /status, POST /send and POST /file on localhost (default port 4000).
  - A marker file tracks readiness so health checks need no HTTP call.
  - Reply "!id" in any chat to learn the chatId to send to.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  wabridge --home /var/lib/wabridge
  wabridge health --wait 2m
  wabridge send --number 6281234567890 --message "backup finished"
  wabridge send-file --chat-id 120363025246125486@g.us report.pdf
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli holds state shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

// load applies the config file, then the environment, then validates. Flags
// set on the command line win over both.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	// Build set of changed flags
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	log, err := cliconfig.NewLogger(os.Stderr, c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.log = log
	return nil
}

func newCLI() *cli {
	return &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger(),
	}
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:     "wabridge",
		Short:   "Send WhatsApp messages and files over a local HTTP API",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE:    c.runServe,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.wabridge/config.toml)")
	flags.StringVar(&c.cfg.Home, "home", c.cfg.Home, "working directory for the marker, session, uploads and logs")
	flags.IntVar(&c.cfg.Port, "port", c.cfg.Port, "HTTP API port")
	flags.StringVar(&c.cfg.MarkerPath, "marker", "", "readiness marker file (default: <home>/wa_ready.flag)")
	flags.StringVar(&c.cfg.SessionDir, "session-dir", "", "session store directory (default: <home>/session)")
	flags.StringVar(&c.cfg.UploadDir, "upload-dir", "", "upload staging directory (default: <home>/uploads)")
	flags.StringVar(&c.cfg.LogFile, "log-file", "", "history log file (default: <home>/logs/history.log)")
	flags.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "console log level (debug, info, warn, error)")

	serveFlags := root.Flags()
	serveFlags.IntVar(&c.cfg.LogMaxSizeMB, "log-max-size", c.cfg.LogMaxSizeMB, "rotate the history log at this many MB (0 disables rotation)")
	serveFlags.IntVar(&c.cfg.LogMaxBackups, "log-max-backups", c.cfg.LogMaxBackups, "rotated history logs to keep")
	serveFlags.DurationVar(&c.cfg.SendTimeout, "send-timeout", c.cfg.SendTimeout, "maximum time for one send (0 waits forever)")
	serveFlags.DurationVar(&c.cfg.ShutdownTimeout, "shutdown-timeout", c.cfg.ShutdownTimeout, "grace period for in-flight requests on shutdown")
	serveFlags.StringVar(&c.cfg.MaxUploadSize, "max-upload-size", c.cfg.MaxUploadSize, "largest accepted upload, e.g. 20MiB")
	serveFlags.StringSliceVar(&c.cfg.CORSOrigins, "cors-origin", nil, "allowed CORS origin (repeatable; none disables CORS)")
	serveFlags.BoolVar(&c.cfg.Metrics, "metrics", c.cfg.Metrics, "serve Prometheus metrics on /metrics")
	serveFlags.StringVar(&c.cfg.DeviceName, "device-name", c.cfg.DeviceName, "name shown in the phone's linked devices list")
	if err := serveFlags.MarkHidden("device-name"); err != nil {
		c.log.Info().Err(err).Msg("failed to hide device-name flag")
	}

	root.AddCommand(
		c.serveCommand(root),
		c.healthCommand(),
		c.statusCommand(),
		c.sendCommand(),
		c.sendFileCommand(),
	)

	return root
}

func main() {
	c := newCLI()
	if err := newRootCommand(c).Execute(); err != nil {
		c.log.Error().Err(err).Msg("wabridge")
		os.Exit(1)
	}
}
