package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Togather-Foundation/planner/internal/client"
	"github.com/Togather-Foundation/planner/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8080"

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	logFormat  string

	serverURL   string
	sessionPath string
	timeout     time.Duration
}

// newRootCommand builds the full command tree. Each call returns fresh
// commands so tests never share flag state.
func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "server",
		Short: "Togather Planner - event planning with a volunteer roster",
		Long: `Togather Planner serves a small event calendar: one administrator creates,
edits and deletes events, and anyone can put their name down to volunteer.

The same binary runs the HTTP server and a command-line client for it:
- serve, migrate, healthcheck and version operate the server
- status, register, login, logout and whoami manage the admin session
- events and volunteer work with the calendar over the API`,
		SilenceUsage: true,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts, serveFlags{})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (optional, uses env vars by default)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (json, console) (default: json)")
	flags.StringVar(&opts.serverURL, "server", envOr("PLANNER_URL", defaultServerURL), "planner server URL for client commands")
	flags.StringVar(&opts.sessionPath, "session", os.Getenv("PLANNER_SESSION"), "session file for client commands (default: <config dir>/planner/session.json)")
	flags.DurationVar(&opts.timeout, "request-timeout", 30*time.Second, "request timeout for client commands")

	root.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newVersionCommand(),
		newHealthcheckCommand(),
		newStatusCommand(opts),
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newEventsCommand(opts),
		newVolunteerCommand(opts),
	)
	return root
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads the server configuration and applies the logging flags.
func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	return cfg, nil
}

// cliLogger is the logger for client commands. Client output goes to stdout,
// so logs go to stderr and stay quiet unless --log-level asks otherwise.
func cliLogger(opts *options, errOut io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil || opts.logLevel == "" {
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: errOut, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

func newAPIClient(cmd *cobra.Command, opts *options) (*client.Client, error) {
	path := opts.sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	return client.New(opts.serverURL,
		client.WithSessionStore(client.NewFileSessionStore(path)),
		client.WithLogger(cliLogger(opts, cmd.ErrOrStderr())),
		client.WithHTTPClient(newHTTPClient(opts.timeout)),
	)
}
