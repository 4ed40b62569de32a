package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/taskkeeper/internal/client/config"
	"github.com/iudanet/taskkeeper/internal/client/iocli"
)

// Options are the global flags shared by all commands.
type Options struct {
	ConfigPath   string
	DBPath       string
	RemoteDBPath string
	LogLevel     string
	Offline      bool
}

// BuildInfo is printed by the version command.
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

type Cli struct {
	io     iocli.IO
	opts   Options
	stderr *os.File
}

// New creates a Cli that talks to the given terminal.
func New(io iocli.IO) *Cli {
	return &Cli{io: io, stderr: os.Stderr}
}

// NewRootCommand builds the taskkeeper command tree.
func NewRootCommand(io iocli.IO, build BuildInfo) *cobra.Command {
	c := New(io)

	root := &cobra.Command{
		Use:           "taskkeeper",
		Short:         "Offline-first task manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(io)
	root.SetErr(io)

	f := root.PersistentFlags()
	f.StringVar(&c.opts.ConfigPath, "config", "", "path to YAML config file")
	f.StringVar(&c.opts.DBPath, "db", "", "path to local database (overrides config)")
	f.StringVar(&c.opts.RemoteDBPath, "remote-db", "", "path to remote database (overrides config)")
	f.StringVar(&c.opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&c.opts.Offline, "offline", false, "work without the remote store")

	root.AddCommand(
		c.newAddCmd(),
		c.newUpdateCmd(),
		c.newToggleCmd(),
		c.newDeleteCmd(),
		c.newListCmd(),
		c.newSyncCmd(),
		c.newStatusCmd(),
		c.newConflictsCmd(),
		c.newBackupCmd(),
		c.newRepairCmd(),
		c.newMigrateCmd(),
		c.newRunCmd(),
		c.newVersionCmd(build),
	)
	return root
}

// loadConfig читает файл конфигурации и применяет флаги поверх него
func (c *Cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if c.opts.DBPath != "" {
		cfg.DBPath = c.opts.DBPath
	}
	if c.opts.RemoteDBPath != "" {
		cfg.RemoteDBPath = c.opts.RemoteDBPath
	}
	if c.opts.LogLevel != "" {
		cfg.Log.Level = c.opts.LogLevel
	}
	if c.opts.Offline {
		cfg.Offline = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withApp открывает приложение на время выполнения команды.
// probe включает опрос удаленного хранилища вместо фиксированного состояния сети.
func (c *Cli) withApp(probe bool, fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := c.loadConfig()
		if err != nil {
			return err
		}

		logger, closer, err := cfg.Log.NewLogger(c.stderr)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() {
			_ = closer.Close()
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		app, err := OpenApp(ctx, cfg, logger, probe)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Error("Failed to close application", "error", err)
			}
		}()

		return fn(ctx, app, args)
	}
}

func (c *Cli) newVersionCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.io.Println("TaskKeeper Client")
			c.io.Printf("Version:    %s\n", build.Version)
			c.io.Printf("Build Date: %s\n", build.BuildDate)
			c.io.Printf("Git Commit: %s\n", build.GitCommit)
		},
	}
}
