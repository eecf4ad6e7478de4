// Package main is the entry point for the shopfloor project editor.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hy4ri/shopfloor/internal/api"
	"github.com/hy4ri/shopfloor/internal/config"
	"github.com/hy4ri/shopfloor/internal/store"
	"github.com/hy4ri/shopfloor/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

// cli carries the state shared by every command.
type cli struct {
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger

	stdout io.Writer
	stderr io.Writer
}

func main() {
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	if err := c.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopfloor",
		Short: "Project task lists and cost sheets in the terminal",
		Long: `shopfloor edits a project's task checklist and its line-item cost sheet.
Every change is saved automatically a moment after you stop typing.

Config file: ~/.config/shopfloor/config.yaml ('shopfloor init' writes one).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Config file (default ~/.config/shopfloor/config.yaml)")

	root.AddCommand(
		c.initCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.projectsCmd(),
		c.addProjectCmd(),
		c.progressCmd(),
		c.totalCmd(),
		c.seedCmd(),
	)
	return root
}

// setup loads the config and builds the logger.
func (c *cli) setup() error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if c.logger != nil {
		return nil
	}
	c.logger, err = buildLogger(c.cfg, c.verbose)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}

// buildLogger writes JSON logs to the log file; the TUI owns the terminal.
func buildLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	} else if cfg.Log.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}

func (c *cli) runTUI(ctx context.Context) error {
	st, err := openStore(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	c.logger.Info("starting", zap.String("backend", c.cfg.Backend), zap.String("version", version))

	app := tui.NewApp(tui.Options{
		Store:  st,
		Config: c.cfg,
		Logger: c.logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		m, err := store.NewDemo(log)
		if err != nil {
			return nil, err
		}
		return m, nil

	case config.BackendSQLite:
		path, err := cfg.StorePath()
		if err != nil {
			return nil, err
		}
		s, err := store.OpenSQLite(ctx, path, log)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendFile:
		path, err := cfg.StorePath()
		if err != nil {
			return nil, err
		}
		f, err := store.OpenFile(path, log)
		if err != nil {
			return nil, err
		}
		return f, nil

	case config.BackendRemote:
		token, err := config.GetToken()
		if err != nil {
			return nil, fmt.Errorf("failed to read session token: %w", err)
		}
		if token == "" {
			return nil, fmt.Errorf("the remote backend needs a session token: run 'shopfloor login'")
		}
		client := api.NewClient(cfg.API.BaseURL, token)
		if d := cfg.APITimeout(); d > 0 {
			client.SetHTTPClient(&http.Client{Timeout: d})
		}
		return store.NewRemote(client, log), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
