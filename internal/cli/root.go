package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"tasklist-cli/internal/config"
	"tasklist-cli/internal/format"
	"tasklist-cli/internal/logging"
	"tasklist-cli/internal/store"
	"tasklist-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigPath string
	LogLevel   string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tasklist",
		Short:        "Local task list (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  tasklist

  # Scriptable commands
  tasklist add Buy milk
  tasklist list --order oldest
  tasklist toggle 3

  # Direct lookup (shortcut for: tasklist show 3)
  tasklist 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Path to the data dir (overrides data_dir from config)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TASKLIST_CONFIG", ""), "Path to config.yaml (default: <config dir>/tasklist/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error; overrides logging.level)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKLIST_FORMAT", "json"), "Output format (json|edn|yaml)")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// loadConfig resolves configuration and applies flag overrides.
func loadConfig(app *App) (*config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(app.Dir) != "" {
		cfg.DataDir = app.Dir
	}
	if strings.TrimSpace(app.LogLevel) != "" {
		cfg.Logging.Level = app.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		dir, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// session is an open store plus the logger it writes to.
type session struct {
	cfg   *config.Config
	store *store.Store
	log   *slog.Logger

	logCloser io.Closer
}

func (s *session) Close() error {
	err := s.store.Close()
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
	return err
}

// openSession loads config and opens the store. Without logging.file, CLI
// commands log to stderr.
func openSession(cmd *cobra.Command, app *App, stderrFallback bool) (*session, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, err
	}

	var log *slog.Logger
	var closer io.Closer
	if strings.TrimSpace(cfg.Logging.File) == "" && stderrFallback {
		log = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level)
	} else {
		log, closer, err = logging.Open(cfg.Logging.File, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(cmd.Context(), cfg.DataDir, store.WithLogger(log))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return &session{cfg: cfg, store: st, log: log, logCloser: closer}, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	// stderr would corrupt the alt screen.
	sess, err := openSession(cmd, app, false)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer sess.Close()

	return tui.Run(cmd.Context(), tui.Options{
		Store:         sess.store,
		Logger:        sess.log,
		Theme:         sess.cfg.TUI.Theme,
		Watch:         sess.cfg.TUI.Watch,
		WatchDebounce: sess.cfg.TUI.WatchDebounce(),
		ConfirmDelete: sess.cfg.TUI.ConfirmDelete,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
