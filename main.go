package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/toastq/internal/commands"
	"github.com/hay-kot/toastq/internal/core/config"
	"github.com/hay-kot/toastq/internal/core/notify"
	"github.com/hay-kot/toastq/internal/core/styles"
	"github.com/hay-kot/toastq/internal/data/db"
	"github.com/hay-kot/toastq/internal/data/stores"
	"github.com/hay-kot/toastq/internal/printer"
	"github.com/hay-kot/toastq/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openHistory opens the history database, moving a corrupt file aside and
// retrying once.
func openHistory(dataDir string) (*db.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	database, err := db.Open(dataDir, db.DefaultOpenOptions())
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	log.Warn().Err(err).Str("data_dir", dataDir).Msg("history database is corrupt, starting fresh")
	if err := stores.RecoverFromCorruption(dataDir); err != nil {
		return nil, err
	}

	return db.Open(dataDir, db.DefaultOpenOptions())
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		database  *db.DB
		detach    func()
		toastqApp = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "toastq",
		Usage:     "A toast notification queue",
		UsageText: "toastq [global options] command [command options]",
		Description: `toastq keeps a bounded queue of toast notifications that dismiss themselves
after a severity dependent duration.

Run 'toastq' with no arguments to open the interactive demo.
Run 'toastq serve' to expose the queue over HTTP and 'toastq send' to post to it.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TOASTQ_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/toastq.log)",
				Sources:     cli.EnvVars("TOASTQ_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TOASTQ_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TOASTQ_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/toastq.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "toastq.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(c.Root().Writer))

			// config validate reports problems itself
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			center := notify.New[string](cfg.CenterOptions()...)

			var history notify.Store
			if cfg.History.Enabled {
				database, err = openHistory(cfg.DataDir)
				if err != nil {
					return ctx, fmt.Errorf("open history: %w", err)
				}

				store := stores.NewNotifyStore(database, cfg.History.Retention)
				detach = notify.NewRecorder[string](store, nil).Attach(center)
				history = store
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*toastqApp = commands.App{
				Config:  cfg,
				Center:  center,
				History: history,
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if detach != nil {
				detach()
			}

			// Stop pending auto-dismiss timers
			if toastqApp.Center != nil {
				toastqApp.Center.Clear()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, toastqApp)

	app = tuiCmd.Register(app)
	app = commands.NewServeCmd(flags, toastqApp).Register(app)
	app = commands.NewSendCmd(flags, toastqApp).Register(app)
	app = commands.NewHistoryCmd(flags, toastqApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'toastq --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
