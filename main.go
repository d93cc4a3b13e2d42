package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/foliops/folio/internal/commands"
	"github.com/foliops/folio/internal/core/config"
	"github.com/foliops/folio/internal/core/styles"
	"github.com/foliops/folio/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
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

func main() {
	os.Exit(run())
}

func run() (exitCode int) {
	ctx := context.Background()

	var logCloser func()
	flags := &commands.Flags{}

	// A panic in the TUI leaves the terminal in the alternate screen with
	// no usable trace. Write the report to a crash file and exit non-zero.
	defer func() {
		if r := recover(); r != nil {
			crashPath := filepath.Join(flags.StateDir, "crash.log")
			if flags.Config != nil {
				crashPath = flags.Config.CrashFile()
			}
			report := fmt.Sprintf("panic at %s: %v\n\n%s", time.Now().Format(time.RFC3339), r, debug.Stack())
			_ = os.MkdirAll(filepath.Dir(crashPath), 0o755)
			_ = os.WriteFile(crashPath, []byte(report), 0o644)
			fmt.Fprintf(os.Stderr, "folio crashed: %v\ncrash report written to %s\n", r, crashPath)
			exitCode = 1
		}
	}()

	app := &cli.Command{
		Name:      "folio",
		Usage:     "Terminal PDF viewer with tabs, selection, and highlighting",
		UsageText: "folio [global options] [command] [file.pdf ...]",
		Description: `Folio renders PDF documents in the terminal with half-block graphics.

Run 'folio <files or globs>' to open documents in tabs. Inside the viewer,
press ? for keybindings. The select and highlight tools work with mouse
drags; box selection kicks in automatically on pages without text.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FOLIO_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <state-dir>/folio.log)",
				Sources:     cli.EnvVars("FOLIO_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FOLIO_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "state-dir",
				Usage:       "path to state directory",
				Sources:     cli.EnvVars("FOLIO_STATE_DIR"),
				Value:       commands.DefaultStateDir(),
				Destination: &flags.StateDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file: stdout belongs to the TUI.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.StateDir, "folio.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.StateDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			styles.Apply(cfg.Theme)
			for _, w := range cfg.Warnings() {
				log.Warn().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	viewCmd := commands.NewViewCmd(flags)

	app = commands.NewInfoCmd(flags).Register(app)
	app = commands.NewTextCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Viewing is the default action: every argument is a document.
	app.Action = viewCmd.Run

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		return 1
	}
	return exitCode
}
