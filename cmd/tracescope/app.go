package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tracescope/internal/config"
	"tracescope/internal/logging"
	"tracescope/internal/observ"
	"tracescope/internal/optrace"
)

// appState is what setupApp resolves from the config file and global flags.
type appState struct {
	cfg     config.Config
	log     *slog.Logger
	tracer  optrace.Tracer
	color   bool
	quiet   bool
	timings bool
	timer   *observ.Timer
	cleanup func(failed bool)
}

// current is set by setupApp; main closes it after the command returns.
var current *appState

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	levelName := stringSetting(cmd, "log-level", cfg.Log.Level)
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return errors.WithHint(err, "set [log].level in tracescope.toml or pass --log-level")
	}
	verbosity, _ := flags.GetCount("verbose")
	quiet, _ := flags.GetBool("quiet")
	timings, _ := flags.GetBool("timings")
	level = logging.LevelFromVerbosity(level, verbosity, quiet)
	logger := logging.New(os.Stderr, level, stringSetting(cmd, "log-format", cfg.Log.Format))

	useColor, err := resolveColor(stringSetting(cmd, "color", cfg.UI.Color))
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	tracer, cleanup, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}

	current = &appState{
		cfg:     cfg,
		log:     logger,
		tracer:  tracer,
		color:   useColor,
		quiet:   quiet,
		timings: timings,
		timer:   observ.NewTimer(),
		cleanup: cleanup,
	}
	if cfg.Path != "" {
		logger.Debug("config loaded", "path", cfg.Path)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)
	ctx = optrace.WithTracer(ctx, tracer)
	cmd.SetContext(ctx)
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// stringSetting returns the flag value when it was given on the command
// line and the config value otherwise.
func stringSetting(cmd *cobra.Command, flag, fromConfig string) string {
	f := cmd.Flags().Lookup(flag)
	if f == nil || (!f.Changed && fromConfig != "") {
		return fromConfig
	}
	return f.Value.String()
}

func resolveColor(mode string) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "", nil
	}
	return false, errors.Newf("invalid --color value %q (expected auto|on|off)", mode)
}

// closeApp flushes the tracer and prints timings once the command is done.
func closeApp(cmdErr error) {
	if current == nil {
		return
	}
	if current.timings && !current.quiet {
		printTimings(os.Stderr, current.timer)
	}
	current.cleanup(cmdErr != nil)
	current = nil
}

func app() *appState {
	if current == nil {
		current = &appState{
			cfg:     config.Default(),
			log:     logging.Discard(),
			tracer:  optrace.Nop,
			timer:   observ.NewTimer(),
			cleanup: func(bool) {},
		}
	}
	return current
}
