package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"tracescope/internal/advice"
	"tracescope/internal/notify"
	"tracescope/internal/point"
	"tracescope/internal/session"
	"tracescope/internal/ui"
)

var (
	viewUIMode       string
	viewScript       string
	viewAdviceOut    string
	viewAdviceFormat string
)

func init() {
	viewCmd.Flags().StringVar(&viewUIMode, "ui", "", "interactive viewer (auto|on|off, default from config)")
	viewCmd.Flags().StringVar(&viewScript, "script", "", "run navigator commands from this file (\"-\" for stdin)")
	viewCmd.Flags().StringVar(&viewAdviceOut, "advice-out", "", "where suggestion requests are written (default from config, \"-\" for stdout)")
	viewCmd.Flags().StringVar(&viewAdviceFormat, "advice-format", "", "suggestion request format (json|msgpack)")
}

var viewCmd = &cobra.Command{
	Use:   "view <trace>",
	Short: "Step through a trace interactively or from a command script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := app()

		mode, err := readUIMode(firstNonEmpty(viewUIMode, a.cfg.UI.Mode))
		if err != nil {
			return err
		}
		writer, err := openAdvice(viewAdviceOut, viewAdviceFormat)
		if err != nil {
			return err
		}
		defer writer.Close() //nolint:errcheck

		if shouldUseTUI(mode, viewScript != "") {
			if err := runViewer(cmd, args[0], writer); err != nil {
				return err
			}
			return writer.Close()
		}

		in, closeIn, err := openScript(viewScript)
		if err != nil {
			return err
		}
		defer closeIn()

		ctrl, err := openTrace(ctx, args[0], controllerOptions(ctx, writer, alertPrinter(cmd.ErrOrStderr(), a.log), nil))
		if err != nil {
			return err
		}
		interactive := viewScript == "" && isTerminal(os.Stdin)
		navigator := session.New(ctrl, in, cmd.OutOrStdout(), session.Options{
			Interactive: interactive,
			Color:       a.color,
			Width:       terminalWidth(),
		})
		res, err := navigator.Run()
		if err != nil {
			return errors.Wrap(err, "read commands")
		}
		a.log.Debug("session finished", "commands", res.Commands, "errors", res.Errors, "advice", res.Advice)
		if err := writer.Close(); err != nil {
			return err
		}
		if res.Errors > 0 && !interactive {
			return errors.Newf("%d of %d commands failed", res.Errors, res.Commands)
		}
		return nil
	},
}

func runViewer(cmd *cobra.Command, path string, writer *advice.Writer) error {
	ctx := cmd.Context()
	keys := ui.NewKeyMap()
	banner := ui.NewBanner()
	alerts := notify.NewMulti(banner, notify.Funcs{OnAlert: func(al notify.Alert) {
		app().log.Warn("alert", "message", al.Message, "code", al.Details.Code)
	}})
	ctrl, err := openTrace(ctx, path, controllerOptions(ctx, writer, alerts, keys))
	if err != nil {
		return err
	}
	viewer := ui.NewViewer(ctrl, ui.Options{Keys: keys, Banner: banner, Width: terminalWidth()})
	program := tea.NewProgram(viewer, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// openAdvice opens the suggestion writer from flags, falling back to the
// [advice] section.
func openAdvice(out, format string) (*advice.Writer, error) {
	cfg := app().cfg.Advice
	f, err := point.ParseFormat(firstNonEmpty(format, cfg.Format))
	if err != nil {
		return nil, err
	}
	return advice.Open(firstNonEmpty(out, cfg.Output), f, app().log)
}

func openScript(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open command script")
	}
	return f, func() { _ = f.Close() }, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
