package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"tracescope/internal/goals"
	"tracescope/internal/point"
)

var (
	goalsAt     int
	goalsSet    []string
	goalsOut    string
	goalsFormat string
)

func init() {
	goalsCmd.Flags().IntVar(&goalsAt, "at", 0, "point whose locals are edited")
	goalsCmd.Flags().StringArrayVar(&goalsSet, "set", nil, "desired value as name=value (repeatable)")
	goalsCmd.Flags().StringVar(&goalsOut, "out", "", "where the request is written (default from config, \"-\" for stdout)")
	goalsCmd.Flags().StringVar(&goalsFormat, "format", "", "request format (json|msgpack)")
}

var goalsCmd = &cobra.Command{
	Use:   "goals <trace> --at <index> --set name=value...",
	Short: "Request suggestions for desired variable values at one point",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edits, err := parseEdits(goalsSet)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a := app()
		writer, err := openAdvice(goalsOut, goalsFormat)
		if err != nil {
			return err
		}
		defer writer.Close() //nolint:errcheck

		ctrl, err := openTrace(ctx, args[0], controllerOptions(ctx, writer, alertPrinter(cmd.ErrOrStderr(), a.log), nil))
		if err != nil {
			return err
		}
		if err := a.timer.Measure("navigate", func() error { return ctrl.SetVisiblePoint(goalsAt) }); err != nil {
			return err
		}

		modified, ok := ctrl.RequestAdvice(edits)
		if !ok {
			return errors.WithHint(errors.New("no goals to request"), "every --set value was empty")
		}
		if !a.quiet {
			p, _ := ctrl.Point()
			top, _ := p.Top()
			for _, g := range goals.Extract(top, edits) {
				fmt.Fprintf(cmd.ErrOrStderr(), "goal: %s %s -> %s\n", point.Sanitize(g.Name), g.OldValue, g.NewValue) //nolint:errcheck
			}
		}
		a.log.Info("suggestions requested", "index", ctrl.Index(), "line", modified.Line)
		return writer.Close()
	},
}

// parseEdits splits name=value pairs. The value may be empty or contain
// further '=' characters.
func parseEdits(pairs []string) ([]goals.Edit, error) {
	if len(pairs) == 0 {
		return nil, errors.WithHint(errors.New("no --set given"), "pass at least one --set name=value")
	}
	edits := make([]goals.Edit, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.WithHint(errors.Newf("invalid --set %q", pair), "use --set name=value")
		}
		edits = append(edits, goals.Edit{Name: name, Text: value})
	}
	return edits, nil
}
