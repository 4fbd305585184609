package main

import (
	"os"

	"github.com/spf13/cobra"

	"tracescope/internal/render"
)

var (
	renderAt     int
	renderLocals bool
	renderWidth  int
)

func init() {
	renderCmd.Flags().IntVar(&renderAt, "at", 0, "point to mark as selected (-1 for none)")
	renderCmd.Flags().BoolVar(&renderLocals, "locals", false, "also print the selected point and its locals")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "truncate rows to this width (default: terminal width)")
}

var renderCmd = &cobra.Command{
	Use:   "render <trace>",
	Short: "Print the scope tree of a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := app()
		ctrl, err := openTrace(ctx, args[0], controllerOptions(ctx, nil, alertPrinter(os.Stderr, a.log), nil))
		if err != nil {
			return err
		}

		selected := render.NoSelection
		if renderAt >= 0 {
			if err := a.timer.Measure("navigate", func() error { return ctrl.SetVisiblePoint(renderAt) }); err != nil {
				return err
			}
			selected = ctrl.Index()
		}

		width := renderWidth
		if width == 0 {
			width = terminalWidth()
		}
		out := cmd.OutOrStdout()
		opts := render.Options{Color: a.color, Width: width, Selected: selected}
		if err := render.Tree(out, ctrl.Tree(), opts); err != nil {
			return err
		}
		if !renderLocals || selected == render.NoSelection {
			return nil
		}
		if err := render.Where(out, ctrl.Visible(), ctrl.Len()); err != nil {
			return err
		}
		return render.Locals(out, ctrl.Visible(), opts)
	},
}
