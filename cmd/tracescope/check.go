package main

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tracescope/internal/notify"
	"tracescope/internal/observ"
	"tracescope/internal/optrace"
	"tracescope/internal/point"
	"tracescope/internal/scope"
	"tracescope/internal/traceerr"
)

var checkJobs int

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "max parallel checks (0=auto)")
}

// checkResult is the outcome for one trace file.
type checkResult struct {
	Path     string
	Points   int
	Calls    int
	MaxDepth int
	Alerts   int
	Err      error
}

var checkCmd = &cobra.Command{
	Use:   "check <trace>...",
	Short: "Validate traces and report their shape",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		tracer := optrace.FromContext(ctx)
		span := optrace.Begin(tracer, optrace.ScopeSession, "check", 0)

		jobs := checkJobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}

		results := make([]checkResult, len(args))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(args)))
		for i, path := range args {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				// Each file gets its own timer; Timer is not safe for
				// concurrent use.
				results[i] = checkTrace(cmd, path, observ.NewTimer())
				optrace.Point(tracer, optrace.ScopeCommand, "checked", path, optrace.NoPoint, span.ID())
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.End("cancelled")
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", errorLabel.Sprint("FAIL"), r.Path, r.Err) //nolint:errcheck
				continue
			}
			fmt.Fprintf(out, "%s   %s  (%d points, %d calls, depth %d, %d alerts)\n", //nolint:errcheck
				okLabel.Sprint("ok"), r.Path, r.Points, r.Calls, r.MaxDepth, r.Alerts)
		}
		span.WithExtra("failed", fmt.Sprint(failed)).End("")
		if failed > 0 {
			return errors.Newf("%d of %d traces failed", failed, len(results))
		}
		return nil
	},
}

func checkTrace(cmd *cobra.Command, path string, timer *observ.Timer) checkResult {
	res := checkResult{Path: path}
	tr, err := readTrace(cmd.Context(), path, timer)
	if err != nil {
		res.Err = err
		return res
	}
	res.Points = len(tr)
	if len(tr) == 0 {
		res.Err = traceerr.InvalidInput("trace must contain at least one execution point")
		return res
	}

	var alerts atomic.Int32
	tree, err := scope.Build(tr, notify.Funcs{OnAlert: func(notify.Alert) { alerts.Add(1) }})
	if err != nil {
		res.Err = err
		return res
	}
	res.Alerts = int(alerts.Load())
	tree.Walk(func(r scope.Row) bool {
		if r.Node.IsCall() {
			res.Calls++
		}
		res.MaxDepth = max(res.MaxDepth, r.Depth)
		return true
	})
	for i, p := range tr {
		// Limit points are never shown, so they need no line.
		if p.Line < 1 && p.Event != point.EventInstructionLimit {
			res.Err = traceerr.CorruptedLine(i, "point has corrupted line %d", p.Line)
			return res
		}
		if p.Event == point.EventInstructionLimit && i != len(tr)-1 {
			cmd.PrintErrf("warning: %s: instruction limit at point %d is not the last point\n", path, i)
		}
	}
	return res
}
