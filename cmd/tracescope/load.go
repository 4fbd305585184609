package main

import (
	"bytes"
	"context"
	"os"

	"github.com/cockroachdb/errors"

	"tracescope/internal/logging"
	"tracescope/internal/nav"
	"tracescope/internal/notify"
	"tracescope/internal/observ"
	"tracescope/internal/optrace"
	"tracescope/internal/point"
)

// readTrace reads and decodes the trace at path, timing both phases.
func readTrace(ctx context.Context, path string, timer *observ.Timer) (point.Trace, error) {
	log := logging.FromContext(ctx)

	var data []byte
	err := timer.Measure("read", func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "read trace")
	}

	var tr point.Trace
	format := point.FormatFromPath(path)
	err = timer.Measure("decode", func() error {
		var err error
		tr, err = point.Decode(bytes.NewReader(data), format)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	log.Debug("trace decoded", "path", path, "format", format.String(), "points", len(tr))
	return tr, nil
}

// controllerOptions wires a controller to the app's logger and tracer.
func controllerOptions(ctx context.Context, observer notify.Observer, alerter notify.Alerter, surface notify.Surface) nav.Options {
	return nav.Options{
		Observer: observer,
		Alerter:  alerter,
		Surface:  surface,
		Logger:   logging.FromContext(ctx),
		Tracer:   optrace.FromContext(ctx),
	}
}

// openTrace decodes path and loads it into a new controller.
func openTrace(ctx context.Context, path string, opts nav.Options) (*nav.Controller, error) {
	timer := app().timer
	tr, err := readTrace(ctx, path, timer)
	if err != nil {
		return nil, err
	}
	ctrl := nav.New(opts)
	if err := timer.Measure("build", func() error { return ctrl.Load(tr) }); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return ctrl, nil
}
