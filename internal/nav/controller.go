// Package nav implements the navigation state machine over a loaded trace.
//
// A Controller owns the selected point, the reconstructed scope tree and the
// frame snapshot shown for the selection. Jumps are strict and return coded
// errors; stepping past either end of the trace is silently ignored. An
// operation that fails leaves the controller exactly as it was.
//
// Controllers are not safe for concurrent use.
package nav

import (
	"log/slog"
	"strconv"

	"tracescope/internal/goals"
	"tracescope/internal/logging"
	"tracescope/internal/notify"
	"tracescope/internal/optrace"
	"tracescope/internal/point"
	"tracescope/internal/scope"
	"tracescope/internal/traceerr"
)

// Options wires a Controller to its collaborators. Nil fields are replaced
// by no-op implementations.
type Options struct {
	Observer notify.Observer
	Alerter  notify.Alerter
	Surface  notify.Surface
	Logger   *slog.Logger
	Tracer   optrace.Tracer
}

// Controller tracks the selected execution point of one trace.
type Controller struct {
	observer notify.Observer
	alerter  notify.Alerter
	surface  notify.Surface
	log      *slog.Logger
	tracer   optrace.Tracer

	trace    point.Trace
	tree     *scope.Tree
	index    int
	rendered bool
	visible  Snapshot
}

// New returns an empty, unrendered controller.
func New(opts Options) *Controller {
	c := &Controller{
		observer: opts.Observer,
		alerter:  opts.Alerter,
		surface:  opts.Surface,
		log:      opts.Logger,
		tracer:   opts.Tracer,
	}
	if c.observer == nil {
		c.observer = notify.Nop
	}
	if c.alerter == nil {
		c.alerter = notify.Nop
	}
	if c.surface == nil {
		c.surface = notify.NewCommands()
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.tracer == nil {
		c.tracer = optrace.Nop
	}
	return c
}

// Load replaces the current trace with tr, selects its first point and
// enables stepping. Alerts raised while building the tree are delivered only
// once the load has succeeded; on failure the previous trace stays loaded.
func (c *Controller) Load(tr point.Trace) error {
	span := optrace.Begin(c.tracer, optrace.ScopeSession, "load", 0).
		WithExtra("points", strconv.Itoa(len(tr)))

	if tr == nil {
		span.End("rejected")
		return traceerr.InvalidInput("trace must be an array, received null")
	}
	if len(tr) == 0 {
		span.End("rejected")
		return traceerr.InvalidInput("trace must contain at least one execution point")
	}

	owned := make(point.Trace, len(tr))
	for i := range tr {
		owned[i] = tr[i].Clone()
	}

	var pending []notify.Alert
	tree, err := scope.Build(owned, notify.Funcs{OnAlert: func(a notify.Alert) {
		pending = append(pending, a)
	}})
	if err != nil {
		span.End("build failed")
		c.log.Debug("trace rejected", "points", len(tr), "error", err)
		return err
	}
	first, err := snapshotAt(owned, 0)
	if err != nil {
		span.End("corrupted first point")
		return err
	}

	c.trace = owned
	c.tree = tree
	c.index = 0
	c.rendered = true
	c.visible = first

	for _, a := range pending {
		optrace.Point(c.tracer, optrace.ScopePoint, "alert", a.Message, optrace.NoPoint, span.ID())
		c.alerter.Alert(a)
	}
	c.surface.EnableCommands(notify.StepBackward, notify.StepForward)
	c.log.Debug("trace loaded", "points", len(owned), "alerts", len(pending))
	span.End("")
	c.observer.SetTracePoint(first.Line)
	return nil
}

// Clear drops the loaded trace and disables stepping.
func (c *Controller) Clear() {
	optrace.Point(c.tracer, optrace.ScopeSession, "clear", "", optrace.NoPoint, 0)
	c.trace = nil
	c.tree = nil
	c.index = 0
	c.rendered = false
	c.visible = Snapshot{}
	c.surface.DisableCommands(notify.StepBackward, notify.StepForward)
	c.log.Debug("trace cleared")
}

// StepForward selects the next point. It does nothing on the last point or
// when no trace is loaded.
func (c *Controller) StepForward() error {
	if !c.rendered || c.index+1 >= len(c.trace) {
		return nil
	}
	return c.SetVisiblePoint(c.index + 1)
}

// StepBackward selects the previous point. It does nothing on the first
// point or when no trace is loaded.
func (c *Controller) StepBackward() error {
	if !c.rendered || c.index == 0 {
		return nil
	}
	return c.SetVisiblePoint(c.index - 1)
}

// SetVisiblePoint selects the point at index and announces its line. It does
// nothing when no trace is loaded.
func (c *Controller) SetVisiblePoint(index int) error {
	if !c.rendered {
		return nil
	}
	span := optrace.Begin(c.tracer, optrace.ScopeCommand, "jump", 0).
		At(index).
		WithExtra("from", strconv.Itoa(c.index))

	if index < 0 || index >= len(c.trace) {
		span.End("out of range")
		c.log.Debug("jump rejected", "index", index, "points", len(c.trace))
		return traceerr.IndexOutOfRange(index, len(c.trace))
	}
	snap, err := snapshotAt(c.trace, index)
	if err != nil {
		span.End("corrupted line")
		c.log.Debug("jump rejected", "index", index, "error", err)
		return err
	}

	c.index = index
	c.visible = snap
	span.End("")
	c.observer.SetTracePoint(snap.Line)
	return nil
}

// RequestAdvice turns edits of the visible locals into goals and sends the
// modified copy of the selected point to the observers. It reports false,
// and sends nothing, when no trace is loaded, the selected point shows no
// variables or no edit is usable.
func (c *Controller) RequestAdvice(edits []goals.Edit) (point.ExecutionPoint, bool) {
	if !c.rendered || len(c.visible.Vars) == 0 {
		return point.ExecutionPoint{}, false
	}
	span := optrace.Begin(c.tracer, optrace.ScopeCommand, "advice", 0).At(c.index)

	modified, gs, ok := goals.Modify(&c.trace[c.index], edits)
	if !ok {
		span.End("no goals")
		return point.ExecutionPoint{}, false
	}
	span.WithExtra("goals", strconv.Itoa(len(gs))).End("")
	c.log.Debug("advice requested", "index", c.index, "goals", len(gs))
	c.observer.GetAdvice(modified.Clone())
	return modified, true
}

// Index returns the selected point; 0 when nothing is loaded.
func (c *Controller) Index() int { return c.index }

// Rendered reports whether a trace is loaded.
func (c *Controller) Rendered() bool { return c.rendered }

// Len returns the number of points in the loaded trace.
func (c *Controller) Len() int { return len(c.trace) }

// Tree returns the scope tree of the loaded trace, or nil.
func (c *Controller) Tree() *scope.Tree { return c.tree }

// Visible returns the snapshot of the selected point.
func (c *Controller) Visible() Snapshot { return c.visible }

// Point returns the selected execution point.
func (c *Controller) Point() (*point.ExecutionPoint, bool) {
	if !c.rendered {
		return nil, false
	}
	return &c.trace[c.index], true
}

// Node returns the tree node of the selected point. Instruction limit
// points have none.
func (c *Controller) Node() (*scope.PointNode, bool) {
	if !c.rendered {
		return nil, false
	}
	return c.tree.Node(c.index)
}
