// Package session drives a navigation controller from a line-oriented
// command script, for non-interactive runs and tests.
package session

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tracescope/internal/goals"
	"tracescope/internal/nav"
	"tracescope/internal/point"
	"tracescope/internal/render"
)

// Options configures a Navigator.
type Options struct {
	// Interactive prints a prompt before each command.
	Interactive bool
	Color       bool
	Width       int
}

// Result summarizes a finished session.
type Result struct {
	Commands int
	Errors   int
	Advice   int
	Quit     bool
}

// Navigator runs commands against a controller.
type Navigator struct {
	ctrl *nav.Controller
	in   *bufio.Scanner
	out  io.Writer
	opts Options

	edits *Edits
	res   Result
}

// New returns a Navigator reading commands from in and writing to out.
func New(ctrl *nav.Controller, in io.Reader, out io.Writer, opts Options) *Navigator {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	return &Navigator{
		ctrl:  ctrl,
		in:    bufio.NewScanner(in),
		out:   out,
		opts:  opts,
		edits: NewEdits(),
	}
}

// Run executes commands until the input ends or quit is read.
func (n *Navigator) Run() (Result, error) {
	for !n.res.Quit {
		if n.opts.Interactive {
			fmt.Fprint(n.out, "(tsdb) ") //nolint:errcheck
		}
		if !n.in.Scan() {
			break
		}
		line := strings.TrimSpace(n.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n.res.Commands++
		if err := n.Exec(line); err != nil {
			n.res.Errors++
			fmt.Fprintf(n.out, "error: %s\n", err.Error()) //nolint:errcheck
		}
	}
	return n.res, n.in.Err()
}

// Exec runs a single command line.
func (n *Navigator) Exec(line string) error {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		n.help()
	case "forward", "f":
		return n.move(n.ctrl.StepForward)
	case "back", "b":
		return n.move(n.ctrl.StepBackward)
	case "goto":
		if len(args) != 1 {
			return fmt.Errorf("goto expects <index>")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return n.move(func() error { return n.ctrl.SetVisiblePoint(idx) })
	case "where":
		if !n.requireTrace() {
			return nil
		}
		return render.Where(n.out, n.ctrl.Visible(), n.ctrl.Len())
	case "locals":
		if !n.requireTrace() {
			return nil
		}
		n.locals()
	case "tree":
		if !n.requireTrace() {
			return nil
		}
		return render.Tree(n.out, n.ctrl.Tree(), n.renderOptions(n.ctrl.Index()))
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("set expects <name> <value>")
		}
		value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len(cmd):]), args[0]))
		n.edits.Set(args[0], value)
	case "unset":
		if len(args) != 1 {
			return fmt.Errorf("unset expects <name>")
		}
		if !n.edits.Unset(args[0]) {
			return fmt.Errorf("no edit for %q", args[0])
		}
	case "advice":
		n.advice()
	case "clear":
		n.ctrl.Clear()
		n.edits.Reset()
		fmt.Fprintln(n.out, "trace cleared") //nolint:errcheck
	case "quit", "q":
		n.res.Quit = true
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// move runs a navigation and reports where it landed. Pending edits belong
// to the point they were made on and are dropped when the selection moves.
func (n *Navigator) move(step func() error) error {
	if !n.requireTrace() {
		return nil
	}
	before := n.ctrl.Index()
	if err := step(); err != nil {
		return err
	}
	if n.ctrl.Index() == before {
		fmt.Fprintf(n.out, "stay: point %d\n", before) //nolint:errcheck
		return nil
	}
	n.edits.Reset()
	return render.Where(n.out, n.ctrl.Visible(), n.ctrl.Len())
}

func (n *Navigator) requireTrace() bool {
	if n.ctrl.Rendered() {
		return true
	}
	fmt.Fprintln(n.out, "no trace loaded") //nolint:errcheck
	return false
}

func (n *Navigator) locals() {
	snap := n.ctrl.Visible()
	fmt.Fprintln(n.out, "locals:") //nolint:errcheck
	if len(snap.Vars) == 0 {
		fmt.Fprintln(n.out, "  (none)") //nolint:errcheck
	}
	for _, v := range snap.Vars {
		if text, ok := n.edits.Get(v.Name); ok {
			fmt.Fprintf(n.out, "  %s = %s -> %s\n", v.Name, v.Display, text) //nolint:errcheck
			continue
		}
		fmt.Fprintf(n.out, "  %s = %s\n", v.Name, v.Display) //nolint:errcheck
	}
}

func (n *Navigator) advice() {
	edits := n.edits.Ordered(n.ctrl.Visible())
	if _, ok := n.ctrl.RequestAdvice(edits); !ok {
		fmt.Fprintln(n.out, "advice: nothing to send") //nolint:errcheck
		return
	}
	n.res.Advice++
	gs := goals.Extract(n.visibleFrame(), edits)
	for _, g := range gs {
		fmt.Fprintf(n.out, "goal: %s %s -> %s\n", point.Sanitize(g.Name), g.OldValue, g.NewValue) //nolint:errcheck
	}
}

func (n *Navigator) visibleFrame() *point.Frame {
	p, ok := n.ctrl.Point()
	if !ok {
		return nil
	}
	top, _ := p.Top()
	return top
}

func (n *Navigator) renderOptions(selected int) render.Options {
	return render.Options{Color: n.opts.Color, Width: n.opts.Width, Selected: selected}
}

var helpLines = []string{
	"help",
	"forward|f",
	"back|b",
	"goto <index>",
	"where",
	"locals",
	"tree",
	"set <name> <value>",
	"unset <name>",
	"advice",
	"clear",
	"quit",
}

func (n *Navigator) help() {
	fmt.Fprintln(n.out, "commands:") //nolint:errcheck
	for _, l := range helpLines {
		fmt.Fprintf(n.out, "  %s\n", l) //nolint:errcheck
	}
}
