// Package render prints scope trees and frame snapshots as plain or
// colored text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tracescope/internal/nav"
	"tracescope/internal/point"
	"tracescope/internal/scope"
)

// NoSelection disables the selection marker.
const NoSelection = -1

// Options controls the output.
type Options struct {
	Color    bool
	Width    int // 0 means unlimited
	Selected int // index of the marked point, or NoSelection
}

type palette struct {
	index, line, call, ret, step, marker, name *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		index:  color.New(color.Faint),
		line:   color.New(color.FgCyan),
		call:   color.New(color.FgYellow, color.Bold),
		ret:    color.New(color.FgMagenta),
		step:   color.New(color.Reset),
		marker: color.New(color.FgGreen, color.Bold),
		name:   color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.index, p.line, p.call, p.ret, p.step, p.marker, p.name} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Label is the text shown for a node without indentation or decorations.
func Label(n *scope.PointNode) string {
	switch n.Event() {
	case point.EventCall:
		return n.Signature()
	case point.EventReturn:
		return "return"
	default:
		return "step"
	}
}

// Tree writes one row per node in display order. Nested scopes are indented
// by two columns per level.
func Tree(w io.Writer, tree *scope.Tree, opts Options) error {
	pal := newPalette(opts.Color)
	idxWidth := len(fmt.Sprint(max(tree.Len()-1, 0)))
	lineWidth := 1
	tree.Walk(func(r scope.Row) bool {
		lineWidth = max(lineWidth, len(fmt.Sprint(r.Node.Line)))
		return true
	})

	var err error
	tree.Walk(func(r scope.Row) bool {
		n := r.Node
		marker := "  "
		if n.Index == opts.Selected {
			marker = pal.marker.Sprint("▶ ")
		}
		prefix := fmt.Sprintf("%*d  L%-*d  ", idxWidth, n.Index, lineWidth, n.Line)
		label := strings.Repeat("  ", r.Depth) + Label(n)
		if opts.Width > 0 {
			room := opts.Width - 2 - runewidth.StringWidth(prefix)
			label = runewidth.Truncate(label, max(room, 1), "…")
		}
		_, err = fmt.Fprintf(w, "%s%s%s\n", marker, pal.index.Sprint(prefix), colorize(pal, n, label))
		return err == nil
	})
	return err
}

func colorize(pal palette, n *scope.PointNode, label string) string {
	switch n.Event() {
	case point.EventCall:
		return pal.call.Sprint(label)
	case point.EventReturn:
		return pal.ret.Sprint(label)
	default:
		return pal.step.Sprint(label)
	}
}

// Locals writes the snapshot's variables as aligned "name  value" rows.
// A frame without variables prints "(no locals)".
func Locals(w io.Writer, snap nav.Snapshot, opts Options) error {
	pal := newPalette(opts.Color)
	if len(snap.Vars) == 0 {
		_, err := fmt.Fprintln(w, "(no locals)")
		return err
	}
	nameWidth := 0
	for _, v := range snap.Vars {
		nameWidth = max(nameWidth, runewidth.StringWidth(v.Name))
	}
	for _, v := range snap.Vars {
		name := runewidth.FillRight(v.Name, nameWidth)
		value := v.Display
		if opts.Width > 0 {
			value = runewidth.Truncate(value, max(opts.Width-nameWidth-2, 1), "…")
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", pal.name.Sprint(name), value); err != nil {
			return err
		}
	}
	return nil
}

// Where writes a one-line description of the selected point.
func Where(w io.Writer, snap nav.Snapshot, total int) error {
	desc := snap.Event.String()
	if snap.FuncName != "" {
		desc += " " + point.Sanitize(snap.FuncName)
	}
	_, err := fmt.Fprintf(w, "point %d/%d  line %d  %s\n", snap.Index, total-1, snap.Line, desc)
	return err
}
