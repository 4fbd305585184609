// Package scope reconstructs the nested scope tree of an execution trace.
//
// Every call point owns a child Scope holding the points executed between
// the call and its matching return; the return point itself closes that
// scope. Nodes keep their original trace index, so navigation can address
// any point independently of its nesting depth.
package scope

import (
	"strings"

	"tracescope/internal/point"
)

// Arg is one resolved call argument, sanitized for display.
type Arg struct {
	Name  string
	Value string
}

// PointNode wraps one execution point in the tree.
type PointNode struct {
	Index int
	Line  int
	Point *point.ExecutionPoint

	// Call points only.
	FuncName    string
	Args        []Arg
	ReturnValue string
	Scope       *Scope
}

// IsCall reports whether the node owns a nested scope.
func (n *PointNode) IsCall() bool {
	return n != nil && n.Scope != nil
}

// Event returns the event of the wrapped point.
func (n *PointNode) Event() point.Event {
	if n == nil || n.Point == nil {
		return point.EventInvalid
	}
	return n.Point.Event
}

// Signature renders a call node as "name(arg: value, ...) ⇒ ret". It is
// empty for other nodes.
func (n *PointNode) Signature() string {
	if !n.IsCall() {
		return ""
	}
	var b strings.Builder
	b.WriteString(n.FuncName)
	b.WriteByte('(')
	for i, a := range n.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name)
		b.WriteString(": ")
		b.WriteString(a.Value)
	}
	b.WriteString(") ⇒ ")
	b.WriteString(n.ReturnValue)
	return b.String()
}

// Scope is one nesting level of the tree.
type Scope struct {
	Depth  int
	Points []*PointNode
	// Return is the return point closing the scope; nil for the root.
	Return *PointNode
}

// Tree is the reconstructed trace.
type Tree struct {
	Root  *Scope
	nodes []*PointNode
}

// Len returns the length of the trace the tree was built from, including
// points that have no node.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node returns the node built for the point at index. Instruction limit
// points have no node.
func (t *Tree) Node(index int) (*PointNode, bool) {
	if t == nil || index < 0 || index >= len(t.nodes) || t.nodes[index] == nil {
		return nil, false
	}
	return t.nodes[index], true
}

// Row is one node of the tree in display order.
type Row struct {
	Node  *PointNode
	Depth int
}

// Walk visits nodes in display order, which is also original trace order.
// Visiting stops when fn returns false.
func (t *Tree) Walk(fn func(r Row) bool) {
	if t == nil || t.Root == nil {
		return
	}
	walkScope(t.Root, fn)
}

func walkScope(s *Scope, fn func(r Row) bool) bool {
	for _, n := range s.Points {
		if !fn(Row{Node: n, Depth: s.Depth}) {
			return false
		}
		if n.IsCall() && !walkScope(n.Scope, fn) {
			return false
		}
	}
	if s.Return != nil {
		return fn(Row{Node: s.Return, Depth: s.Depth})
	}
	return true
}

// Rows returns every node in display order.
func (t *Tree) Rows() []Row {
	rows := make([]Row, 0, t.Len())
	t.Walk(func(r Row) bool {
		rows = append(rows, r)
		return true
	})
	return rows
}
