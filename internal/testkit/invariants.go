package testkit

import (
	"fmt"

	"tracescope/internal/point"
	"tracescope/internal/scope"
)

// CheckTreeInvariants runs a minimal set of invariants on a built tree:
// 1) every point except instruction limit points has exactly one node, under
// its original index
// 2) nodes appear in original trace order when walked
// 3) every call node's scope holds exactly the points strictly between the
// call and its closing return, and is one level deeper than the call
func CheckTreeInvariants(tree *scope.Tree, tr point.Trace) error {
	if tree == nil || tree.Root == nil {
		return fmt.Errorf("nil tree")
	}
	if tree.Len() != len(tr) {
		return fmt.Errorf("tree length %d, trace length %d", tree.Len(), len(tr))
	}

	// 1) index round-trip
	seen := make(map[int]int, len(tr))
	var order []int
	tree.Walk(func(r scope.Row) bool {
		seen[r.Node.Index]++
		order = append(order, r.Node.Index)
		return true
	})
	for i, p := range tr {
		want := 1
		if p.Event == point.EventInstructionLimit {
			want = 0
		}
		if seen[i] != want {
			return fmt.Errorf("point %d appears %d times, want %d", i, seen[i], want)
		}
		if n, ok := tree.Node(i); ok != (want == 1) || (ok && n.Index != i) {
			return fmt.Errorf("flat index for point %d is inconsistent", i)
		}
	}

	// 2) display order is trace order
	for k := 1; k < len(order); k++ {
		if order[k] <= order[k-1] {
			return fmt.Errorf("walk order not increasing at %d: %v", k, order)
		}
	}

	// 3) nesting
	var err error
	tree.Walk(func(r scope.Row) bool {
		n := r.Node
		if !n.IsCall() {
			return true
		}
		s := n.Scope
		if s.Depth != r.Depth+1 {
			err = fmt.Errorf("call %d at depth %d owns scope at depth %d", n.Index, r.Depth, s.Depth)
			return false
		}
		if s.Return == nil {
			err = fmt.Errorf("call %d has no closing return", n.Index)
			return false
		}
		var inner []int
		collect(s, &inner)
		for _, idx := range inner {
			if idx <= n.Index || idx >= s.Return.Index {
				err = fmt.Errorf("point %d nested under call %d lies outside (%d, %d)", idx, n.Index, n.Index, s.Return.Index)
				return false
			}
		}
		want := 0
		for idx := n.Index + 1; idx < s.Return.Index; idx++ {
			if tr[idx].Event != point.EventInstructionLimit {
				want++
			}
		}
		if len(inner) != want {
			err = fmt.Errorf("call %d nests %d points, want %d", n.Index, len(inner), want)
			return false
		}
		return true
	})
	return err
}

// collect gathers the indices nested in s, excluding its closing return.
func collect(s *scope.Scope, out *[]int) {
	for _, n := range s.Points {
		*out = append(*out, n.Index)
		if n.IsCall() {
			collect(n.Scope, out)
			*out = append(*out, n.Scope.Return.Index)
		}
	}
}
