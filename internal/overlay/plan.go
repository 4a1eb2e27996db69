// Package overlay keeps a set of marker handles in step with a changing
// list of target positions.
//
// Reconciliation is positional: marker i tracks target i. Markers beyond the
// target count are hidden rather than destroyed and are reused when the
// target count grows again, so the number of drawable handles allocated over
// a session is bounded by the largest target list seen.
package overlay

import "fmt"

// Marker is the engine's view of one marker handle.
type Marker struct {
	Position float64 `json:"position"`
	Visible  bool    `json:"visible"`
}

// OpKind is the kind of a plan step.
type OpKind int

const (
	// OpUpdate moves an existing marker and makes it visible.
	OpUpdate OpKind = iota
	// OpCreate appends a new visible marker.
	OpCreate
	// OpHide hides an existing marker, keeping its handle.
	OpHide
)

func (k OpKind) String() string {
	switch k {
	case OpUpdate:
		return "update"
	case OpCreate:
		return "create"
	case OpHide:
		return "hide"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k OpKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Op is one step of a plan. Position is unused for OpHide.
type Op struct {
	Kind     OpKind  `json:"kind"`
	Index    int     `json:"index"`
	Position float64 `json:"position,omitempty"`
}

// Plan returns the steps that take markers to targets: update the first
// min(N, M) markers, create markers N..M-1, hide markers M..N-1. Steps are
// ordered update, create, hide, each by ascending index.
func Plan(markers []Marker, targets []float64) []Op {
	n, m := len(markers), len(targets)
	k := min(n, m)
	ops := make([]Op, 0, max(n, m))
	for i := 0; i < k; i++ {
		ops = append(ops, Op{Kind: OpUpdate, Index: i, Position: targets[i]})
	}
	for i := n; i < m; i++ {
		ops = append(ops, Op{Kind: OpCreate, Index: i, Position: targets[i]})
	}
	for i := m; i < n; i++ {
		ops = append(ops, Op{Kind: OpHide, Index: i})
	}
	return ops
}

// Apply returns a copy of markers with plan applied. Create steps must
// name the next index in sequence.
func Apply(markers []Marker, plan []Op) ([]Marker, error) {
	out := append([]Marker(nil), markers...)
	for _, op := range plan {
		switch op.Kind {
		case OpUpdate:
			if op.Index < 0 || op.Index >= len(out) {
				return nil, fmt.Errorf("update of marker %d out of range (have %d)", op.Index, len(out))
			}
			out[op.Index] = Marker{Position: op.Position, Visible: true}
		case OpCreate:
			if op.Index != len(out) {
				return nil, fmt.Errorf("create at index %d, want %d", op.Index, len(out))
			}
			out = append(out, Marker{Position: op.Position, Visible: true})
		case OpHide:
			if op.Index < 0 || op.Index >= len(out) {
				return nil, fmt.Errorf("hide of marker %d out of range (have %d)", op.Index, len(out))
			}
			out[op.Index].Visible = false
		default:
			return nil, fmt.Errorf("unknown op kind %v", op.Kind)
		}
	}
	return out, nil
}

// VisibleCount returns how many markers are visible.
func VisibleCount(markers []Marker) int {
	n := 0
	for _, m := range markers {
		if m.Visible {
			n++
		}
	}
	return n
}
