package overlay

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlan_ShrinkHidesSurplus(t *testing.T) {
	markers := []Marker{{1, true}, {2, true}, {3, true}}

	got := Plan(markers, []float64{5})
	want := []Op{
		{Kind: OpUpdate, Index: 0, Position: 5},
		{Kind: OpHide, Index: 1},
		{Kind: OpHide, Index: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}

	after, err := Apply(markers, got)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	wantMarkers := []Marker{{5, true}, {2, false}, {3, false}}
	if diff := cmp.Diff(wantMarkers, after); diff != "" {
		t.Errorf("markers mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_GrowFromEmpty(t *testing.T) {
	got := Plan(nil, []float64{0.5, 1.5})
	want := []Op{
		{Kind: OpCreate, Index: 0, Position: 0.5},
		{Kind: OpCreate, Index: 1, Position: 1.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_ReusesHiddenMarkers(t *testing.T) {
	markers := []Marker{{1, true}, {2, false}, {3, false}}

	got := Plan(markers, []float64{7, 8, 9, 10})
	want := []Op{
		{Kind: OpUpdate, Index: 0, Position: 7},
		{Kind: OpUpdate, Index: 1, Position: 8},
		{Kind: OpUpdate, Index: 2, Position: 9},
		{Kind: OpCreate, Index: 3, Position: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_EmptyToEmpty(t *testing.T) {
	if got := Plan(nil, nil); len(got) != 0 {
		t.Errorf("Plan(nil, nil) = %v, want no ops", got)
	}
}

func TestPlan_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var markers []Marker
	peak := 0

	for step := 0; step < 200; step++ {
		targets := make([]float64, rng.IntN(8))
		for i := range targets {
			targets[i] = rng.Float64() * 10
		}
		peak = max(peak, len(targets))

		plan := Plan(markers, targets)
		if len(plan) != max(len(markers), len(targets)) {
			t.Fatalf("step %d: %d ops for %d markers and %d targets", step, len(plan), len(markers), len(targets))
		}

		next, err := Apply(markers, plan)
		if err != nil {
			t.Fatalf("step %d: Apply: %v", step, err)
		}

		if len(next) != max(len(markers), len(targets)) {
			t.Fatalf("step %d: %d markers, want %d", step, len(next), max(len(markers), len(targets)))
		}
		if len(next) > peak {
			t.Fatalf("step %d: %d markers exceeds peak target count %d", step, len(next), peak)
		}
		if VisibleCount(next) != len(targets) {
			t.Fatalf("step %d: %d visible, want %d", step, VisibleCount(next), len(targets))
		}
		for i, x := range targets {
			if !next[i].Visible || next[i].Position != x {
				t.Fatalf("step %d: marker %d = %+v, want visible at %g", step, i, next[i], x)
			}
		}
		for i := len(targets); i < len(next); i++ {
			if next[i].Visible {
				t.Fatalf("step %d: surplus marker %d visible", step, i)
			}
		}
		markers = next
	}
}

func TestApply_RejectsBadPlans(t *testing.T) {
	markers := []Marker{{1, true}}
	bad := [][]Op{
		{{Kind: OpUpdate, Index: 1}},
		{{Kind: OpHide, Index: -1}},
		{{Kind: OpCreate, Index: 3}},
		{{Kind: OpKind(9), Index: 0}},
	}
	for i, plan := range bad {
		if _, err := Apply(markers, plan); err == nil {
			t.Errorf("plan %d: expected error, got nil", i)
		}
	}
	if markers[0] != (Marker{1, true}) {
		t.Error("Apply mutated its input")
	}
}

func TestOpKind_String(t *testing.T) {
	for kind, want := range map[OpKind]string{OpUpdate: "update", OpCreate: "create", OpHide: "hide", OpKind(7): "OpKind(7)"} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(kind), got, want)
		}
	}
}
