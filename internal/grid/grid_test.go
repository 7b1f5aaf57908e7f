package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The floor/ceil rounding rules are load-bearing for the window arithmetic;
// these cases pin them exactly.
func TestWorldGridConversions(t *testing.T) {
	cases := []struct {
		world float64
		want  int
	}{
		{0, 0},
		{19.99, 0},
		{20, 1},
		{-0.01, -1},
		{-20, -1},
		{-20.01, -2},
	}
	for _, tc := range cases {
		if got := ToGrid(tc.world); got != tc.want {
			t.Errorf("ToGrid(%v) = %d, want %d", tc.world, got, tc.want)
		}
	}

	if got := InferiorCell(0, 10); got != -1 {
		t.Errorf("InferiorCell(0, 10) = %d, want -1", got)
	}
	if got := SuperiorCell(0, 10); got != 0 {
		t.Errorf("SuperiorCell(0, 10) = %d, want 0", got)
	}
	if got := InferiorCell(40, 10); got != 1 {
		t.Errorf("InferiorCell(40, 10) = %d, want 1", got)
	}
	if got := SuperiorCell(40, 10); got != 2 {
		t.Errorf("SuperiorCell(40, 10) = %d, want 2", got)
	}

	if got := InferiorWorld(-1); got != -20 {
		t.Errorf("InferiorWorld(-1) = %v, want -20", got)
	}
	if got := SuperiorWorld(-1); got != 0 {
		t.Errorf("SuperiorWorld(-1) = %v, want 0", got)
	}
}

func TestOrderedIndexes(t *testing.T) {
	cases := []struct {
		name              string
		low, high, current int
		want              []int
	}{
		{"interval below current", 0, 3, 5, []int{3, 2, 1, 0}},
		{"interval above current", 2, 5, 0, []int{2, 3, 4, 5}},
		{"current inside", 0, 4, 2, []int{2, 1, 0, 3, 4}},
		{"current at low", 2, 5, 2, []int{2, 3, 4, 5}},
		{"current at high", 0, 3, 3, []int{3, 2, 1, 0}},
		{"single cell", 1, 1, 1, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OrderedIndexes(tc.low, tc.high, tc.current)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("OrderedIndexes(%d, %d, %d) mismatch (-want +got):\n%s",
					tc.low, tc.high, tc.current, diff)
			}
		})
	}
}

func TestChebyshev(t *testing.T) {
	a := Key{Row: 1, Column: 2, Aisle: 3}
	b := Key{Row: 4, Column: 0, Aisle: 3}
	if got := Chebyshev(a, b); got != 3 {
		t.Errorf("Chebyshev = %d, want 3", got)
	}
	if got := Chebyshev(a, a); got != 0 {
		t.Errorf("Chebyshev to self = %d, want 0", got)
	}
}

func TestDepthOf(t *testing.T) {
	if got := DepthOf(nil, Key{Row: 7, Column: 7}); got != 0 {
		t.Errorf("DepthOf with no loaded cells = %d, want 0", got)
	}

	loaded := map[Key]int{
		{Row: 0, Column: 0}: 0,
		{Row: 5, Column: 5}: 2,
	}
	// nearest path is through (5,5): 2 + 1 = 3, versus (0,0): 0 + 6 = 6
	if got := DepthOf(loaded, Key{Row: 6, Column: 5}); got != 3 {
		t.Errorf("DepthOf = %d, want 3", got)
	}
	// adjacent to the originally observed cell
	if got := DepthOf(loaded, Key{Row: 1, Column: 1}); got != 1 {
		t.Errorf("DepthOf = %d, want 1", got)
	}
}

func TestKeyOf(t *testing.T) {
	p := [3]float64{25, -5, 45}
	if got := KeyOf(p, true); got != (Key{Row: 1, Column: -1, Aisle: 2}) {
		t.Errorf("KeyOf 3D = %+v", got)
	}
	if got := KeyOf(p, false); got != (Key{Row: 1, Column: -1, Aisle: 0}) {
		t.Errorf("KeyOf 2D = %+v", got)
	}
}
