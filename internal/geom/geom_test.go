package geom

import (
	"math"
	"reflect"
	"testing"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestDist(t *testing.T) {
	a := Atom{Sym: "C"}
	b := Atom{Sym: "H", X: 3, Y: 4}
	if got := a.Dist(b); got != 5 {
		t.Errorf("got %v, wanted 5", got)
	}
	if got := a.Dist2(b); got != 25 {
		t.Errorf("got %v, wanted 25", got)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	atoms := []Atom{
		{Sym: "O", X: 1, Y: 2, Z: 3},
		{Sym: "H", X: 4, Y: 5, Z: 6},
	}
	flat := Flatten(atoms)
	want := []float64{1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("got %v, wanted %v", flat, want)
	}
	flat[0] = -1
	got := WithCoords(atoms, flat)
	if got[0].X != -1 || got[0].Sym != "O" {
		t.Errorf("got %v", got[0])
	}
	// the input must not be touched
	if atoms[0].X != 1 {
		t.Errorf("input mutated: %v", atoms[0])
	}
}

func TestCentroid(t *testing.T) {
	atoms := []Atom{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 4, Z: 6},
	}
	x, y, z := Centroid(atoms)
	if x != 1 || y != 2 || z != 3 {
		t.Errorf("got %v %v %v", x, y, z)
	}
}

func TestDistMat(t *testing.T) {
	atoms := []Atom{
		{X: 0},
		{X: 1},
		{X: 3},
	}
	m := DistMat(atoms)
	want := [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{3, 2, 0},
	}
	for i := range want {
		for j := range want[i] {
			if got := m.At(i, j); got != want[i][j] {
				t.Errorf("at %d,%d got %v, wanted %v",
					i, j, got, want[i][j])
			}
		}
	}
}

func TestLargest(t *testing.T) {
	m := DistMat([]Atom{{X: 0}, {X: 1}, {X: 3}})
	got := Largest(m, 2)
	want := [][2]int{{2, 0}, {2, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v", got, want)
	}
}

func TestPlaneFromCoords(t *testing.T) {
	// four points in the z = 2 plane
	atoms := []Atom{
		{X: 0, Y: 0, Z: 2},
		{X: 1, Y: 0, Z: 2},
		{X: 0, Y: 1, Z: 2},
		{X: 1, Y: 1, Z: 2},
	}
	a, b, c, d, err := PlaneFromCoords(atoms)
	if err != nil {
		t.Fatal(err)
	}
	// normal is defined up to sign
	if c < 0 {
		a, b, c, d = -a, -b, -c, -d
	}
	if !near(a, 0, 1e-12) || !near(b, 0, 1e-12) ||
		!near(c, 1, 1e-12) || !near(d, -2, 1e-12) {
		t.Errorf("got %v %v %v %v", a, b, c, d)
	}
}

func TestPlaneTooFewAtoms(t *testing.T) {
	_, _, _, _, err := PlaneFromCoords([]Atom{{}, {}})
	if err == nil {
		t.Error("expected an error for 2 atoms")
	}
}

func TestExtremePairs(t *testing.T) {
	atoms := []Atom{
		{Sym: "A", X: 0},
		{Sym: "B", X: 1},
		{Sym: "C", X: 5},
	}
	got := ExtremePairs(atoms, 1)
	if len(got) != 1 {
		t.Fatalf("got %d pairs", len(got))
	}
	if got[0][0].Sym != "C" || got[0][1].Sym != "A" {
		t.Errorf("got %v", got[0])
	}
}

func TestElementTables(t *testing.T) {
	if r, ok := VdwRad("C"); !ok || r != 1.70 {
		t.Errorf("C vdW: got %v %v", r, ok)
	}
	if r, ok := CovRad("H"); !ok || r != 0.31 {
		t.Errorf("H cov: got %v %v", r, ok)
	}
	if _, ok := VdwRad("Xx"); ok {
		t.Error("Xx should be unknown")
	}
	if s := Symbol(6); s != "C" {
		t.Errorf("got %q", s)
	}
}
