// Package geom holds the small geometric toolkit shared by the
// optimizer and the crystal utilities: atoms, distance matrices,
// centroids, and best-fit planes.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Atom is a labelled point in space. Charge doubles as the point
// charge for embedding and fitting; it is zero for plain geometries.
type Atom struct {
	Sym     string
	X, Y, Z float64
	Charge  float64
}

func (a Atom) String() string {
	return fmt.Sprintf("%-3s%20.12f%20.12f%20.12f",
		a.Sym, a.X, a.Y, a.Z)
}

// Dist2 returns the squared distance between a and b.
func (a Atom) Dist2(b Atom) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Dist returns the distance between a and b.
func (a Atom) Dist(b Atom) float64 {
	return math.Sqrt(a.Dist2(b))
}

// DistTo returns the distance from a to an arbitrary point.
func (a Atom) DistTo(x, y, z float64) float64 {
	dx := a.X - x
	dy := a.Y - y
	dz := a.Z - z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Flatten packs atom coordinates into a flat x0 y0 z0 x1 y1 z1 ...
// slice, the form the minimizer works on.
func Flatten(atoms []Atom) []float64 {
	ret := make([]float64, 0, 3*len(atoms))
	for _, a := range atoms {
		ret = append(ret, a.X, a.Y, a.Z)
	}
	return ret
}

// WithCoords returns a copy of atoms with coordinates taken from the
// flat slice x. It panics if the lengths disagree since that is
// always a programming error.
func WithCoords(atoms []Atom, x []float64) []Atom {
	if len(x) != 3*len(atoms) {
		panic("geom: coordinate length mismatch")
	}
	ret := make([]Atom, len(atoms))
	for i, a := range atoms {
		a.X = x[3*i]
		a.Y = x[3*i+1]
		a.Z = x[3*i+2]
		ret[i] = a
	}
	return ret
}

// Centroid returns the mean position of atoms.
func Centroid(atoms []Atom) (x, y, z float64) {
	for _, a := range atoms {
		x += a.X
		y += a.Y
		z += a.Z
	}
	n := float64(len(atoms))
	return x / n, y / n, z / n
}

// DistMat returns the lower-triangular interatomic distance matrix of
// atoms. Entries on and above the diagonal are zero.
func DistMat(atoms []Atom) *mat.Dense {
	n := len(atoms)
	ret := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			ret.Set(i, j, atoms[i].Dist(atoms[j]))
		}
	}
	return ret
}

// Largest returns the row, column indices of the n largest entries of
// m, in decreasing order.
func Largest(m mat.Matrix, n int) [][2]int {
	r, c := m.Dims()
	work := mat.DenseCopyOf(m)
	ret := make([][2]int, 0, n)
	for len(ret) < n {
		var (
			best   float64 = math.Inf(-1)
			bi, bj int
		)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if v := work.At(i, j); v > best {
					best, bi, bj = v, i, j
				}
			}
		}
		ret = append(ret, [2]int{bi, bj})
		work.Set(bi, bj, math.Inf(-1))
	}
	return ret
}

// PlaneFromCoords fits the plane ax + by + cz + d = 0 through the
// atom positions by singular value decomposition: the right singular
// vector of the smallest singular value of the centered coordinates
// is the plane normal.
func PlaneFromCoords(atoms []Atom) (a, b, c, d float64, err error) {
	if len(atoms) < 3 {
		return 0, 0, 0, 0,
			fmt.Errorf("geom: plane fit needs 3 atoms, got %d",
				len(atoms))
	}
	cx, cy, cz := Centroid(atoms)
	cen := mat.NewDense(len(atoms), 3, nil)
	for i, at := range atoms {
		cen.Set(i, 0, at.X-cx)
		cen.Set(i, 1, at.Y-cy)
		cen.Set(i, 2, at.Z-cz)
	}
	var svd mat.SVD
	if ok := svd.Factorize(cen, mat.SVDThin); !ok {
		return 0, 0, 0, 0, fmt.Errorf("geom: SVD failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	// singular values come out in decreasing order, so the normal
	// is the last column of V
	a = v.At(0, 2)
	b = v.At(1, 2)
	c = v.At(2, 2)
	d = -(a*cx + b*cy + c*cz)
	return a, b, c, d, nil
}

// ExtremePairs returns the n most distant pairs of atoms.
func ExtremePairs(atoms []Atom, n int) [][2]Atom {
	inds := Largest(DistMat(atoms), n)
	ret := make([][2]Atom, len(inds))
	for i, ind := range inds {
		ret[i][0] = atoms[ind[0]]
		ret[i][1] = atoms[ind[1]]
	}
	return ret
}
