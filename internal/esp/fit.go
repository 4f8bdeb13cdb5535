package esp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tcmerritt/oniom/internal/gaussian"
	"github.com/tcmerritt/oniom/internal/geom"
)

// sample points closer than this to a charge poison the design
// matrix
const minSampleDist = 1e-6

// ShellRegion keeps the grid points lying within the vdW-scaled
// shell [inner*r_vdw, outer*r_vdw] of at least one of the atoms.
// Distances are compared squared to stay off math.Sqrt in the double
// loop.
func ShellRegion(g *Grid, atoms []geom.Atom, inner, outer float64) ([]Point, error) {
	type shell struct {
		at        geom.Atom
		in2, out2 float64
	}
	shells := make([]shell, len(atoms))
	for i, at := range atoms {
		r, ok := geom.VdwRad(at.Sym)
		if !ok {
			return nil, fmt.Errorf(
				"esp: no vdW radius for %q", at.Sym)
		}
		shells[i] = shell{at, inner * r * inner * r, outer * r * outer * r}
	}
	var kept []Point
	for _, p := range g.Points {
		for _, s := range shells {
			d2 := s.at.Dist2(geom.Atom{X: p.X, Y: p.Y, Z: p.Z})
			if s.in2 <= d2 && d2 <= s.out2 {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept, nil
}

// Potential returns the Coulomb potential of the charges at (x, y,
// z) in atomic units; charge positions are in Å.
func Potential(charges []geom.Atom, x, y, z float64) float64 {
	var v float64
	for _, q := range charges {
		r := q.DistTo(x, y, z) * gaussian.BohrPerAngstrom
		v += q.Charge / r
	}
	return v
}

// coeffMat builds the design matrix with A[i][j] = 1/r between
// sample i and adjustable charge j, in Bohr.
func coeffMat(charges []geom.Atom, samples []Point) (*mat.Dense, error) {
	a := mat.NewDense(len(samples), len(charges), nil)
	for i, s := range samples {
		for j, q := range charges {
			r := q.DistTo(s.X, s.Y, s.Z) * gaussian.BohrPerAngstrom
			if r < minSampleDist {
				return nil, fmt.Errorf(
					"esp: sample %d coincides with charge %d",
					i, j)
			}
			a.Set(i, j, 1/r)
		}
	}
	return a, nil
}

// depVar builds the residual potential at each sample once the
// current adjustable and fixed charges are subtracted out.
func depVar(adjust, fixed []geom.Atom, samples []Point) *mat.VecDense {
	b := mat.NewVecDense(len(samples), nil)
	for i, s := range samples {
		v := s.V -
			Potential(adjust, s.X, s.Y, s.Z) -
			Potential(fixed, s.X, s.Y, s.Z)
		b.SetVec(i, v)
	}
	return b
}

// Fit solves the least-squares correction to the adjustable charges
// so their potential matches the samples, holding fixed in place.
// It returns the corrected charges and the residual norm.
func Fit(adjust, fixed []geom.Atom, samples []Point) ([]geom.Atom, float64, error) {
	if len(samples) < len(adjust) {
		return nil, 0, fmt.Errorf(
			"esp: %d samples cannot determine %d charges",
			len(samples), len(adjust))
	}
	a, err := coeffMat(adjust, samples)
	if err != nil {
		return nil, 0, err
	}
	b := depVar(adjust, fixed, samples)
	var dq mat.VecDense
	if err := dq.SolveVec(a, b); err != nil {
		return nil, 0, fmt.Errorf("esp: least squares: %w", err)
	}
	out := make([]geom.Atom, len(adjust))
	for i, q := range adjust {
		q.Charge += dq.AtVec(i)
		out[i] = q
	}
	var resid mat.VecDense
	resid.MulVec(a, &dq)
	resid.SubVec(b, &resid)
	return out, mat.Norm(&resid, 2), nil
}
