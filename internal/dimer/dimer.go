// Package dimer partitions a structure into molecules by bond
// network and selects the unique molecular dimers out of it.
package dimer

import (
	"fmt"
	"math"
	"sort"

	"github.com/tcmerritt/oniom/internal/geom"
)

// vdW contact damping in Å, after Day et al.
const vdwDamping = 1.5

// similarity threshold on the mean squared difference of sorted
// rounded interatomic distances
const sameDimerThresh = 0.1

// slack added to the sum of two covalent radii when detecting bonds
const bondTol = 0.45

// molecules partitions atoms into connected components under the
// bonded predicate.
func molecules(atoms []geom.Atom, bonded func(a, b geom.Atom) bool) [][]geom.Atom {
	n := len(atoms)
	seen := make([]bool, n)
	var mols [][]geom.Atom
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		// breadth-first walk of the component containing i
		queue := []int{i}
		seen[i] = true
		var mol []geom.Atom
		for len(queue) > 0 {
			at := queue[0]
			queue = queue[1:]
			mol = append(mol, atoms[at])
			for j := 0; j < n; j++ {
				if !seen[j] && bonded(atoms[at], atoms[j]) {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
		mols = append(mols, mol)
	}
	return mols
}

// Molecules partitions atoms into connected components of the bond
// graph, where two atoms bond when closer than maxBond.
func Molecules(atoms []geom.Atom, maxBond float64) [][]geom.Atom {
	maxBond2 := maxBond * maxBond
	return molecules(atoms, func(a, b geom.Atom) bool {
		return a.Dist2(b) <= maxBond2
	})
}

// MoleculesCov partitions atoms into molecules with an element-aware
// bond criterion: two atoms bond when closer than the sum of their
// covalent radii plus a fixed slack. Atoms with no tabulated radius
// are an error.
func MoleculesCov(atoms []geom.Atom) ([][]geom.Atom, error) {
	rad := make(map[string]float64)
	for _, at := range atoms {
		r, ok := geom.CovRad(at.Sym)
		if !ok {
			return nil, fmt.Errorf(
				"dimer: no covalent radius for %q", at.Sym)
		}
		rad[at.Sym] = r
	}
	return molecules(atoms, func(a, b geom.Atom) bool {
		return a.Dist(b) <= rad[a.Sym]+rad[b.Sym]+bondTol
	}), nil
}

// ByCentroid pairs molecules whose centroids lie within d of each
// other.
func ByCentroid(mols [][]geom.Atom, d float64) [][]geom.Atom {
	var dimers [][]geom.Atom
	for i, m1 := range mols {
		x1, y1, z1 := geom.Centroid(m1)
		for _, m2 := range mols[i+1:] {
			x2, y2, z2 := geom.Centroid(m2)
			dx, dy, dz := x1-x2, y1-y2, z1-z2
			if math.Sqrt(dx*dx+dy*dy+dz*dz) <= d {
				dimers = append(dimers, join(m1, m2))
			}
		}
	}
	return dimers
}

// ByContact pairs molecules with any intermolecular atomic distance
// within d.
func ByContact(mols [][]geom.Atom, d float64) [][]geom.Atom {
	var dimers [][]geom.Atom
	for i, m1 := range mols {
		for _, m2 := range mols[i+1:] {
			if inContact(m1, m2, func(a, b geom.Atom) float64 {
				return d
			}) {
				dimers = append(dimers, join(m1, m2))
			}
		}
	}
	return dimers
}

// ByVdw pairs molecules with any intermolecular pair within the sum
// of the two van der Waals radii plus the damping distance. Atoms
// with no tabulated radius never qualify as contacts.
func ByVdw(mols [][]geom.Atom) [][]geom.Atom {
	var dimers [][]geom.Atom
	for i, m1 := range mols {
		for _, m2 := range mols[i+1:] {
			if inContact(m1, m2, func(a, b geom.Atom) float64 {
				ra, aok := geom.VdwRad(a.Sym)
				rb, bok := geom.VdwRad(b.Sym)
				if !aok || !bok {
					return -1
				}
				return ra + rb + vdwDamping
			}) {
				dimers = append(dimers, join(m1, m2))
			}
		}
	}
	return dimers
}

func inContact(m1, m2 []geom.Atom, cutoff func(a, b geom.Atom) float64) bool {
	for _, a := range m1 {
		for _, b := range m2 {
			if a.Dist(b) <= cutoff(a, b) {
				return true
			}
		}
	}
	return false
}

func join(m1, m2 []geom.Atom) []geom.Atom {
	ret := make([]geom.Atom, 0, len(m1)+len(m2))
	ret = append(ret, m1...)
	return append(ret, m2...)
}

// Unique holds one representative dimer together with how many of
// the candidates matched it.
type Unique struct {
	Atoms []geom.Atom
	Count int
}

// fingerprint is the sorted list of all interatomic distances in the
// dimer, rounded to whole units
func fingerprint(atoms []geom.Atom) []float64 {
	var ds []float64
	for i := range atoms {
		for j := i + 1; j < len(atoms); j++ {
			ds = append(ds, math.Round(atoms[i].Dist(atoms[j])))
		}
	}
	sort.Float64s(ds)
	return ds
}

// meanSquaredDiff compares equal-length fingerprints
func meanSquaredDiff(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a))
}

// Dedupe filters dimers down to the geometrically distinct ones.
// Dimers with different atom counts are always distinct; otherwise
// two dimers match when the mean squared difference of their
// fingerprints falls under the similarity threshold.
func Dedupe(dimers [][]geom.Atom) []Unique {
	var uniq []Unique
	prints := make([][]float64, 0, len(dimers))
	for _, dim := range dimers {
		fp := fingerprint(dim)
		matched := false
		for u := range uniq {
			if len(prints[u]) != len(fp) {
				continue
			}
			if meanSquaredDiff(prints[u], fp) < sameDimerThresh {
				uniq[u].Count++
				matched = true
				break
			}
		}
		if !matched {
			uniq = append(uniq, Unique{Atoms: dim, Count: 1})
			prints = append(prints, fp)
		}
	}
	return uniq
}

// Select pairs the molecules into candidate dimers by the given
// criterion (c, a, or vdw) and deduplicates them.
func Select(mols [][]geom.Atom, dist float64, criterion string) (
	[]Unique, int, error) {
	var dimers [][]geom.Atom
	switch criterion {
	case "c":
		dimers = ByCentroid(mols, dist)
	case "a":
		dimers = ByContact(mols, dist)
	case "vdw":
		dimers = ByVdw(mols)
	default:
		return nil, 0, fmt.Errorf(
			"dimer: unknown criterion %q, want c, a, or vdw",
			criterion)
	}
	if len(dimers) == 0 {
		return nil, 0, fmt.Errorf(
			"dimer: no dimers found, try loosening the criteria")
	}
	return Dedupe(dimers), len(dimers), nil
}
