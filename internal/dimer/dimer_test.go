package dimer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcmerritt/oniom/internal/geom"
)

// h2 returns an H2 molecule with its bond along x, shifted to
// (x, y, z)
func h2(x, y, z float64) []geom.Atom {
	return []geom.Atom{
		{Sym: "H", X: x, Y: y, Z: z},
		{Sym: "H", X: x + 0.74, Y: y, Z: z},
	}
}

func flatten(mols ...[]geom.Atom) (ret []geom.Atom) {
	for _, m := range mols {
		ret = append(ret, m...)
	}
	return
}

func TestMolecules(t *testing.T) {
	atoms := flatten(h2(0, 0, 0), h2(10, 0, 0), h2(0, 10, 0))
	mols := Molecules(atoms, 1.6)
	require.Len(t, mols, 3)
	for _, m := range mols {
		assert.Len(t, m, 2)
	}
}

func TestMoleculesSingleComponent(t *testing.T) {
	// chain of atoms each 1.0 apart is one molecule
	atoms := []geom.Atom{
		{Sym: "C", X: 0},
		{Sym: "C", X: 1},
		{Sym: "C", X: 2},
	}
	mols := Molecules(atoms, 1.1)
	require.Len(t, mols, 1)
	assert.Len(t, mols[0], 3)
}

func TestByCentroid(t *testing.T) {
	mols := Molecules(
		flatten(h2(0, 0, 0), h2(0, 3, 0), h2(0, 50, 0)), 1.6)
	dimers := ByCentroid(mols, 7)
	// only the first two molecules are close enough
	require.Len(t, dimers, 1)
	assert.Len(t, dimers[0], 4)
}

func TestByContact(t *testing.T) {
	mols := Molecules(
		flatten(h2(0, 0, 0), h2(0, 3, 0), h2(0, 50, 0)), 1.6)
	assert.Len(t, ByContact(mols, 3.5), 1)
	// 47.5 also catches the pair at y = 3 and y = 50
	assert.Len(t, ByContact(mols, 47.5), 2)
}

func TestByVdw(t *testing.T) {
	// H vdW radius 1.10: cutoff 1.10 + 1.10 + 1.5 = 3.7
	mols := Molecules(
		flatten(h2(0, 0, 0), h2(0, 3, 0), h2(0, 50, 0)), 1.6)
	dimers := ByVdw(mols)
	require.Len(t, dimers, 1)
}

func TestDedupe(t *testing.T) {
	// two translated copies of the same dimer and one stretched one
	a := flatten(h2(0, 0, 0), h2(0, 3, 0))
	b := flatten(h2(5, 5, 5), h2(5, 8, 5))
	c := flatten(h2(0, 0, 0), h2(0, 40, 0))
	uniq := Dedupe([][]geom.Atom{a, b, c})
	require.Len(t, uniq, 2)
	assert.Equal(t, 2, uniq[0].Count)
	assert.Equal(t, 1, uniq[1].Count)
}

func TestDedupeDifferentSizes(t *testing.T) {
	small := h2(0, 0, 0)
	big := flatten(h2(0, 0, 0), h2(0, 3, 0))
	uniq := Dedupe([][]geom.Atom{small, big})
	assert.Len(t, uniq, 2)
}

func TestMoleculesCov(t *testing.T) {
	// H-H at 0.74 bonds under 0.31 + 0.31 + 0.45 = 1.07, while C-C
	// at 2.0 stays apart under 0.76 + 0.76 + 0.45 = 1.97
	atoms := append(h2(0, 0, 0),
		geom.Atom{Sym: "C", X: 10},
		geom.Atom{Sym: "C", X: 12})
	mols, err := MoleculesCov(atoms)
	require.NoError(t, err)
	require.Len(t, mols, 3)
	assert.Len(t, mols[0], 2)
}

func TestMoleculesCovUnknown(t *testing.T) {
	_, err := MoleculesCov([]geom.Atom{{Sym: "Xx"}})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	mols := Molecules(
		flatten(h2(0, 0, 0), h2(0, 3, 0), h2(20, 0, 0), h2(20, 3, 0)),
		1.6)
	uniq, total, err := Select(mols, 7, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, uniq, 1)
	assert.Equal(t, 2, uniq[0].Count)
}

func TestSelectErrors(t *testing.T) {
	mols := Molecules(flatten(h2(0, 0, 0), h2(0, 50, 0)), 1.6)
	_, _, err := Select(mols, 7, "c")
	assert.Error(t, err, "no dimers")
	_, _, err = Select(mols, 7, "bogus")
	assert.Error(t, err, "unknown criterion")
}
