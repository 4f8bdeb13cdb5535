package geom

// van der Waals radii in Å for the common organic set, Bondi values
// with the Rowland & Taylor revision for H
var symbolVdwRad = map[string]float64{
	"H":  1.10,
	"B":  1.92,
	"C":  1.70,
	"N":  1.55,
	"O":  1.52,
	"F":  1.47,
	"Si": 2.10,
	"P":  1.80,
	"S":  1.80,
	"Cl": 1.75,
	"Br": 1.83,
	"I":  1.98,
	"Se": 1.90,
	"Na": 2.27,
	"K":  2.75,
	"Mg": 1.73,
	"Ca": 2.31,
	"Zn": 2.02,
}

// covalent radii in Å, Cordero et al. 2008
var symbolCovRad = map[string]float64{
	"H":  0.31,
	"B":  0.84,
	"C":  0.76,
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"Br": 1.20,
	"I":  1.39,
	"Se": 1.20,
	"Na": 1.66,
	"K":  2.03,
	"Mg": 1.41,
	"Ca": 1.76,
	"Zn": 1.22,
}

var numberSymbol = map[int]string{
	1: "H", 5: "B", 6: "C", 7: "N", 8: "O", 9: "F",
	11: "Na", 12: "Mg", 14: "Si", 15: "P", 16: "S", 17: "Cl",
	19: "K", 20: "Ca", 30: "Zn", 34: "Se", 35: "Br", 53: "I",
}

// VdwRad returns the van der Waals radius of an element symbol.
func VdwRad(sym string) (float64, bool) {
	r, ok := symbolVdwRad[sym]
	return r, ok
}

// CovRad returns the covalent radius of an element symbol.
func CovRad(sym string) (float64, bool) {
	r, ok := symbolCovRad[sym]
	return r, ok
}

// Symbol returns the element symbol for an atomic number, or "" when
// the element is not tabulated.
func Symbol(z int) string {
	return numberSymbol[z]
}
