// Package esp samples electrostatic potential grids and fits point
// charges to reproduce them.
package esp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tcmerritt/oniom/internal/gaussian"
	"github.com/tcmerritt/oniom/internal/geom"
)

// Point is one grid sample: position in Å and the potential value in
// atomic units.
type Point struct {
	X, Y, Z float64
	V       float64
}

// Grid is a real-space scalar field, typically an electrostatic
// potential from a cube file.
type Grid struct {
	Points []Point
}

// ReadCube parses a Gaussian cube file into a grid and the atoms it
// carries. Cube coordinates are in Bohr and come back converted to
// Å; values keep their atomic units.
func ReadCube(r io.Reader) (*Grid, []geom.Atom, error) {
	scanner := bufio.NewScanner(r)
	// two title lines
	for i := 0; i < 2; i++ {
		if !scanner.Scan() {
			return nil, nil, fmt.Errorf("esp: truncated cube header")
		}
	}
	natoms, origin, err := cubeHeaderLine(scanner)
	if err != nil {
		return nil, nil, err
	}
	var npts [3]int
	var axes [3][3]float64
	for i := 0; i < 3; i++ {
		n, v, err := cubeHeaderLine(scanner)
		if err != nil {
			return nil, nil, err
		}
		if n <= 0 {
			return nil, nil, fmt.Errorf(
				"esp: non-positive axis count %d", n)
		}
		npts[i] = n
		axes[i] = v
	}
	atoms := make([]geom.Atom, 0, natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, nil, fmt.Errorf("esp: truncated atom list")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != 5 {
			return nil, nil, fmt.Errorf(
				"esp: bad cube atom line %q", scanner.Text())
		}
		z, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, err
		}
		var pos [3]float64
		for j, s := range fields[2:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, err
			}
			pos[j] = v / gaussian.BohrPerAngstrom
		}
		atoms = append(atoms, geom.Atom{
			Sym: geom.Symbol(z),
			X:   pos[0], Y: pos[1], Z: pos[2],
		})
	}
	// values come z fastest, six per line
	var vals []float64
	for scanner.Scan() {
		for _, s := range strings.Fields(scanner.Text()) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, err
			}
			vals = append(vals, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	want := npts[0] * npts[1] * npts[2]
	if len(vals) != want {
		return nil, nil, fmt.Errorf(
			"esp: expected %d grid values, got %d", want, len(vals))
	}
	grid := &Grid{Points: make([]Point, 0, want)}
	var k int
	for i := 0; i < npts[0]; i++ {
		for j := 0; j < npts[1]; j++ {
			for l := 0; l < npts[2]; l++ {
				fi, fj, fl := float64(i), float64(j), float64(l)
				grid.Points = append(grid.Points, Point{
					X: (origin[0] + fi*axes[0][0] +
						fj*axes[1][0] + fl*axes[2][0]) /
						gaussian.BohrPerAngstrom,
					Y: (origin[1] + fi*axes[0][1] +
						fj*axes[1][1] + fl*axes[2][1]) /
						gaussian.BohrPerAngstrom,
					Z: (origin[2] + fi*axes[0][2] +
						fj*axes[1][2] + fl*axes[2][2]) /
						gaussian.BohrPerAngstrom,
					V: vals[k],
				})
				k++
			}
		}
	}
	return grid, atoms, nil
}

func cubeHeaderLine(scanner *bufio.Scanner) (int, [3]float64, error) {
	var vec [3]float64
	if !scanner.Scan() {
		return 0, vec, fmt.Errorf("esp: truncated cube header")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 4 {
		return 0, vec, fmt.Errorf(
			"esp: bad cube header line %q", scanner.Text())
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, vec, err
	}
	for i, s := range fields[1:4] {
		vec[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, vec, err
		}
	}
	return n, vec, nil
}

// ReadCubeFile parses the named cube file.
func ReadCubeFile(name string) (*Grid, []geom.Atom, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	grid, atoms, err := ReadCube(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return grid, atoms, nil
}
