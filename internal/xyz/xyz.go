// Package xyz reads and writes xyz geometry files, including
// multi-frame trajectories and the four-column variant carrying a
// point charge after the coordinates.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tcmerritt/oniom/internal/geom"
)

// Read parses every frame in r. A frame is a natoms line, a comment
// line, and natoms atom lines with an optional trailing charge
// column.
func Read(r io.Reader) (frames [][]geom.Atom, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf(
				"xyz: bad atom count %q: %w", line, err)
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("xyz: missing comment line")
		}
		frame := make([]geom.Atom, 0, n)
		for i := 0; i < n; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf(
					"xyz: truncated frame, wanted %d atoms, got %d",
					n, i)
			}
			atom, err := parseAtom(scanner.Text())
			if err != nil {
				return nil, err
			}
			frame = append(frame, atom)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("xyz: no frames found")
	}
	return frames, nil
}

func parseAtom(line string) (geom.Atom, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return geom.Atom{}, fmt.Errorf("xyz: bad atom line %q", line)
	}
	vals, err := toFloat(fields[1:])
	if err != nil {
		return geom.Atom{}, fmt.Errorf("xyz: bad atom line %q: %w",
			line, err)
	}
	a := geom.Atom{Sym: fields[0], X: vals[0], Y: vals[1], Z: vals[2]}
	if len(vals) > 3 {
		a.Charge = vals[3]
	}
	return a, nil
}

// toFloat converts a list of strings with strconv.ParseFloat
func toFloat(strs []string) ([]float64, error) {
	ret := make([]float64, len(strs))
	var err error
	for i, s := range strs {
		ret[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// ReadFile parses every frame in the named file.
func ReadFile(name string) ([][]geom.Atom, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	frames, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return frames, nil
}

// ReadLast returns the last frame of the named file.
func ReadLast(name string) ([]geom.Atom, error) {
	frames, err := ReadFile(name)
	if err != nil {
		return nil, err
	}
	return frames[len(frames)-1], nil
}

// Write writes one frame to w.
func Write(w io.Writer, comment string, atoms []geom.Atom) error {
	nw := bufio.NewWriter(w)
	fmt.Fprintf(nw, "%d\n%s\n", len(atoms), comment)
	for _, a := range atoms {
		fmt.Fprintf(nw, "%-3s%20.12f%20.12f%20.12f\n",
			a.Sym, a.X, a.Y, a.Z)
	}
	return nw.Flush()
}

// WriteCharges writes one frame to w with the charge as a fourth
// column.
func WriteCharges(w io.Writer, comment string, atoms []geom.Atom) error {
	nw := bufio.NewWriter(w)
	fmt.Fprintf(nw, "%d\n%s\n", len(atoms), comment)
	for _, a := range atoms {
		fmt.Fprintf(nw, "%-3s%20.12f%20.12f%20.12f%14.8f\n",
			a.Sym, a.X, a.Y, a.Z, a.Charge)
	}
	return nw.Flush()
}

// WriteFile writes one frame to the named file, truncating it.
func WriteFile(name, comment string, atoms []geom.Atom) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, comment, atoms)
}

// AppendFile appends one frame to the named file, creating it if
// needed. The optimizer uses this to keep geometry histories.
func AppendFile(name, comment string, atoms []geom.Atom) error {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, comment, atoms)
}
