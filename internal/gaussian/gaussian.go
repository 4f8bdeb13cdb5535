// Package gaussian builds Gaussian inputs from user templates, runs
// the program as a subprocess, and parses energies and forces back
// out of the log file.
package gaussian

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/tcmerritt/oniom/internal/geom"
)

const (
	// unit conversions, CODATA
	EvPerHartree    = 27.2114
	BohrPerAngstrom = 1.88973
)

var (
	ErrEnergyNotFound = errors.New("energy not found in Gaussian output")
	ErrForcesNotFound = errors.New("forces not found in Gaussian output")
	ErrFileNotFound   = errors.New("output file not found")
)

// Calc is one of the Gaussian calculations making up an ONIOM step:
// rl, ml, mh, or mg. Its input is produced from <name>.template in
// Dir, which must reference {{.Geom}} and may reference {{.Charges}}.
type Calc struct {
	Name   string
	Cmd    string
	Dir    string
	Charge int
	Spin   int
	tmpl   *template.Template
}

// NewCalc loads <name>.template from dir and returns the calculation
// handle. cmd is the Gaussian executable, typically g16. The spin
// defaults to a singlet.
func NewCalc(name, cmd, dir string) (*Calc, error) {
	t, err := template.ParseFiles(filepath.Join(dir, name+".template"))
	if err != nil {
		return nil, fmt.Errorf("gaussian: %s: %w", name, err)
	}
	return &Calc{Name: name, Cmd: cmd, Dir: dir, Spin: 1, tmpl: t}, nil
}

func (c *Calc) inputFile() string {
	return filepath.Join(c.Dir, c.Name+".com")
}

func (c *Calc) logFile() string {
	return filepath.Join(c.Dir, c.Name+".log")
}

// WriteInput renders the template with the current geometry and the
// embedding point charges (nil for model calculations) into
// <name>.com. Templates reference {{.Geom}} and, for the embedded
// calculation, {{.Charges}}; {{.Charge}} and {{.Spin}} are available
// for the charge/multiplicity line.
func (c *Calc) WriteInput(mol, charges []geom.Atom) error {
	f, err := os.Create(c.inputFile())
	if err != nil {
		return err
	}
	defer f.Close()
	data := struct {
		Geom    string
		Charges string
		Charge  int
		Spin    int
	}{
		Geom:    zipGeom(mol),
		Charges: zipCharges(charges),
		Charge:  c.Charge,
		Spin:    c.Spin,
	}
	if err := c.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("gaussian: %s: %w", c.Name, err)
	}
	return nil
}

// zipGeom formats atoms as Gaussian geometry lines
func zipGeom(atoms []geom.Atom) string {
	var b strings.Builder
	for _, a := range atoms {
		fmt.Fprintf(&b, "%-3s%20.12f%20.12f%20.12f\n",
			a.Sym, a.X, a.Y, a.Z)
	}
	return b.String()
}

// zipCharges formats point charges as x y z q lines
func zipCharges(atoms []geom.Atom) string {
	var b strings.Builder
	for _, a := range atoms {
		fmt.Fprintf(&b, "%20.12f%20.12f%20.12f%14.8f\n",
			a.X, a.Y, a.Z, a.Charge)
	}
	return b.String()
}

// Run executes Gaussian on the current input, directing stdout to
// the log file, and waits for it to finish.
func (c *Calc) Run(ctx context.Context) error {
	out, err := os.Create(c.logFile())
	if err != nil {
		return err
	}
	defer out.Close()
	cmd := exec.CommandContext(ctx, c.Cmd, c.Name+".com")
	cmd.Dir = c.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gaussian: %s: %s: %w", c.Name,
			cmd.String(), err)
	}
	return nil
}

// Result holds the parsed output of one calculation. Energies are in
// Hartree, the gradient in Hartree/Å. For ground-state calculations
// Energy and SCF coincide; for excited-state ones Energy is the
// TD total energy.
type Result struct {
	Energy float64
	SCF    float64
	Grad   []float64
}

// ReadOut parses the calculation's log file.
func (c *Calc) ReadOut() (Result, error) {
	res, err := ParseLogFile(c.logFile())
	if err != nil {
		return res, fmt.Errorf("gaussian: %s: %w", c.Name, err)
	}
	return res, nil
}

// ParseLogFile parses the named Gaussian log.
func ParseLogFile(filename string) (Result, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", filename, ErrFileNotFound)
	}
	defer f.Close()
	return ParseLog(f)
}

// ParseLog extracts the SCF energy, the TD total energy when
// present, and the forces from a Gaussian log. Forces are reported by
// Gaussian in Hartree/Bohr and come back converted to a gradient in
// Hartree/Å.
func ParseLog(r io.Reader) (Result, error) {
	var (
		res      Result
		sawSCF   bool
		sawTotal bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "SCF Done"):
			// SCF Done:  E(RB3LYP) =  -155.456  A.U. after ...
			fields := strings.Fields(line)
			v, err := strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return res, fmt.Errorf(
					"parsing %q: %w", line, err)
			}
			res.SCF = v
			sawSCF = true
		case strings.Contains(line, "Total Energy, E(TD-HF/TD-DFT)"),
			strings.Contains(line, "Total Energy, E(TD-HF/TD-KS)"):
			fields := strings.Fields(line)
			v, err := strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return res, fmt.Errorf(
					"parsing %q: %w", line, err)
			}
			res.Energy = v
			sawTotal = true
		case strings.Contains(line, "Forces (Hartrees/Bohr)"):
			grad, err := parseForces(scanner)
			if err != nil {
				return res, err
			}
			res.Grad = grad
		}
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}
	if !sawSCF {
		return res, ErrEnergyNotFound
	}
	if !sawTotal {
		res.Energy = res.SCF
	}
	if res.Grad == nil {
		return res, ErrForcesNotFound
	}
	return res, nil
}

// parseForces consumes the forces table, positioned just after its
// title line, returning the gradient in Hartree/Å
func parseForces(scanner *bufio.Scanner) ([]float64, error) {
	// column header and separator
	for i := 0; i < 2; i++ {
		if !scanner.Scan() {
			return nil, ErrForcesNotFound
		}
	}
	var grad []float64
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "---") {
			break
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("bad forces line %q", line)
		}
		for _, s := range fields[2:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf(
					"parsing %q: %w", line, err)
			}
			// force to gradient, Bohr to Å
			grad = append(grad, -v*BohrPerAngstrom)
		}
	}
	if len(grad) == 0 {
		return nil, ErrForcesNotFound
	}
	return grad, nil
}
