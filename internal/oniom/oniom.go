// Package oniom combines subtractive-scheme QM/QM' energies and
// gradients for a molecule embedded in a cluster of point charges and
// drives their minimisation.
//
// Each step runs the real-low (rl), model-low (ml), and model-high
// (mh) Gaussian calculations, plus model-ground (mg) when searching
// for a state crossing. The combined energy is rl - ml + mh; for a
// crossing search the smoothed penalty function of Levine, Coe &
// Martinez (J. Phys. Chem. B 112, 405 (2008)) replaces the plain
// excited-state energy.
package oniom

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/tcmerritt/oniom/internal/gaussian"
	"github.com/tcmerritt/oniom/internal/geom"
	"github.com/tcmerritt/oniom/internal/xyz"
)

// history files regenerated over the course of a job
const (
	MolHistory     = "geom_mol.xyz"
	ClusterHistory = "geom_cluster.xyz"
)

// Evaluator computes the ONIOM objective at a set of molecular
// coordinates. MG may be nil unless CI is set.
type Evaluator struct {
	Mol   []geom.Atom // central molecule, coordinates are the variables
	Shell []geom.Atom // surrounding point charges, fixed

	RL, ML, MH, MG *gaussian.Calc

	CI           bool // minimise the crossing penalty function
	Sigma, Alpha float64

	Report io.Writer
	Log    *zap.SugaredLogger

	// HistoryDir receives the geometry history files; empty means
	// the working directory
	HistoryDir string

	iter int
}

// Combine merges the three ONIOM terms: real-low minus model-low
// plus model-high, elementwise for the gradients.
func Combine(rl, ml, mh gaussian.Result) (gaussian.Result, error) {
	if len(rl.Grad) != len(ml.Grad) || len(ml.Grad) != len(mh.Grad) {
		return gaussian.Result{}, fmt.Errorf(
			"oniom: gradient size mismatch: rl %d, ml %d, mh %d",
			len(rl.Grad), len(ml.Grad), len(mh.Grad))
	}
	ret := gaussian.Result{
		Energy: rl.Energy - ml.Energy + mh.Energy,
		SCF:    rl.SCF - ml.SCF + mh.SCF,
		Grad:   make([]float64, len(rl.Grad)),
	}
	for i := range ret.Grad {
		ret.Grad[i] = rl.Grad[i] - ml.Grad[i] + mh.Grad[i]
	}
	return ret, nil
}

// Penalty evaluates the degenerate-state penalty function and its
// gradient for the upper (e1) and lower (e2) combined states.
func Penalty(e1, e2 float64, g1, g2 []float64, sigma, alpha float64) (
	float64, []float64, error) {
	de := e1 - e2
	den := de + alpha
	e := (e1+e2)/2 + sigma*de*de/den
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, nil, fmt.Errorf(
			"oniom: penalty function degenerate at gap %g", de)
	}
	fac := sigma * (de*de + 2*alpha*de) / (den * den)
	grad := make([]float64, len(g1))
	for i := range grad {
		grad[i] = 0.5*(g1[i]+g2[i]) + fac*(g1[i]-g2[i])
	}
	return e, grad, nil
}

// Evaluate runs the Gaussian quartet at the flat coordinates x and
// returns the objective energy (Hartree) and its gradient
// (Hartree/Å). At most two subprocesses run at once; mh goes first
// since it dominates the wall time.
func (ev *Evaluator) Evaluate(ctx context.Context, x []float64) (
	float64, []float64, error) {
	mol := geom.WithCoords(ev.Mol, x)

	// inputs are written serially before anything launches
	if err := ev.RL.WriteInput(mol, ev.Shell); err != nil {
		return 0, nil, err
	}
	calcs := []*gaussian.Calc{ev.MH, ev.ML}
	if ev.CI {
		calcs = append(calcs, ev.MG)
	}
	for _, c := range calcs {
		if err := c.WriteInput(mol, nil); err != nil {
			return 0, nil, err
		}
	}

	var rl, ml, mh, mg gaussian.Result
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	run := func(c *gaussian.Calc, dst *gaussian.Result) {
		g.Go(func() error {
			if err := c.Run(ctx); err != nil {
				return err
			}
			res, err := c.ReadOut()
			if err != nil {
				return err
			}
			*dst = res
			return nil
		})
	}
	run(ev.MH, &mh)
	run(ev.RL, &rl)
	run(ev.ML, &ml)
	if ev.CI {
		run(ev.MG, &mg)
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	combo, err := Combine(rl, ml, mh)
	if err != nil {
		return 0, nil, err
	}
	eOut := combo.Energy
	gOut := combo.Grad
	var penalty float64
	var penaltyGrad []float64
	if ev.CI {
		ground, err := Combine(rl, ml, mg)
		if err != nil {
			return 0, nil, err
		}
		penalty, penaltyGrad, err = Penalty(
			combo.Energy, ground.Energy,
			combo.Grad, ground.Grad,
			ev.Sigma, ev.Alpha)
		if err != nil {
			return 0, nil, err
		}
		eOut, gOut = penalty, penaltyGrad
	}

	ev.iter++
	ev.report(rl, ml, mh, combo, penalty, penaltyGrad)
	if ev.Log != nil {
		ev.Log.Infow("step evaluated",
			"iter", ev.iter,
			"energy_ht", eOut,
			"grad_norm", floats.Norm(gOut, 2),
		)
	}
	if err := ev.appendHistories(mol); err != nil {
		return 0, nil, err
	}
	return eOut, gOut, nil
}

func (ev *Evaluator) appendHistories(mol []geom.Atom) error {
	comment := fmt.Sprintf("iteration %d", ev.iter)
	err := xyz.AppendFile(
		filepath.Join(ev.HistoryDir, MolHistory), comment, mol)
	if err != nil {
		return err
	}
	cluster := append(append([]geom.Atom{}, mol...), ev.Shell...)
	return xyz.AppendFile(
		filepath.Join(ev.HistoryDir, ClusterHistory), comment, cluster)
}

// report writes the per-iteration block in eV, mirroring the layout
// long used by the job output files.
func (ev *Evaluator) report(rl, ml, mh, combo gaussian.Result,
	penalty float64, penaltyGrad []float64) {
	if ev.Report == nil {
		return
	}
	const toEv = gaussian.EvPerHartree
	w := ev.Report
	fmt.Fprint(w, "------------------------------\n")
	fmt.Fprintf(w, "Iteration: %d\n", ev.iter)
	fmt.Fprintf(w, "Real low energy: %30.8f eV\n", rl.Energy*toEv)
	fmt.Fprintf(w, "Model low energy: %29.8f eV\n", ml.Energy*toEv)
	fmt.Fprintf(w, "Model high energy: %28.8f eV\n", mh.Energy*toEv)
	fmt.Fprintf(w, "ONIOM Total energy: %27.8f eV\n", combo.Energy*toEv)
	fmt.Fprintf(w, "ONIOM SCF energy: %29.8f eV\n", combo.SCF*toEv)
	fmt.Fprintf(w, "Energy grad. norm: %28.8f eV/A\n",
		floats.Norm(combo.Grad, 2)*toEv)
	if ev.CI {
		fmt.Fprintf(w, "Penalty function value: %23.8f eV\n",
			penalty*toEv)
		fmt.Fprintf(w, "Penalty function grad. norm: %18.8f eV/A\n",
			floats.Norm(penaltyGrad, 2)*toEv)
	}
	fmt.Fprintf(w, "Gap: %43.8f eV\n", (combo.Energy-combo.SCF)*toEv)
}
