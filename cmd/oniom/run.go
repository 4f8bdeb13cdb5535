package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcmerritt/oniom/internal/config"
	"github.com/tcmerritt/oniom/internal/gaussian"
	"github.com/tcmerritt/oniom/internal/geom"
	"github.com/tcmerritt/oniom/internal/oniom"
	"github.com/tcmerritt/oniom/internal/xyz"
)

const timeFormat = "2006-01-02 15:04:05"

func runCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "minimise the ONIOM energy or crossing penalty of the embedded molecule",
		Long: `run drives Gaussian through repeated rl/ml/mh (and mg, when
state_crossing is set) calculations, combining their energies and
gradients and feeding them to an LBFGS minimiser. The calculation
templates rl.template, ml.template, mh.template, and mg.template must
exist in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimization(cmd, configFile)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "oniom.toml",
		"job configuration file")
	return cmd
}

func runOptimization(cmd *cobra.Command, configFile string) error {
	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}
	molFrames, err := xyz.ReadFile(conf.MolFile)
	if err != nil {
		return err
	}
	mol := molFrames[0]
	shellFrames, err := xyz.ReadFile(conf.ShellFile)
	if err != nil {
		return err
	}
	shell := shellFrames[0]
	logger.Infow("job loaded",
		"molecule_atoms", len(mol),
		"shell_charges", len(shell),
		"state_crossing", conf.StateCrossing,
	)

	// clear histories left over from the last job
	os.Remove(oniom.MolHistory)
	os.Remove(oniom.ClusterHistory)

	report, err := os.Create(conf.OutFile)
	if err != nil {
		return err
	}
	defer report.Close()

	newCalc := func(name string) (*gaussian.Calc, error) {
		c, err := gaussian.NewCalc(name, conf.GaussianCmd, ".")
		if err != nil {
			return nil, err
		}
		c.Charge = conf.Charge
		c.Spin = conf.Spin
		return c, nil
	}
	ev := &oniom.Evaluator{
		Mol:    mol,
		Shell:  shell,
		CI:     conf.StateCrossing,
		Sigma:  conf.Sigma,
		Alpha:  conf.Alpha,
		Report: report,
		Log:    logger,
	}
	names := map[string]**gaussian.Calc{
		"rl": &ev.RL, "ml": &ev.ML, "mh": &ev.MH,
	}
	if conf.StateCrossing {
		names["mg"] = &ev.MG
	}
	for name, dst := range names {
		if *dst, err = newCalc(name); err != nil {
			return err
		}
	}

	start := time.Now()
	fmt.Fprintf(report, "STARTING TIME: %s\n", start.Format(timeFormat))
	res, err := oniom.Minimize(cmd.Context(), ev, geom.Flatten(mol),
		conf.MaxIter, conf.GradTol)
	if err != nil {
		return err
	}
	opt := geom.WithCoords(mol, res.X)
	if err := xyz.WriteFile("mol.opt.xyz",
		fmt.Sprintf("optimized, E = %.8f Ht", res.F), opt); err != nil {
		return err
	}
	logger.Infow("minimisation finished",
		"status", res.Status.String(),
		"evaluations", res.Evaluations,
		"energy_ht", res.F,
	)
	end := time.Now()
	fmt.Fprint(report, "DONE\n")
	fmt.Fprintf(report, "ELAPSED TIME: %s\n", end.Sub(start).Round(time.Second))
	fmt.Fprintf(report, "ENDING TIME: %s\n", end.Format(timeFormat))
	return nil
}
