package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tcmerritt/oniom/internal/esp"
	"github.com/tcmerritt/oniom/internal/geom"
	"github.com/tcmerritt/oniom/internal/xyz"
)

func fitchargesCmd() *cobra.Command {
	var (
		cubeFile   string
		chargeFile string
		fixedFile  string
		outFile    string
		inner      float64
		outer      float64
	)
	cmd := &cobra.Command{
		Use:   "fitcharges",
		Short: "fit point charges against a sampled electrostatic potential",
		Long: `fitcharges reads an electrostatic potential on a cube grid,
keeps the points in vdW-scaled shells around the adjustable charges,
and solves the least-squares correction that makes the charges
reproduce the potential there. Charge files are xyz files with a
fourth, charge column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFitCharges(cubeFile, chargeFile, fixedFile,
				outFile, inner, outer)
		},
	}
	cmd.Flags().StringVar(&cubeFile, "cube", "esp.cube",
		"cube file carrying the sampled potential")
	cmd.Flags().StringVar(&chargeFile, "charges", "charges.xyz",
		"adjustable charges to fit")
	cmd.Flags().StringVar(&fixedFile, "fixed", "",
		"charges held fixed during the fit")
	cmd.Flags().StringVar(&outFile, "out", "fitted.xyz",
		"where the corrected charges go")
	cmd.Flags().Float64Var(&inner, "inner", 1.4,
		"inner shell radius in multiples of the vdW radius")
	cmd.Flags().Float64Var(&outer, "outer", 2.0,
		"outer shell radius in multiples of the vdW radius")
	return cmd
}

func runFitCharges(cubeFile, chargeFile, fixedFile, outFile string,
	inner, outer float64) error {
	grid, _, err := esp.ReadCubeFile(cubeFile)
	if err != nil {
		return err
	}
	adjust, err := xyz.ReadLast(chargeFile)
	if err != nil {
		return err
	}
	var fixed []geom.Atom
	if fixedFile != "" {
		if fixed, err = xyz.ReadLast(fixedFile); err != nil {
			return err
		}
	}
	samples, err := esp.ShellRegion(grid, adjust, inner, outer)
	if err != nil {
		return err
	}
	logger.Infow("sampling region built",
		"grid_points", len(grid.Points),
		"samples", len(samples),
		"adjustable", len(adjust),
		"fixed", len(fixed),
	)
	fitted, resid, err := esp.Fit(adjust, fixed, samples)
	if err != nil {
		return err
	}
	var total float64
	for _, q := range fitted {
		total += q.Charge
	}
	fmt.Printf("fitted %d charges over %d samples\n",
		len(fitted), len(samples))
	fmt.Printf("residual norm: %.6e\n", resid)
	fmt.Printf("total charge: %.6f\n", total)
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	comment := fmt.Sprintf("fitted against %s, residual %.6e",
		cubeFile, resid)
	return xyz.WriteCharges(f, comment, fitted)
}
