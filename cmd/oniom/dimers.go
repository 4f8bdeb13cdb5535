package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcmerritt/oniom/internal/dimer"
	"github.com/tcmerritt/oniom/internal/geom"
	"github.com/tcmerritt/oniom/internal/xyz"
)

func dimersCmd() *cobra.Command {
	var (
		bond     float64
		dist     float64
		criteria string
		cov      bool
	)
	cmd := &cobra.Command{
		Use:   "dimers <input.xyz>",
		Short: "select the unique molecular dimers out of a structure",
		Long: `dimers partitions the last frame of the input into molecules by
bond network, pairs them into dimers by centroid distance (c),
shortest intermolecular atomic distance (a), or van der Waals contact
(vdw), and writes one file per geometrically distinct dimer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDimers(args[0], bond, dist, criteria, cov)
		},
	}
	cmd.Flags().Float64VarP(&bond, "bond", "b", 1.6,
		"maximum distance that counts as a bond")
	cmd.Flags().BoolVar(&cov, "cov", false,
		"detect bonds from covalent radii instead of --bond")
	cmd.Flags().Float64VarP(&dist, "dist", "d", 7,
		"distance criterion defining a dimer")
	cmd.Flags().StringVarP(&criteria, "type", "t", "c",
		"dimer criterion: c, a, or vdw")
	return cmd
}

func runDimers(input string, bond, dist float64, criteria string, cov bool) error {
	atoms, err := xyz.ReadLast(input)
	if err != nil {
		return err
	}
	fmt.Printf("%d atoms\n", len(atoms))

	var mols [][]geom.Atom
	if cov {
		mols, err = dimer.MoleculesCov(atoms)
		if err != nil {
			return err
		}
		fmt.Printf("%d molecules by covalent radii\n", len(mols))
	} else {
		mols = dimer.Molecules(atoms, bond)
		fmt.Printf("%d molecules with max bond length %g\n",
			len(mols), bond)
	}

	uniq, total, err := dimer.Select(mols, dist, criteria)
	if err != nil {
		return err
	}
	fmt.Printf("%d dimers generated, %d unique\n", total, len(uniq))
	for i, u := range uniq {
		fmt.Printf("dimer %d: %d/%d (%.0f%%)\n",
			i, u.Count, total, 100*float64(u.Count)/float64(total))
	}

	base := strings.TrimSuffix(input, ".xyz")
	for i, u := range uniq {
		outfile := fmt.Sprintf("%s_dimer_%d.xyz", base, i)
		comment := fmt.Sprintf("dimer %d of %s, %d occurrences",
			i, input, u.Count)
		if err := xyz.WriteFile(outfile, comment, u.Atoms); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outfile)
	}
	return nil
}
