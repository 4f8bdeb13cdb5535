// Command oniom optimizes the geometry of a molecule embedded in a
// cluster of point charges by combining Gaussian calculations in a
// subtractive QM/QM' scheme, and ships two crystal utilities: unique
// dimer selection and point-charge fitting against a sampled
// electrostatic potential.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const Version = "0.4.1"

var logger *zap.SugaredLogger

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	logger = zl.Sugar()

	root := &cobra.Command{
		Use:           "oniom",
		Short:         "multiscale optimization of molecules in crystal environments",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), dimersCmd(), fitchargesCmd())
	if err := root.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
