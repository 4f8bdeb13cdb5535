// Package config loads the TOML job description for an optimization
// run.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config collects everything an optimization job needs. Zero values
// never survive Load; the defaults below fill anything the file
// leaves unset.
type Config struct {
	MolFile       string  `toml:"mol_file"`
	ShellFile     string  `toml:"shell_file"`
	OutFile       string  `toml:"out_file"`
	StateCrossing bool    `toml:"state_crossing"`
	Sigma         float64 `toml:"sigma"`
	Alpha         float64 `toml:"alpha"`
	GaussianCmd   string  `toml:"gaussian_cmd"`
	MaxIter       int     `toml:"max_iter"`
	GradTol       float64 `toml:"gradient_tolerance"`
	Charge        int     `toml:"charge"`
	Spin          int     `toml:"spin"`
}

// Default returns the configuration used when the file sets nothing.
func Default() Config {
	return Config{
		MolFile:     "mol.init.xyz",
		ShellFile:   "shell.xyz",
		OutFile:     "oniom.out",
		Sigma:       3.5,
		Alpha:       0.02,
		GaussianCmd: "g16",
		MaxIter:     300,
		GradTol:     1e-5,
		Charge:      0,
		Spin:        1,
	}
}

// Load reads the named TOML file over the defaults. Keys the Config
// does not know are an error rather than a silent typo.
func Load(filename string) (Config, error) {
	conf := Default()
	meta, err := toml.DecodeFile(filename, &conf)
	if err != nil {
		return conf, fmt.Errorf("config: %s: %w", filename, err)
	}
	if und := meta.Undecoded(); len(und) > 0 {
		return conf, fmt.Errorf(
			"config: %s: unknown key %q", filename, und[0])
	}
	return conf, nil
}
