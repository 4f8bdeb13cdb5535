package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	got, err := Load("testdata/good.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		MolFile:       "azulene.xyz",
		ShellFile:     "shell.xyz",
		OutFile:       "oniom.out",
		StateCrossing: true,
		Sigma:         3.5,
		Alpha:         0.02,
		GaussianCmd:   "g09",
		MaxIter:       50,
		GradTol:       1e-5,
		Charge:        0,
		Spin:          1,
	}
	if got != want {
		t.Errorf("got %+v, wanted %+v", got, want)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load("testdata/unknown.toml")
	if err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.toml")
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}
