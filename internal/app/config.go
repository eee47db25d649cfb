package app

import (
	"errors"
	"fmt"
)

// Launch modes.
const (
	ModeLocal  = "local"
	ModeRender = "render"
	ModeSbatch = "sbatch"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	JobPath     string // hcl job files
	Mode        string // local, render or sbatch
	ModulesRoot string // root of the environment-module tree
	ResultsDir  string // where run records are written
	ScriptDir   string // where rendered sbatch scripts are written
	SbatchPath  string // sbatch binary override, empty means PATH lookup

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.JobPath == "" {
		return nil, errors.New("JobPath is a required configuration field and cannot be empty")
	}

	switch cfg.Mode {
	case ModeLocal, ModeRender, ModeSbatch:
	case "":
		cfg.Mode = ModeLocal
	default:
		return nil, fmt.Errorf("invalid mode %q: must be %q, %q or %q", cfg.Mode, ModeLocal, ModeRender, ModeSbatch)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	return &cfg, nil
}
