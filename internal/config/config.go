package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const VERSION = "0.3.1"

// DefaultModels lists the feature extractors jobs are pre-generated for.
var DefaultModels = []string{
	"virchow2", "mahmood-uni", "mahmood-conch", "h_optimus_0",
	"gigapath", "dinoSSL", "ctranspath",
}

// DefaultCohorts lists the TCGA cohorts jobs are pre-generated for.
var DefaultCohorts = []string{
	"GBM", "LGG", "BLCA", "LUAD", "BRCA", "DLBC", "CHOL", "ESCA", "CRC", "CESC",
	"UCS", "UCEC", "THYM", "THCA", "TGCT", "STAD", "SKCM", "SARC", "PRAD", "PCPG",
	"PAAD", "OV", "MESO", "LUSC", "LIHC", "KIRP", "KIRC", "KICH", "HNSC",
}

// Config holds global application settings
type Config struct {
	Debug     bool
	DryRun    bool
	Version   string
	JobsDir   string

	SchedulerBin string

	Models        []string
	Cohorts       []string
	Magnification string
	JobsPerRound  int
	Rounds        int

	DependencyPolicy string // "any" or "all"
	DependencyType   string // "afterany" or "afterok"
	SubmitRetries    int
}

// Global holds the singleton configuration instance
var Global Config

func LoadDefaults(executablePath string) {
	programDir := filepath.Dir(executablePath)
	baseDir := filepath.Dir(programDir)

	// Developer Mode Check
	if _, err := os.Stat(filepath.Join(baseDir, "jobs")); os.IsNotExist(err) {
		cwd, _ := os.Getwd()
		baseDir = cwd
	}

	Global = Config{
		Debug:   false,
		DryRun:  false,
		Version: VERSION,
		JobsDir: filepath.Join(baseDir, "jobs"),

		Models:        append([]string(nil), DefaultModels...),
		Cohorts:       append([]string(nil), DefaultCohorts...),
		Magnification: "20x",
		JobsPerRound:  1,
		Rounds:        1,

		DependencyPolicy: "any",
		DependencyType:   "afterany",
		SubmitRetries:    0,
	}
}

// Validate checks the configuration for values the submitter cannot work with.
func (c *Config) Validate() error {
	if c.JobsPerRound <= 0 {
		return fmt.Errorf("jobs per round must be positive, got %d", c.JobsPerRound)
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	if len(c.Cohorts) == 0 {
		return fmt.Errorf("at least one cohort is required")
	}
	if c.Magnification == "" {
		return fmt.Errorf("magnification must not be empty")
	}
	switch c.DependencyPolicy {
	case "any", "all":
	default:
		return fmt.Errorf("unknown dependency policy %q (want \"any\" or \"all\")", c.DependencyPolicy)
	}
	switch c.DependencyType {
	case "afterany", "afterok":
	default:
		return fmt.Errorf("unknown dependency type %q (want \"afterany\" or \"afterok\")", c.DependencyType)
	}
	if c.SubmitRetries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.SubmitRetries)
	}
	return nil
}
