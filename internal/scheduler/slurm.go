package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/LocalToasty/STAMP/internal/utils"
)

// slurmMinAnyCombine is the first SLURM release supporting the "?" OR
// separator between dependency clauses.
const slurmMinAnyCombine = "v16.5.0"

// SlurmScheduler implements the Scheduler interface for SLURM
type SlurmScheduler struct {
	sbatchBin string
	jobIDRe   *regexp.Regexp

	anyCombineOnce sync.Once
	anyCombineOK   bool
}

// NewSlurmScheduler creates a new SLURM scheduler instance using sbatch from PATH
func NewSlurmScheduler() (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary("")
}

// NewSlurmSchedulerWithBinary creates a SLURM scheduler using an explicit sbatch path
func NewSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	return newSlurmSchedulerWithBinary(sbatchBin)
}

func newSlurmSchedulerWithBinary(sbatchBin string) (*SlurmScheduler, error) {
	binPath := sbatchBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("sbatch")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
	} else {
		if absPath, err := filepath.Abs(binPath); err == nil {
			binPath = absPath
		}
		info, err := os.Stat(binPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchedulerNotFound, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrSchedulerNotFound, binPath)
		}
	}

	return &SlurmScheduler{
		sbatchBin: binPath,
		jobIDRe:   regexp.MustCompile(`Submitted batch job (\d+)`),
	}, nil
}

// IsAvailable checks if SLURM is available and we're not inside a SLURM job
func (s *SlurmScheduler) IsAvailable() bool {
	if s.sbatchBin == "" {
		return false
	}

	// Check if we're already inside a SLURM job
	_, inJob := os.LookupEnv("SLURM_JOB_ID")
	return !inJob
}

// GetInfo returns information about the SLURM scheduler
func (s *SlurmScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("SLURM_JOB_ID")

	info := &SchedulerInfo{
		Type:      "SLURM",
		Binary:    s.sbatchBin,
		InJob:     inJob,
		Available: s.IsAvailable(),
	}

	// Try to get SLURM version
	if s.sbatchBin != "" {
		if version, err := s.getSlurmVersion(); err == nil {
			info.Version = version
		}
	}

	return info
}

// getSlurmVersion attempts to get the SLURM version
func (s *SlurmScheduler) getSlurmVersion() (string, error) {
	cmd := exec.Command(s.sbatchBin, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	// Parse version from output like "slurm 23.02.6"
	versionStr := strings.TrimSpace(string(output))
	parts := strings.Fields(versionStr)
	if len(parts) >= 2 {
		return parts[1], nil
	}

	return versionStr, nil
}

// normalizeSlurmVersion converts a SLURM version like "23.02.6" into a
// semver-comparable string ("v23.2.6"). SLURM zero-pads the minor release,
// which strict semver rejects.
func normalizeSlurmVersion(version string) string {
	parts := strings.SplitN(strings.TrimSpace(version), ".", 3)
	for i, p := range parts {
		trimmed := strings.TrimLeft(p, "0")
		if trimmed == "" {
			trimmed = "0"
		}
		parts[i] = trimmed
	}
	return "v" + strings.Join(parts, ".")
}

// supportsAnyCombine reports whether this SLURM release understands the "?"
// separator between dependency clauses. Unknown versions are assumed modern.
// The version probe runs once per process.
func (s *SlurmScheduler) supportsAnyCombine() bool {
	s.anyCombineOnce.Do(func() {
		s.anyCombineOK = true
		version, err := s.getSlurmVersion()
		if err != nil {
			return
		}
		normalized := normalizeSlurmVersion(version)
		if !semver.IsValid(normalized) {
			return
		}
		s.anyCombineOK = semver.Compare(normalized, slurmMinAnyCombine) >= 0
	})
	return s.anyCombineOK
}

// renderDependency builds the sbatch --dependency argument value.
// CombineAll joins job IDs into one clause ("afterany:1:2"), so the job
// waits for every listed ID. CombineAny emits one clause per ID separated
// by "?" ("afterany:1?afterany:2"), making the job eligible once any one
// dependency is satisfied.
func (s *SlurmScheduler) renderDependency(dep *Dependency) (string, error) {
	if err := dep.Validate(); err != nil {
		return "", err
	}

	switch dep.Combine {
	case CombineAll:
		return fmt.Sprintf("%s:%s", dep.Type, strings.Join(dep.JobIDs, ":")), nil
	case CombineAny:
		clauses := make([]string, len(dep.JobIDs))
		for i, id := range dep.JobIDs {
			clauses[i] = fmt.Sprintf("%s:%s", dep.Type, id)
		}
		return strings.Join(clauses, "?"), nil
	default:
		return "", NewDependencyError("SLURM", dep, ErrUnsupportedDependency)
	}
}

// Submit submits a job script to SLURM, optionally chained on a dependency set
func (s *SlurmScheduler) Submit(scriptPath string, dep *Dependency) (string, error) {
	if _, err := os.Stat(scriptPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, scriptPath)
	}

	args := []string{scriptPath}
	if dep != nil {
		depArg, err := s.renderDependency(dep)
		if err != nil {
			return "", err
		}
		if dep.Combine == CombineAny && len(dep.JobIDs) > 1 && !s.supportsAnyCombine() {
			utils.PrintWarning("SLURM older than %s may reject OR-combined dependencies", slurmMinAnyCombine)
		}
		args = append([]string{"--dependency=" + depArg}, args...)
	}

	utils.PrintDebug("Executing: %s %s", s.sbatchBin, strings.Join(args, " "))
	cmd := exec.Command(s.sbatchBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewSubmissionError("SLURM", filepath.Base(scriptPath), string(output), err)
	}

	return s.parseJobID(string(output))
}

// parseJobID extracts the job ID from sbatch output.
func (s *SlurmScheduler) parseJobID(output string) (string, error) {
	matches := s.jobIDRe.FindStringSubmatch(output)
	if len(matches) < 2 || matches[1] == "" {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, strings.TrimSpace(output))
	}
	return matches[1], nil
}
