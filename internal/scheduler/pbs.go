package scheduler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// PbsScheduler implements the Scheduler interface for PBS/Torque
type PbsScheduler struct {
	qsubBin string
}

// NewPbsScheduler creates a new PBS scheduler instance using qsub from PATH
func NewPbsScheduler() (*PbsScheduler, error) {
	return newPbsSchedulerWithBinary("")
}

// NewPbsSchedulerWithBinary creates a PBS scheduler using an explicit qsub path
func NewPbsSchedulerWithBinary(qsubBin string) (*PbsScheduler, error) {
	return newPbsSchedulerWithBinary(qsubBin)
}

func newPbsSchedulerWithBinary(qsubBin string) (*PbsScheduler, error) {
	binPath := qsubBin
	if binPath == "" {
		var err error
		binPath, err = exec.LookPath("qsub")
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

	return &PbsScheduler{qsubBin: binPath}, nil
}

// IsAvailable checks if PBS is available and we're not inside a PBS job
func (p *PbsScheduler) IsAvailable() bool {
	if p.qsubBin == "" {
		return false
	}
	_, inJob := os.LookupEnv("PBS_JOBID")
	return !inJob
}

// GetInfo returns information about the PBS scheduler
func (p *PbsScheduler) GetInfo() *SchedulerInfo {
	_, inJob := os.LookupEnv("PBS_JOBID")

	info := &SchedulerInfo{
		Type:      "PBS",
		Binary:    p.qsubBin,
		InJob:     inJob,
		Available: p.IsAvailable(),
	}

	if p.qsubBin != "" {
		if version, err := p.getPbsVersion(); err == nil {
			info.Version = version
		}
	}

	return info
}

// getPbsVersion attempts to get the PBS version
func (p *PbsScheduler) getPbsVersion() (string, error) {
	cmd := exec.Command(p.qsubBin, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}

	// Parse version from output like "pbs_version = 2021.1.2" or "Version: 6.1.3"
	versionStr := strings.TrimSpace(string(output))
	if idx := strings.LastIndexAny(versionStr, "=:"); idx >= 0 {
		return strings.TrimSpace(versionStr[idx+1:]), nil
	}
	return versionStr, nil
}

// renderDependency builds the qsub -W depend= attribute value.
// PBS only supports AND semantics over a dependency list; CombineAny is
// rejected rather than silently downgraded to a stricter wait.
func (p *PbsScheduler) renderDependency(dep *Dependency) (string, error) {
	if err := dep.Validate(); err != nil {
		return "", err
	}
	if dep.Combine == CombineAny && len(dep.JobIDs) > 1 {
		return "", NewDependencyError("PBS", dep, ErrUnsupportedDependency)
	}
	return fmt.Sprintf("depend=%s:%s", dep.Type, strings.Join(dep.JobIDs, ":")), nil
}

// Submit submits a job script to PBS, optionally chained on a dependency set
func (p *PbsScheduler) Submit(scriptPath string, dep *Dependency) (string, error) {
	if _, err := os.Stat(scriptPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrScriptNotFound, scriptPath)
	}

	var args []string
	if dep != nil {
		depAttr, err := p.renderDependency(dep)
		if err != nil {
			return "", err
		}
		args = append(args, "-W", depAttr)
	}
	args = append(args, scriptPath)

	cmd := exec.Command(p.qsubBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", NewSubmissionError("PBS", filepath.Base(scriptPath), string(output), err)
	}

	return parsePbsJobID(string(output))
}

// parsePbsJobID extracts the job ID from qsub output.
// qsub prints the full job ID (e.g., "12345.pbsserver") as its only output line.
func parsePbsJobID(output string) (string, error) {
	jobID := strings.TrimSpace(output)
	if idx := strings.IndexByte(jobID, '\n'); idx >= 0 {
		jobID = strings.TrimSpace(jobID[:idx])
	}
	if jobID == "" || strings.ContainsAny(jobID, " \t") {
		return "", fmt.Errorf("%w: %s", ErrJobIDParseFailed, strings.TrimSpace(output))
	}
	return jobID, nil
}
