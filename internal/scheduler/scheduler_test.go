package scheduler

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFakeBinary creates an executable file standing in for a scheduler binary.
func writeFakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create fake binary: %v", err)
	}
	return path
}

func TestDetectSchedulerWithBinaryInfersType(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		binary   string
		wantType string
	}{
		{"sbatch", "SLURM"},
		{"qsub", "PBS"},
		{"sbatch-22.05", "SLURM"}, // unknown names default to SLURM
	}

	for _, tt := range tests {
		t.Run(tt.binary, func(t *testing.T) {
			path := writeFakeBinary(t, tmpDir, tt.binary)
			sched, err := DetectSchedulerWithBinary(path)
			if err != nil {
				t.Fatalf("DetectSchedulerWithBinary(%s) failed: %v", path, err)
			}
			if got := sched.GetInfo().Type; got != tt.wantType {
				t.Errorf("scheduler type = %q; want %q", got, tt.wantType)
			}
		})
	}
}

func TestDetectSchedulerWithBinaryMissingFile(t *testing.T) {
	_, err := DetectSchedulerWithBinary(filepath.Join(t.TempDir(), "sbatch"))
	if err == nil {
		t.Fatal("DetectSchedulerWithBinary succeeded for a missing binary")
	}
}

func TestDetectSchedulerWithBinaryRejectsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dirPath := filepath.Join(tmpDir, "sbatch")
	if err := os.Mkdir(dirPath, 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := DetectSchedulerWithBinary(dirPath); err == nil {
		t.Fatal("DetectSchedulerWithBinary accepted a directory")
	}
}

func TestIsInsideJob(t *testing.T) {
	t.Setenv("SLURM_JOB_ID", "")
	os.Unsetenv("SLURM_JOB_ID")
	t.Setenv("PBS_JOBID", "")
	os.Unsetenv("PBS_JOBID")

	if IsInsideJob() {
		t.Error("IsInsideJob() = true with no scheduler env vars set")
	}

	t.Setenv("SLURM_JOB_ID", "12345")
	if !IsInsideJob() {
		t.Error("IsInsideJob() = false with SLURM_JOB_ID set")
	}
}

func TestSlurmNotAvailableInsideJob(t *testing.T) {
	t.Setenv("SLURM_JOB_ID", "12345")
	slurm := newTestSlurmScheduler()
	if slurm.IsAvailable() {
		t.Error("SLURM reported available while inside a SLURM job")
	}
	info := slurm.GetInfo()
	if !info.InJob {
		t.Error("GetInfo().InJob = false while inside a SLURM job")
	}
}

func TestActiveSchedulerRegistry(t *testing.T) {
	defer ClearActiveScheduler()

	slurm := newTestSlurmScheduler()
	SetActiveScheduler(slurm)
	if ActiveScheduler() != Scheduler(slurm) {
		t.Error("ActiveScheduler did not return the configured instance")
	}

	ClearActiveScheduler()
	if ActiveScheduler() != nil {
		t.Error("ClearActiveScheduler did not reset the registry")
	}
}
