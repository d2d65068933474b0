package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrSchedulerNotAvailable indicates the scheduler is not available
	ErrSchedulerNotAvailable = errors.New("scheduler is not available")

	// ErrSchedulerNotFound indicates the scheduler binary was not found
	ErrSchedulerNotFound = errors.New("scheduler binary not found in PATH")

	// ErrScriptNotFound indicates the job script file was not found
	ErrScriptNotFound = errors.New("job script not found")

	// ErrJobIDParseFailed indicates parsing job ID from output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")

	// ErrInvalidJobID indicates a job ID is empty or malformed
	ErrInvalidJobID = errors.New("invalid job ID")

	// ErrEmptyDependency indicates a dependency was built from no job IDs
	ErrEmptyDependency = errors.New("dependency set is empty")

	// ErrUnsupportedDependency indicates the backend cannot express the
	// requested dependency combination
	ErrUnsupportedDependency = errors.New("dependency mode not supported by scheduler")
)

// SubmissionError represents an error during job submission
type SubmissionError struct {
	Scheduler string // Scheduler name
	Script    string // Job script that was being submitted
	Output    string // Scheduler output
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission failed for %s: %v\nOutput: %s",
			e.Scheduler, e.Script, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission failed for %s: %v",
		e.Scheduler, e.Script, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// DependencyError represents an error rendering a dependency expression
type DependencyError struct {
	Scheduler string // Scheduler name
	Dep       *Dependency
	Err       error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s cannot express dependency %s/%s over %d jobs: %v",
		e.Scheduler, e.Dep.Type, e.Dep.Combine, len(e.Dep.JobIDs), e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler string, script string, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Script:    script,
		Output:    output,
		Err:       err,
	}
}

// NewDependencyError creates a new DependencyError
func NewDependencyError(scheduler string, dep *Dependency, err error) *DependencyError {
	return &DependencyError{
		Scheduler: scheduler,
		Dep:       dep,
		Err:       err,
	}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}

// IsDependencyError checks if an error is a DependencyError
func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
