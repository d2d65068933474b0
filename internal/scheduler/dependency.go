package scheduler

import "fmt"

// DependencyType selects the terminal state the previous jobs must reach.
type DependencyType string

const (
	// DepAfterAny triggers once a dependency job terminates, success or failure.
	DepAfterAny DependencyType = "afterany"
	// DepAfterOK triggers only once a dependency job completes successfully.
	DepAfterOK DependencyType = "afterok"
)

// CombineMode selects how multiple dependency jobs are combined.
type CombineMode string

const (
	// CombineAll makes the job wait for every listed dependency.
	CombineAll CombineMode = "all"
	// CombineAny makes the job eligible once any one listed dependency satisfies
	// the dependency type. The original submit scripts chained rounds this way,
	// fanning out the next round as soon as the cluster frees one slot.
	CombineAny CombineMode = "any"
)

// Dependency describes the jobs a submission must wait on.
// It is built from one round's job IDs, rendered once into a
// scheduler-specific argument, and discarded.
type Dependency struct {
	Type    DependencyType
	Combine CombineMode
	JobIDs  []string
}

// NewDependency builds a validated Dependency over the given job IDs.
func NewDependency(depType DependencyType, combine CombineMode, jobIDs []string) (*Dependency, error) {
	dep := &Dependency{
		Type:    depType,
		Combine: combine,
		JobIDs:  jobIDs,
	}
	if err := dep.Validate(); err != nil {
		return nil, err
	}
	return dep, nil
}

// Validate rejects dependency sets that would produce malformed scheduler
// arguments. An empty or blank job ID means a previous submission result
// was never validated and must not be threaded into the chain.
func (d *Dependency) Validate() error {
	if len(d.JobIDs) == 0 {
		return ErrEmptyDependency
	}
	for _, id := range d.JobIDs {
		if id == "" {
			return fmt.Errorf("%w: blank job ID in dependency set", ErrInvalidJobID)
		}
	}
	switch d.Type {
	case DepAfterAny, DepAfterOK:
	default:
		return fmt.Errorf("unknown dependency type %q", d.Type)
	}
	switch d.Combine {
	case CombineAll, CombineAny:
	default:
		return fmt.Errorf("unknown combine mode %q", d.Combine)
	}
	return nil
}
