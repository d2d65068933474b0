// Package chain submits rounds of pre-generated cluster jobs, linking
// consecutive rounds with scheduler dependency chains.
package chain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/LocalToasty/STAMP/internal/scheduler"
	"github.com/LocalToasty/STAMP/internal/utils"
)

// Runner drives chained submission for a set of pairings. For every pairing
// it submits Rounds sequential groups of JobsPerRound jobs; each job in round
// N+1 carries a dependency expression over the full set of job IDs produced
// in round N. Round 1 submits unconditionally.
type Runner struct {
	Scheduler     scheduler.Scheduler
	JobsDir       string
	Magnification string
	JobsPerRound  int
	Rounds        int
	Policy        scheduler.CombineMode
	DepType       scheduler.DependencyType
	Retries       int  // extra submission attempts per job on transient failure
	DryRun        bool // resolve and log without calling the scheduler

	// newBackOff overrides the retry schedule; nil means the default
	// exponential schedule.
	newBackOff func() backoff.BackOff
}

// PairingResult records the outcome of one (model, cohort) pairing.
type PairingResult struct {
	Pairing Pairing
	JobIDs  []string // every job ID submitted for this pairing, in order
	Err     error    // non-nil if the pairing was aborted
}

// Summary aggregates the outcome of a Run.
type Summary struct {
	Submitted int // total submission calls that succeeded
	Failed    int // pairings aborted after a submission failure
	Results   []PairingResult
}

// validate rejects runner settings the chain cannot be built from.
func (r *Runner) validate() error {
	if r.Scheduler == nil && !r.DryRun {
		return scheduler.ErrSchedulerNotAvailable
	}
	if r.JobsPerRound <= 0 {
		return fmt.Errorf("jobs per round must be positive, got %d", r.JobsPerRound)
	}
	if r.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", r.Rounds)
	}
	if r.Magnification == "" {
		return fmt.Errorf("magnification must not be empty")
	}
	return nil
}

// Run processes every pairing independently. A submission failure aborts the
// current pairing (a broken chain must not thread invalid IDs forward) but
// does not stop the remaining pairings. The returned error is non-nil only
// for configuration problems; per-pairing failures are reported in the
// Summary.
func (r *Runner) Run(pairings []Pairing) (*Summary, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if len(pairings) == 0 {
		return nil, fmt.Errorf("no pairings to submit")
	}

	summary := &Summary{}
	for _, pairing := range pairings {
		result := r.runPairing(pairing)
		summary.Submitted += len(result.JobIDs)
		if result.Err != nil {
			summary.Failed++
		}
		summary.Results = append(summary.Results, result)
	}
	return summary, nil
}

// runPairing submits the full round chain for one pairing.
func (r *Runner) runPairing(pairing Pairing) PairingResult {
	result := PairingResult{Pairing: pairing}
	scriptPath := ScriptPath(r.JobsDir, pairing.Model, pairing.Cohort, r.Magnification)

	utils.PrintMessage("Submitting %s / %s (%d round(s) x %d job(s)): %s",
		utils.StyleName(pairing.Model), utils.StyleName(pairing.Cohort),
		r.Rounds, r.JobsPerRound, utils.StylePath(scriptPath))

	var previousJobIDs []string
	for round := 1; round <= r.Rounds; round++ {
		var dep *scheduler.Dependency
		if len(previousJobIDs) > 0 {
			var err error
			dep, err = scheduler.NewDependency(r.DepType, r.Policy, previousJobIDs)
			if err != nil {
				result.Err = fmt.Errorf("round %d: %w", round, err)
				return result
			}
		}

		currentJobIDs := make([]string, 0, r.JobsPerRound)
		for jobNum := 1; jobNum <= r.JobsPerRound; jobNum++ {
			jobID, err := r.submitOnce(scriptPath, dep, round, jobNum)
			if err != nil {
				utils.PrintError("%s/%s round %d job %d: %v",
					pairing.Model, pairing.Cohort, round, jobNum, err)
				result.Err = err
				return result
			}
			currentJobIDs = append(currentJobIDs, jobID)
			result.JobIDs = append(result.JobIDs, jobID)
		}

		if dep != nil {
			utils.PrintDebug("Round %d chained on %s (%s/%s)",
				round, strings.Join(previousJobIDs, ","), r.DepType, r.Policy)
		}
		previousJobIDs = currentJobIDs
	}

	utils.PrintSuccess("%s/%s: %d job(s) submitted",
		pairing.Model, pairing.Cohort, len(result.JobIDs))
	return result
}

// submitOnce performs a single submission call, retrying transient failures
// when Retries is set. Missing scripts and unexpressible dependencies are
// permanent: retrying cannot fix them.
func (r *Runner) submitOnce(scriptPath string, dep *scheduler.Dependency, round, jobNum int) (string, error) {
	if r.DryRun {
		jobID := fmt.Sprintf("dry-%d-%d", round, jobNum)
		if dep != nil {
			utils.PrintMessage("[dry-run] would submit %s round %d job %d (%s over %s)",
				utils.StylePath(scriptPath), round, jobNum, dep.Type, strings.Join(dep.JobIDs, ","))
		} else {
			utils.PrintMessage("[dry-run] would submit %s round %d job %d",
				utils.StylePath(scriptPath), round, jobNum)
		}
		return jobID, nil
	}

	var jobID string
	operation := func() error {
		id, err := r.Scheduler.Submit(scriptPath, dep)
		if err != nil {
			if errors.Is(err, scheduler.ErrScriptNotFound) || scheduler.IsDependencyError(err) {
				return backoff.Permanent(err)
			}
			utils.PrintWarning("Submission attempt failed, may retry: %v", err)
			return err
		}
		jobID = id
		return nil
	}

	newBackOff := r.newBackOff
	if newBackOff == nil {
		newBackOff = newSubmitBackOff
	}
	policy := backoff.WithMaxRetries(newBackOff(), uint64(r.Retries))
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return jobID, nil
}

// newSubmitBackOff returns the retry schedule for a single submission call.
func newSubmitBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 5 * time.Minute
	return b
}
