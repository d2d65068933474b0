package chain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/LocalToasty/STAMP/internal/scheduler"
)

// submission records one Submit call made against the fake scheduler.
type submission struct {
	script string
	dep    *scheduler.Dependency
}

// fakeScheduler implements scheduler.Scheduler, handing out sequential job
// IDs and recording every call.
type fakeScheduler struct {
	calls  []submission
	nextID int
	// failOn maps 1-based call numbers to the error to return.
	failOn map[int]error
	// failCount makes the first N calls fail transiently (for retry tests).
	failCount int
}

func (f *fakeScheduler) IsAvailable() bool { return true }

func (f *fakeScheduler) GetInfo() *scheduler.SchedulerInfo {
	return &scheduler.SchedulerInfo{Type: "FAKE", Available: true}
}

func (f *fakeScheduler) Submit(scriptPath string, dep *scheduler.Dependency) (string, error) {
	call := len(f.calls) + 1
	f.calls = append(f.calls, submission{script: scriptPath, dep: dep})
	if err, ok := f.failOn[call]; ok {
		return "", err
	}
	if f.failCount > 0 {
		f.failCount--
		return "", scheduler.NewSubmissionError("FAKE", scriptPath, "socket timed out", errors.New("exit status 1"))
	}
	f.nextID++
	return fmt.Sprintf("%d", 1000+f.nextID), nil
}

func newTestRunner(sched scheduler.Scheduler, jobsPerRound, rounds int) *Runner {
	return &Runner{
		Scheduler:     sched,
		JobsDir:       "/cluster/jobs",
		Magnification: "20x",
		JobsPerRound:  jobsPerRound,
		Rounds:        rounds,
		Policy:        scheduler.CombineAny,
		DepType:       scheduler.DepAfterAny,
		// No waiting between attempts in tests.
		newBackOff: func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
}

func TestRunSubmitsRoundsTimesJobsPerPairing(t *testing.T) {
	tests := []struct {
		name         string
		models       []string
		cohorts      []string
		jobsPerRound int
		rounds       int
	}{
		{"single pairing 2x2", []string{"m1"}, []string{"c1"}, 2, 2},
		{"two models three cohorts", []string{"virchow2", "ctranspath"}, []string{"BRCA", "LUAD", "GBM"}, 3, 2},
		{"one job one round", []string{"gigapath"}, []string{"OV"}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeScheduler{}
			runner := newTestRunner(fake, tt.jobsPerRound, tt.rounds)

			summary, err := runner.Run(Product(tt.models, tt.cohorts))
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			wantCalls := len(tt.models) * len(tt.cohorts) * tt.jobsPerRound * tt.rounds
			if len(fake.calls) != wantCalls {
				t.Errorf("submission calls = %d; want %d", len(fake.calls), wantCalls)
			}
			if summary.Submitted != wantCalls {
				t.Errorf("Submitted = %d; want %d", summary.Submitted, wantCalls)
			}
			if summary.Failed != 0 {
				t.Errorf("Failed = %d; want 0", summary.Failed)
			}
		})
	}
}

func TestRunFirstRoundCarriesNoDependency(t *testing.T) {
	fake := &fakeScheduler{}
	runner := newTestRunner(fake, 3, 2)

	if _, err := runner.Run(Product([]string{"m1"}, []string{"c1"})); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if fake.calls[i].dep != nil {
			t.Errorf("round 1 call %d carried dependency %+v; want none", i+1, fake.calls[i].dep)
		}
	}
	for i := 3; i < 6; i++ {
		if fake.calls[i].dep == nil {
			t.Errorf("round 2 call %d carried no dependency", i+1)
		}
	}
}

func TestRunChainsRoundsOnPreviousJobIDs(t *testing.T) {
	// Spec example: one pairing, jobsPerRound=2, rounds=2 gives 4 calls;
	// calls 1-2 dependency-free, calls 3-4 depending on the IDs from 1-2.
	fake := &fakeScheduler{}
	runner := newTestRunner(fake, 2, 2)

	summary, err := runner.Run(Product([]string{"m1"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(fake.calls) != 4 {
		t.Fatalf("submission calls = %d; want 4", len(fake.calls))
	}

	round1IDs := summary.Results[0].JobIDs[:2]
	for _, call := range fake.calls[2:] {
		if call.dep == nil {
			t.Fatal("round 2 call carried no dependency")
		}
		if got, want := strings.Join(call.dep.JobIDs, ":"), strings.Join(round1IDs, ":"); got != want {
			t.Errorf("round 2 dependency IDs = %s; want %s", got, want)
		}
		if call.dep.Type != scheduler.DepAfterAny {
			t.Errorf("dependency type = %s; want afterany", call.dep.Type)
		}
		if call.dep.Combine != scheduler.CombineAny {
			t.Errorf("combine mode = %s; want any", call.dep.Combine)
		}
	}
}

func TestRunThreeRoundsDependOnlyOnImmediatePredecessor(t *testing.T) {
	fake := &fakeScheduler{}
	runner := newTestRunner(fake, 2, 3)

	summary, err := runner.Run(Product([]string{"m1"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	ids := summary.Results[0].JobIDs
	round2IDs := ids[2:4]
	for _, call := range fake.calls[4:6] {
		if got := strings.Join(call.dep.JobIDs, ":"); got != strings.Join(round2IDs, ":") {
			t.Errorf("round 3 dependency IDs = %s; want %s (round 2 only)", got, strings.Join(round2IDs, ":"))
		}
	}
}

func TestRunUsesResolvedScriptPathForEveryCall(t *testing.T) {
	fake := &fakeScheduler{}
	runner := newTestRunner(fake, 2, 2)

	if _, err := runner.Run(Product([]string{"virchow2"}, []string{"BRCA"})); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := ScriptPath("/cluster/jobs", "virchow2", "BRCA", "20x")
	for i, call := range fake.calls {
		if call.script != want {
			t.Errorf("call %d script = %s; want %s", i+1, call.script, want)
		}
	}
}

func TestRunAbortsPairingOnSubmissionFailure(t *testing.T) {
	// Second call fails permanently; the pairing must stop without
	// threading an invalid ID, and the next pairing must still run.
	fake := &fakeScheduler{
		failOn: map[int]error{2: scheduler.ErrScriptNotFound},
	}
	runner := newTestRunner(fake, 2, 2)

	summary, err := runner.Run(Product([]string{"m1", "m2"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Failed != 1 {
		t.Fatalf("Failed = %d; want 1", summary.Failed)
	}
	if summary.Results[0].Err == nil {
		t.Error("first pairing should carry the submission error")
	}
	// m1/c1: 2 calls (second failed), then m2/c1: full 4 calls.
	if len(fake.calls) != 6 {
		t.Errorf("submission calls = %d; want 6", len(fake.calls))
	}
	if summary.Results[1].Err != nil {
		t.Errorf("second pairing failed unexpectedly: %v", summary.Results[1].Err)
	}
	if got := len(summary.Results[1].JobIDs); got != 4 {
		t.Errorf("second pairing submitted %d jobs; want 4", got)
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	fake := &fakeScheduler{failCount: 2}
	runner := newTestRunner(fake, 1, 1)
	runner.Retries = 3

	summary, err := runner.Run(Product([]string{"m1"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 0 {
		t.Fatalf("Failed = %d; want 0 after retries", summary.Failed)
	}
	// 2 failed attempts plus the successful one.
	if len(fake.calls) != 3 {
		t.Errorf("submission calls = %d; want 3", len(fake.calls))
	}
}

func TestRunDoesNotRetryMissingScripts(t *testing.T) {
	fake := &fakeScheduler{
		failOn: map[int]error{1: fmt.Errorf("%w: /cluster/jobs/tcga-20x/job_m1_c1.sh", scheduler.ErrScriptNotFound)},
	}
	runner := newTestRunner(fake, 1, 1)
	runner.Retries = 5

	summary, err := runner.Run(Product([]string{"m1"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d; want 1", summary.Failed)
	}
	if len(fake.calls) != 1 {
		t.Errorf("submission calls = %d; want 1 (no retry on missing script)", len(fake.calls))
	}
}

func TestRunDryRunSkipsScheduler(t *testing.T) {
	runner := newTestRunner(nil, 2, 2)
	runner.DryRun = true

	summary, err := runner.Run(Product([]string{"m1"}, []string{"c1"}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Submitted != 4 {
		t.Errorf("Submitted = %d; want 4 synthetic submissions", summary.Submitted)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d; want 0", summary.Failed)
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Runner)
	}{
		{"nil scheduler without dry-run", func(r *Runner) { r.Scheduler = nil }},
		{"zero jobs per round", func(r *Runner) { r.JobsPerRound = 0 }},
		{"negative rounds", func(r *Runner) { r.Rounds = -1 }},
		{"empty magnification", func(r *Runner) { r.Magnification = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newTestRunner(&fakeScheduler{}, 1, 1)
			tt.mutate(runner)
			if _, err := runner.Run(Product([]string{"m1"}, []string{"c1"})); err == nil {
				t.Error("Run succeeded with invalid settings")
			}
		})
	}
}

func TestRunRejectsEmptyPairingList(t *testing.T) {
	runner := newTestRunner(&fakeScheduler{}, 1, 1)
	if _, err := runner.Run(nil); err == nil {
		t.Error("Run succeeded with no pairings")
	}
}
