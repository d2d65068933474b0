package scheduler

import (
	"errors"
	"testing"
)

func newTestPbsScheduler() *PbsScheduler {
	return &PbsScheduler{qsubBin: "/usr/bin/qsub"} // fake path for testing
}

func TestPbsRenderDependency(t *testing.T) {
	pbs := newTestPbsScheduler()

	t.Run("all combines into depend attribute", func(t *testing.T) {
		dep := &Dependency{Type: DepAfterAny, Combine: CombineAll, JobIDs: []string{"11.srv", "12.srv"}}
		got, err := pbs.renderDependency(dep)
		if err != nil {
			t.Fatalf("renderDependency failed: %v", err)
		}
		want := "depend=afterany:11.srv:12.srv"
		if got != want {
			t.Errorf("renderDependency = %q; want %q", got, want)
		}
	})

	t.Run("any over multiple jobs is rejected", func(t *testing.T) {
		dep := &Dependency{Type: DepAfterAny, Combine: CombineAny, JobIDs: []string{"11.srv", "12.srv"}}
		_, err := pbs.renderDependency(dep)
		if !errors.Is(err, ErrUnsupportedDependency) {
			t.Errorf("renderDependency error = %v; want ErrUnsupportedDependency", err)
		}
		if !IsDependencyError(err) {
			t.Errorf("expected a DependencyError, got %T", err)
		}
	})

	t.Run("any over a single job degrades to all", func(t *testing.T) {
		dep := &Dependency{Type: DepAfterOK, Combine: CombineAny, JobIDs: []string{"11.srv"}}
		got, err := pbs.renderDependency(dep)
		if err != nil {
			t.Fatalf("renderDependency failed: %v", err)
		}
		if got != "depend=afterok:11.srv" {
			t.Errorf("renderDependency = %q; want %q", got, "depend=afterok:11.srv")
		}
	})
}

func TestParsePbsJobID(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "plain job ID",
			output: "12345.pbsserver\n",
			want:   "12345.pbsserver",
		},
		{
			name:   "job ID followed by warnings",
			output: "6789.cluster\nqsub: waiting for job to start\n",
			want:   "6789.cluster",
		},
		{
			name:    "empty output",
			output:  "\n",
			wantErr: true,
		},
		{
			name:    "error message instead of ID",
			output:  "qsub: submit error (Bad UID for job execution)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePbsJobID(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePbsJobID(%q) = %q, want error", tt.output, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePbsJobID(%q) failed: %v", tt.output, err)
			}
			if got != tt.want {
				t.Errorf("parsePbsJobID = %q; want %q", got, tt.want)
			}
		})
	}
}
