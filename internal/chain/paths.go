package chain

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScriptPath resolves the pre-generated job script for a (model, cohort)
// pairing at a given magnification. Scripts are laid out one per pairing,
// in a per-magnification tree:
//
//	<jobsDir>/tcga-<magnification>/job_<model>_<cohort>.sh
//
// The path is a pure function of its inputs; existence of the script is an
// external precondition checked at submission time.
func ScriptPath(jobsDir, model, cohort, magnification string) string {
	tree := fmt.Sprintf("tcga-%s", magnification)
	name := fmt.Sprintf("job_%s_%s.sh", model, cohort)
	return filepath.Join(jobsDir, tree, name)
}

// ScriptExists reports whether the job script for a pairing is present on disk.
func ScriptExists(jobsDir, model, cohort, magnification string) bool {
	info, err := os.Stat(ScriptPath(jobsDir, model, cohort, magnification))
	return err == nil && !info.IsDir()
}
