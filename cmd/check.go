package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/LocalToasty/STAMP/internal/chain"
	"github.com/LocalToasty/STAMP/internal/config"
	"github.com/LocalToasty/STAMP/internal/utils"
)

var (
	checkModels        []string
	checkCohorts       []string
	checkMagnification string
	checkJobsDir       string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that a job script exists for every model/cohort pairing",
	Long: `Verify that a job script exists for every model/cohort pairing.

Walks the model x cohort matrix and reports pairings whose pre-generated job
script is missing from the jobs tree. Run this before a large submit to catch
incomplete job generation.`,
	Example: `  stampjobs check
  stampjobs check --models virchow2,ctranspath --magnification 30x`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSliceVarP(&checkModels, "models", "m", nil, "Models to check (default: configured list)")
	checkCmd.Flags().StringSliceVarP(&checkCohorts, "cohorts", "c", nil, "Cohorts to check (default: configured list)")
	checkCmd.Flags().StringVarP(&checkMagnification, "magnification", "g", "", "Magnification selecting the job-script tree (default: configured value)")
	checkCmd.Flags().StringVar(&checkJobsDir, "jobs-dir", "", "Root directory of the pre-generated job scripts")
}

func runCheck(cmd *cobra.Command, args []string) {
	models := config.Global.Models
	if len(checkModels) > 0 {
		models = checkModels
	}
	cohorts := config.Global.Cohorts
	if len(checkCohorts) > 0 {
		cohorts = checkCohorts
	}
	magnification := config.Global.Magnification
	if checkMagnification != "" {
		magnification = checkMagnification
	}
	jobsDir := config.Global.JobsDir
	if checkJobsDir != "" {
		jobsDir = checkJobsDir
	}

	pairings := chain.Product(models, cohorts)
	missing := 0
	for _, p := range pairings {
		if !chain.ScriptExists(jobsDir, p.Model, p.Cohort, magnification) {
			utils.PrintWarning("Missing script for %s/%s: %s",
				utils.StyleName(p.Model), utils.StyleName(p.Cohort),
				utils.StylePath(chain.ScriptPath(jobsDir, p.Model, p.Cohort, magnification)))
			missing++
		}
	}

	if missing > 0 {
		utils.PrintError("%d of %d pairing(s) have no job script", missing, len(pairings))
		os.Exit(1)
	}
	utils.PrintSuccess("All %s pairing(s) have job scripts at %s",
		utils.StyleNumber(len(pairings)), utils.StylePath(jobsDir))
}
