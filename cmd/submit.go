package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LocalToasty/STAMP/internal/chain"
	"github.com/LocalToasty/STAMP/internal/config"
	"github.com/LocalToasty/STAMP/internal/scheduler"
	"github.com/LocalToasty/STAMP/internal/utils"
)

// Variables to hold flag values
var (
	submitModels        []string
	submitCohorts       []string
	submitJobsPerRound  int
	submitRounds        int
	submitMagnification string
	submitJobsDir       string
	submitManifest      string
	submitPolicy        string
	submitDepType       string
	submitRetries       int
)

var submitCmd = &cobra.Command{
	Use:     "submit",
	Aliases: []string{"run", "s"},
	Short:   "Submit chained rounds of jobs for each model/cohort pairing",
	Long: `Submit chained rounds of jobs for each model/cohort pairing.

For every pairing, submits --rounds sequential groups of --jobs-per-round
jobs. Jobs in round N+1 carry a scheduler dependency on the job IDs of
round N; with the default "any" policy, the next round becomes eligible as
soon as one previous-round job terminates.

All flags are optional: omitted models, cohorts and magnification fall back
to the configured defaults, so a bare "stampjobs submit" walks the full
model x cohort matrix.`,
	Example: `  stampjobs submit
  stampjobs submit --models virchow2 --cohorts BRCA,LUAD --jobs-per-round 4 --rounds 3
  stampjobs submit --manifest resubmit.yaml --policy all
  stampjobs submit --magnification 30x --dry-run`,
	Run: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringSliceVarP(&submitModels, "models", "m", nil, "Models to submit jobs for (default: configured list)")
	submitCmd.Flags().StringSliceVarP(&submitCohorts, "cohorts", "c", nil, "Cohorts to submit jobs for (default: configured list)")
	submitCmd.Flags().IntVarP(&submitJobsPerRound, "jobs-per-round", "j", 0, "Parallel jobs submitted per round (default: configured value)")
	submitCmd.Flags().IntVarP(&submitRounds, "rounds", "r", 0, "Sequential dependency-chained rounds (default: configured value)")
	submitCmd.Flags().StringVarP(&submitMagnification, "magnification", "g", "", "Magnification selecting the job-script tree (default: configured value)")
	submitCmd.Flags().StringVar(&submitJobsDir, "jobs-dir", "", "Root directory of the pre-generated job scripts")
	submitCmd.Flags().StringVar(&submitManifest, "manifest", "", "YAML manifest of explicit model/cohort pairings (overrides --models/--cohorts)")
	submitCmd.Flags().StringVar(&submitPolicy, "policy", "", "Dependency policy: \"any\" (round starts once one prior job finishes) or \"all\"")
	submitCmd.Flags().StringVar(&submitDepType, "dep-type", "", "Dependency type: \"afterany\" or \"afterok\"")
	submitCmd.Flags().IntVar(&submitRetries, "retries", -1, "Extra attempts per submission call on transient failure")
}

func runSubmit(cmd *cobra.Command, args []string) {
	// 1. Overlay flags onto the resolved configuration
	if len(submitModels) > 0 {
		config.Global.Models = submitModels
	}
	if len(submitCohorts) > 0 {
		config.Global.Cohorts = submitCohorts
	}
	if submitJobsPerRound > 0 {
		config.Global.JobsPerRound = submitJobsPerRound
	}
	if submitRounds > 0 {
		config.Global.Rounds = submitRounds
	}
	if submitMagnification != "" {
		config.Global.Magnification = submitMagnification
	}
	if submitJobsDir != "" {
		config.Global.JobsDir = submitJobsDir
	}
	if submitPolicy != "" {
		config.Global.DependencyPolicy = submitPolicy
	}
	if submitDepType != "" {
		config.Global.DependencyType = submitDepType
	}
	if submitRetries >= 0 {
		config.Global.SubmitRetries = submitRetries
	}

	if err := config.Global.Validate(); err != nil {
		utils.PrintError("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// 2. Build the pairing list
	var pairings []chain.Pairing
	if submitManifest != "" {
		var err error
		pairings, err = chain.LoadManifest(submitManifest)
		if err != nil {
			utils.PrintError("%v", err)
			os.Exit(1)
		}
		utils.PrintMessage("Loaded %s pairing(s) from %s",
			utils.StyleNumber(len(pairings)), utils.StylePath(submitManifest))
	} else {
		pairings = chain.Product(config.Global.Models, config.Global.Cohorts)
	}

	// 3. Require a scheduler unless previewing
	sched := scheduler.ActiveScheduler()
	if sched == nil && !config.Global.DryRun {
		utils.PrintError("No job scheduler available.")
		utils.PrintHint("Run with --dry-run to preview submissions without a scheduler.")
		os.Exit(1)
	}

	// 4. Run the chain
	runner := &chain.Runner{
		Scheduler:     sched,
		JobsDir:       config.Global.JobsDir,
		Magnification: config.Global.Magnification,
		JobsPerRound:  config.Global.JobsPerRound,
		Rounds:        config.Global.Rounds,
		Policy:        scheduler.CombineMode(config.Global.DependencyPolicy),
		DepType:       scheduler.DependencyType(config.Global.DependencyType),
		Retries:       config.Global.SubmitRetries,
		DryRun:        config.Global.DryRun,
	}

	summary, err := runner.Run(pairings)
	if err != nil {
		utils.PrintError("%v", err)
		os.Exit(1)
	}

	// 5. Report
	utils.PrintMessage("Submitted %s job(s) across %s pairing(s)",
		utils.StyleNumber(summary.Submitted), utils.StyleNumber(len(summary.Results)))
	if summary.Failed > 0 {
		var failed []string
		for _, res := range summary.Results {
			if res.Err != nil {
				failed = append(failed, res.Pairing.Model+"/"+res.Pairing.Cohort)
			}
		}
		utils.PrintError("%d pairing(s) aborted: %s", summary.Failed, strings.Join(failed, ", "))
		os.Exit(1)
	}
}
