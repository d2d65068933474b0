package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LocalToasty/STAMP/internal/config"
	"github.com/LocalToasty/STAMP/internal/scheduler"
	"github.com/LocalToasty/STAMP/internal/utils"
)

var (
	debugMode  bool
	quietMode  bool
	dryRunMode bool
)

var rootCmd = &cobra.Command{
	Use:           "stampjobs",
	Short:         "Submit chained rounds of pre-generated feature-extraction jobs to an HPC scheduler.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		exe, err := os.Executable()
		if err != nil {
			utils.PrintError("Failed to determine executable path: %v", err)
			os.Exit(1)
		}

		// Step 1: Load defaults (model/cohort lists, jobs dir, chain policy)
		config.LoadDefaults(exe)

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Load resolved values from Viper into Global config
		config.LoadFromViper()

		// Step 4: Apply command-line flags (highest priority)
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Jobs Directory: %s", config.Global.JobsDir)
			if config.Global.SchedulerBin != "" {
				utils.PrintDebug("Scheduler Binary: %s", config.Global.SchedulerBin)
			}
		}
		if quietMode {
			utils.QuietMode = true
		}
		if dryRunMode {
			config.Global.DryRun = true
			utils.PrintDebug("Dry-run mode enabled (no jobs will be submitted)")
		}

		// Step 5: Initialize scheduler unless we're only previewing
		if !config.Global.DryRun {
			sched, err := scheduler.DetectSchedulerWithBinary(config.Global.SchedulerBin)
			if err == nil && sched.IsAvailable() {
				scheduler.SetActiveScheduler(sched)
				utils.PrintDebug("Scheduler initialized and available")
			} else {
				if err != nil {
					utils.PrintDebug("Scheduler not available: %v", err)
				} else {
					utils.PrintDebug("Scheduler not available (already in a job)")
				}
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. Submission errors
		// already carry the scheduler's own output.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&dryRunMode, "dry-run", false, "Resolve and print submissions without calling the scheduler")
}
