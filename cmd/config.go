package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LocalToasty/STAMP/internal/config"
	"github.com/LocalToasty/STAMP/internal/utils"
)

var configSave bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging defaults, the config
file and environment variables. With --save, writes the effective values to
the user config file.`,
	Example: `  stampjobs config
  stampjobs config --save`,
	Run: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configSave, "save", false, "Persist the effective configuration to the user config file")
}

func runConfig(cmd *cobra.Command, args []string) {
	c := config.Global

	fmt.Println(utils.StyleTitle("Effective configuration:"))
	fmt.Printf("  jobs_dir:          %s\n", utils.StylePath(c.JobsDir))
	fmt.Printf("  magnification:     %s\n", utils.StyleName(c.Magnification))
	fmt.Printf("  jobs_per_round:    %s\n", utils.StyleNumber(c.JobsPerRound))
	fmt.Printf("  rounds:            %s\n", utils.StyleNumber(c.Rounds))
	fmt.Printf("  dependency_policy: %s\n", utils.StyleName(c.DependencyPolicy))
	fmt.Printf("  dependency_type:   %s\n", utils.StyleName(c.DependencyType))
	fmt.Printf("  submit_retries:    %s\n", utils.StyleNumber(c.SubmitRetries))
	if c.SchedulerBin != "" {
		fmt.Printf("  scheduler_bin:     %s\n", utils.StylePath(c.SchedulerBin))
	}
	fmt.Printf("  models (%d):       %s\n", len(c.Models), strings.Join(c.Models, ", "))
	fmt.Printf("  cohorts (%d):      %s\n", len(c.Cohorts), strings.Join(c.Cohorts, ", "))

	if configSave {
		if err := config.SaveConfig(); err != nil {
			utils.PrintError("Failed to save config: %v", err)
			return
		}
		if path, err := config.GetUserConfigPath(); err == nil {
			utils.PrintSuccess("Configuration saved to %s", utils.StylePath(path))
		}
	}
}
