package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (STAMPJOBS_*)
// 3. User config file (~/.config/stampjobs/config.yaml)
// 4. System config file (/etc/stampjobs/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "stampjobs"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".stampjobs"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/stampjobs")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("STAMPJOBS")
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("scheduler_bin", "")
	viper.SetDefault("jobs_dir", Global.JobsDir)

	viper.SetDefault("models", DefaultModels)
	viper.SetDefault("cohorts", DefaultCohorts)
	viper.SetDefault("magnification", "20x")
	viper.SetDefault("jobs_per_round", 1)
	viper.SetDefault("rounds", 1)

	viper.SetDefault("dependency_policy", "any")
	viper.SetDefault("dependency_type", "afterany")
	viper.SetDefault("submit_retries", 0)
}

// LoadFromViper copies viper-resolved values into the Global config.
// Call after InitViper; command-line flags are applied on top by cobra.
func LoadFromViper() {
	Global.SchedulerBin = viper.GetString("scheduler_bin")
	if dir := viper.GetString("jobs_dir"); dir != "" {
		Global.JobsDir = dir
	}

	if models := viper.GetStringSlice("models"); len(models) > 0 {
		Global.Models = models
	}
	if cohorts := viper.GetStringSlice("cohorts"); len(cohorts) > 0 {
		Global.Cohorts = cohorts
	}
	if mag := viper.GetString("magnification"); mag != "" {
		Global.Magnification = mag
	}
	if n := viper.GetInt("jobs_per_round"); n > 0 {
		Global.JobsPerRound = n
	}
	if n := viper.GetInt("rounds"); n > 0 {
		Global.Rounds = n
	}

	if policy := viper.GetString("dependency_policy"); policy != "" {
		Global.DependencyPolicy = policy
	}
	if depType := viper.GetString("dependency_type"); depType != "" {
		Global.DependencyType = depType
	}
	if retries := viper.GetInt("submit_retries"); retries > 0 {
		Global.SubmitRetries = retries
	}
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".stampjobs", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "stampjobs", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
