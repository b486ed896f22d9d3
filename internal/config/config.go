package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/unioncore/dispatch/pkg/core/window"
)

// WindowConfig overrides the daily bidding timetable. Empty fields keep
// the standard referral-hall times.
type WindowConfig struct {
	Opens           string `yaml:"opens,omitempty"`
	Closes          string `yaml:"closes,omitempty"`
	Cutoff          string `yaml:"cutoff,omitempty"`
	CheckInDeadline string `yaml:"checkInDeadline,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabasePath string `yaml:"databasePath" validate:"required"`
	// DirectoryPath points at the member/employer directory snapshot
	// exported by the membership department.
	DirectoryPath string       `yaml:"directoryPath" validate:"required"`
	Window        WindowConfig `yaml:"window,omitempty"`
	RaceRetries   int          `yaml:"raceRetries,omitempty" validate:"omitempty,min=0,max=10"`
	// Holidays are dates excluded from business-day arithmetic.
	Holidays []string `yaml:"holidays,omitempty" validate:"dive,datetime=2006-01-02"`
	// ReferralSchedules maps book codes to the recurrence rule that drives
	// their morning referral runs (e.g. "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR").
	ReferralSchedules map[string]string `yaml:"referralSchedules,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from dispatch_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads dispatch_config_<env>.yaml, falling back to the plain
// file name when env is empty.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration struct, the window times, and the
// referral schedule recurrence syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.Schedule(); err != nil {
		return err
	}

	for book, schedule := range cfg.ReferralSchedules {
		if _, err := rrule.StrToRRule(schedule); err != nil {
			return fmt.Errorf("invalid referral schedule for book %q: %w", book, err)
		}
	}
	return nil
}

// Schedule resolves the bidding timetable, applying defaults for unset
// fields.
func (c *Config) Schedule() (window.Schedule, error) {
	sched := window.Default()

	fields := []struct {
		name  string
		value string
		dst   *window.TimeOfDay
	}{
		{"window.opens", c.Window.Opens, &sched.Opens},
		{"window.closes", c.Window.Closes, &sched.Closes},
		{"window.cutoff", c.Window.Cutoff, &sched.Cutoff},
		{"window.checkInDeadline", c.Window.CheckInDeadline, &sched.CheckInDeadline},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		t, err := window.ParseTimeOfDay(f.value)
		if err != nil {
			return window.Schedule{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = t
	}
	return sched, nil
}

// findConfigFile searches for the config file in the current directory and
// the user's home directory.
func findConfigFile(env string) (string, error) {
	configFileName := "dispatch_config.yaml"
	if env != "" {
		configFileName = fmt.Sprintf("dispatch_config_%s.yaml", env)
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
