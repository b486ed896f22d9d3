package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dispatch_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
databasePath: dispatch.db
directoryPath: directory.yaml
raceRetries: 5
window:
  opens: "18:00"
holidays:
  - "2026-07-03"
referralSchedules:
  CONST-1: "FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "dispatch.db", cfg.DatabasePath)
	assert.Equal(t, 5, cfg.RaceRetries)
	assert.Equal(t, []string{"2026-07-03"}, cfg.Holidays)

	sched, err := cfg.Schedule()
	require.NoError(t, err)
	assert.Equal(t, "18:00", sched.Opens.String())
	// Unset fields keep the defaults.
	assert.Equal(t, "07:00", sched.Closes.String())
	assert.Equal(t, "15:00", sched.Cutoff.String())
}

func TestLoadFromPathMissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `raceRetries: 2`)

	_, err := LoadFromPath(path)
	assert.ErrorContains(t, err, "config validation failed")
}

func TestValidateRejectsBadWindowTime(t *testing.T) {
	cfg := &Config{
		DatabasePath:  "dispatch.db",
		DirectoryPath: "directory.yaml",
		Window:        WindowConfig{Closes: "25:99"},
	}

	err := Validate(cfg)
	assert.ErrorContains(t, err, "window.closes")
}

func TestValidateRejectsBadReferralSchedule(t *testing.T) {
	cfg := &Config{
		DatabasePath:      "dispatch.db",
		DirectoryPath:     "directory.yaml",
		ReferralSchedules: map[string]string{"CONST-1": "FREQ=SOMETIMES"},
	}

	err := Validate(cfg)
	assert.ErrorContains(t, err, "invalid referral schedule")
}

func TestValidateRejectsBadHoliday(t *testing.T) {
	cfg := &Config{
		DatabasePath:  "dispatch.db",
		DirectoryPath: "directory.yaml",
		Holidays:      []string{"July 4th"},
	}

	err := Validate(cfg)
	assert.ErrorContains(t, err, "config validation failed")
}
