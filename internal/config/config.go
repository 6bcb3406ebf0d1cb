package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Environment variables prefixed with SHIFTCAL_ override
// file values after loading.

// Store backend names.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

const (
	defaultDataPath    = "./var/shiftcal/state.json"
	defaultTimezone    = "Local"
	defaultAlarmCheck  = "* * * * *"
	defaultBackupCheck = "0 9 * * *"
	defaultBackupDir   = "./var/shiftcal/backups"
	defaultLeadMinutes = 15
	defaultLogLevel    = "info"
	envPrefix          = "SHIFTCAL"
	configTempPattern  = ".shiftcal-config-*.tmp"
	configDirPerm      = 0o700
	configFilePerm     = 0o600
)

// Config is the top-level application configuration.
type Config struct {
	// DataPath is where the state blob lives. For the sqlite store it is the
	// database file.
	DataPath string `yaml:"data_path" json:"data_path"`

	// Store selects the persistence backend: "file" (default) or "sqlite".
	Store string `yaml:"store" json:"store"`

	// Timezone is the IANA zone used to compute "today" for alarms and
	// backup reminders. "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// AlarmCheck is a cron spec for the alarm scan. The default runs every
	// minute, matching the minute resolution of alarm times.
	AlarmCheck string `yaml:"alarm_check" json:"alarm_check"`

	// ReminderLeadMinutes is how long before the stored alarm time a
	// reminder is raised.
	ReminderLeadMinutes int `yaml:"reminder_lead_minutes" json:"reminder_lead_minutes"`

	// BackupCheck is a cron spec for evaluating the backup reminder policy.
	BackupCheck string `yaml:"backup_check" json:"backup_check"`

	// BackupDir receives sync-code backup files.
	BackupDir string `yaml:"backup_dir" json:"backup_dir"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// envOverrides mirrors the subset of Config that can be set from the
// environment. Empty values leave the file value untouched.
type envOverrides struct {
	DataPath  string `envconfig:"DATA_PATH"`
	Store     string `envconfig:"STORE"`
	Timezone  string `envconfig:"TIMEZONE"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	BackupDir string `envconfig:"BACKUP_DIR"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataPath:            defaultDataPath,
		Store:               StoreFile,
		Timezone:            defaultTimezone,
		AlarmCheck:          defaultAlarmCheck,
		ReminderLeadMinutes: defaultLeadMinutes,
		BackupCheck:         defaultBackupCheck,
		BackupDir:           defaultBackupDir,
		LogLevel:            defaultLogLevel,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.DataPath == "" {
		c.DataPath = defaultDataPath
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
		// ok
	default:
		// Unknown or empty backend; the file store needs no extra setup.
		c.Store = StoreFile
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.AlarmCheck == "" {
		c.AlarmCheck = defaultAlarmCheck
	}
	if c.ReminderLeadMinutes <= 0 {
		c.ReminderLeadMinutes = defaultLeadMinutes
	}
	if c.BackupCheck == "" {
		c.BackupCheck = defaultBackupCheck
	}
	if c.BackupDir == "" {
		c.BackupDir = defaultBackupDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// ApplyEnv overlays SHIFTCAL_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("config: read environment: %w", err)
	}
	if env.DataPath != "" {
		c.DataPath = env.DataPath
	}
	if env.Store != "" {
		c.Store = env.Store
	}
	if env.Timezone != "" {
		c.Timezone = env.Timezone
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.BackupDir != "" {
		c.BackupDir = env.BackupDir
	}
	c.Normalize()
	return nil
}

// Location resolves Timezone, falling back to time.Local for "Local" or an
// unknown zone name.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == defaultTimezone {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ReminderLead returns ReminderLeadMinutes as a duration.
func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is unmarshaled and normalized.
//
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, cfg.ApplyEnv()
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically via
// a temp file + rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, configTempPattern)
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory, fsyncs it, sets 0600 and renames it over path. The parent
// directory is created with 0700 when missing.
func WriteFileAtomic(path string, data []byte, tempPattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, configFilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
