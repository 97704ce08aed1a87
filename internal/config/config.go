// Package config loads studytrack settings. Values come from built-in
// defaults, then an optional YAML file, then STUDYTRACK_* environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blink-new/studytrack/internal/stats"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
	Study   StudyConfig   `yaml:"study"`
}

// StorageConfig selects where the ledger lives.
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"` // SQLite file; empty means the XDG data dir
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig is used when Backend is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"` // JSON log file; empty disables file logging
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig picks the identity source. With a token set, the user comes
// from a signed JWT; otherwise a device-local identity is used.
type AuthConfig struct {
	Token       string `yaml:"token"`
	Secret      string `yaml:"secret"`
	DisplayName string `yaml:"display_name"`
	Email       string `yaml:"email"`
}

// StudyConfig tunes the stats rules.
type StudyConfig struct {
	DailyGoalHours float64 `yaml:"daily_goal_hours"`
	StreakPolicy   string  `yaml:"streak_policy"`
	PointsPerLevel int     `yaml:"points_per_level"`
	DefaultSubject string  `yaml:"default_subject"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "studytrack:"},
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Study: StudyConfig{
			DailyGoalHours: stats.DefaultDailyGoalHours,
			StreakPolicy:   stats.StreakReset.String(),
			PointsPerLevel: stats.DefaultPointsPerLevel,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/studytrack/config.yaml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "studytrack", "config.yaml"), nil
}

// Load builds the configuration. An explicit path must exist; when path is
// empty the default file is read if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("open config: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse reads YAML from r over the defaults. The environment is not
// consulted.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	if err := decode(r, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Environment variables read by Load.
const (
	EnvBackend        = "STUDYTRACK_STORAGE_BACKEND"
	EnvDB             = "STUDYTRACK_DB"
	EnvRedisAddr      = "STUDYTRACK_REDIS_ADDR"
	EnvRedisPassword  = "STUDYTRACK_REDIS_PASSWORD"
	EnvRedisDB        = "STUDYTRACK_REDIS_DB"
	EnvRedisPrefix    = "STUDYTRACK_REDIS_PREFIX"
	EnvLogLevel       = "STUDYTRACK_LOG_LEVEL"
	EnvLogPath        = "STUDYTRACK_LOG_PATH"
	EnvAuthToken      = "STUDYTRACK_AUTH_TOKEN"
	EnvAuthSecret     = "STUDYTRACK_AUTH_SECRET"
	EnvDisplayName    = "STUDYTRACK_DISPLAY_NAME"
	EnvEmail          = "STUDYTRACK_EMAIL"
	EnvDailyGoal      = "STUDYTRACK_DAILY_GOAL_HOURS"
	EnvStreakPolicy   = "STUDYTRACK_STREAK_POLICY"
	EnvPointsPerLevel = "STUDYTRACK_POINTS_PER_LEVEL"
	EnvDefaultSubject = "STUDYTRACK_DEFAULT_SUBJECT"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvBackend, &cfg.Storage.Backend)
	str(EnvDB, &cfg.Storage.Path)
	str(EnvRedisAddr, &cfg.Storage.Redis.Addr)
	str(EnvRedisPassword, &cfg.Storage.Redis.Password)
	str(EnvRedisPrefix, &cfg.Storage.Redis.Prefix)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogPath, &cfg.Log.Path)
	str(EnvAuthToken, &cfg.Auth.Token)
	str(EnvAuthSecret, &cfg.Auth.Secret)
	str(EnvDisplayName, &cfg.Auth.DisplayName)
	str(EnvEmail, &cfg.Auth.Email)
	str(EnvStreakPolicy, &cfg.Study.StreakPolicy)
	str(EnvDefaultSubject, &cfg.Study.DefaultSubject)

	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		cfg.Storage.Redis.DB = n
	}
	if v, ok := lookup(EnvPointsPerLevel); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPointsPerLevel, err)
		}
		cfg.Study.PointsPerLevel = n
	}
	if v, ok := lookup(EnvDailyGoal); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDailyGoal, err)
		}
		cfg.Study.DailyGoalHours = f
	}
	return nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of sqlite, redis, memory", c.Storage.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if _, err := stats.ParseStreakPolicy(c.Study.StreakPolicy); err != nil {
		return fmt.Errorf("study.streak_policy: %w", err)
	}
	if c.Study.PointsPerLevel <= 0 {
		return fmt.Errorf("study.points_per_level must be positive, got %d", c.Study.PointsPerLevel)
	}
	if c.Study.DailyGoalHours <= 0 || c.Study.DailyGoalHours > 24 {
		return fmt.Errorf("study.daily_goal_hours must be in (0, 24], got %g", c.Study.DailyGoalHours)
	}
	if c.Auth.Token != "" && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth.token is set")
	}
	return nil
}

// Engine returns the stats engine described by the study section.
func (c Config) Engine() stats.Engine {
	policy, _ := stats.ParseStreakPolicy(c.Study.StreakPolicy)
	return stats.Engine{Policy: policy, PointsPerLevel: c.Study.PointsPerLevel}
}
