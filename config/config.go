package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/parse"
	"github.com/Chauhan-yuvraj/workplace-management-system-sub001/internal/slot"
)

// Config represents the overall application configuration.
type Config struct {
	Environment string           `yaml:"environment"`
	Server      ServerConfig     `yaml:"server"`
	Database    DatabaseConfig   `yaml:"database"`
	Schedule    ScheduleConfig   `yaml:"schedule"`
	Upstream    UpstreamConfig   `yaml:"upstream"`
	Push        PushConfig       `yaml:"push"`
	WorkerPool  WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port              int     `yaml:"port"`
	RequestIPHeader   string  `yaml:"request_ip_header"`
	RateLimitPerSec   float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds   int     `yaml:"cache_ttl_seconds"`
	SessionTTLMinutes int     `yaml:"session_ttl_minutes"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ScheduleConfig describes the slot grid and the edit window.
type ScheduleConfig struct {
	DayStart            string `yaml:"day_start"` // HH:MM
	DayEnd              string `yaml:"day_end"`   // HH:MM, inclusive
	IntervalMinutes     int    `yaml:"interval_minutes"`
	EditCutoff          string `yaml:"edit_cutoff"` // HH:MM
	SlotDurationMinutes int    `yaml:"slot_duration_minutes"`
	Timezone            string `yaml:"timezone"`

	Start    int            `yaml:"-"`
	End      int            `yaml:"-"`
	Cutoff   int            `yaml:"-"`
	Duration time.Duration  `yaml:"-"`
	Location *time.Location `yaml:"-"`

	grid slot.GridConfig
}

// UpstreamConfig points the service at another scheduling backend instead of the local database.
type UpstreamConfig struct {
	Enabled         bool              `yaml:"enabled"`
	BaseURL         string            `yaml:"base_url"`
	Headers         map[string]string `yaml:"headers"`
	HTTPProxy       string            `yaml:"http_proxy"`
	TimeoutSeconds  int               `yaml:"timeout_seconds"`
	CacheTTLSeconds int               `yaml:"cache_ttl_seconds"`

	Timeout  time.Duration `yaml:"-"`
	CacheTTL time.Duration `yaml:"-"`
}

// Load reads the configuration from the given path, then applies a .env file next to the
// working directory and SCHEDULE_* environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	// A missing .env file is fine.
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default filled in, for tools that run without
// a config file.
func Default() *Config {
	var cfg Config
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return &cfg
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SCHEDULE_ENV":               &c.Environment,
		"SCHEDULE_DB_DRIVER":         &c.Database.Driver,
		"SCHEDULE_DB_DSN":            &c.Database.DSN,
		"SCHEDULE_TIMEZONE":          &c.Schedule.Timezone,
		"SCHEDULE_UPSTREAM_URL":      &c.Upstream.BaseURL,
		"SCHEDULE_VAPID_PUBLIC_KEY":  &c.Push.PublicKey,
		"SCHEDULE_VAPID_PRIVATE_KEY": &c.Push.PrivateKey,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("SCHEDULE_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCHEDULE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("SCHEDULE_UPSTREAM_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SCHEDULE_UPSTREAM_ENABLED: %w", err)
		}
		c.Upstream.Enabled = enabled
	}
	return nil
}

func (c *Config) normalize() error {
	if c.Environment == "" {
		c.Environment = "development"
	}

	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 5
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 10
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 30
	}
	if c.Server.SessionTTLMinutes <= 0 {
		c.Server.SessionTTLMinutes = 30
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case "":
		c.Database.Driver = "sqlite"
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = "file:schedule.db?_foreign_keys=on"
	}

	if err := c.Schedule.normalize(); err != nil {
		return err
	}

	if c.Upstream.TimeoutSeconds <= 0 {
		c.Upstream.TimeoutSeconds = 10
	}
	c.Upstream.Timeout = time.Duration(c.Upstream.TimeoutSeconds) * time.Second
	if c.Upstream.CacheTTLSeconds <= 0 {
		c.Upstream.CacheTTLSeconds = 30
	}
	c.Upstream.CacheTTL = time.Duration(c.Upstream.CacheTTLSeconds) * time.Second
	if c.Upstream.Enabled && c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required when upstream is enabled")
	}

	if c.Push.TTL <= 0 {
		c.Push.TTL = 3600
	}

	if c.WorkerPool.Size <= 0 {
		c.WorkerPool.Size = 1
	}
	return nil
}

func (s *ScheduleConfig) normalize() error {
	if s.DayStart == "" {
		s.DayStart = "09:30"
	}
	if s.DayEnd == "" {
		s.DayEnd = "18:00"
	}
	if s.EditCutoff == "" {
		s.EditCutoff = "18:00"
	}
	if s.IntervalMinutes <= 0 {
		s.IntervalMinutes = 30
	}
	if s.SlotDurationMinutes <= 0 {
		s.SlotDurationMinutes = s.IntervalMinutes
	}
	s.Duration = time.Duration(s.SlotDurationMinutes) * time.Minute

	grid, err := slot.GridFromClock(s.DayStart, s.DayEnd, s.IntervalMinutes)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	s.grid = grid
	s.Start = grid.Start()
	s.End = grid.End()
	if s.Start > s.End {
		return fmt.Errorf("schedule.day_start %s is after day_end %s", s.DayStart, s.DayEnd)
	}
	if s.Cutoff, err = parse.ClockTime(s.EditCutoff); err != nil {
		return fmt.Errorf("schedule.edit_cutoff: %w", err)
	}

	if s.Timezone == "" {
		s.Location = time.Local
		return nil
	}
	if s.Location, err = time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

// Grid returns the slot grid described by the schedule section.
func (s ScheduleConfig) Grid() slot.GridConfig {
	return s.grid
}
