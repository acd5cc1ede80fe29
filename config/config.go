package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Toll     TollConfig     `yaml:"toll"`
	Seed     *SeedConfig    `yaml:"seed"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // memory, sqlite, postgres or bolt
	DSN                    string `yaml:"dsn"`
	BoltPath               string `yaml:"bolt_path"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// TollConfig holds the charging policy.
type TollConfig struct {
	Timezone            string         `yaml:"timezone"`
	Location            *time.Location `yaml:"-"`
	DailyCap            float64        `yaml:"daily_cap"`
	HourlyWindowMinutes int            `yaml:"hourly_window_minutes"`
}

// SeedConfig is loaded into empty stores at start-up.
type SeedConfig struct {
	ExemptVehicleTypes []string         `yaml:"exempt_vehicle_types"`
	ExemptDaysOfWeek   []string         `yaml:"exempt_days_of_week"`
	ExemptMonths       []string         `yaml:"exempt_months"`
	ExemptHolidays     []string         `yaml:"exempt_holidays"`
	Rates              []RateSeedConfig `yaml:"rates"`
}

// RateSeedConfig is one row of the seeded rate table.
type RateSeedConfig struct {
	Start  string  `yaml:"start"`
	End    string  `yaml:"end"`
	Amount float64 `yaml:"amount"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// DefaultSeed returns the reference zone configuration.
func DefaultSeed() *SeedConfig {
	return &SeedConfig{
		ExemptVehicleTypes: []string{"Motorcycle", "Tractor", "Emergency", "Diplomat", "Foreign", "Military"},
		ExemptDaysOfWeek:   []string{"SATURDAY", "SUNDAY"},
		ExemptMonths:       []string{"JULY"},
		Rates: []RateSeedConfig{
			{Start: "06:00", End: "06:29", Amount: 8},
			{Start: "06:30", End: "06:59", Amount: 13},
			{Start: "07:00", End: "07:59", Amount: 18},
			{Start: "08:00", End: "08:29", Amount: 13},
			{Start: "08:30", End: "14:59", Amount: 8},
			{Start: "15:00", End: "15:29", Amount: 13},
			{Start: "15:30", End: "16:59", Amount: 18},
			{Start: "17:00", End: "17:59", Amount: 13},
			{Start: "18:00", End: "18:29", Amount: 8},
			{Start: "18:30", End: "05:59", Amount: 0},
		},
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		// the built-in defaults always resolve
		panic(err)
	}
	return cfg
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = DriverMemory
	case DriverMemory, DriverSQLite, DriverPostgres:
	case DriverBolt:
		if cfg.Database.BoltPath == "" {
			cfg.Database.BoltPath = "toll.db"
		}
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Toll.Timezone == "" {
		cfg.Toll.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Toll.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Toll.Timezone, err)
	}
	cfg.Toll.Location = loc

	if cfg.Toll.DailyCap <= 0 {
		cfg.Toll.DailyCap = 60
	}
	if cfg.Toll.HourlyWindowMinutes <= 0 {
		log.Printf("toll.hourly_window_minutes is not set or invalid; defaulting to 60")
		cfg.Toll.HourlyWindowMinutes = 60
	}

	if cfg.Seed == nil {
		cfg.Seed = DefaultSeed()
	}
	return nil
}
