package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/elo-bot/app/shared/observability"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultFaceitBaseURL   = "https://open.faceit.com/data/v4"
	defaultFaceitGame      = "cs2"
	defaultSweepInterval   = time.Minute
	defaultCallDelay       = 30 * time.Millisecond
	defaultRoleCreateDelay = 40 * time.Millisecond
	defaultGuildLimit      = 100
)

// Config struct to hold the configuration settings
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	NATS          NATSConfig          `yaml:"nats"`
	Discord       DiscordConfig       `yaml:"discord"`
	Faceit        FaceitConfig        `yaml:"faceit"`
	Sync          SyncConfig          `yaml:"sync"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DatabaseConfig holds the link store connection settings.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres|sqlite
	DSN    string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL runs the event bus in process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// DiscordConfig holds the bot credentials.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	ApplicationID string `yaml:"application_id"`
	OwnerID       string `yaml:"owner_id"`
	GuildLimit    int    `yaml:"guild_limit"`
}

// FaceitConfig holds the FACEIT Data API settings.
type FaceitConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Game              string  `yaml:"game"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// SyncConfig controls sweep cadence and pacing of remote calls.
type SyncConfig struct {
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	CallDelay       time.Duration `yaml:"call_delay"`
	RoleCreateDelay time.Duration `yaml:"role_create_delay"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. A missing file falls back to environment variables only. A .env file
// in the working directory is loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Discord.Token = os.Getenv("DISCORD_TOKEN")
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable not set")
	}

	cfg.Faceit.APIKey = os.Getenv("FACEIT_API_KEY")
	if cfg.Faceit.APIKey == "" {
		return nil, fmt.Errorf("FACEIT_API_KEY environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_APPLICATION_ID"); v != "" {
		cfg.Discord.ApplicationID = v
	}
	if v := os.Getenv("BOT_OWNER"); v != "" {
		cfg.Discord.OwnerID = v
	}
	if v := os.Getenv("DISCORD_GUILD_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DISCORD_GUILD_LIMIT value: %w", err)
		}
		cfg.Discord.GuildLimit = n
	}
	if v := os.Getenv("FACEIT_API_KEY"); v != "" {
		cfg.Faceit.APIKey = v
	}
	if v := os.Getenv("FACEIT_BASE_URL"); v != "" {
		cfg.Faceit.BaseURL = v
	}
	if v := os.Getenv("FACEIT_GAME"); v != "" {
		cfg.Faceit.Game = v
	}
	if v := os.Getenv("FACEIT_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FACEIT_REQUESTS_PER_SECOND value: %w", err)
		}
		cfg.Faceit.RequestsPerSecond = f
	}
	if err := durationEnv("SYNC_SWEEP_INTERVAL", &cfg.Sync.SweepInterval); err != nil {
		return err
	}
	if err := durationEnv("SYNC_CALL_DELAY", &cfg.Sync.CallDelay); err != nil {
		return err
	}
	if err := durationEnv("SYNC_ROLE_CREATE_DELAY", &cfg.Sync.RoleCreateDelay); err != nil {
		return err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	return nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", key, err)
	}
	*dst = d
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Discord.GuildLimit <= 0 {
		c.Discord.GuildLimit = defaultGuildLimit
	}
	if c.Faceit.BaseURL == "" {
		c.Faceit.BaseURL = defaultFaceitBaseURL
	}
	if c.Faceit.Game == "" {
		c.Faceit.Game = defaultFaceitGame
	}
	if c.Faceit.RequestsPerSecond <= 0 {
		c.Faceit.RequestsPerSecond = 10
	}
	if c.Sync.SweepInterval <= 0 {
		c.Sync.SweepInterval = defaultSweepInterval
	}
	if c.Sync.CallDelay <= 0 {
		c.Sync.CallDelay = defaultCallDelay
	}
	if c.Sync.RoleCreateDelay <= 0 {
		c.Sync.RoleCreateDelay = defaultRoleCreateDelay
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

// Validate reports configuration the process cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required"))
	}
	if c.Faceit.APIKey == "" {
		errs = append(errs, errors.New("faceit.api_key is required"))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// ToObsConfig maps the application config onto observability settings.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:  "elo-bot",
		Environment:  appCfg.Observability.Environment,
		LogLevel:     appCfg.Observability.LogLevel,
		OTLPEndpoint: appCfg.Observability.OTLPEndpoint,
	}
}
