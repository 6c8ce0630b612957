package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   LoggerConfig   `yaml:"logger"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	Notifier NotifierConfig `yaml:"notifier"`
	Presence PresenceConfig `yaml:"presence"`
	TextGen  TextGenConfig  `yaml:"textgen"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type NATSConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// NotifierConfig selects the change notification backend:
// memory, redis, nats or postgres.
type NotifierConfig struct {
	Driver string `yaml:"driver"`
}

// PresenceConfig holds the heartbeat timing knobs.
type PresenceConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	UserTimeout       time.Duration `yaml:"user_timeout"`
	StaleTimeout      time.Duration `yaml:"stale_timeout"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	DebounceDelay     time.Duration `yaml:"debounce_delay"`
	// CleanupSchedule drives the server-wide sweep, in cron syntax.
	CleanupSchedule string `yaml:"cleanup_schedule"`
	// CleanupTimeout bounds a single sweep.
	CleanupTimeout time.Duration `yaml:"cleanup_timeout"`
}

type TextGenConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// DefaultPresence returns the stock presence timings.
func DefaultPresence() PresenceConfig {
	return PresenceConfig{
		HeartbeatInterval: 10 * time.Second,
		UserTimeout:       30 * time.Second,
		StaleTimeout:      120 * time.Second,
		CleanupInterval:   60 * time.Second,
		DebounceDelay:     2 * time.Second,
		CleanupSchedule:   "@every 60s",
		CleanupTimeout:    10 * time.Second,
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			BasePath:        "/api",
			Env:             "dev",
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logger: LoggerConfig{Level: "info"},
		Database: DatabaseConfig{
			MaxOpenConns:    100,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			RetryInterval:   5 * time.Second,
		},
		NATS:     NATSConfig{Name: "workspace-service"},
		Notifier: NotifierConfig{Driver: "memory"},
		Presence: DefaultPresence(),
		TextGen: TextGenConfig{
			BaseURL:     "https://api.anthropic.com",
			Model:       "claude-3-5-sonnet-20241022",
			MaxTokens:   3000,
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		CORS: CORSConfig{AllowedOrigins: "*"},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		cfg.NATS.URL = natsURL
	}
	if driver := os.Getenv("NOTIFIER_DRIVER"); driver != "" {
		cfg.Notifier.Driver = strings.ToLower(driver)
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.TextGen.APIKey = apiKey
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = origins
	}

	overrideDuration("PRESENCE_HEARTBEAT_INTERVAL", &cfg.Presence.HeartbeatInterval)
	overrideDuration("PRESENCE_USER_TIMEOUT", &cfg.Presence.UserTimeout)
	overrideDuration("PRESENCE_STALE_TIMEOUT", &cfg.Presence.StaleTimeout)
	overrideDuration("PRESENCE_CLEANUP_INTERVAL", &cfg.Presence.CleanupInterval)
	overrideDuration("PRESENCE_DEBOUNCE_DELAY", &cfg.Presence.DebounceDelay)
	overrideDuration("PRESENCE_CLEANUP_TIMEOUT", &cfg.Presence.CleanupTimeout)

	return cfg, nil
}

func overrideDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
