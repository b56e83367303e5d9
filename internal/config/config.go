package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
	GRPCPort int    `mapstructure:"grpc_port"`
}

// Addr is the HTTP listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GRPCAddr is the gRPC health listen address.
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

type BackendConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryCount     int    `mapstructure:"retry_count"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type DashboardConfig struct {
	PageSize          int    `mapstructure:"page_size"`
	DefaultPeriodDays int    `mapstructure:"default_period_days"`
	RefreshSchedule   string `mapstructure:"refresh_schedule"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix scopes environment overrides, e.g. TURBINEWATCH_BACKEND_URL.
const EnvPrefix = "TURBINEWATCH"

// Load reads configuration from file and environment variables. A .env
// file in the working directory is loaded first if present. An empty path
// means defaults plus environment only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// First unmarshal into a map to handle type conversions
		var rawConfig map[string]interface{}
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
		}

		// Convert the map to YAML again
		data, err = yaml.Marshal(rawConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal raw config: %w", err)
		}

		// Expand environment variables
		expandedData := os.ExpandEnv(string(data))

		if err := v.ReadConfig(bytes.NewBufferString(expandedData)); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

var ErrInvalid = errors.New("invalid config")

// Validate rejects values the dashboard cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Backend.URL == "":
		return fmt.Errorf("%w: backend.url is required", ErrInvalid)
	case c.Backend.TimeoutSeconds < 0:
		return fmt.Errorf("%w: backend.timeout_seconds must not be negative", ErrInvalid)
	case c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > 100:
		return fmt.Errorf("%w: dashboard.page_size must be between 1 and 100", ErrInvalid)
	case c.Dashboard.DefaultPeriodDays < 1 || c.Dashboard.DefaultPeriodDays > 365:
		return fmt.Errorf("%w: dashboard.default_period_days must be between 1 and 365", ErrInvalid)
	case c.Cache.Size < 1:
		return fmt.Errorf("%w: cache.size must be positive", ErrInvalid)
	case c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1:
		return fmt.Errorf("%w: rate_limit needs positive rps and burst", ErrInvalid)
	}
	if c.Dashboard.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Dashboard.RefreshSchedule); err != nil {
			return fmt.Errorf("%w: dashboard.refresh_schedule: %v", ErrInvalid, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 50051)

	v.SetDefault("backend.url", "http://localhost:8080/api")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("backend.retry_count", 0)

	v.SetDefault("dashboard.page_size", 10)
	v.SetDefault("dashboard.default_period_days", 30)
	v.SetDefault("dashboard.refresh_schedule", "*/5 * * * *")

	v.SetDefault("cache.size", 256)

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
