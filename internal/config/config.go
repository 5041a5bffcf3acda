package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config maps the whole application configuration. Keys use mapstructure tags so
// the same names work in YAML files and, upper-cased with dots replaced by
// underscores, in environment variables (api.base_url -> API_BASE_URL).
type Config struct {
	// API is the remote shortener the client talks to
	API struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"api"`

	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`

	Dashboard struct {
		WatchIntervalSeconds int `mapstructure:"watch_interval_seconds"`
	} `mapstructure:"dashboard"`

	// Server, Database and Analytics only matter to run-stub-server
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"server"`

	Database struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"database"`

	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`
		WorkerCount int `mapstructure:"worker_count"`
	} `mapstructure:"analytics"`
}

// WatchInterval returns the dashboard refresh interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Dashboard.WatchIntervalSeconds) * time.Second
}

// LoadConfig loads the configuration. A .env file in the working directory is
// applied to the environment first (missing is fine), then defaults, then the
// YAML file, then environment variables. configFile overrides the default
// ./configs/config.yaml lookup; when it is set the file must exist.
func LoadConfig(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("dashboard.watch_interval_seconds", 30)
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("database.name", "shortlink_stub.db")
	v.SetDefault("analytics.buffer_size", 1000)
	v.SetDefault("analytics.worker_count", 5)
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.Dashboard.WatchIntervalSeconds <= 0 {
		return fmt.Errorf("dashboard.watch_interval_seconds must be positive, got %d", c.Dashboard.WatchIntervalSeconds)
	}
	if c.Analytics.WorkerCount <= 0 {
		return fmt.Errorf("analytics.worker_count must be positive, got %d", c.Analytics.WorkerCount)
	}
	if c.Analytics.BufferSize < 0 {
		return fmt.Errorf("analytics.buffer_size must not be negative, got %d", c.Analytics.BufferSize)
	}
	return nil
}
