package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	DTU      SourceConfig   `mapstructure:"dtu"`
	Meter    SourceConfig   `mapstructure:"meter"`
	Poll     PollConfig     `mapstructure:"poll"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SourceConfig locates one telemetry source.
type SourceConfig struct {
	URL string `mapstructure:"url"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	// RateLimit caps outgoing source requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// Configured reports whether a database was set up at all; without one
// the collector falls back to the file sink.
func (c DatabaseConfig) Configured() bool {
	return c.Host != ""
}

// ConnString builds the lib/pq keyword connection string.
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SinkConfig locates the append-only snapshot files used when no
// database is configured.
type SinkConfig struct {
	Dir string `mapstructure:"dir"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file, expanding $ENV references in the
// file body before parsing so secrets can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadConfig(strings.NewReader(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.host", "0.0.0.0")

	v.SetDefault("poll.interval", "60s")
	v.SetDefault("poll.rate_limit", 1.0)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("sink.dir", ".")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
