// Package config loads whereabouts configuration via Viper.
//
// Precedence: defaults < whereabouts.toml < WHEREABOUTS_* environment
// variables. The config file is searched in the working directory and in
// ~/.whereabouts/.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teranos/whereabouts/errors"
)

// Config is the top-level whereabouts configuration
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Models     ModelsConfig     `mapstructure:"models"`
	Export     ExportConfig     `mapstructure:"export"`
	Log        LogConfig        `mapstructure:"log"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP/WebSocket server
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// PredictRatePerSecond limits inbound messages per prediction session.
	// Burst allows short bursts above the sustained rate.
	PredictRatePerSecond float64 `mapstructure:"predict_rate_per_second"`
	PredictRateBurst     int     `mapstructure:"predict_rate_burst"`
}

// ClassifierConfig configures the external classifier service.
// The classifier is an opaque collaborator reached over HTTP; whereabouts
// never interprets model internals.
type ClassifierConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetryCount     int    `mapstructure:"retry_count"`
}

// Timeout returns the classifier request timeout as a duration
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ModelsConfig configures the trained-model artifact registry
type ModelsConfig struct {
	// TrainedDir holds one subdirectory per place id, produced by the
	// external training step from exported CSV data.
	TrainedDir string `mapstructure:"trained_dir"`
}

// ExportConfig configures CSV export output
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "whereabouts.db")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
	})
	v.SetDefault("server.predict_rate_per_second", 20.0)
	v.SetDefault("server.predict_rate_burst", 40)

	v.SetDefault("classifier.endpoint", "http://localhost:8100")
	v.SetDefault("classifier.timeout_seconds", 10)
	v.SetDefault("classifier.retry_count", 2)

	v.SetDefault("models.trained_dir", "trained")
	v.SetDefault("export.output_dir", "output")

	v.SetDefault("log.json", false)
}

// Load reads configuration from defaults, config file and environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("whereabouts")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.whereabouts")

	SetDefaults(v)

	v.SetEnvPrefix("WHEREABOUTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
