// Package config loads service configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/damon-houk/fx-monitor/internal/infrastructure/logger"
)

const (
	envPrefix  = "FXMON"
	configName = "fxmonitor"

	StoreBadger = "badger"
	StoreMemory = "memory"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Sources SourcesConfig `mapstructure:"sources"`
	AI      AIConfig      `mapstructure:"ai"`
	News    NewsConfig    `mapstructure:"news"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// SourceConfig configures one upstream rate provider. Empty values keep the
// adapter's built-in defaults.
type SourceConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TTL        time.Duration `mapstructure:"ttl"`
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
}

// SourcesConfig groups the rate providers
type SourcesConfig struct {
	Commercial SourceConfig `mapstructure:"commercial"`
	Mirror     SourceConfig `mapstructure:"mirror"`
	ECB        SourceConfig `mapstructure:"ecb"`
	FRED       SourceConfig `mapstructure:"fred"`
}

// AIConfig holds text generation and analysis cache settings
type AIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	SimpleTimeout   time.Duration `mapstructure:"simple_timeout"`
	ResearchTimeout time.Duration `mapstructure:"research_timeout"`
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	Store           string        `mapstructure:"store"` // "badger" or "memory"
}

// NewsConfig holds the headline feeds used for the news context category
type NewsConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Feeds   []string      `mapstructure:"feeds"`
	TTL     time.Duration `mapstructure:"ttl"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the configuration. When path is empty, ./config/fxmonitor.yaml
// is used if present. Environment variables override file values.
// Format: FXMON_<SECTION>_<KEY>, e.g. FXMON_SERVER_PORT, plus the
// conventional EXCHANGE_RATE_API_KEY, FRED_API_KEY, ANTHROPIC_API_KEY,
// PORT and LOG_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindConventionalEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	// Web research runs two model calls back to back
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("logging.level", "info")

	for _, name := range []string{"commercial", "mirror", "ecb", "fred"} {
		v.SetDefault("sources."+name+".base_url", "")
		v.SetDefault("sources."+name+".api_key", "")
		v.SetDefault("sources."+name+".timeout", 10*time.Second)
	}
	v.SetDefault("sources.commercial.api_key", "demo")
	v.SetDefault("sources.commercial.ttl", 5*time.Minute)
	v.SetDefault("sources.mirror.ttl", 5*time.Minute)
	v.SetDefault("sources.mirror.history_ttl", time.Hour)
	v.SetDefault("sources.ecb.ttl", time.Hour)
	v.SetDefault("sources.fred.ttl", time.Hour)
	v.SetDefault("sources.fred.history_ttl", time.Hour)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.simple_timeout", 30*time.Second)
	v.SetDefault("ai.research_timeout", 90*time.Second)
	v.SetDefault("ai.analysis_timeout", 45*time.Second)
	v.SetDefault("ai.cache_ttl", time.Hour)
	v.SetDefault("ai.store", StoreBadger)

	v.SetDefault("news.enabled", true)
	v.SetDefault("news.feeds", []string{})
	v.SetDefault("news.ttl", 10*time.Minute)
	v.SetDefault("news.timeout", 10*time.Second)
}

// bindConventionalEnv maps the unprefixed variable names the service has
// always honored. The prefixed form wins when both are set.
func bindConventionalEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"sources.commercial.api_key": "EXCHANGE_RATE_API_KEY",
		"sources.fred.api_key":       "FRED_API_KEY",
		"ai.api_key":                 "ANTHROPIC_API_KEY",
		"server.port":                "PORT",
		"logging.level":              "LOG_LEVEL",
	}
	for key, env := range bindings {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	switch c.AI.Store {
	case StoreBadger, StoreMemory:
	default:
		return fmt.Errorf("invalid ai.store %q: must be %q or %q", c.AI.Store, StoreBadger, StoreMemory)
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
