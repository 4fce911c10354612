// Package config loads the service configuration from YAML files and
// environment variables. Env vars win over file values and use the IDB
// prefix: IDB_PROVIDERS_FMP_KEY, IDB_API_PORT, and so on.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete service configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"  yaml:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port the server binds to.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// ProvidersConfig holds upstream API credentials. EDGAR needs no key, only
// the statement and macro providers do.
type ProvidersConfig struct {
	FMPKey  string `mapstructure:"fmp_key"  yaml:"fmp_key"`
	FREDKey string `mapstructure:"fred_key" yaml:"fred_key"`
}

// PipelineConfig tunes the fundamentals orchestration.
type PipelineConfig struct {
	BatchConcurrency int `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
	BatchLimit       int `mapstructure:"batch_limit"       yaml:"batch_limit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads configuration from the first config.yaml found in ./config,
// ~/.investors-daily-brief, or /etc/investors-daily-brief, then applies
// environment overrides. A missing file is fine; env and defaults suffice.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".investors-daily-brief"))
	v.AddConfigPath("/etc/investors-daily-brief")

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyKeyFallbacks(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from an explicit path. The file must
// exist; env overrides still apply.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyKeyFallbacks(&cfg)
	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("IDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("pipeline.batch_concurrency", 4)
	v.SetDefault("pipeline.batch_limit", 25)

	v.SetDefault("logging.level", "info")
}

// applyKeyFallbacks honors the providers' conventional env var names so a
// plain FMP_API_KEY in the environment works without the IDB prefix.
func applyKeyFallbacks(cfg *Config) {
	if cfg.Providers.FMPKey == "" {
		cfg.Providers.FMPKey = os.Getenv("FMP_API_KEY")
	}
	if cfg.Providers.FREDKey == "" {
		cfg.Providers.FREDKey = os.Getenv("FRED_API_KEY")
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
