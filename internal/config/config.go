// Package config loads application configuration and initializes logging.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	NCBI    NCBIConfig    `yaml:"ncbi" mapstructure:"ncbi"`
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// NCBIConfig configures access to the datasets CLI.
type NCBIConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	Binary      string `yaml:"binary" mapstructure:"binary"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout for datasets invocations.
func (c NCBIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ResolveConfig configures the resolution stage.
type ResolveConfig struct {
	MaxWorkers int    `yaml:"max_workers" mapstructure:"max_workers"`
	CacheDir   string `yaml:"cache_dir" mapstructure:"cache_dir"`
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
}

// ServerConfig configures the resolve API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. The NCBI API key is
// additionally resolved from NCBI_API_KEY or a local .env file, once, at
// startup; its presence fixes the request rate for the process lifetime.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TAXON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ncbi.binary", "datasets")
	v.SetDefault("ncbi.timeout_secs", 120)
	v.SetDefault("resolve.max_workers", 3)
	v.SetDefault("resolve.cache_dir", "ncbi_cache")
	v.SetDefault("resolve.results_dir", "results")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.path", "results/runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if cfg.NCBI.APIKey == "" {
		cfg.NCBI.APIKey = ResolveAPIKey(".env")
	}

	return &cfg, nil
}

// ResolveAPIKey looks up the NCBI API key from the environment, then from
// a dotenv file. Placeholder values from a template .env are ignored.
func ResolveAPIKey(envFile string) string {
	if key := strings.TrimSpace(os.Getenv("NCBI_API_KEY")); key != "" {
		return key
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		return ""
	}
	key := strings.TrimSpace(env["NCBI_API_KEY"])
	if key == "" || key == "your_api_key_here" {
		return ""
	}
	return key
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
