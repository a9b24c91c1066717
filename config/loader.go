package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
// NASC_LOGGING_LEVEL sets logging.level, NASC_STRICT sets strict.
const EnvPrefix = "NASC"

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // YAML file, optional
	EnvFile    string // .env file, optional
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets the YAML config file to read.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets the .env file to load before environment variables are read.
// Variables already present in the environment take precedence.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load builds a Config from, in increasing precedence, built-in defaults, the
// YAML config file, and NASC_* environment variables (including those from
// the .env file). The result has defaults applied and is validated.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v)

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", lc.ConfigFile)
		}
	}

	if lc.EnvFile != "" {
		if _, err := os.Stat(lc.EnvFile); err == nil {
			if err := godotenv.Load(lc.EnvFile); err != nil {
				return nil, errors.Wrapf(err, "failed to load env file %s", lc.EnvFile)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that the
// config file does not mention.
func setDefaults(v *viper.Viper) {
	v.SetDefault("name", DefaultName)
	v.SetDefault("strict", false)
	v.SetDefault("validate_on_boot", false)
	v.SetDefault("tracing", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.timestamp", true)
	v.SetDefault("logging.caller", false)
}
