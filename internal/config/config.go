package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAdviceEndpoint = "https://gemma.us.gaianet.network/v1/chat/completions"
	DefaultAdviceModel    = "gemma"
)

type Config struct {
	// Server
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Chat-completion endpoint
	AdviceEndpoint string `mapstructure:"advice_endpoint"`
	AdviceModel    string `mapstructure:"advice_model"`
	// Zero leaves the HTTP client without a timeout.
	AdviceTimeout time.Duration `mapstructure:"advice_timeout"`
}

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every key
// needs a default here to be overridable from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("cors_origin", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("advice_endpoint", DefaultAdviceEndpoint)
	v.SetDefault("advice_model", DefaultAdviceModel)
	v.SetDefault("advice_timeout", time.Duration(0))
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	u, err := url.Parse(c.AdviceEndpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("advice_endpoint must be an absolute URL, got %q", c.AdviceEndpoint)
	}
	if strings.TrimSpace(c.AdviceModel) == "" {
		return fmt.Errorf("advice_model is required")
	}
	if c.AdviceTimeout < 0 {
		return fmt.Errorf("advice_timeout must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
