package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. MUNHUB_DATABASE_URI.
const EnvPrefix = "munhub"

// MemoryURI selects the in-process store instead of MongoDB.
const MemoryURI = "memory://"

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins" split_words:"true"`
		TrustedProxies []string `yaml:"trustedProxies" split_words:"true"`
	} `yaml:"server"`

	Database struct {
		URI  string `yaml:"uri"`
		Name string `yaml:"name"`
	} `yaml:"database"`

	JWT struct {
		Secret        string `yaml:"secret"`
		ExpiryMinutes int    `yaml:"expiryMinutes" split_words:"true"`
	} `yaml:"jwt"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Seed struct {
		AdminUsername string `yaml:"adminUsername" split_words:"true"`
		AdminPassword string `yaml:"adminPassword" split_words:"true"`
	} `yaml:"seed"`

	RateLimit struct {
		LoginAttempts int           `yaml:"loginAttempts" split_words:"true"`
		Window        time.Duration `yaml:"window"`
	} `yaml:"rateLimit" split_words:"true"`
}

// Default returns a config that runs locally against the in-memory store.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 1313
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.Database.URI = MemoryURI
	cfg.Database.Name = "munhub"
	cfg.JWT.ExpiryMinutes = 24 * 60
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.RateLimit.LoginAttempts = 10
	cfg.RateLimit.Window = time.Minute
	return &cfg
}

// LoadConfig reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	if c.JWT.ExpiryMinutes <= 0 {
		errs = append(errs, errors.New("jwt.expiryMinutes must be positive"))
	}
	if c.RateLimit.LoginAttempts <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rateLimit needs positive loginAttempts and window"))
	}
	return errors.Join(errs...)
}

// UsesMemoryStore reports whether the database URI selects the in-process store.
func (c *Config) UsesMemoryStore() bool {
	return c.Database.URI == "" || c.Database.URI == MemoryURI
}

func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryMinutes) * time.Minute
}
