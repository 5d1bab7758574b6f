// Copyright 2025 FluxHook Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hookd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"fluxhook/auth"
)

// Duration decodes from YAML strings in time.ParseDuration form, like
// "15m" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full service configuration. Values load in three
// layers: built-in defaults, then an optional YAML file, then
// environment overrides.
type Config struct {
	Port int `yaml:"port"`

	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Audit    AuditConfig    `yaml:"audit"`
}

// AuthConfig carries the decision-service knobs.
type AuthConfig struct {
	// PublishUsername is the trusted-transport identity.
	PublishUsername string `yaml:"publish_username"`

	// MaxDateSkew bounds credential timestamp drift. Negative disables
	// the check.
	MaxDateSkew Duration `yaml:"max_date_skew"`

	ForceCleanSession bool `yaml:"force_clean_session"`

	// Host and Path name the endpoint the credential signature covers.
	Host string `yaml:"host"`
	Path string `yaml:"path"`
}

// DatabaseConfig describes the credential store connection and the
// resolver statements.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`

	// URL overrides the composed connection string when set.
	URL string `yaml:"url"`

	Statements StatementsConfig `yaml:"statements"`
}

// StatementsConfig overrides the resolver and audit SQL. Empty fields
// keep the package defaults.
type StatementsConfig struct {
	VerifyToken string `yaml:"verify_token"`
	Token       string `yaml:"token"`
	Node        string `yaml:"node"`
	Audit       string `yaml:"audit"`
}

// RedisConfig enables the actor cache when Addr is set.
type RedisConfig struct {
	Addr string   `yaml:"addr"`
	TTL  Duration `yaml:"ttl"`
}

// AuditConfig carries the audit queue knobs.
type AuditConfig struct {
	ServiceName string `yaml:"service_name"`
	QueueSize   int    `yaml:"queue_size"`
	Workers     int    `yaml:"workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Port: 8080,
		Auth: AuthConfig{
			PublishUsername: auth.DefaultPublishUsername,
			MaxDateSkew:     Duration(auth.DefaultMaxDateSkew),
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			Name:    "fluxhook",
			User:    "fluxhook",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			TTL: Duration(auth.DefaultActorCacheTTL),
		},
		Audit: AuditConfig{
			ServiceName: auth.DefaultAuditServiceName,
			QueueSize:   auth.DefaultAuditQueueSize,
			Workers:     auth.DefaultAuditWorkers,
		},
	}
}

// LoadConfig builds the configuration: defaults, then the YAML file at
// path when non-empty, then environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT value %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("PUBLISH_USERNAME"); v != "" {
		c.Auth.PublishUsername = v
	}
	if v := os.Getenv("MAX_DATE_SKEW"); v != "" {
		skew, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_DATE_SKEW value %q: %w", v, err)
		}
		c.Auth.MaxDateSkew = Duration(skew)
	}
	if v := os.Getenv("FORCE_CLEAN_SESSION"); v != "" {
		c.Auth.ForceCleanSession = v == "true"
	}
	if v := os.Getenv("HOOK_HOST"); v != "" {
		c.Auth.Host = v
	}
	if v := os.Getenv("HOOK_PATH"); v != "" {
		c.Auth.Path = v
	}

	if v := os.Getenv("DATABASE_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_PORT value %q: %w", v, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DATABASE_SSLMODE"); v != "" {
		c.Database.SSLMode = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	return nil
}

// ConnectionURL returns the lib/pq connection string, preferring the
// explicit URL when one is configured.
func (d DatabaseConfig) ConnectionURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
