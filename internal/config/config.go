// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package config loads process configuration from an optional YAML file with
// command-line flag overrides. Configuration is loaded once at startup and
// treated as immutable for the process lifetime.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Signing algorithms accepted for token.algorithm. The token model is a
// shared secret, so only HMAC variants are allowed.
var hmacAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Database holds storage backend settings.
type Database struct {
	URL string `koanf:"url"`
}

// Token holds the token codec parameters: shared secret, signing algorithm,
// and expiry in minutes.
type Token struct {
	Secret        string `koanf:"secret"`
	Algorithm     string `koanf:"algorithm"`
	ExpiryMinutes int    `koanf:"expiry_minutes"`
}

// TTL returns the token lifetime as a duration.
func (t Token) TTL() time.Duration {
	return time.Duration(t.ExpiryMinutes) * time.Minute
}

// Server holds listen addresses.
type Server struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// Log holds logging settings.
type Log struct {
	Format string `koanf:"format"`
}

// Config is the full process configuration.
type Config struct {
	Database Database `koanf:"database"`
	Token    Token    `koanf:"token"`
	Server   Server   `koanf:"server"`
	Log      Log      `koanf:"log"`
}

// RegisterFlags declares the config flags with their defaults on the given
// flag set. Flag defaults are the configuration defaults.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("database.url", "", "PostgreSQL connection string")
	f.String("token.secret", "", "token signing secret")
	f.String("token.algorithm", "HS256", "token signing algorithm (HS256, HS384, HS512)")
	f.Int("token.expiry_minutes", 30, "token expiry in minutes")
	f.String("server.addr", ":8080", "HTTP listen address")
	f.String("server.metrics_addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	f.String("log.format", "json", "log format (json or text)")
}

// Load reads the optional YAML file at path, overlays flag values, and
// validates the result. Flags changed on the command line win over the file;
// flag defaults apply only where the file is silent.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Token.Secret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token.secret is required")
	}
	if !hmacAlgorithms[c.Token.Algorithm] {
		return oops.Code("CONFIG_INVALID").
			With("algorithm", c.Token.Algorithm).
			Errorf("token.algorithm must be HS256, HS384, or HS512")
	}
	if c.Token.ExpiryMinutes <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token.expiry_minutes must be positive")
	}
	if c.Server.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("server.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text'")
	}
	return nil
}
