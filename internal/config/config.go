package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// CurrentVersion is written by Default and `config init`.
const CurrentVersion = "1"

// Config represents ~/.salon-sync/config.yaml.
type Config struct {
	Version string       `yaml:"version"`
	Client  ClientConfig `yaml:"client"`
	Server  ServerConfig `yaml:"server"`
}

// ClientConfig holds settings for commands that talk to the backend.
type ClientConfig struct {
	APIURL   string `yaml:"api_url"`
	SalonID  string `yaml:"salon_id,omitempty"`
	Token    string `yaml:"token,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// ServerConfig holds settings for `salon-sync serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	DBConn         string   `yaml:"db_conn,omitempty"`
	RedisAddr      string   `yaml:"redis_addr,omitempty"`
	RedisPass      string   `yaml:"redis_pass,omitempty"`
	UploadDir      string   `yaml:"upload_dir,omitempty"`
	PublicBaseURL  string   `yaml:"public_base_url,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes,omitempty"`
	RateLimit      int      `yaml:"rate_limit,omitempty"`
	TrustProxy     bool     `yaml:"trust_proxy,omitempty"`
	LogLevel       string   `yaml:"log_level,omitempty"`
}

// Default returns a config pointing at a local server.
func Default() Config {
	return Config{
		Version: CurrentVersion,
		Client: ClientConfig{
			APIURL:   "http://localhost:8080",
			LogLevel: "warn",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: 5 << 20,
			RateLimit:      5,
			LogLevel:       "info",
		},
	}
}

// Parse parses config.yaml bytes into a Config. Missing fields keep their
// Default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Marshal serializes a Config to YAML bytes.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Load reads the config file at path (a missing file yields Default), loads
// envFile into the process environment without overriding variables that
// are already set, and applies environment overrides.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any of the recognized environment variables
// that are set and non-empty.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Client.APIURL, "SALON_API_URL")
	setString(&cfg.Client.SalonID, "SALON_ID")
	setString(&cfg.Client.Token, "SALON_TOKEN")
	setString(&cfg.Client.LogLevel, "SALON_LOG_LEVEL")

	setString(&cfg.Server.Addr, "HTTP_ADDR")
	setString(&cfg.Server.DBConn, "DB_CONN")
	setString(&cfg.Server.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Server.RedisPass, "REDIS_PASS")
	setString(&cfg.Server.UploadDir, "UPLOAD_DIR")
	setString(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRUST_PROXY: invalid bool %q", v)
		}
		cfg.Server.TrustProxy = b
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("MAX_UPLOAD_BYTES: invalid size %q", v)
		}
		cfg.Server.MaxUploadBytes = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Write saves cfg to path. The parent directory must exist.
func Write(path string, cfg Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Redacted returns a copy of cfg with secrets masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Client.Token = mask(c.Client.Token)
	c.Server.RedisPass = mask(c.Server.RedisPass)
	c.Server.DBConn = redactDSN(c.Server.DBConn)
	c.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return c
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":********@" + host
}
