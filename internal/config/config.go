// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration shared by the server and the client stub.
type Config struct {
	ListenAddr      string        `yaml:"listen_addr" validate:"required,hostname_port"`
	PublicURL       string        `yaml:"public_url" validate:"required,url"`
	DBPath          string        `yaml:"db_path" validate:"required"`
	DefaultUser     string        `yaml:"default_user" validate:"required"`
	DefaultPassword string        `yaml:"default_password" validate:"required"`
	QueryMode       string        `yaml:"query_mode" validate:"oneof=status detail"`
	SeedOrders      bool          `yaml:"seed_orders"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	Log             Log           `yaml:"log"`
}

// Log holds logger settings. An empty File disables the rotating file sink.
type Log struct {
	Level      string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR"`
	File       string `yaml:"file"`
	ClientFile string `yaml:"client_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=1"`
	Backups    int    `yaml:"backups" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8000",
		PublicURL:       "http://127.0.0.1:8000/",
		DBPath:          "users.db",
		DefaultUser:     "test_user",
		DefaultPassword: "test_password",
		QueryMode:       "status",
		SeedOrders:      true,
		RequestTimeout:  15 * time.Second,
		MaxBodyBytes:    1 << 20,
		Log: Log{
			Level:      "INFO",
			File:       "soapmock.log",
			ClientFile: "soapclient.log",
			MaxSizeMB:  1,
			Backups:    5,
		},
	}
}

// Load builds the configuration in three layers: defaults, then the YAML file
// named by SOAPMOCK_CONFIG_FILE (if set), then individual SOAPMOCK_*
// environment variables. The result is validated before it is returned.
//
// Recognized variables: SOAPMOCK_LISTEN_ADDR, SOAPMOCK_PUBLIC_URL,
// SOAPMOCK_DB_PATH, SOAPMOCK_DEFAULT_USER, SOAPMOCK_DEFAULT_PASSWORD,
// SOAPMOCK_QUERY_MODE, SOAPMOCK_SEED_ORDERS, SOAPMOCK_REQUEST_TIMEOUT,
// SOAPMOCK_MAX_BODY_BYTES, SOAPMOCK_LOG_LEVEL, SOAPMOCK_LOG_FILE,
// SOAPMOCK_CLIENT_LOG_FILE, SOAPMOCK_LOG_MAX_SIZE_MB, SOAPMOCK_LOG_BACKUPS.
func Load() (*Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv("SOAPMOCK_CONFIG_FILE"); ok && path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.Log.Level = strings.ToUpper(strings.TrimSpace(cfg.Log.Level))
	cfg.QueryMode = strings.ToLower(strings.TrimSpace(cfg.QueryMode))

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strVars := map[string]*string{
		"SOAPMOCK_LISTEN_ADDR":      &cfg.ListenAddr,
		"SOAPMOCK_PUBLIC_URL":       &cfg.PublicURL,
		"SOAPMOCK_DB_PATH":          &cfg.DBPath,
		"SOAPMOCK_DEFAULT_USER":     &cfg.DefaultUser,
		"SOAPMOCK_DEFAULT_PASSWORD": &cfg.DefaultPassword,
		"SOAPMOCK_QUERY_MODE":       &cfg.QueryMode,
		"SOAPMOCK_LOG_LEVEL":        &cfg.Log.Level,
		"SOAPMOCK_LOG_FILE":         &cfg.Log.File,
		"SOAPMOCK_CLIENT_LOG_FILE":  &cfg.Log.ClientFile,
	}
	for key, dst := range strVars {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	var errs []error

	if v, ok := os.LookupEnv("SOAPMOCK_SEED_ORDERS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SOAPMOCK_SEED_ORDERS has invalid boolean %q: %w", v, err))
		}
		cfg.SeedOrders = parsed
	}

	if v, ok := os.LookupEnv("SOAPMOCK_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SOAPMOCK_REQUEST_TIMEOUT has invalid duration %q: %w", v, err))
		}
		cfg.RequestTimeout = parsed
	}

	intVars := []struct {
		key string
		set func(int64)
	}{
		{"SOAPMOCK_MAX_BODY_BYTES", func(n int64) { cfg.MaxBodyBytes = n }},
		{"SOAPMOCK_LOG_MAX_SIZE_MB", func(n int64) { cfg.Log.MaxSizeMB = int(n) }},
		{"SOAPMOCK_LOG_BACKUPS", func(n int64) { cfg.Log.Backups = int(n) }},
	}
	for _, iv := range intVars {
		v, ok := os.LookupEnv(iv.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s has invalid integer %q: %w", iv.key, v, err))
			continue
		}
		iv.set(parsed)
	}

	return errors.Join(errs...)
}
