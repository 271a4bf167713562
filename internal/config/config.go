// Package config loads fetch and server settings from defaults, an
// optional orders.yaml file, and ORDERS_-prefixed environment variables.
// Environment variables win over the file, the file wins over defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// FetchSettings configures the orders-fetch pipeline.
type FetchSettings struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	MaxRPS         int           `mapstructure:"max_rps" validate:"gte=1"`
	MaxConcurrent  int           `mapstructure:"max_concurrent" validate:"gte=1"`
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"gte=1"`
	Items          int           `mapstructure:"items" validate:"gte=1"`
	OutputPath     string        `mapstructure:"output_path" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// ServerSettings configures the mock orders API.
type ServerSettings struct {
	Addr        string        `mapstructure:"addr" validate:"required"`
	RateLimit   int           `mapstructure:"rate_limit" validate:"gte=1"`
	Burst       int           `mapstructure:"burst" validate:"gte=1"`
	FailureRate float64       `mapstructure:"failure_rate" validate:"gte=0,lte=1"`
	MinLatency  time.Duration `mapstructure:"min_latency" validate:"gte=0"`
	MaxLatency  time.Duration `mapstructure:"max_latency" validate:"gtefield=MinLatency"`
}

// Settings is the full configuration tree shared by both binaries.
type Settings struct {
	Fetch     FetchSettings  `mapstructure:"fetch"`
	Server    ServerSettings `mapstructure:"server"`
	LogLevel  string         `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	LogPretty bool           `mapstructure:"log_pretty"`
}

// Validate checks the struct tags.
func (s *Settings) Validate() error {
	return validator.New().Struct(s)
}

// Load reads settings. path, when non-empty, is an extra directory searched
// for orders.yaml before the working directory. A missing file is fine;
// defaults and environment variables cover every key.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("orders")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	cfg := &Settings{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)

	v.SetDefault("fetch.base_url", "http://127.0.0.1:8000")
	v.SetDefault("fetch.max_rps", 18)
	v.SetDefault("fetch.max_concurrent", 50)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.items", 1000)
	v.SetDefault("fetch.output_path", "orders.csv")
	v.SetDefault("fetch.request_timeout", 5*time.Second)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.failure_rate", 0.10)
	v.SetDefault("server.min_latency", 50*time.Millisecond)
	v.SetDefault("server.max_latency", 150*time.Millisecond)
}

// bindEnvKeys binds every key explicitly so env vars map even when the key
// is absent from the file, e.g. ORDERS_FETCH_MAX_RPS.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"log_level",
		"log_pretty",
		"fetch.base_url",
		"fetch.max_rps",
		"fetch.max_concurrent",
		"fetch.max_attempts",
		"fetch.items",
		"fetch.output_path",
		"fetch.request_timeout",
		"server.addr",
		"server.rate_limit",
		"server.burst",
		"server.failure_rate",
		"server.min_latency",
		"server.max_latency",
	} {
		v.BindEnv(key)
	}
}
