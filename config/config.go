// Package config loads client settings from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantor/tradeapi/client"
)

// File is the on-disk shape of a client configuration. Durations are
// Go duration strings ("30s", "1500ms"). Zero values fall back to the
// client defaults.
type File struct {
	Server struct {
		Protocol string `yaml:"protocol"`
		Host     string `yaml:"host"`
		Version  string `yaml:"version"`
	} `yaml:"server"`
	Timeout          string `yaml:"timeout"`
	RateLimit        string `yaml:"rate_limit"`
	DisableRateLimit bool   `yaml:"disable_rate_limit"`
	ErrorKey         string `yaml:"error_key"`
	UserAgent        string `yaml:"user_agent"`
	Retry            *struct {
		MaxAttempts       int     `yaml:"max_attempts"`
		BackoffFactor     float64 `yaml:"backoff_factor"`
		BackoffMax        string  `yaml:"backoff_max"`
		RetryableStatuses []int   `yaml:"retryable_statuses"`
	} `yaml:"retry"`
}

// Load reads a YAML config file and converts it to a client.Config.
func Load(path string) (client.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse converts raw YAML to a client.Config.
func Parse(data []byte) (client.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return client.Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}

	if f.Server.Protocol == "" || f.Server.Host == "" {
		return client.Config{}, fmt.Errorf("config missing server protocol or host")
	}

	cfg := client.Config{
		Server:           client.NewServer(f.Server.Protocol, f.Server.Host, f.Server.Version),
		DisableRateLimit: f.DisableRateLimit,
		ErrorKey:         f.ErrorKey,
		UserAgent:        f.UserAgent,
	}

	var err error
	if cfg.Timeout, err = parseDuration(f.Timeout, "timeout"); err != nil {
		return client.Config{}, err
	}
	if cfg.RateLimit, err = parseDuration(f.RateLimit, "rate_limit"); err != nil {
		return client.Config{}, err
	}

	if f.Retry != nil {
		policy := client.DefaultRetryPolicy()
		if f.Retry.MaxAttempts > 0 {
			policy.MaxAttempts = f.Retry.MaxAttempts
		}
		if f.Retry.BackoffFactor > 0 {
			policy.BackoffFactor = f.Retry.BackoffFactor
		}
		if policy.BackoffMax, err = parseDuration(f.Retry.BackoffMax, "retry.backoff_max"); err != nil {
			return client.Config{}, err
		}
		if policy.BackoffMax == 0 {
			policy.BackoffMax = client.DefaultRetryPolicy().BackoffMax
		}
		if len(f.Retry.RetryableStatuses) > 0 {
			policy.RetryableStatuses = make(map[int]bool, len(f.Retry.RetryableStatuses))
			for _, s := range f.Retry.RetryableStatuses {
				policy.RetryableStatuses[s] = true
			}
		}
		cfg.Retry = policy
	}

	return cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}
	return d, nil
}
