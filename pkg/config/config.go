// Package config holds the process-wide, immutable Config value described
// in SPEC_FULL.md §4.9 — no package-level globals, mirroring the teacher
// repository's config.Config convention.
package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config is the orchestrator's process-wide configuration. Constructed once
// by Load and passed by reference into every component that needs it;
// never mutated afterwards.
type Config struct {
	// Credentials (spec.md §6) — ClientID/ClientSecret are env-var only,
	// never read from YAML; BaseURL comes from env and the overlay's
	// base_url can override it.
	ClientID     string
	ClientSecret string
	BaseURL      string

	// Tunables (spec.md §6), overridable via an optional YAML overlay.
	MaxConcurrentReports int           `yaml:"max_concurrent_reports"`
	CacheCapacity        int           `yaml:"cache_capacity"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	CompletedJobTTL      time.Duration `yaml:"completed_job_ttl"`
	FastReturnThreshold  time.Duration `yaml:"fast_return_threshold"`
	HTTPTimeout          time.Duration `yaml:"http_timeout"`
	JobTimeout           time.Duration `yaml:"job_timeout"`
	MaxInflightPerJob    int           `yaml:"max_inflight_per_job"`
	RefreshMargin        time.Duration `yaml:"refresh_margin"`
}

// yamlOverlay is the shape of the optional tunables file. Secrets never
// appear here (see ClientID/ClientSecret above).
type yamlOverlay struct {
	MaxConcurrentReports *int    `yaml:"max_concurrent_reports"`
	CacheCapacity        *int    `yaml:"cache_capacity"`
	CacheTTLSeconds      *int    `yaml:"cache_ttl_seconds"`
	CompletedJobTTLSec   *int    `yaml:"completed_job_ttl_seconds"`
	FastReturnThreshMs   *int    `yaml:"fast_return_threshold_ms"`
	HTTPTimeoutSeconds   *int    `yaml:"http_timeout_seconds"`
	JobTimeoutSeconds    *int    `yaml:"job_timeout_seconds"`
	MaxInflightPerJob    *int    `yaml:"max_inflight_per_job"`
	RefreshMarginSeconds *int    `yaml:"refresh_margin_seconds"`
	BaseURL              *string `yaml:"base_url"`
}

// Load builds a Config from environment variables, optionally overlaid with
// a YAML tunables file at overlayPath (pass "" to skip). Required env vars:
// PULLSCOPE_CLIENT_ID, PULLSCOPE_CLIENT_SECRET.
func Load(overlayPath string) (*Config, error) {
	cfg := Defaults()

	cfg.ClientID = os.Getenv("PULLSCOPE_CLIENT_ID")
	cfg.ClientSecret = os.Getenv("PULLSCOPE_CLIENT_SECRET")
	if v := os.Getenv("PULLSCOPE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if overlayPath != "" {
		if err := applyOverlay(cfg, overlayPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverlay(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config overlay %s: %w", path, err)
	}

	var overlay yamlOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}

	var delta Config
	if overlay.BaseURL != nil {
		delta.BaseURL = *overlay.BaseURL
	}
	if overlay.MaxConcurrentReports != nil {
		delta.MaxConcurrentReports = *overlay.MaxConcurrentReports
	}
	if overlay.CacheCapacity != nil {
		delta.CacheCapacity = *overlay.CacheCapacity
	}
	if overlay.CacheTTLSeconds != nil {
		delta.CacheTTL = time.Duration(*overlay.CacheTTLSeconds) * time.Second
	}
	if overlay.CompletedJobTTLSec != nil {
		delta.CompletedJobTTL = time.Duration(*overlay.CompletedJobTTLSec) * time.Second
	}
	if overlay.FastReturnThreshMs != nil {
		delta.FastReturnThreshold = time.Duration(*overlay.FastReturnThreshMs) * time.Millisecond
	}
	if overlay.HTTPTimeoutSeconds != nil {
		delta.HTTPTimeout = time.Duration(*overlay.HTTPTimeoutSeconds) * time.Second
	}
	if overlay.JobTimeoutSeconds != nil {
		delta.JobTimeout = time.Duration(*overlay.JobTimeoutSeconds) * time.Second
	}
	if overlay.MaxInflightPerJob != nil {
		delta.MaxInflightPerJob = *overlay.MaxInflightPerJob
	}
	if overlay.RefreshMarginSeconds != nil {
		delta.RefreshMargin = time.Duration(*overlay.RefreshMarginSeconds) * time.Second
	}

	// mergo.WithOverride lets only the fields the overlay actually set
	// (i.e. non-zero on delta) replace the corresponding default.
	if err := mergo.Merge(cfg, delta, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config overlay %s: %w", path, err)
	}
	return nil
}

// Validate checks that required fields are present and tunables are sane.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return &LoadError{Field: "client_id", Err: ErrMissingRequiredField}
	}
	if c.ClientSecret == "" {
		return &LoadError{Field: "client_secret", Err: ErrMissingRequiredField}
	}
	if c.BaseURL == "" {
		return &LoadError{Field: "base_url", Err: ErrMissingRequiredField}
	}
	if c.MaxConcurrentReports < 1 {
		return &LoadError{Field: "max_concurrent_reports", Err: ErrInvalidValue}
	}
	if c.CacheCapacity < 1 {
		return &LoadError{Field: "cache_capacity", Err: ErrInvalidValue}
	}
	if c.MaxInflightPerJob < 1 {
		return &LoadError{Field: "max_inflight_per_job", Err: ErrInvalidValue}
	}
	return nil
}
