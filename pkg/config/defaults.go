package config

import "time"

// Defaults returns the built-in configuration defaults (spec.md §6), before
// any environment/YAML overlay is applied.
func Defaults() *Config {
	return &Config{
		MaxConcurrentReports: 2,
		CacheCapacity:        64,
		CacheTTL:             30 * time.Minute,
		CompletedJobTTL:      10 * time.Minute,
		FastReturnThreshold:  750 * time.Millisecond,
		HTTPTimeout:          30 * time.Second,
		JobTimeout:           10 * time.Minute,
		MaxInflightPerJob:    4,
		RefreshMargin:        60 * time.Second,
	}
}
