package domain

import (
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// ResolutionStrategy controls how the resolver fans out.
type ResolutionStrategy string

const (
	// ResolutionConcurrent expands every dependency list in parallel.
	// The first top-level claim for a name depends on scheduling.
	ResolutionConcurrent ResolutionStrategy = "concurrent"

	// ResolutionOrdered expands dependency lists one entry at a time in declared order.
	ResolutionOrdered ResolutionStrategy = "ordered"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// Settings is the runtime configuration of mpm.
type Settings struct {
	Registry     string             `yaml:"registry"`
	Concurrency  int                `yaml:"concurrency"`
	FetchTimeout time.Duration      `yaml:"fetch_timeout"`
	FetchRetries int                `yaml:"fetch_retries"`
	CacheDir     string             `yaml:"cache_dir"`
	CacheTTL     *time.Duration     `yaml:"cache_ttl"`
	Resolution   ResolutionStrategy `yaml:"resolution"`
	LogLevel     string             `yaml:"log_level"`
	Lockfile     string             `yaml:"lockfile"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	ttl := 10 * time.Minute
	return Settings{
		Registry:     DefaultRegistry,
		Concurrency:  16,
		FetchTimeout: 30 * time.Second,
		FetchRetries: 3,
		CacheDir:     DefaultRegistryCacheDir,
		CacheTTL:     &ttl,
		Resolution:   ResolutionConcurrent,
		LogLevel:     "info",
		Lockfile:     DefaultLockFileName,
	}
}

// RegistryCacheTTL returns the disk cache expiry; zero disables the cache.
func (s *Settings) RegistryCacheTTL() time.Duration {
	if s.CacheTTL == nil {
		return 0
	}
	return *s.CacheTTL
}

// Validate rejects values the resolver and registry client cannot work with.
func (s *Settings) Validate() error {
	invalid := func(key string, value any) error {
		return zerr.With(zerr.With(zerr.Wrap(ErrInvalidSetting, "validate settings"), "key", key), "value", value)
	}

	switch {
	case s.Registry == "":
		return invalid("registry", s.Registry)
	case s.Concurrency < 1:
		return invalid("concurrency", s.Concurrency)
	case s.FetchTimeout <= 0:
		return invalid("fetch_timeout", s.FetchTimeout.String())
	case s.FetchRetries < 1:
		return invalid("fetch_retries", s.FetchRetries)
	case s.CacheTTL != nil && *s.CacheTTL < 0:
		return invalid("cache_ttl", s.CacheTTL.String())
	case !slices.Contains([]ResolutionStrategy{ResolutionConcurrent, ResolutionOrdered}, s.Resolution):
		return invalid("resolution", string(s.Resolution))
	case s.Lockfile == "":
		return invalid("lockfile", s.Lockfile)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}
