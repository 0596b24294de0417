// Package config provides the settings loader for mpm.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.SettingsLoader.
type Loader struct {
	Filename string
}

// NewLoader creates a Loader reading .mpmrc.yaml.
func NewLoader() *Loader {
	return &Loader{Filename: domain.SettingsFileName}
}

// Load reads the settings file from cwd, applies environment overrides and validates the result.
// A missing settings file is not an error.
func (l *Loader) Load(cwd string) (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	path := filepath.Join(cwd, l.Filename)
	file, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if file != nil {
		if err := apply(&settings, file); err != nil {
			return nil, zerr.With(err, "path", path)
		}
	}

	applyEnv(&settings)

	if !filepath.IsAbs(settings.CacheDir) {
		settings.CacheDir = filepath.Join(cwd, settings.CacheDir)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func readFile(path string) (*SettingsFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the working directory settings file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed, "read settings file"), "cause", err.Error())
	}

	var file SettingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		parseErr := zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed, "parse settings file"), "path", path)
		return nil, zerr.With(parseErr, "cause", err.Error())
	}
	return &file, nil
}

func apply(s *domain.Settings, f *SettingsFile) error {
	setIf(&s.Registry, f.Registry)
	setIf(&s.Concurrency, f.Concurrency)
	setIf(&s.FetchRetries, f.FetchRetries)
	setIf(&s.CacheDir, f.CacheDir)
	setIf(&s.LogLevel, f.LogLevel)
	setIf(&s.Lockfile, f.Lockfile)
	if f.Resolution != nil {
		s.Resolution = domain.ResolutionStrategy(*f.Resolution)
	}

	if f.FetchTimeout != nil {
		d, err := parseDuration("fetch_timeout", *f.FetchTimeout)
		if err != nil {
			return err
		}
		s.FetchTimeout = d
	}
	if f.CacheTTL != nil {
		d, err := parseDuration("cache_ttl", *f.CacheTTL)
		if err != nil {
			return err
		}
		s.CacheTTL = &d
	}
	return nil
}

func applyEnv(s *domain.Settings) {
	if v, ok := os.LookupEnv(EnvRegistry); ok && v != "" {
		s.Registry = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvResolution); ok && v != "" {
		s.Resolution = domain.ResolutionStrategy(strings.ToLower(v))
	}
	s.Registry = strings.TrimRight(s.Registry, "/")
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		invalid := zerr.With(zerr.Wrap(domain.ErrSettingsParseFailed, "parse duration"), "key", key)
		return 0, zerr.With(invalid, "value", value)
	}
	return d, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
