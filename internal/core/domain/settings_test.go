package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mpm/internal/core/domain"
)

func TestDefaultSettings(t *testing.T) {
	s := domain.DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, domain.DefaultRegistry, s.Registry)
	assert.Equal(t, 10*time.Minute, s.RegistryCacheTTL())
	assert.Equal(t, domain.ResolutionConcurrent, s.Resolution)
	assert.Equal(t, "mpm.yml", s.Lockfile)
}

func TestSettings_Validate(t *testing.T) {
	negative := -time.Second

	tests := []struct {
		name   string
		mutate func(*domain.Settings)
	}{
		{"empty registry", func(s *domain.Settings) { s.Registry = "" }},
		{"zero concurrency", func(s *domain.Settings) { s.Concurrency = 0 }},
		{"zero timeout", func(s *domain.Settings) { s.FetchTimeout = 0 }},
		{"zero retries", func(s *domain.Settings) { s.FetchRetries = 0 }},
		{"negative ttl", func(s *domain.Settings) { s.CacheTTL = &negative }},
		{"unknown strategy", func(s *domain.Settings) { s.Resolution = "random" }},
		{"empty lockfile", func(s *domain.Settings) { s.Lockfile = "" }},
		{"bad log level", func(s *domain.Settings) { s.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			tt.mutate(&s)
			require.ErrorIs(t, s.Validate(), domain.ErrInvalidSetting)
		})
	}
}

func TestSettings_RegistryCacheTTL_Disabled(t *testing.T) {
	s := domain.DefaultSettings()
	s.CacheTTL = nil
	assert.Zero(t, s.RegistryCacheTTL())
}
