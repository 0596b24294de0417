package ports

import "go.trai.ch/mpm/internal/core/domain"

// SettingsLoader loads the runtime settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=settings_loader.go -destination=mocks/mock_settings_loader.go -package=mocks
type SettingsLoader interface {
	// Load reads settings for the given working directory, falling back to defaults.
	Load(cwd string) (*domain.Settings, error)
}
