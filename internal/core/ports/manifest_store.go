package ports

import "go.trai.ch/mpm/internal/core/domain"

// ManifestStore reads and writes the project's package.json.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_store.go -destination=mocks/mock_manifest_store.go -package=mocks
type ManifestStore interface {
	// Load finds package.json in cwd or its nearest ancestor and parses it.
	Load(cwd string) (*domain.RootManifest, error)

	// Save writes the dependency sections of m back to m.Dir, preserving every other field.
	Save(m *domain.RootManifest) error
}
