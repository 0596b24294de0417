package ports

import (
	"context"

	"go.trai.ch/mpm/internal/core/domain"
)

// ManifestSource fetches the published versions of a package.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_source.go -destination=mocks/mock_manifest_source.go -package=mocks
type ManifestSource interface {
	// FetchManifest returns every published version of name with its dependencies and distribution.
	// Errors wrap domain.ErrPackageNotFound or domain.ErrNetwork.
	FetchManifest(ctx context.Context, name string) (domain.ResolvedManifest, error)
}
