// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/mpm/internal/core/domain"
)

// DependencyResolver turns a root manifest into an installable resolution.
//
//go:generate go run go.uber.org/mock/mockgen -source=dependency_resolver.go -destination=mocks/mock_dependency_resolver.go -package=mocks
type DependencyResolver interface {
	// Resolve resolves dependencies and then devDependencies of root.
	// Ranges chosen for unconstrained dependencies are written into root and returned as back-fills.
	Resolve(ctx context.Context, root *domain.RootManifest) (*domain.Resolution, error)
}
