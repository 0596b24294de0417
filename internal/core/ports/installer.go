package ports

import (
	"context"

	"go.trai.ch/mpm/internal/core/domain"
)

// Installer materializes a package below a project's node_modules directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Install downloads and extracts req below root.
	Install(ctx context.Context, root string, req domain.InstallRequest) error
}
