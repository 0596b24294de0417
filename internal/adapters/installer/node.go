package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/adapters/config" //nolint:depguard // Settings configure download timeouts
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "adapter.installer"

func init() {
	graft.Register(graft.Node[ports.Installer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Installer, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return New(settings.FetchTimeout), nil
		},
	})
}
