package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/adapters/config" //nolint:depguard // Settings configure the registry client
	"go.trai.ch/mpm/internal/adapters/logger" //nolint:depguard // Logger reports cache failures
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the manifest source Graft node.
const NodeID graft.ID = "adapter.manifest_source"

func init() {
	graft.Register(graft.Node[ports.ManifestSource]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestSource, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(settings, log), nil
		},
	})
}
