package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/adapters/config"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/adapters/lockfile"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/adapters/registry"           //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/adapters/semver"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[ports.DependencyResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			semver.NodeID,
			registry.NodeID,
			lockfile.NodeID,
			progrock.NodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: func(ctx context.Context) (ports.DependencyResolver, error) {
			oracle, err := graft.Dep[ports.VersionOracle](ctx)
			if err != nil {
				return nil, err
			}

			source, err := graft.Dep[ports.ManifestSource](ctx)
			if err != nil {
				return nil, err
			}

			lock, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}

			return NewResolver(oracle, source, lock, telemetry, log, settings), nil
		},
	})
}
