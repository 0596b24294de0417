package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/adapters/config" //nolint:depguard // Settings drive the lock file name
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the lock store Graft node.
const NodeID graft.ID = "adapter.lock_store"

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.LockStore, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(settings.Lockfile), nil
		},
	})
}
