package semver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the version oracle Graft node.
const NodeID graft.ID = "adapter.version_oracle"

func init() {
	graft.Register(graft.Node[ports.VersionOracle]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.VersionOracle, error) {
			return New(), nil
		},
	})
}
