package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpm/internal/adapters/config" //nolint:depguard // Settings drive the log level
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/mpm/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			level, err := domain.ParseLogLevel(settings.LogLevel)
			if err != nil {
				return nil, err
			}
			lg := New()
			lg.SetLevel(level)
			return lg, nil
		},
	})
}
