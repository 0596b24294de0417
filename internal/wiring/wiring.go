// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/mpm/internal/adapters/config"
	_ "go.trai.ch/mpm/internal/adapters/installer"
	_ "go.trai.ch/mpm/internal/adapters/lockfile"
	_ "go.trai.ch/mpm/internal/adapters/logger"
	_ "go.trai.ch/mpm/internal/adapters/manifest"
	_ "go.trai.ch/mpm/internal/adapters/registry"
	_ "go.trai.ch/mpm/internal/adapters/semver"
	_ "go.trai.ch/mpm/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/mpm/internal/app"
	_ "go.trai.ch/mpm/internal/engine/resolver"
)
