package ports

import "go.trai.ch/mpm/internal/core/domain"

// LockStore remembers which version was chosen for each name@constraint pair.
// It holds the prior lock read by Load and the current lock built by Record.
//
//go:generate go run go.uber.org/mock/mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// Load reads the prior lock from dir and resets the current lock.
	// A missing file is an empty prior. An unreadable file also leaves an empty prior
	// and returns an error wrapping domain.ErrLockReadFailed.
	Load(dir string) error

	// Lookup returns the single-version manifest recorded for the exact key name@constraint.
	Lookup(name, constraint string) (domain.ResolvedManifest, bool)

	// Record merges entry into the current lock. It is safe for concurrent use.
	Record(name, constraint string, entry domain.LockEntry)

	// Persist writes the current lock, replacing the prior file.
	Persist() error

	// Snapshot returns a copy of the current lock.
	Snapshot() domain.Lockfile
}
