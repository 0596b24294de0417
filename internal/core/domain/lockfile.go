package domain

import (
	"maps"
	"slices"
)

// LockEntry records the decision taken for one name@constraint pair.
type LockEntry struct {
	Version      string            `yaml:"version"`
	Locator      string            `yaml:"url"`
	Integrity    string            `yaml:"shasum"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// Merge overwrites the fields of e with the non-empty fields of other.
func (e *LockEntry) Merge(other LockEntry) {
	if other.Version != "" {
		e.Version = other.Version
	}
	if other.Locator != "" {
		e.Locator = other.Locator
	}
	if other.Integrity != "" {
		e.Integrity = other.Integrity
	}
	if other.Dependencies != nil {
		e.Dependencies = maps.Clone(other.Dependencies)
	}
}

// Manifest synthesizes the single-version manifest the entry describes.
func (e LockEntry) Manifest() ResolvedManifest {
	deps := maps.Clone(e.Dependencies)
	if deps == nil {
		deps = map[string]string{}
	}
	return ResolvedManifest{
		e.Version: {
			Dependencies: deps,
			Distribution: Distribution{Locator: e.Locator, Integrity: e.Integrity},
		},
	}
}

// LockKey builds the literal lock key for a package and the constraint it was requested with.
// The constraint is not normalized: "^1.0.0" and ">=1.0.0 <2.0.0" are different keys.
func LockKey(name, constraint string) string {
	return name + "@" + constraint
}

// Lockfile is the complete set of lock entries keyed by LockKey.
type Lockfile map[string]LockEntry

// Keys returns the lock keys in lexicographic order.
func (l Lockfile) Keys() []string {
	return slices.Sorted(maps.Keys(l))
}
