package domain

import (
	"maps"
	"slices"
)

// Distribution locates the archive of one published version.
type Distribution struct {
	// Locator is the tarball URL.
	Locator string

	// Integrity is the registry shasum of the tarball (hex SHA-1). It may be empty.
	Integrity string
}

// VersionManifest is the registry metadata of a single published version.
type VersionManifest struct {
	// Dependencies maps dependency names to the version ranges this version requires.
	Dependencies map[string]string

	// Distribution locates the version's tarball.
	Distribution Distribution
}

// ResolvedManifest maps version strings to their metadata.
// It is treated as immutable once obtained.
type ResolvedManifest map[string]VersionManifest

// Versions returns the versions present in the manifest in lexical order.
func (m ResolvedManifest) Versions() []string {
	return slices.Sorted(maps.Keys(m))
}

// ManifestOrigin tells where a manifest came from.
type ManifestOrigin int

const (
	// OriginRegistry marks a manifest fetched from the Manifest Source.
	OriginRegistry ManifestOrigin = iota
	// OriginLock marks a one-version manifest synthesized from the prior lock.
	OriginLock
)

// String returns a human readable origin.
func (o ManifestOrigin) String() string {
	if o == OriginLock {
		return "lock"
	}
	return "registry"
}

// FetchedManifest is a manifest normalized from either origin.
type FetchedManifest struct {
	Origin   ManifestOrigin
	Manifest ResolvedManifest
}
