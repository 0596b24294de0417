package registry

import (
	"time"

	"go.trai.ch/mpm/internal/core/domain"
)

// packument is the subset of a registry package document mpm reads.
type packument struct {
	Name     string                    `json:"name"`
	Versions map[string]packumentEntry `json:"versions"`
}

type packumentEntry struct {
	Dependencies map[string]string `json:"dependencies"`
	Dist         packumentDist     `json:"dist"`
}

type packumentDist struct {
	Tarball string `json:"tarball"`
	Shasum  string `json:"shasum"`
}

// toManifest converts a packument into the resolver's manifest form.
func (p *packument) toManifest() domain.ResolvedManifest {
	out := make(domain.ResolvedManifest, len(p.Versions))
	for version, entry := range p.Versions {
		deps := entry.Dependencies
		if deps == nil {
			deps = map[string]string{}
		}
		out[version] = domain.VersionManifest{
			Dependencies: deps,
			Distribution: domain.Distribution{
				Locator:   entry.Dist.Tarball,
				Integrity: entry.Dist.Shasum,
			},
		}
	}
	return out
}

// cacheEntry is the on-disk form of a cached manifest.
type cacheEntry struct {
	Name      string                  `json:"name"`
	FetchedAt time.Time               `json:"fetched_at"`
	Versions  map[string]cacheVersion `json:"versions"`
}

type cacheVersion struct {
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Tarball      string            `json:"tarball"`
	Shasum       string            `json:"shasum,omitempty"`
}

func newCacheEntry(name string, m domain.ResolvedManifest, now time.Time) cacheEntry {
	versions := make(map[string]cacheVersion, len(m))
	for version, vm := range m {
		versions[version] = cacheVersion{
			Dependencies: vm.Dependencies,
			Tarball:      vm.Distribution.Locator,
			Shasum:       vm.Distribution.Integrity,
		}
	}
	return cacheEntry{Name: name, FetchedAt: now, Versions: versions}
}

func (e cacheEntry) toManifest() domain.ResolvedManifest {
	out := make(domain.ResolvedManifest, len(e.Versions))
	for version, cv := range e.Versions {
		deps := cv.Dependencies
		if deps == nil {
			deps = map[string]string{}
		}
		out[version] = domain.VersionManifest{
			Dependencies: deps,
			Distribution: domain.Distribution{Locator: cv.Tarball, Integrity: cv.Shasum},
		}
	}
	return out
}
