// Package semver implements the VersionOracle port with Masterminds/semver.
package semver

import (
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Oracle implements ports.VersionOracle.
// Parsed ranges are memoized since the resolver asks about the same ranges many times.
type Oracle struct {
	constraints sync.Map // string -> *semver.Constraints, nil for invalid ranges
}

// New creates a new Oracle.
func New() *Oracle {
	return &Oracle{}
}

// Satisfies reports whether version satisfies rng.
// An empty range accepts any version, pre-releases included.
func (o *Oracle) Satisfies(version, rng string) bool {
	if strings.TrimSpace(rng) == "" {
		return true
	}
	c := o.constraint(rng)
	if c == nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// MaxSatisfying returns the highest version in versions that satisfies rng.
func (o *Oracle) MaxSatisfying(versions []string, rng string) (string, bool) {
	c := o.constraint(rng)
	if c == nil {
		return "", false
	}
	return highest(versions, c.Check)
}

// Newest returns the highest release in versions.
// Pre-releases are only chosen when nothing else is published.
func (o *Oracle) Newest(versions []string) (string, bool) {
	if v, ok := highest(versions, func(v *semver.Version) bool { return v.Prerelease() == "" }); ok {
		return v, true
	}
	return highest(versions, func(*semver.Version) bool { return true })
}

func (o *Oracle) constraint(rng string) *semver.Constraints {
	rng = strings.TrimSpace(rng)
	if rng == "" || rng == "latest" {
		rng = "*"
	}
	if cached, ok := o.constraints.Load(rng); ok {
		c, _ := cached.(*semver.Constraints)
		return c
	}
	c, err := semver.NewConstraint(rng)
	if err != nil {
		c = nil
	}
	o.constraints.Store(rng, c)
	return c
}

func highest(versions []string, accept func(*semver.Version) bool) (string, bool) {
	var (
		best    *semver.Version
		bestRaw string
	)
	for _, raw := range versions {
		v, err := semver.NewVersion(raw)
		if err != nil || !accept(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, raw
		}
	}
	return bestRaw, best != nil
}
