package ports

// VersionOracle answers semver questions for the resolver.
// An empty range means unconstrained. A range that cannot be parsed matches nothing.
//
//go:generate go run go.uber.org/mock/mockgen -source=version_oracle.go -destination=mocks/mock_version_oracle.go -package=mocks
type VersionOracle interface {
	// Satisfies reports whether version satisfies rng.
	Satisfies(version, rng string) bool

	// MaxSatisfying returns the highest version in versions that satisfies rng.
	MaxSatisfying(versions []string, rng string) (string, bool)

	// Newest returns the highest valid version in versions.
	Newest(versions []string) (string, bool)
}
