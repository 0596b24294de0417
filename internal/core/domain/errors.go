package domain

import "go.trai.ch/zerr"

var (
	// ErrUnresolvableConstraint is returned when no available version satisfies a requested range.
	ErrUnresolvableConstraint = zerr.New("no version satisfies constraint")

	// ErrPackageNotFound is returned when the registry does not know a package.
	ErrPackageNotFound = zerr.New("package not found in registry")

	// ErrNetwork is returned when a registry or tarball request fails at the transport level.
	ErrNetwork = zerr.New("network request failed")

	// ErrRegistryParseFailed is returned when a registry response cannot be decoded.
	ErrRegistryParseFailed = zerr.New("failed to parse registry response")

	// ErrResolutionFailed is returned by the driver when dependency resolution aborts.
	ErrResolutionFailed = zerr.New("dependency resolution failed")

	// ErrLockReadFailed is returned when a lock file exists but cannot be read or parsed.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrLockWriteFailed is returned when the lock file cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrManifestNotFound is returned when no package.json exists in the working directory or its parents.
	ErrManifestNotFound = zerr.New("could not find package.json")

	// ErrManifestParseFailed is returned when package.json cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse package.json")

	// ErrManifestWriteFailed is returned when package.json cannot be written back.
	ErrManifestWriteFailed = zerr.New("failed to write package.json")

	// ErrInvalidPackageSpec is returned when a package argument cannot be parsed.
	ErrInvalidPackageSpec = zerr.New("invalid package specification, expected name or name@version")

	// ErrInstallFailed is returned when a package tarball cannot be downloaded or extracted.
	ErrInstallFailed = zerr.New("failed to install package")

	// ErrIntegrityMismatch is returned when a downloaded tarball does not match its recorded shasum.
	ErrIntegrityMismatch = zerr.New("tarball integrity check failed")

	// ErrUnsafeArchivePath is returned when a tarball entry would be written outside its package directory.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes package directory")

	// ErrCacheCreateFailed is returned when the registry cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create registry cache directory")

	// ErrSettingsParseFailed is returned when .mpmrc.yaml cannot be parsed.
	ErrSettingsParseFailed = zerr.New("failed to parse settings file")

	// ErrInvalidSetting is returned when a settings value is out of range.
	ErrInvalidSetting = zerr.New("invalid settings value")
)
