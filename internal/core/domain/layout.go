package domain

const (
	// ManifestFileName is the root manifest every project carries.
	ManifestFileName = "package.json"

	// DefaultLockFileName is the lock file written next to the root manifest.
	DefaultLockFileName = "mpm.yml"

	// SettingsFileName is the optional settings file read from the working directory.
	SettingsFileName = ".mpmrc.yaml"

	// NodeModulesDirName is the directory packages are installed into.
	NodeModulesDirName = "node_modules"

	// InternalDirName is the root directory for mpm's private state.
	InternalDirName = ".mpm"

	// DefaultRegistryCacheDir is the default location of cached registry documents.
	DefaultRegistryCacheDir = InternalDirName + "/cache/registry"

	// DirPerm is the permission used for every directory mpm creates.
	DirPerm = 0o750

	// PrivateFilePerm is the permission used for cache and lock files.
	PrivateFilePerm = 0o644
)
