package config

// SettingsFile represents the structure of the .mpmrc.yaml settings file.
// Every field is optional; absent fields keep their defaults.
type SettingsFile struct {
	Registry     *string `yaml:"registry"`
	Concurrency  *int    `yaml:"concurrency"`
	FetchTimeout *string `yaml:"fetch_timeout"`
	FetchRetries *int    `yaml:"fetch_retries"`
	CacheDir     *string `yaml:"cache_dir"`
	CacheTTL     *string `yaml:"cache_ttl"`
	Resolution   *string `yaml:"resolution"`
	LogLevel     *string `yaml:"log_level"`
	Lockfile     *string `yaml:"lockfile"`
}

// Environment variables that override the settings file.
const (
	EnvRegistry   = "MPM_REGISTRY"
	EnvLogLevel   = "MPM_LOG_LEVEL"
	EnvResolution = "MPM_RESOLUTION"
)
