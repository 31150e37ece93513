package config

const (
	defaultDataDir          = "~/.local/share/cratekeeper"
	defaultLogDir           = "~/.local/share/cratekeeper/logs"
	defaultAPIBind          = "127.0.0.1:7520"
	defaultLogFormat        = ""
	defaultLogLevel         = "info"
	defaultPlexTimeout      = 30
	defaultPlexRequestsPS   = 4
	defaultMatchThresholdPc = 80.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Plex: Plex{
			RequestTimeout: defaultPlexTimeout,
			RequestsPerSec: defaultPlexRequestsPS,
		},
		Reconcile: Reconcile{
			ThresholdPercent: defaultMatchThresholdPc,
		},
	}
}
