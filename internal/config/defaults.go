package config

const (
	defaultStateDir       = "~/.local/share/sutrasync"
	defaultAudioDir       = "audio"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLedgerEnabled  = true
	defaultLedgerFileName = "ledger.db"
	defaultUserAgent      = "sutrasync/dev"
	defaultConfigPath     = "~/.config/sutrasync/config.toml"
	projectConfigName     = "sutrasync.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			UserAgent: defaultUserAgent,
		},
		Paths: Paths{
			AudioDir: defaultAudioDir,
			StateDir: defaultStateDir,
		},
		Ledger: Ledger{
			Enabled: defaultLedgerEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
