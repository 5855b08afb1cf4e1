package config

const (
	defaultConfigPath       = "~/.config/plutoshell/config.toml"
	defaultAppID            = "plutoduck"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 14
)

// Mode values accepted by shell.mode. An empty mode defers to the build default.
const (
	ModeDevelopment = "development"
	ModePackaged    = "packaged"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Shell: Shell{
			AppID: defaultAppID,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
