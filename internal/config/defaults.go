package config

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".dynbook.yml"

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "DYNBOOK_"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIURL:         "http://localhost:8000",
		DataDir:        ".dynbook",
		OutputDir:      ".",
		TimeoutSeconds: 120,
		RetryCount:     0,
		UserAgent:      "dynbook",
		Theme:          "light",
		Server: ServerConfig{
			Port:            4200,
			AllowAllOrigins: false,
		},
	}
}
