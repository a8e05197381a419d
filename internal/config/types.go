package config

import "time"

// Config is the top-level dynbook configuration, corresponding to .dynbook.yml.
type Config struct {
	APIURL         string       `yaml:"api_url" koanf:"api_url"`
	DataDir        string       `yaml:"data_dir" koanf:"data_dir"`
	OutputDir      string       `yaml:"output_dir" koanf:"output_dir"`
	TimeoutSeconds int          `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	RetryCount     int          `yaml:"retry_count" koanf:"retry_count"`
	UserAgent      string       `yaml:"user_agent" koanf:"user_agent"`
	Theme          string       `yaml:"theme" koanf:"theme"`
	Server         ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds settings for `dynbook serve`.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Timeout returns the per-request timeout for backend calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
