package main

// Env holds process-level settings loaded from OAUTH2_DEVICE_* environment
// variables. Everything else lives in the configuration file.
type Env struct {
	ConfigPath string `envconfig:"CONFIG" default:"/etc/oauth2-device-login/config.json"`
	User       string `envconfig:"USER"`
	LogPath    string `envconfig:"LOG_PATH"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
}
