package config

import (
	"os"
	"time"
)

const (
	DefaultDeviceFile    = "device.yaml"
	DefaultOSFile        = "os.yaml"
	DefaultUserAgentFile = "user_agent.yaml"
	DefaultOutput        = "pretty"
	DefaultLogLevel      = "info"
	DefaultDebounce      = 250 * time.Millisecond

	// AppName is used for the XDG config directory and the environment prefix.
	AppName   = "uap2clickhouse"
	EnvPrefix = "UAP2CH_"
)

// DefaultOutDir is the current working directory, falling back to "." when
// it cannot be determined.
func DefaultOutDir() string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return "."
	}
	return wd
}
