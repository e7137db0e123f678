package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

var (
	k              = koanf.New(".")
	configFileUsed string
)

// DefaultConfigFile is $XDG_CONFIG_HOME/uap2clickhouse/config.yaml.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// ConfigFileUsed returns the config file picked up by the last Load, if any.
func ConfigFileUsed() string { return configFileUsed }

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// findConfigFile returns the explicit path when given, otherwise the XDG
// default when it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if def := DefaultConfigFile(); fileExists(def) {
		return def
	}
	return ""
}

// Load builds the configuration from, lowest to highest priority: defaults,
// the config file, UAP2CH_* environment variables, flags that were set on the
// command line and finally overrides (used for positional arguments).
func Load(cfgFile string, flags *pflag.FlagSet, overrides map[string]interface{}) (*Config, error) {
	k = koanf.New(".")

	// 1. defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"outdir":     DefaultOutDir(),
		"device":     DefaultDeviceFile,
		"os":         DefaultOSFile,
		"user_agent": DefaultUserAgentFile,
		"force":      false,
		"output":     DefaultOutput,
		"log_level":  DefaultLogLevel,
		"debounce":   DefaultDebounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. environment: UAP2CH_USER_AGENT -> user_agent
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. flags, only the ones explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
