package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	InputFile     string        `koanf:"input" yaml:"input,omitempty"`
	OutDir        string        `koanf:"outdir" yaml:"outdir,omitempty"`
	DeviceFile    string        `koanf:"device" yaml:"device,omitempty"`
	OSFile        string        `koanf:"os" yaml:"os,omitempty"`
	UserAgentFile string        `koanf:"user_agent" yaml:"user_agent,omitempty"`
	Force         bool          `koanf:"force" yaml:"force,omitempty"`
	Output        string        `koanf:"output" yaml:"output,omitempty"`
	LogLevel      string        `koanf:"log_level" yaml:"log_level,omitempty"`
	Debounce      time.Duration `koanf:"debounce" yaml:"debounce,omitempty"`
}

func (c *Config) GetOutDir() string {
	if c == nil || c.OutDir == "" {
		return DefaultOutDir()
	}

	return c.OutDir
}

func (c *Config) GetDeviceFile() string {
	if c == nil || c.DeviceFile == "" {
		return DefaultDeviceFile
	}

	return c.DeviceFile
}

func (c *Config) GetOSFile() string {
	if c == nil || c.OSFile == "" {
		return DefaultOSFile
	}

	return c.OSFile
}

func (c *Config) GetUserAgentFile() string {
	if c == nil || c.UserAgentFile == "" {
		return DefaultUserAgentFile
	}

	return c.UserAgentFile
}

func (c *Config) GetOutput() string {
	if c == nil || c.Output == "" {
		return DefaultOutput
	}

	return c.Output
}

func (c *Config) GetLogLevel() string {
	if c == nil || c.LogLevel == "" {
		return DefaultLogLevel
	}

	return c.LogLevel
}

func (c *Config) GetDebounce() time.Duration {
	if c == nil || c.Debounce <= 0 {
		return DefaultDebounce
	}

	return c.Debounce
}

type ConfigOption func(*Config)

func WithInputFile(path string) ConfigOption {
	return func(c *Config) {
		c.InputFile = path
	}
}

func WithOutDir(dir string) ConfigOption {
	return func(c *Config) {
		c.OutDir = dir
	}
}

func WithDeviceFile(name string) ConfigOption {
	return func(c *Config) {
		c.DeviceFile = name
	}
}

func WithOSFile(name string) ConfigOption {
	return func(c *Config) {
		c.OSFile = name
	}
}

func WithUserAgentFile(name string) ConfigOption {
	return func(c *Config) {
		c.UserAgentFile = name
	}
}

func WithForce(force bool) ConfigOption {
	return func(c *Config) {
		c.Force = force
	}
}

func WithDebounce(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Debounce = d
	}
}

func NewConfig(options ...ConfigOption) *Config {
	config := &Config{
		OutDir:        DefaultOutDir(),
		DeviceFile:    DefaultDeviceFile,
		OSFile:        DefaultOSFile,
		UserAgentFile: DefaultUserAgentFile,
		Output:        DefaultOutput,
		LogLevel:      DefaultLogLevel,
		Debounce:      DefaultDebounce,
	}

	for _, option := range options {
		option(config)
	}

	return config
}

func Parse(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	config := &Config{}

	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func ParseFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}
