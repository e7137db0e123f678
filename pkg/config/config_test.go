package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME at an empty directory so a developer's own
// config file never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(func() {
		ResetConfig()
		xdg.Reload()
	})

	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("outdir", "", "")
	fs.String("device", DefaultDeviceFile, "")
	fs.String("os", DefaultOSFile, "")
	fs.String("user-agent", DefaultUserAgentFile, "")
	fs.BoolP("force", "f", false, "")
	fs.String("log-level", "", "")
	fs.Duration("debounce", DefaultDebounce, "")
	return fs
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfig(t *testing.T) {
	c := NewConfig()
	assert.Equal(t, DefaultDeviceFile, c.DeviceFile)
	assert.Equal(t, DefaultOSFile, c.OSFile)
	assert.Equal(t, DefaultUserAgentFile, c.UserAgentFile)
	assert.Equal(t, DefaultOutDir(), c.OutDir)
	assert.False(t, c.Force)

	c = NewConfig(WithInputFile("in.yaml"), WithOutDir("/tmp/out"), WithDeviceFile("d.yaml"),
		WithOSFile("o.yaml"), WithUserAgentFile("u.yaml"), WithForce(true), WithDebounce(time.Second))
	assert.Equal(t, "in.yaml", c.InputFile)
	assert.Equal(t, "/tmp/out", c.OutDir)
	assert.Equal(t, "d.yaml", c.DeviceFile)
	assert.Equal(t, "o.yaml", c.OSFile)
	assert.Equal(t, "u.yaml", c.UserAgentFile)
	assert.True(t, c.Force)
	assert.Equal(t, time.Second, c.GetDebounce())
}

func TestGetters_NilConfig(t *testing.T) {
	var c *Config
	assert.Equal(t, DefaultDeviceFile, c.GetDeviceFile())
	assert.Equal(t, DefaultOSFile, c.GetOSFile())
	assert.Equal(t, DefaultUserAgentFile, c.GetUserAgentFile())
	assert.Equal(t, DefaultOutput, c.GetOutput())
	assert.Equal(t, DefaultLogLevel, c.GetLogLevel())
	assert.Equal(t, DefaultDebounce, c.GetDebounce())
	assert.Equal(t, DefaultOutDir(), c.GetOutDir())
}

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader("outdir: /srv/dicts\nuser_agent: ua.yaml\nforce: true\ndebounce: 1s\n"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/dicts", c.OutDir)
	assert.Equal(t, "ua.yaml", c.UserAgentFile)
	assert.True(t, c.Force)
	assert.Equal(t, time.Second, c.Debounce)

	_, err = Parse(strings.NewReader("force: [not, a, bool]\n"))
	assert.Error(t, err)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDeviceFile, c.DeviceFile)
	assert.Equal(t, DefaultOSFile, c.OSFile)
	assert.Equal(t, DefaultUserAgentFile, c.UserAgentFile)
	assert.Equal(t, DefaultOutDir(), c.OutDir)
	assert.Equal(t, DefaultDebounce, c.Debounce)
	assert.Equal(t, DefaultOutput, c.Output)
	assert.False(t, c.Force)
	assert.Empty(t, ConfigFileUsed())
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	// the XDG default file is picked up without --config.
	writeFile(t, filepath.Join(home, AppName, "config.yaml"),
		"outdir: /from/file\ndevice: file-device.yaml\nos: file-os.yaml\nuser_agent: file-ua.yaml\n")

	t.Setenv("UAP2CH_OS", "env-os.yaml")
	t.Setenv("UAP2CH_USER_AGENT", "env-ua.yaml")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--user-agent", "flag-ua.yaml", "--force"}))

	c, err := Load("", fs, map[string]interface{}{"input": "regexes.yaml"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, AppName, "config.yaml"), ConfigFileUsed())
	assert.Equal(t, "regexes.yaml", c.InputFile)
	// file beats defaults
	assert.Equal(t, "/from/file", c.OutDir)
	assert.Equal(t, "file-device.yaml", c.DeviceFile)
	// env beats file
	assert.Equal(t, "env-os.yaml", c.OSFile)
	// flags beat env
	assert.Equal(t, "flag-ua.yaml", c.UserAgentFile)
	assert.True(t, c.Force)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	isolate(t)
	t.Setenv("UAP2CH_DEVICE", "env-device.yaml")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	c, err := Load("", fs, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-device.yaml", c.DeviceFile)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	isolate(t)

	path := writeFile(t, filepath.Join(t.TempDir(), "custom.yaml"), "log_level: debug\noutput: json\ndebounce: 2s\n")

	c, err := Load(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, path, ConfigFileUsed())
	assert.Equal(t, "debug", c.GetLogLevel())
	assert.Equal(t, "json", c.GetOutput())
	assert.Equal(t, 2*time.Second, c.GetDebounce())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil, nil)
	assert.Error(t, err)
}

func TestSettings(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "regexes.yaml"), "device_parsers: []\n")
	outdir := filepath.Join(dir, "out")

	t.Run("resolves output paths", func(t *testing.T) {
		s, err := NewConfig(WithInputFile(input), WithOutDir(outdir)).Settings()
		require.NoError(t, err)
		assert.Equal(t, input, s.InputFile)
		assert.Equal(t, filepath.Join(outdir, DefaultDeviceFile), s.DeviceFile)
		assert.Equal(t, filepath.Join(outdir, DefaultOSFile), s.OSFile)
		assert.Equal(t, filepath.Join(outdir, DefaultUserAgentFile), s.UserAgentFile)
	})

	t.Run("absolute output names are kept", func(t *testing.T) {
		abs := filepath.Join(dir, "elsewhere", "d.yaml")
		s, err := NewConfig(WithInputFile(input), WithOutDir(outdir), WithDeviceFile(abs)).Settings()
		require.NoError(t, err)
		assert.Equal(t, abs, s.DeviceFile)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := NewConfig(WithInputFile(filepath.Join(dir, "nope.yaml")), WithOutDir(outdir)).Settings()
		assert.ErrorIs(t, err, ErrInvalidInputFile)
	})

	t.Run("input is a directory", func(t *testing.T) {
		_, err := NewConfig(WithInputFile(dir), WithOutDir(outdir)).Settings()
		assert.ErrorIs(t, err, ErrInvalidInputFile)
	})

	t.Run("outdir is a file", func(t *testing.T) {
		_, err := NewConfig(WithInputFile(input), WithOutDir(input)).Settings()
		assert.ErrorIs(t, err, ErrInvalidOutputDir)
	})

	t.Run("existing output needs force", func(t *testing.T) {
		existing := writeFile(t, filepath.Join(outdir, DefaultOSFile), "[]\n")

		_, err := NewConfig(WithInputFile(input), WithOutDir(outdir)).Settings()
		require.ErrorIs(t, err, ErrForceRequired)
		assert.Contains(t, err.Error(), existing)

		s, err := NewConfig(WithInputFile(input), WithOutDir(outdir), WithForce(true)).Settings()
		require.NoError(t, err)
		assert.Equal(t, existing, s.OSFile)
	})

	t.Run("nil config", func(t *testing.T) {
		var c *Config
		_, err := c.Settings()
		assert.Error(t, err)
	})
}
