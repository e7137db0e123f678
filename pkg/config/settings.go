package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	ErrInvalidInputFile = errors.New("cannot find input file specified")
	ErrInvalidOutputDir = errors.New("invalid output directory specified")
	ErrForceRequired    = errors.New("output file would be overwritten, must use -f/--force")
)

// Settings are the validated, fully resolved paths for a single conversion.
type Settings struct {
	InputFile     string `json:"input"`
	DeviceFile    string `json:"device"`
	OSFile        string `json:"os"`
	UserAgentFile string `json:"user_agent"`
}

// Settings validates the configuration against the file system: the input
// must be an existing file, the output directory must not be a file and,
// unless Force is set, none of the outputs may exist yet. A missing output
// directory is fine, it is created when writing.
func (c *Config) Settings() (*Settings, error) {
	if c == nil {
		return nil, errors.New("no configuration")
	}

	if c.InputFile == "" || !fileExists(c.InputFile) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInputFile, c.InputFile)
	}

	outdir := c.GetOutDir()
	if fileExists(outdir) {
		return nil, fmt.Errorf("%w: %q is a file", ErrInvalidOutputDir, outdir)
	}

	s := &Settings{
		InputFile:     c.InputFile,
		DeviceFile:    outputPath(outdir, c.GetDeviceFile()),
		OSFile:        outputPath(outdir, c.GetOSFile()),
		UserAgentFile: outputPath(outdir, c.GetUserAgentFile()),
	}

	if !c.Force {
		for _, p := range []string{s.DeviceFile, s.OSFile, s.UserAgentFile} {
			if fileExists(p) {
				return nil, fmt.Errorf("%w: %s", ErrForceRequired, p)
			}
		}
	}

	return s, nil
}

// outputPath places name inside dir unless name is already absolute.
func outputPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
