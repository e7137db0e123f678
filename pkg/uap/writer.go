package uap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ParseCategory accepts the names used on the command line.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "device", "devices":
		return CategoryDevice, nil
	case "os":
		return CategoryOS, nil
	case "user-agent", "user_agent", "useragent", "ua", "user agent":
		return CategoryUserAgent, nil
	}
	return "", fmt.Errorf("unknown category %q (want device, os or user-agent)", s)
}

func encode[T any](w io.Writer, rules []T) error {
	if rules == nil {
		rules = []T{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rules); err != nil {
		return err
	}
	return enc.Close()
}

// Encode writes the rules of one category to w as a YAML sequence.
func (t *TargetDocuments) Encode(w io.Writer, c Category) error {
	var err error
	switch c {
	case CategoryDevice:
		err = encode(w, t.Devices)
	case CategoryOS:
		err = encode(w, t.OS)
	case CategoryUserAgent:
		err = encode(w, t.UserAgents)
	default:
		return fmt.Errorf("unknown category %q", c)
	}

	if err != nil {
		return stageErr(writeStage(c), ErrSerialize, err)
	}
	return nil
}

// Write stores the rules of one category at path, creating missing parent
// directories and truncating any existing file.
func (t *TargetDocuments) Write(c Category, path string) error {
	stage := writeStage(c)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return stageErr(stage, ErrIO, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return stageErr(stage, ErrIO, err)
	}

	if err := t.Encode(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return stageErr(stage, ErrIO, err)
	}

	log.WithFields(log.Fields{"category": c, "path": path, "rules": t.Count(c)}).Debug("wrote target document")
	return nil
}
