package uap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/censys-research/uap2clickhouse/pkg/config"
	log "github.com/sirupsen/logrus"
)

type Option func(*Converter)

// StatusCallback is a simple callback that receives status update strings
type StatusCallback func(message string)

// Converter turns one uap-core document into the three ClickHouse
// regexp-tree documents.
type Converter struct {
	statusCb StatusCallback
}

// Result describes a finished conversion.
type Result struct {
	Input    string        `json:"input"`
	Outputs  []*Output     `json:"outputs"`
	Duration time.Duration `json:"duration"`
}

// Output describes one written target document.
type Output struct {
	Category Category `json:"category"`
	Path     string   `json:"path"`
	Rules    int      `json:"rules"`
}

// New creates a new Converter with the provided options.
func New(options ...Option) *Converter {
	c := new(Converter)

	for _, option := range options {
		option(c)
	}

	return c
}

// WithStatusCallback sets a function that is called with progress messages (i.e., a spinner)
func WithStatusCallback(callback func(message string)) Option {
	return func(c *Converter) {
		c.statusCb = callback
	}
}

func (c *Converter) sendStatus(message string) {
	if c.statusCb != nil {
		c.statusCb(message)
	}
}

// Run reads the input document, converts all three rule categories and
// writes device, os and user agent documents, in that order. The first
// failure stops the run; documents written before it are left in place.
func (c *Converter) Run(ctx context.Context, s *config.Settings) (*Result, error) {
	if s == nil {
		return nil, errors.New("no settings given")
	}

	start := time.Now()

	c.sendStatus(fmt.Sprintf("reading %s...", s.InputFile))
	log.Infof("reading file: %s", s.InputFile)

	src, err := ReadDocument(s.InputFile)
	if err != nil {
		return nil, err
	}

	for _, cat := range Categories {
		logForCategory(cat).Infof("found %d rules", src.Count(cat))
	}

	c.sendStatus("converting rules...")
	target, err := src.Transform(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Input: s.InputFile}
	for _, cat := range Categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := OutputPath(s, cat)
		c.sendStatus(fmt.Sprintf("writing %d %s rules to %s...", target.Count(cat), cat, path))
		logForCategory(cat).Infof("output file: %s", path)

		if err := target.Write(cat, path); err != nil {
			return nil, err
		}

		res.Outputs = append(res.Outputs, &Output{
			Category: cat,
			Path:     path,
			Rules:    target.Count(cat),
		})
	}

	res.Duration = time.Since(start)
	c.sendStatus("conversion complete")

	return res, nil
}

// OutputPath returns the destination configured for a category.
func OutputPath(s *config.Settings, c Category) string {
	if s == nil {
		return ""
	}
	switch c {
	case CategoryDevice:
		return s.DeviceFile
	case CategoryOS:
		return s.OSFile
	case CategoryUserAgent:
		return s.UserAgentFile
	}
	return ""
}

// GetRules returns the total number of rules written.
func (r *Result) GetRules() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, o := range r.Outputs {
		n += o.Rules
	}
	return n
}

func (r *Result) GetOutputs() []*Output {
	if r == nil {
		return nil
	}
	return r.Outputs
}

// logForCategory returns a log entry with the category field set.
func logForCategory(c Category) *log.Entry { return log.WithField("category", c) }
