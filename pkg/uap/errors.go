package uap

import (
	"errors"
	"fmt"
)

var (
	// ErrIO covers file system failures: missing files, permissions, directory creation.
	ErrIO = errors.New("io error")
	// ErrMalformed is returned when the input does not have the expected document shape.
	ErrMalformed = errors.New("malformed input")
	// ErrSerialize is returned when a target document cannot be encoded.
	ErrSerialize = errors.New("serialize error")
)

// Stage names the step of a conversion that failed.
type Stage string

const (
	StageRead           Stage = "read"
	StageParse          Stage = "parse"
	StageWriteDevice    Stage = "write device"
	StageWriteOS        Stage = "write os"
	StageWriteUserAgent Stage = "write user agent"
)

// StageError reports which stage failed, the kind of failure (one of the
// Err* sentinels) and the underlying cause.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stageErr(stage Stage, kind, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

func writeStage(c Category) Stage {
	switch c {
	case CategoryDevice:
		return StageWriteDevice
	case CategoryOS:
		return StageWriteOS
	default:
		return StageWriteUserAgent
	}
}
