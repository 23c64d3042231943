// Package pipeline orchestrates the podcast video build: backgrounds,
// rendering, scheduling, assembly, upload, and status persistence.
package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a job failed.
type Stage string

const (
	StageInput    Stage = "input"
	StageAudio    Stage = "audio"
	StageRender   Stage = "render"
	StageSchedule Stage = "schedule"
	StageAssembly Stage = "assembly"
	StageUpload   Stage = "upload"
)

// StageError wraps a failure with the pipeline stage it happened in, so the
// error response and logs can say which collaborator or step is at fault.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func stageErrf(stage Stage, format string, args ...any) *StageError {
	return &StageError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// StageOf returns the failing stage, or "" for untagged errors.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// ErrMissingFields is returned when a job omits any required field. The
// message is part of the API contract.
var ErrMissingFields = errors.New("slides, audio_url, and podcast_id required")

// envelopeMessage returns the user-facing form of a pipeline error. Input
// errors carry their message verbatim; later stages keep the stage tag so
// callers can tell which step broke.
func envelopeMessage(err error) string {
	var se *StageError
	if errors.As(err, &se) && se.Stage == StageInput {
		return se.Err.Error()
	}
	return err.Error()
}
