package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Pipeline stage errors
	ErrInvalidUpload        = errors.New("invalid or missing upload")
	ErrConversionFailed     = errors.New("audio conversion failed")
	ErrAudioTooSmall        = errors.New("audio file is too small or empty")
	ErrUploadFailed         = errors.New("object store upload failed")
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrNoTranscript         = errors.New("no transcript text in result")
	ErrUnknownTaskStatus    = errors.New("unknown transcription task status")
	ErrTranscriptionTimeout = errors.New("transcription timed out")
	ErrEmptyReply           = errors.New("empty generation reply")
	ErrSynthesisFailed      = errors.New("speech synthesis failed")
	ErrPersistenceFailed    = errors.New("persisting interview record failed")
)

// Stage identifies a pipeline stage for error reporting and metrics.
type Stage string

const (
	StageValidate   Stage = "validate"
	StageStaging    Stage = "staging"
	StageNormalize  Stage = "normalize"
	StageSizeCheck  Stage = "size_check"
	StageUpload     Stage = "upload"
	StageTranscribe Stage = "transcribe"
	StageGenerate   Stage = "generate"
	StageSynthesize Stage = "synthesize"
	StagePersist    Stage = "persist"
)

// StageError wraps a stage failure so callers can report which pipeline
// stage aborted a run. It unwraps to the underlying sentinel, so
// errors.Is(err, ErrConversionFailed) etc. keep working.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf extracts the stage from an error chain, or "" if none is recorded.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
