package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrImageNotFound       = errors.New("image file not found")
	ErrEngineTimeout       = errors.New("recognition engine timed out")
	ErrStorageUnavailable  = errors.New("object storage unavailable")
)

// ProcessSpawnError means the recognition engine could not be started at all.
type ProcessSpawnError struct {
	Command string
	Err     error
}

func (e *ProcessSpawnError) Error() string {
	return fmt.Sprintf("starting recognition engine %q: %v", e.Command, e.Err)
}

func (e *ProcessSpawnError) Unwrap() error {
	return e.Err
}

// ProcessExitError means the engine ran but exited non-zero, or was killed
// because the caller's deadline passed.
type ProcessExitError struct {
	Code     int
	Stderr   string
	TimedOut bool
}

func (e *ProcessExitError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("recognition engine timed out (code %d): %s", e.Code, e.Stderr)
	}
	return fmt.Sprintf("recognition engine exited with code %d: %s", e.Code, e.Stderr)
}

// Is lets errors.Is(err, ErrEngineTimeout) match a killed process.
func (e *ProcessExitError) Is(target error) bool {
	return e.TimedOut && target == ErrEngineTimeout
}

// JSONRecoveryError means the engine exited cleanly but no strategy could
// recover a JSON object from its standard output.
type JSONRecoveryError struct {
	RawOutput string
}

func (e *JSONRecoveryError) Error() string {
	return fmt.Sprintf("no valid JSON output from recognition engine (%d bytes of output)", len(e.RawOutput))
}

// EngineResultError is a well-formed payload in which the engine itself
// reported failure, e.g. {"status":"error","message":"Unsupported file type"}.
type EngineResultError struct {
	Message string
}

func (e *EngineResultError) Error() string {
	return fmt.Sprintf("recognition engine reported error: %s", e.Message)
}
