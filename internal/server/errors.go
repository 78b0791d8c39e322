package server

import (
	"errors"
	"fmt"
)

// ErrEngineNotReady reports that the detection engine never loaded. Requests
// fail with 500 until the operator resolves it; health keeps answering with
// detector_loaded=false so orchestration can tell the two apart.
var ErrEngineNotReady = errors.New("detection engine is not loaded")

// InputError marks a request the caller can fix. It always names the field
// at fault and maps to 400.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func inputError(field, format string, args ...interface{}) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
