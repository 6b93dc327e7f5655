package engine

import (
	"errors"
	"fmt"
)

// SurfaceError reports that the drawing surface could not be initialized.
// No engine exists after a SurfaceError; callers must not retry on the same
// surface without reopening it.
type SurfaceError struct {
	// Code identifies the error category.
	Code SurfaceErrorCode

	// Size is the requested surface size, formatted "WxH".
	Size string

	// Err is the underlying cause.
	Err error
}

// SurfaceErrorCode categorizes surface errors.
type SurfaceErrorCode string

const (
	// ErrCodeSurfaceOpen indicates Surface.Open failed.
	ErrCodeSurfaceOpen SurfaceErrorCode = "SURFACE_OPEN"

	// ErrCodeInvalidSize indicates a non-positive width or height.
	ErrCodeInvalidSize SurfaceErrorCode = "INVALID_SIZE"

	// ErrCodeInvalidStages indicates the template's stage table is unusable.
	ErrCodeInvalidStages SurfaceErrorCode = "INVALID_STAGES"
)

// Error implements the error interface.
func (e *SurfaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: surface %s: %v", e.Code, e.Size, e.Err)
	}
	return fmt.Sprintf("%s: surface %s", e.Code, e.Size)
}

// Unwrap returns the underlying cause.
func (e *SurfaceError) Unwrap() error {
	return e.Err
}

// IsSurfaceError reports whether err is, or wraps, a SurfaceError.
func IsSurfaceError(err error) bool {
	var se *SurfaceError
	return errors.As(err, &se)
}
