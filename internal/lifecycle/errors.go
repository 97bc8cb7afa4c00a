package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceUnavailable indicates the host could not provide a drawing
	// surface. The controller is Disabled afterwards.
	ErrSurfaceUnavailable = errors.New("lifecycle: drawing surface unavailable")

	// ErrTornDown is returned when mounting a controller that was already
	// torn down.
	ErrTornDown = errors.New("lifecycle: controller torn down")

	errNoSurface = errors.New("host returned no surface")
)

// SurfaceError carries the viewport size at the failed acquisition and the
// host's cause. It matches ErrSurfaceUnavailable with errors.Is.
type SurfaceError struct {
	Width  int
	Height int
	Cause  error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("%v (viewport %dx%d): %v", ErrSurfaceUnavailable, e.Width, e.Height, e.Cause)
}

func (e *SurfaceError) Is(target error) bool {
	return target == ErrSurfaceUnavailable
}

func (e *SurfaceError) Unwrap() error {
	return e.Cause
}
