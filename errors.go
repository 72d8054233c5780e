package imgcluster

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImages is returned when the loader finds nothing to decode.
	ErrNoImages = errors.New("no images to load")
	// ErrShapeMismatch is returned when images of different sizes are stacked.
	ErrShapeMismatch = errors.New("image shape mismatch")
	// ErrTooManyComponents is returned when PCA is asked for more components
	// than min(rows, cols).
	ErrTooManyComponents = errors.New("too many principal components")
)

// ShapeMismatchError reports the first image whose dimensions differ from the
// first image of the batch.
type ShapeMismatchError struct {
	Path     string
	Expected [3]int
	Actual   [3]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: expected %dx%dx%d, got %dx%dx%d",
		ErrShapeMismatch, e.Path,
		e.Expected[0], e.Expected[1], e.Expected[2],
		e.Actual[0], e.Actual[1], e.Actual[2])
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }
