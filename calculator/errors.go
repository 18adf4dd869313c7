package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrDegenerateDensity = errors.New("degenerate density")
	ErrStopped           = errors.New("calculation stopped")
)

// DegenerateDensityError 格点密度为非正数或非有限值，无法求速度
type DegenerateDensityError struct {
	X, Y      int
	Iteration int
	Density   float64
}

func (e *DegenerateDensityError) Error() string {
	return fmt.Sprintf("degenerate density %v at cell (%d, %d), iteration %d", e.Density, e.X, e.Y, e.Iteration)
}

func (e *DegenerateDensityError) Is(target error) bool {
	return target == ErrDegenerateDensity
}
