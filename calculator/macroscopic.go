package calculator

import (
	"math"

	"lbm/model"
)

// Magnitudes 按行优先顺序返回每个格点的速度幅值 |u|
func Magnitudes(f *Field) ([]float64, error) {
	mags := make([]float64, f.Width*f.Height)
	if err := magnitudesInto(f, mags, 0); err != nil {
		return nil, err
	}
	return mags, nil
}

func magnitudesInto(f *Field, mags []float64, iteration int) error {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			rho, ux, uy := Moments(f.Cell(x, y))
			if !usableDensity(rho) {
				return &DegenerateDensityError{X: x, Y: y, Iteration: iteration, Density: rho}
			}
			mags[y*f.Width+x] = math.Sqrt(ux*ux + uy*uy)
		}
	}
	return nil
}

// BuildData 构建当前时刻的速度幅值快照
func (c *core) BuildData() (*model.Frame, error) {
	f := c.buffers.Current
	frame := &model.Frame{
		Iteration:    c.iteration,
		Width:        f.Width,
		Height:       f.Height,
		TotalDensity: f.TotalDensity(),
		Magnitudes:   make([]float64, f.Width*f.Height),
	}
	if err := magnitudesInto(f, frame.Magnitudes, c.iteration); err != nil {
		return nil, err
	}
	return frame, nil
}
