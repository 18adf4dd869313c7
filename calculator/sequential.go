package calculator

import (
	"lbm/model"
)

// calculatorSequential 串行基准实现：先拷贝整个网格再 push 迁移，之后单独碰撞
type calculatorSequential struct {
	core
}

func newCalculatorSequential(cfg Config) *calculatorSequential {
	return &calculatorSequential{core: newCore(cfg)}
}

func (c *calculatorSequential) Step() error {
	cur, next := c.buffers.Current, c.buffers.Next
	w, h := cur.Width, cur.Height

	// 1. 迁移
	next.CopyFrom(cur)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.mask.Solid(x, y) {
				continue
			}
			src := cur.Cell(x, y)
			for i := 0; i < model.Q; i++ {
				nx := wrap(x+model.CX[i], w)
				ny := wrap(y+model.CY[i], h)
				if c.mask.Solid(nx, ny) {
					// bounce-back
					next.Set(model.Opposite[i], x, y, src[i])
				} else {
					next.Set(i, nx, ny, src[i])
				}
			}
		}
	}

	// 2. 碰撞
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.mask.Solid(x, y) {
				continue
			}
			if rho, ok := collide(next.Cell(x, y), c.cfg.Tau); !ok {
				return &DegenerateDensityError{X: x, Y: y, Iteration: c.iteration, Density: rho}
			}
		}
	}

	c.buffers.Swap()
	c.iteration++
	return nil
}

func (c *calculatorSequential) Run(iterations int) error {
	return c.run(c.Step, iterations)
}

func (c *calculatorSequential) Close() {}
