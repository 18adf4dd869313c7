package calculator

import (
	"lbm/model"

	log "github.com/sirupsen/logrus"
)

// calculatorParallel 并行实现：pull 迁移与碰撞合并为一次遍历
// 每个 worker 只读 current，只写 next 中属于自己的行块，步内无需加锁
type calculatorParallel struct {
	core

	e     *executor
	tasks []task
}

func newCalculatorParallel(cfg Config) *calculatorParallel {
	c := &calculatorParallel{core: newCore(cfg)}
	c.tasks = partitionRows(0, cfg.Height, cfg.Workers)
	c.e = newExecutor(len(c.tasks), c.streamCollide)
	c.e.run()
	return c
}

func (c *calculatorParallel) Step() error {
	elapsed, err := c.e.dispatchTask(c.tasks)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"iteration": c.iteration, "elapsed": elapsed}).Debug("单步耗时")
	c.buffers.Swap()
	c.iteration++
	return nil
}

func (c *calculatorParallel) Run(iterations int) error {
	return c.run(c.Step, iterations)
}

func (c *calculatorParallel) Close() {
	c.e.stop()
}

// streamCollide 计算 next 中 [t.start, t.end) 行
func (c *calculatorParallel) streamCollide(t task) error {
	cur := c.buffers.Current
	block := c.buffers.Next.Rows(t.start, t.end)
	w, h := cur.Width, cur.Height

	for y := t.start; y < t.end; y++ {
		for x := 0; x < w; x++ {
			k := ((y-t.start)*w + x) * model.Q
			cell := block[k : k+model.Q : k+model.Q]
			if c.mask.Solid(x, y) {
				copy(cell, cur.Cell(x, y))
				continue
			}
			// pull: 取上游邻居流入本格点的分布
			for i := 0; i < model.Q; i++ {
				px := wrap(x-model.CX[i], w)
				py := wrap(y-model.CY[i], h)
				if c.mask.Solid(px, py) {
					cell[i] = cur.Get(model.Opposite[i], x, y)
				} else {
					cell[i] = cur.Get(i, px, py)
				}
			}
			if rho, ok := collide(cell, c.cfg.Tau); !ok {
				return &DegenerateDensityError{X: x, Y: y, Iteration: c.iteration, Density: rho}
			}
		}
	}
	return nil
}
