package calculator

import (
	"time"

	"lbm/model"

	log "github.com/sirupsen/logrus"
)

// Calculator 分布函数场的时间推进
type Calculator interface {
	// 计算一个时间步
	Step() error

	// 连续计算 iterations 步，遇到错误或停止信号时返回
	Run(iterations int) error

	// 当前（最后一次完整写入的）分布函数场
	Field() *Field

	// 已完成的迭代次数
	Iteration() int

	Mask() *Mask

	// 构建推送数据
	BuildData() (*model.Frame, error)

	GetCalcHub() *CalcHub

	// 释放 worker
	Close()
}

// NewCalculator 校验参数，单 worker 返回串行实现，否则返回并行实现
func NewCalculator(cfg Config) (Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers == 1 {
		log.WithFields(log.Fields{"width": cfg.Width, "height": cfg.Height}).Info("使用串行计算")
		return newCalculatorSequential(cfg), nil
	}
	log.WithFields(log.Fields{"width": cfg.Width, "height": cfg.Height, "workers": cfg.Workers}).Info("使用并行计算")
	return newCalculatorParallel(cfg), nil
}

// core 两种实现共用的状态
type core struct {
	cfg       Config
	mask      *Mask
	buffers   *BufferPair
	iteration int
	calcHub   *CalcHub
}

func newCore(cfg Config) core {
	initial := NewEquilibriumField(cfg.Width, cfg.Height, cfg.Density, cfg.InflowX, cfg.InflowY)
	return core{
		cfg:     cfg,
		mask:    NewCircleMask(cfg.Width, cfg.Height),
		buffers: NewBufferPair(initial),
		calcHub: NewCalcHub(),
	}
}

func (c *core) Field() *Field {
	return c.buffers.Current
}

func (c *core) Iteration() int {
	return c.iteration
}

func (c *core) Mask() *Mask {
	return c.mask
}

func (c *core) GetCalcHub() *CalcHub {
	return c.calcHub
}

func (c *core) run(step func() error, iterations int) error {
	start := time.Now()
	for n := 0; n < iterations; n++ {
		if c.calcHub.stopped() {
			log.WithField("iteration", c.iteration).Info("计算已停止")
			return ErrStopped
		}
		if err := step(); err != nil {
			entry := log.WithField("iteration", c.iteration)
			if d, ok := err.(*DegenerateDensityError); ok {
				entry = entry.WithFields(log.Fields{"x": d.X, "y": d.Y, "density": d.Density})
			}
			entry.Error("计算中止: ", err)
			return err
		}
		if c.cfg.ReportEvery > 0 && c.iteration%c.cfg.ReportEvery == 0 {
			log.WithField("iteration", c.iteration).Info("迭代进度")
		}
		if c.cfg.PushEvery > 0 && c.iteration%c.cfg.PushEvery == 0 {
			frame, err := c.BuildData()
			if err != nil {
				return err
			}
			c.calcHub.PushSignal(frame)
		}
	}
	log.WithFields(log.Fields{
		"iterations": iterations,
		"elapsed":    time.Since(start),
	}).Info("计算完成")
	return nil
}

// wrap 周期边界，将 i 映射到 [0, n)
func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
