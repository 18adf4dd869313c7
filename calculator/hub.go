package calculator

import (
	"sync"

	"lbm/model"
)

const framesBuffer = 16

type CalcHub struct {
	// 停止计算
	Stop chan struct{}
	// 周期性推送的速度幅值快照
	Frames chan *model.Frame

	once sync.Once
}

func NewCalcHub() *CalcHub {
	return &CalcHub{
		Stop:   make(chan struct{}),
		Frames: make(chan *model.Frame, framesBuffer),
	}
}

// StopSignal 通知计算停止，可重复调用
func (ch *CalcHub) StopSignal() {
	ch.once.Do(func() {
		close(ch.Stop)
	})
}

func (ch *CalcHub) stopped() bool {
	select {
	case <-ch.Stop:
		return true
	default:
		return false
	}
}

// PushSignal 非阻塞推送快照，消费者跟不上时丢弃
func (ch *CalcHub) PushSignal(frame *model.Frame) bool {
	select {
	case ch.Frames <- frame:
		return true
	default:
		return false
	}
}
