package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lbm/calculator"
	"lbm/deque"
	"lbm/model"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Hub 对应一个 websocket 客户端，按请求启动计算并推送快照
type Hub struct {
	cfg  Config
	conn *websocket.Conn
	// 请求
	msg chan model.Msg

	writeMu sync.Mutex // websocket 只允许一个写者

	mu      sync.Mutex // 保护以下字段
	env     model.Env
	c       calculator.Calculator
	history deque.Deque
}

func NewHub(conn *websocket.Conn, cfg Config) *Hub {
	return &Hub{
		cfg:     cfg,
		conn:    conn,
		msg:     make(chan model.Msg, 10),
		history: deque.NewArrDeque(cfg.HistorySize),
	}
}

// readLoop 转发客户端消息，连接断开后停止正在进行的计算
func (h *Hub) readLoop() {
	defer func() {
		close(h.msg)
		h.stopCalc()
		h.conn.Close()
	}()
	for {
		var msg model.Msg
		if err := h.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read: ", err)
			}
			return
		}
		h.msg <- msg
	}
}

func (h *Hub) handleRequest() {
	for msg := range h.msg {
		switch msg.Type {
		case model.MsgEnv:
			var env model.Env
			if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
				h.reply(model.MsgError, fmt.Sprintf("bad env: %v", err))
				continue
			}
			h.mu.Lock()
			h.env = env
			h.mu.Unlock()
			h.reply(model.MsgEnvSet, "env is set")
		case model.MsgStart:
			c, iterations, err := h.startCalc()
			if err != nil {
				h.reply(model.MsgError, err.Error())
				continue
			}
			h.reply(model.MsgStarted, "")
			go h.runCalc(c, iterations)
		case model.MsgStop:
			h.stopCalc()
			h.reply(model.MsgStopped, "stopped")
		case model.MsgHistory:
			h.sendHistory()
		default:
			log.WithField("type", msg.Type).Warn("no such type")
			h.reply(model.MsgError, "no such type: "+msg.Type)
		}
	}
}

// config 用客户端参数覆盖服务端默认值
func (h *Hub) config() calculator.Config {
	cfg := h.cfg.Calc
	env := h.env
	if env.Width > 0 {
		cfg.Width = env.Width
	}
	if env.Height > 0 {
		cfg.Height = env.Height
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Iterations > 0 {
		cfg.Iterations = env.Iterations
	}
	if env.Tau != 0 {
		cfg.Tau = env.Tau
	}
	if env.Density != 0 {
		cfg.Density = env.Density
	}
	if env.InflowX != 0 || env.InflowY != 0 {
		cfg.InflowX, cfg.InflowY = env.InflowX, env.InflowY
	}
	if env.PushEvery > 0 {
		cfg.PushEvery = env.PushEvery
	}
	return cfg
}

func (h *Hub) startCalc() (calculator.Calculator, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.c != nil {
		return nil, 0, errors.New("a calculation is already running")
	}
	cfg := h.config()
	c, err := calculator.NewCalculator(cfg)
	if err != nil {
		return nil, 0, err
	}
	h.c = c
	for !h.history.IsEmpty() {
		h.history.RemoveFirst()
	}
	return c, cfg.Iterations, nil
}

func (h *Hub) stopCalc() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.c != nil {
		h.c.GetCalcHub().StopSignal()
	}
}

func (h *Hub) runCalc(c calculator.Calculator, iterations int) {
	frames := c.GetCalcHub().Frames
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case frame := <-frames:
				h.pushFrame(frame)
			case <-done:
				for {
					select {
					case frame := <-frames:
						h.pushFrame(frame)
					default:
						return
					}
				}
			}
		}
	}()

	start := time.Now()
	err := c.Run(iterations)
	close(done)
	wg.Wait()
	c.Close()

	h.mu.Lock()
	h.c = nil
	h.mu.Unlock()

	switch {
	case err == nil:
		h.reply(model.MsgFinished, time.Since(start).String())
	case errors.Is(err, calculator.ErrStopped):
	default:
		h.reply(model.MsgError, err.Error())
	}
}

func (h *Hub) pushFrame(frame *model.Frame) {
	h.mu.Lock()
	if h.history.IsFull() {
		h.history.RemoveFirst()
	}
	h.history.AddLast(frame)
	h.mu.Unlock()
	h.writeFrame(frame)
}

func (h *Hub) sendHistory() {
	h.mu.Lock()
	frames := make([]*model.Frame, 0, h.history.Size())
	h.history.Traverse(func(_ int, item *model.Frame) {
		frames = append(frames, item)
	})
	h.mu.Unlock()
	for _, frame := range frames {
		h.writeFrame(frame)
	}
}

func (h *Hub) writeFrame(frame *model.Frame) {
	data, err := calculator.EncodeFrame(frame)
	if err != nil {
		log.Warn("encode frame: ", err)
		return
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		log.Warn("write frame: ", err)
	}
}

func (h *Hub) reply(typ, content string) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if err := h.conn.WriteJSON(&model.Msg{Type: typ, Content: content}); err != nil {
		log.Warn("err: ", err)
	}
}
