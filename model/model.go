package model

// Env 客户端通过 "env" 消息发送的计算参数
type Env struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Workers    int     `json:"workers"`
	Iterations int     `json:"iterations"`
	Tau        float64 `json:"tau"`
	InflowX    float64 `json:"inflow_x"`
	InflowY    float64 `json:"inflow_y"`
	Density    float64 `json:"density"`
	PushEvery  int     `json:"push_every"`
}

// Frame 速度幅值快照，按行优先存放
type Frame struct {
	Iteration    int       `json:"iteration"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	TotalDensity float64   `json:"total_density"`
	Magnitudes   []float64 `json:"magnitudes"`
}

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 消息类型
const (
	MsgEnv      = "env"
	MsgStart    = "start"
	MsgStop     = "stop"
	MsgHistory  = "history"
	MsgEnvSet   = "envSet"
	MsgStarted  = "started"
	MsgStopped  = "stopped"
	MsgFinished = "finished"
	MsgError    = "error"
)
