package server

import (
	"net/http"

	"lbm/calculator"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

type Config struct {
	Addr        string
	HistorySize int
	// 客户端未指定的参数使用这里的值
	Calc calculator.Config
}

// LoadConfig 读取 [server] 段以及计算默认参数
func LoadConfig(path string) Config {
	cfg := Config{
		Addr:        ":9000",
		HistorySize: 32,
		Calc:        calculator.LoadConfig(path),
	}
	file, err := ini.Load(path)
	if err != nil {
		return cfg
	}
	s := file.Section("server")
	cfg.Addr = s.Key("Addr").MustString(cfg.Addr)
	cfg.HistorySize = s.Key("HistorySize").MustInt(cfg.HistorySize)
	return cfg
}

type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, upgrader websocket.Upgrader) *Server {
	return &Server{
		cfg:      cfg,
		upgrader: upgrader,
	}
}

// serveWs 处理 websocket 请求
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: ", err)
		return
	}
	hub := NewHub(conn, s.cfg)
	log.WithField("remote", conn.RemoteAddr().String()).Info("客户端已连接")
	go hub.handleRequest()
	hub.readLoop()
	log.WithField("remote", conn.RemoteAddr().String()).Info("客户端已断开")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.cfg.Addr).Info("websocket 服务启动")
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}
