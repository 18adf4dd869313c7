package calculator

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config 计算参数
type Config struct {
	Width      int
	Height     int
	Workers    int
	Iterations int

	Tau     float64 // 松弛时间
	InflowX float64
	InflowY float64
	Density float64

	ReportEvery int // 每隔多少次迭代输出一次进度
	PushEvery   int // 每隔多少次迭代推送一次快照，0 表示不推送
}

// DefaultConfig 与 conf/config.ini 中的默认值一致
func DefaultConfig() Config {
	return Config{
		Width:       400,
		Height:      100,
		Workers:     1,
		Iterations:  1000,
		Tau:         0.6,
		InflowX:     0.1,
		InflowY:     0.0,
		Density:     1.0,
		ReportEvery: 100,
		PushEvery:   50,
	}
}

// LoadConfig 读取 [calculator] 段，文件不存在或无法读取时使用默认配置
func LoadConfig(path string) Config {
	file, err := ini.Load(path)
	if err != nil {
		log.WithField("path", path).Warn("配置文件读取错误，使用默认配置: ", err)
		return DefaultConfig()
	}
	return loadCfg(file)
}

func LoadConfigFromBytes(data []byte) (Config, error) {
	file, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return loadCfg(file), nil
}

func loadCfg(file *ini.File) Config {
	d := DefaultConfig()
	s := file.Section("calculator")
	cfg := Config{
		Width:       s.Key("Width").MustInt(d.Width),
		Height:      s.Key("Height").MustInt(d.Height),
		Workers:     s.Key("Workers").MustInt(d.Workers),
		Iterations:  s.Key("Iterations").MustInt(d.Iterations),
		Tau:         s.Key("Tau").MustFloat64(d.Tau),
		InflowX:     s.Key("InflowX").MustFloat64(d.InflowX),
		InflowY:     s.Key("InflowY").MustFloat64(d.InflowY),
		Density:     s.Key("Density").MustFloat64(d.Density),
		ReportEvery: s.Key("ReportEvery").MustInt(d.ReportEvery),
		PushEvery:   s.Key("PushEvery").MustInt(d.PushEvery),
	}
	log.WithFields(log.Fields{
		"Width":       cfg.Width,
		"Height":      cfg.Height,
		"Workers":     cfg.Workers,
		"Iterations":  cfg.Iterations,
		"Tau":         cfg.Tau,
		"InflowX":     cfg.InflowX,
		"InflowY":     cfg.InflowY,
		"Density":     cfg.Density,
		"ReportEvery": cfg.ReportEvery,
		"PushEvery":   cfg.PushEvery,
	}).Info("加载计算参数")
	return cfg
}

// Validate 校验参数，必须在分配缓冲区之前调用
func (c Config) Validate() error {
	switch {
	case c.Width < 1:
		return fmt.Errorf("%w: width %d", ErrInvalidConfig, c.Width)
	case c.Height < 1:
		return fmt.Errorf("%w: height %d", ErrInvalidConfig, c.Height)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Iterations)
	case !(c.Tau > 0.5):
		// tau <= 0.5 时粘度非正
		return fmt.Errorf("%w: tau %v must be greater than 0.5", ErrInvalidConfig, c.Tau)
	case !(c.Density > 0):
		return fmt.Errorf("%w: density %v", ErrInvalidConfig, c.Density)
	case c.ReportEvery < 0 || c.PushEvery < 0:
		return fmt.Errorf("%w: negative report/push interval", ErrInvalidConfig)
	}
	return nil
}
