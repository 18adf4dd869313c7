package main

import (
	"flag"
	"net/http"
	"path/filepath"

	"lbm/bench"
	"lbm/calculator"
	"lbm/render"
	"lbm/server"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var (
	configPath = flag.String("config", "conf/config.ini", "配置文件路径")
	mode       = flag.String("mode", "run", "run | serve | bench | render")
	workers    = flag.Int("workers", 0, "工作协程数，覆盖配置文件")
	width      = flag.Int("width", 0, "网格宽度，覆盖配置文件")
	height     = flag.Int("height", 0, "网格高度，覆盖配置文件")
	iterations = flag.Int("iterations", -1, "迭代次数，覆盖配置文件")
	dataPath   = flag.String("out", "", ".dat 输出路径，覆盖配置文件")
	imagePath  = flag.String("png", "", "png 输出路径，覆盖配置文件")
)

type output struct {
	DataPath  string
	ImagePath string
	ReportDir string
}

func loadOutput(path string) output {
	out := output{
		DataPath:  "data/state.dat",
		ImagePath: "reports/fluid_flow.png",
		ReportDir: "reports",
	}
	if file, err := ini.Load(path); err == nil {
		s := file.Section("output")
		out.DataPath = s.Key("DataPath").MustString(out.DataPath)
		out.ImagePath = s.Key("ImagePath").MustString(out.ImagePath)
		out.ReportDir = s.Key("ReportDir").MustString(out.ReportDir)
	}
	if *dataPath != "" {
		out.DataPath = *dataPath
	}
	if *imagePath != "" {
		out.ImagePath = *imagePath
	}
	return out
}

func override(cfg calculator.Config) calculator.Config {
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}
	if *iterations >= 0 {
		cfg.Iterations = *iterations
	}
	return cfg
}

func main() {
	flag.Parse()
	out := loadOutput(*configPath)

	switch *mode {
	case "run":
		cfg := override(calculator.LoadConfig(*configPath))
		c, err := calculator.NewCalculator(cfg)
		if err != nil {
			log.Fatal(err)
		}
		err = c.Run(cfg.Iterations)
		c.Close()
		if err != nil {
			log.Fatal(err)
		}
		if err := calculator.SaveState(out.DataPath, c.Field()); err != nil {
			log.Fatal(err)
		}
		if err := render.RenderFile(out.DataPath, out.ImagePath, render.DefaultPalette()); err != nil {
			log.Fatal(err)
		}
	case "serve":
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
		cfg := server.LoadConfig(*configPath)
		cfg.Calc = override(cfg.Calc)
		s := server.NewServer(cfg, upgrader)
		log.Fatal(s.Serve())
	case "bench":
		runBench(bench.LoadOptions(*configPath), out.ReportDir)
	case "render":
		if err := render.RenderFile(out.DataPath, out.ImagePath, render.DefaultPalette()); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func runBench(opts bench.Options, dir string) {
	if *iterations >= 0 {
		opts.Iterations = *iterations
	}
	if *height > 0 {
		opts.Height = *height
	}
	strong, err := bench.Strong(opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := bench.SaveCSV(filepath.Join(dir, "strong_scaling.csv"), strong); err != nil {
		log.Fatal(err)
	}
	weak, err := bench.Weak(opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := bench.SaveCSV(filepath.Join(dir, "weak_scaling.csv"), weak); err != nil {
		log.Fatal(err)
	}
	plotPath := filepath.Join(dir, "scaling_plots.png")
	if err := bench.Plot(strong, weak, plotPath); err != nil {
		log.Fatal(err)
	}
	log.WithField("dir", dir).Info("扩展性测试完成")
}
