// Package bench measures strong and weak scaling of the solver over a range
// of worker counts.
package bench

import (
	"fmt"
	"math"
	"time"

	"lbm/calculator"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/ini.v1"
)

type Options struct {
	Samples            int
	Threads            []int
	StrongWidth        int
	WeakWidthPerThread int
	Height             int
	Iterations         int
	// remaining solver parameters
	Base calculator.Config
}

func DefaultOptions() Options {
	return Options{
		Samples:            30,
		Threads:            []int{1, 2, 4, 8, 16},
		StrongWidth:        400,
		WeakWidthPerThread: 200,
		Height:             100,
		Iterations:         1000,
		Base:               calculator.DefaultConfig(),
	}
}

// LoadOptions reads the [bench] section of path on top of the defaults.
func LoadOptions(path string) Options {
	opts := DefaultOptions()
	opts.Base = calculator.LoadConfig(path)
	file, err := ini.Load(path)
	if err != nil {
		return opts
	}
	s := file.Section("bench")
	opts.Samples = s.Key("Samples").MustInt(opts.Samples)
	if threads := s.Key("Threads").Ints(","); len(threads) > 0 {
		opts.Threads = threads
	}
	opts.StrongWidth = s.Key("StrongWidth").MustInt(opts.StrongWidth)
	opts.WeakWidthPerThread = s.Key("WeakWidthPerThread").MustInt(opts.WeakWidthPerThread)
	opts.Height = s.Key("Height").MustInt(opts.Height)
	opts.Iterations = s.Key("Iterations").MustInt(opts.Iterations)
	return opts
}

// Result is the timing of one (threads, width, height) configuration.
type Result struct {
	Threads  int
	Width    int
	Height   int
	Mean     float64 // seconds
	StdDev   float64
	Outliers []float64
	Samples  []float64
}

// Measure runs cfg samples times and reports wall-clock statistics. Each
// sample includes field allocation, as a fresh process would.
func Measure(cfg calculator.Config, samples int) (Result, error) {
	if samples < 1 {
		return Result{}, fmt.Errorf("samples %d must be positive", samples)
	}
	cfg.ReportEvery = 0
	cfg.PushEvery = 0
	times := make([]float64, 0, samples)
	for i := 0; i < samples; i++ {
		start := time.Now()
		c, err := calculator.NewCalculator(cfg)
		if err != nil {
			return Result{}, err
		}
		err = c.Run(cfg.Iterations)
		c.Close()
		if err != nil {
			return Result{}, err
		}
		times = append(times, time.Since(start).Seconds())
	}
	mean, std := stat.PopMeanStdDev(times, nil)
	return Result{
		Threads:  cfg.Workers,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Mean:     mean,
		StdDev:   std,
		Outliers: outliers(times, mean, std),
		Samples:  times,
	}, nil
}

// outliers returns the samples farther than two standard deviations from
// the mean.
func outliers(samples []float64, mean, std float64) []float64 {
	var res []float64
	for _, s := range samples {
		if math.Abs(s-mean) > 2*std {
			res = append(res, s)
		}
	}
	return res
}

// Strong keeps the grid fixed while the worker count grows (Amdahl).
func Strong(opts Options) ([]Result, error) {
	return scale(opts, "strong", func(int) int { return opts.StrongWidth })
}

// Weak grows the grid width with the worker count (Gustafson).
func Weak(opts Options) ([]Result, error) {
	return scale(opts, "weak", func(threads int) int { return opts.WeakWidthPerThread * threads })
}

func scale(opts Options, name string, width func(threads int) int) ([]Result, error) {
	results := make([]Result, 0, len(opts.Threads))
	for _, threads := range opts.Threads {
		cfg := opts.Base
		cfg.Workers = threads
		cfg.Width = width(threads)
		cfg.Height = opts.Height
		cfg.Iterations = opts.Iterations
		r, err := Measure(cfg, opts.Samples)
		if err != nil {
			return nil, fmt.Errorf("%s scaling, %d threads: %w", name, threads, err)
		}
		log.WithFields(log.Fields{
			"experiment": name,
			"threads":    threads,
			"width":      cfg.Width,
			"height":     cfg.Height,
			"mean":       r.Mean,
			"std":        r.StdDev,
		}).Info("测试完成")
		results = append(results, r)
	}
	return results, nil
}

// Speedup is T(first) / T(n) for each result.
func Speedup(results []Result) []float64 {
	if len(results) == 0 {
		return nil
	}
	base := results[0].Mean
	res := make([]float64, len(results))
	for i, r := range results {
		res[i] = base / r.Mean
	}
	return res
}
