package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"lbm/model"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func testConfig(width, height, workers int) Config {
	cfg := DefaultConfig()
	cfg.Width = width
	cfg.Height = height
	cfg.Workers = workers
	cfg.ReportEvery = 0
	cfg.PushEvery = 0
	return cfg
}

func runMagnitudes(t *testing.T, cfg Config, iterations int) []float64 {
	t.Helper()
	c, err := NewCalculator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.Run(iterations); err != nil {
		t.Fatal(err)
	}
	if c.Iteration() != iterations {
		t.Fatalf("iteration = %d, want %d", c.Iteration(), iterations)
	}
	mags, err := Magnitudes(c.Field())
	if err != nil {
		t.Fatal(err)
	}
	return mags
}

func assertFieldsClose(t *testing.T, width int, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len %d, want %d", len(got), len(want))
	}
	for i := range got {
		if !scalar.EqualWithinAbsOrRel(got[i], want[i], 1e-12, 1e-9) {
			t.Fatalf("cell (%d, %d): %v, want %v", i%width, i/width, got[i], want[i])
		}
	}
}

func TestNewCalculatorSelectsStepper(t *testing.T) {
	c, err := NewCalculator(testConfig(8, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*calculatorSequential); !ok {
		t.Errorf("one worker gave %T", c)
	}
	c, err = NewCalculator(testConfig(8, 4, 3))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*calculatorParallel); !ok {
		t.Errorf("three workers gave %T", c)
	}
}

func TestNewCalculatorRejectsInvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		testConfig(0, 10, 1),
		testConfig(10, -1, 1),
		testConfig(10, 10, 0),
	} {
		if _, err := NewCalculator(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: err = %v", cfg, err)
		}
	}
	cfg := testConfig(10, 10, 1)
	cfg.Tau = 0.5
	if _, err := NewCalculator(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("tau 0.5: err = %v", err)
	}
}

// 20x10 grid, cylinder at (5, 5) radius 1, 10 iterations.
func TestExampleScenario(t *testing.T) {
	seq := runMagnitudes(t, testConfig(20, 10, 1), 10)
	par := runMagnitudes(t, testConfig(20, 10, 4), 10)
	for i, m := range seq {
		if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
			t.Fatalf("magnitude %d = %v", i, m)
		}
	}
	assertFieldsClose(t, 20, par, seq)
}

func TestSequentialParallelEquivalence(t *testing.T) {
	seq := runMagnitudes(t, testConfig(64, 24, 1), 60)
	par := runMagnitudes(t, testConfig(64, 24, 2), 60)
	assertFieldsClose(t, 64, par, seq)
}

func TestWorkerCountInvariance(t *testing.T) {
	want := runMagnitudes(t, testConfig(40, 17, 1), 30)
	for _, workers := range []int{2, 4, 8, 17, 32} {
		got := runMagnitudes(t, testConfig(40, 17, workers), 30)
		assertFieldsClose(t, 40, got, want)
	}
}

func TestFlowDevelopsAroundObstacle(t *testing.T) {
	mags := runMagnitudes(t, testConfig(40, 20, 2), 50)
	lo, hi := floats.Min(mags), floats.Max(mags)
	if hi-lo < 1e-6 {
		t.Errorf("flow stayed uniform: min %v max %v", lo, hi)
	}
}

func TestMassConservation(t *testing.T) {
	for _, workers := range []int{1, 4} {
		c, err := NewCalculator(testConfig(48, 20, workers))
		if err != nil {
			t.Fatal(err)
		}
		prev := c.Field().TotalDensity()
		for n := 0; n < 40; n++ {
			if err := c.Step(); err != nil {
				t.Fatal(err)
			}
			cur := c.Field().TotalDensity()
			if !scalar.EqualWithinAbsOrRel(cur, prev, 1e-8, 1e-10) {
				t.Fatalf("workers %d, step %d: mass %v -> %v", workers, n, prev, cur)
			}
			prev = cur
		}
		c.Close()
	}
}

func TestObstacleCellsKeepSeed(t *testing.T) {
	for _, workers := range []int{1, 3} {
		cfg := testConfig(20, 10, workers)
		c, err := NewCalculator(cfg)
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Run(15); err != nil {
			t.Fatal(err)
		}
		var seed [model.Q]float64
		Equilibrium(cfg.Density, cfg.InflowX, cfg.InflowY, seed[:])
		m := c.Mask()
		for y := 0; y < cfg.Height; y++ {
			for x := 0; x < cfg.Width; x++ {
				if !m.Solid(x, y) {
					continue
				}
				cell := c.Field().Cell(x, y)
				for i := range seed {
					if cell[i] != seed[i] {
						t.Fatalf("workers %d: solid cell (%d, %d) changed", workers, x, y)
					}
				}
			}
		}
		c.Close()
	}
}

func TestBufferSwapDoesNotCopy(t *testing.T) {
	c := newCalculatorParallel(testConfig(10, 6, 2))
	defer c.Close()
	cur, next := c.buffers.Current, c.buffers.Next
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.buffers.Current != next || c.buffers.Next != cur {
		t.Error("buffers were not swapped")
	}
}

func TestDegenerateDensityAborts(t *testing.T) {
	for _, workers := range []int{1, 4} {
		c, err := NewCalculator(testConfig(12, 8, workers))
		if err != nil {
			t.Fatal(err)
		}
		// empty a cell and its upstream neighbours so nothing streams in
		f := c.Field()
		for y := 2; y <= 4; y++ {
			for x := 8; x <= 10; x++ {
				for i := 0; i < model.Q; i++ {
					f.Set(i, x, y, 0)
				}
			}
		}
		before := f.Clone()

		err = c.Run(5)
		var d *DegenerateDensityError
		if !errors.As(err, &d) {
			t.Fatalf("workers %d: err = %v", workers, err)
		}
		if !errors.Is(err, ErrDegenerateDensity) {
			t.Errorf("errors.Is failed for %v", err)
		}
		if d.X != 9 || d.Y != 3 || d.Iteration != 0 || d.Density != 0 {
			t.Errorf("workers %d: got %+v", workers, d)
		}
		if c.Iteration() != 0 || c.Field() != f {
			t.Errorf("workers %d: state advanced after failure", workers)
		}
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				for i := 0; i < model.Q; i++ {
					if f.Get(i, x, y) != before.Get(i, x, y) {
						t.Fatalf("workers %d: current buffer modified", workers)
					}
				}
			}
		}
		c.Close()
	}
}

func TestRunStops(t *testing.T) {
	c, err := NewCalculator(testConfig(10, 6, 2))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.GetCalcHub().StopSignal()
	c.GetCalcHub().StopSignal()
	if err := c.Run(10); !errors.Is(err, ErrStopped) {
		t.Fatalf("err = %v", err)
	}
	if c.Iteration() != 0 {
		t.Errorf("iteration = %d", c.Iteration())
	}
}

func TestRunPushesFrames(t *testing.T) {
	cfg := testConfig(16, 8, 1)
	cfg.PushEvery = 5
	c, err := NewCalculator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(12); err != nil {
		t.Fatal(err)
	}
	frames := c.GetCalcHub().Frames
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for _, want := range []int{5, 10} {
		frame := <-frames
		if frame.Iteration != want || frame.Width != 16 || frame.Height != 8 || len(frame.Magnitudes) != 128 {
			t.Errorf("frame %+v", frame)
		}
	}
}

func BenchmarkSequentialStep(b *testing.B) {
	c, _ := NewCalculator(testConfig(400, 100, 1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Step()
	}
}

func BenchmarkParallelStep(b *testing.B) {
	c, _ := NewCalculator(testConfig(400, 100, 4))
	defer c.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Step()
	}
}

func TestParallelStepLogsElapsed(t *testing.T) {
	hook := logtest.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	defer func() {
		log.SetLevel(level)
		log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	}()

	c, err := NewCalculator(testConfig(16, 8, 4))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, e := range hook.AllEntries() {
		if e.Level != log.DebugLevel {
			continue
		}
		if _, ok := e.Data["elapsed"].(time.Duration); ok && e.Data["iteration"] == 0 {
			found = true
		}
	}
	if !found {
		t.Error("no debug entry with the step duration")
	}
}
