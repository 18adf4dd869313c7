package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

func round4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Threads", "Width", "Height", "Mean_Time_s", "Std_Dev", "Outliers"}); err != nil {
		return err
	}
	for _, r := range results {
		out := make([]string, len(r.Outliers))
		for i, o := range r.Outliers {
			out[i] = round4(o)
		}
		row := []string{
			strconv.Itoa(r.Threads),
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
			round4(r.Mean),
			round4(r.StdDev),
			"[" + strings.Join(out, ", ") + "]",
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func SaveCSV(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func speedupPlot(strong []Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Strong Scaling (Amdahl)"
	p.X.Label.Text = "Number of threads"
	p.Y.Label.Text = "Speedup"
	p.Add(plotter.NewGrid())

	speedup := Speedup(strong)
	measured := make(plotter.XYs, len(strong))
	ideal := make(plotter.XYs, len(strong))
	for i, r := range strong {
		measured[i].X, measured[i].Y = float64(r.Threads), speedup[i]
		ideal[i].X, ideal[i].Y = float64(r.Threads), float64(r.Threads)
	}

	line, points, err := plotter.NewLinePoints(measured)
	if err != nil {
		return nil, err
	}
	idealLine, err := plotter.NewLine(ideal)
	if err != nil {
		return nil, err
	}
	idealLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(line, points, idealLine)
	p.Legend.Add("Measured speedup", line, points)
	p.Legend.Add("Ideal (linear)", idealLine)
	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

func weakPlot(weak []Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Weak Scaling (Gustafson)"
	p.X.Label.Text = "Number of threads (workload grows)"
	p.Y.Label.Text = "Time (s)"
	p.Add(plotter.NewGrid())

	times := make(plotter.XYs, len(weak))
	for i, r := range weak {
		times[i].X, times[i].Y = float64(r.Threads), r.Mean
	}
	line, points, err := plotter.NewLinePoints(times)
	if err != nil {
		return nil, err
	}
	points.Shape = draw.BoxGlyph{}
	p.Add(line, points)
	p.Legend.Add("Execution time", line, points)
	return p, nil
}

// Plot draws the strong and weak scaling charts side by side into a PNG.
func Plot(strong, weak []Result, path string) error {
	ps, err := speedupPlot(strong)
	if err != nil {
		return fmt.Errorf("strong plot: %w", err)
	}
	pw, err := weakPlot(weak)
	if err != nil {
		return fmt.Errorf("weak plot: %w", err)
	}

	img := vgimg.New(vg.Points(864), vg.Points(360))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{{ps, pw}}, tiles, dc)
	ps.Draw(canvases[0][0])
	pw.Draw(canvases[0][1])

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
