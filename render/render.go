// Package render turns an exported magnitude field into a heatmap image.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"lbm/calculator"

	"github.com/mazznoer/colorgrad"
	log "github.com/sirupsen/logrus"
)

// minPeak floors the normalisation maximum so a still field does not divide by zero.
const minPeak = 0.001

// DefaultPalette ramps linearly from blue (slow) to red (fast).
func DefaultPalette() []color.Color {
	grad, err := colorgrad.NewGradient().
		Colors(color.RGBA{0, 0, 255, 255}, color.RGBA{255, 0, 0, 255}).
		Mode(colorgrad.BlendRgb).
		Build()
	if err != nil {
		// two fixed colours always build
		panic(err)
	}
	return grad.Colors(256)
}

func ViridisPalette() []color.Color {
	return colorgrad.Viridis().Colors(256)
}

// Heatmap maps every value to a palette entry, normalised by the global
// maximum. One pixel per cell, row 0 at the top.
func Heatmap(rows [][]float64, palette []color.Color) *image.RGBA {
	height := len(rows)
	width := 0
	if height > 0 {
		width = len(rows[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	peak := minPeak
	for _, row := range rows {
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
	}
	last := len(palette) - 1
	for y, row := range rows {
		for x, v := range row {
			k := int(v / peak * float64(last))
			if k < 0 {
				k = 0
			}
			if k > last {
				k = last
			}
			img.Set(x, y, palette[k])
		}
	}
	return img
}

// RenderFile reads a .dat magnitude file and writes it as a PNG heatmap.
func RenderFile(in, out string, palette []color.Color) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	defer src.Close()
	rows, err := calculator.ReadMagnitudes(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: no data", in)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(dst, Heatmap(rows, palette)); err != nil {
		dst.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	log.WithFields(log.Fields{"in": in, "out": out, "width": len(rows[0]), "height": len(rows)}).Info("热力图已生成")
	return dst.Close()
}
