package calculator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteMagnitudes 每行网格输出一行，数值以空格分隔
func WriteMagnitudes(w io.Writer, mags []float64, width int) error {
	if width < 1 || len(mags)%width != 0 {
		return fmt.Errorf("%d values do not form rows of width %d", len(mags), width)
	}
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for i, m := range mags {
		buf = strconv.AppendFloat(buf[:0], m, 'g', -1, 64)
		buf = append(buf, ' ')
		if (i+1)%width == 0 {
			buf = append(buf, '\n')
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveState 将 f 的速度幅值写入 path，目录不存在时创建
func SaveState(path string, f *Field) error {
	mags, err := Magnitudes(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMagnitudes(file, mags, f.Width); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// ReadMagnitudes 解析 WriteMagnitudes 的输出，跳过空行，行长度不一致时报错
func ReadMagnitudes(r io.Reader) ([][]float64, error) {
	var rows [][]float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row[i] = v
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %d values, want %d", line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
