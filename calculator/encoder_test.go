package calculator

import (
	"encoding/binary"
	"testing"

	"lbm/model"

	"github.com/klauspost/compress/zstd"
)

func TestEncodeFrame(t *testing.T) {
	c, err := NewCalculator(testConfig(30, 12, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(3); err != nil {
		t.Fatal(err)
	}
	frame, err := c.BuildData()
	if err != nil {
		t.Fatal(err)
	}
	data, err := EncodeFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Iteration != 3 || got.Width != 30 || got.Height != 12 {
		t.Errorf("header %+v", got)
	}
	for i, m := range frame.Magnitudes {
		if got.Magnitudes[i] != float64(float32(m)) {
			t.Fatalf("value %d: %v, want %v", i, got.Magnitudes[i], float32(m))
		}
	}
}

func TestEncodeFrameRejectsBadShape(t *testing.T) {
	if _, err := EncodeFrame(&model.Frame{Width: 2, Height: 2, Magnitudes: []float64{1}}); err == nil {
		t.Error("bad frame accepted")
	}
	if _, err := DecodeFrame([]byte("not zstd")); err == nil {
		t.Error("garbage decoded")
	}
}

func TestDecodeFrameRejectsOversizedHeader(t *testing.T) {
	raw := make([]byte, frameHeaderLen)
	binary.LittleEndian.PutUint32(raw[4:], 1<<31)
	binary.LittleEndian.PutUint32(raw[8:], 1<<31)
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	data := enc.EncodeAll(raw, nil)
	enc.Close()

	if _, err := DecodeFrame(data); err == nil {
		t.Error("header claiming 2^62 cells with an empty body accepted")
	}
}
