package calculator

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"lbm/model"

	"github.com/klauspost/compress/zstd"
)

// 推送数据编码：16 字节头 (iteration, width, height, total density) + float32 幅值，整体 zstd 压缩

const frameHeaderLen = 16

var zstdEncPool = sync.Pool{
	New: func() interface{} {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

func EncodeFrame(frame *model.Frame) ([]byte, error) {
	if len(frame.Magnitudes) != frame.Width*frame.Height {
		return nil, fmt.Errorf("frame has %d values, want %dx%d", len(frame.Magnitudes), frame.Width, frame.Height)
	}
	raw := make([]byte, frameHeaderLen+4*len(frame.Magnitudes))
	binary.LittleEndian.PutUint32(raw[0:], uint32(frame.Iteration))
	binary.LittleEndian.PutUint32(raw[4:], uint32(frame.Width))
	binary.LittleEndian.PutUint32(raw[8:], uint32(frame.Height))
	binary.LittleEndian.PutUint32(raw[12:], math.Float32bits(float32(frame.TotalDensity)))
	for i, m := range frame.Magnitudes {
		binary.LittleEndian.PutUint32(raw[frameHeaderLen+4*i:], math.Float32bits(float32(m)))
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

func DecodeFrame(data []byte) (*model.Frame, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if len(raw) < frameHeaderLen {
		return nil, fmt.Errorf("frame too short: %d bytes", len(raw))
	}
	frame := &model.Frame{
		Iteration:    int(binary.LittleEndian.Uint32(raw[0:])),
		Width:        int(binary.LittleEndian.Uint32(raw[4:])),
		Height:       int(binary.LittleEndian.Uint32(raw[8:])),
		TotalDensity: float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[12:]))),
	}
	body := raw[frameHeaderLen:]
	// 头部来自对端，按格点数比较防止溢出
	cells := uint64(frame.Width) * uint64(frame.Height)
	if len(body)%4 != 0 || uint64(len(body)/4) != cells {
		return nil, fmt.Errorf("frame body has %d bytes, want %d cells", len(body), cells)
	}
	frame.Magnitudes = make([]float64, frame.Width*frame.Height)
	for i := range frame.Magnitudes {
		frame.Magnitudes[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:])))
	}
	return frame, nil
}
