package calculator

import (
	"lbm/model"

	"gonum.org/v1/gonum/floats"
)

// Field 每个格点的 9 个分布函数，(i, x, y) 位于 ((y*Width)+x)*Q + i
// 因此若干连续行是一段连续的子切片
type Field struct {
	Width  int
	Height int
	data   []float64
}

func NewField(width, height int) *Field {
	return &Field{
		Width:  width,
		Height: height,
		data:   make([]float64, width*height*model.Q),
	}
}

func (f *Field) index(x, y int) int {
	return (y*f.Width + x) * model.Q
}

func (f *Field) Get(i, x, y int) float64 {
	return f.data[f.index(x, y)+i]
}

func (f *Field) Set(i, x, y int, v float64) {
	f.data[f.index(x, y)+i] = v
}

// Cell 返回 (x, y) 的 9 个分布函数，与场共享底层数组
func (f *Field) Cell(x, y int) []float64 {
	k := f.index(x, y)
	return f.data[k : k+model.Q : k+model.Q]
}

// Rows 返回 [start, end) 行对应的切片，行区间不相交的块互不重叠
func (f *Field) Rows(start, end int) []float64 {
	return f.data[start*f.Width*model.Q : end*f.Width*model.Q : end*f.Width*model.Q]
}

// CopyFrom 拷贝另一个同尺寸场的数据
func (f *Field) CopyFrom(src *Field) {
	copy(f.data, src.data)
}

func (f *Field) Clone() *Field {
	c := NewField(f.Width, f.Height)
	c.CopyFrom(f)
	return c
}

// TotalDensity 所有分布函数之和，即各格点密度之和
func (f *Field) TotalDensity() float64 {
	return floats.Sum(f.data)
}

// BufferPair 双缓冲：current 只读，next 为写入目标，每步结束后交换
type BufferPair struct {
	Current *Field
	Next    *Field
}

func NewBufferPair(initial *Field) *BufferPair {
	return &BufferPair{
		Current: initial,
		Next:    NewField(initial.Width, initial.Height),
	}
}

// Swap 交换两个缓冲区的角色，不拷贝数据
func (b *BufferPair) Swap() {
	b.Current, b.Next = b.Next, b.Current
}
