package calculator

// Mask 障碍物占据情况，true 表示该格点在障碍物内部
type Mask struct {
	Width  int
	Height int
	solid  []bool
}

// NewCircleMask 圆柱障碍物：圆心 (width/4, height/2)，半径 height/10
func NewCircleMask(width, height int) *Mask {
	return NewMask(width, height, width/4, height/2, height/10)
}

func NewMask(width, height, cx, cy, r int) *Mask {
	m := &Mask{
		Width:  width,
		Height: height,
		solid:  make([]bool, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				m.solid[y*width+x] = true
			}
		}
	}
	return m
}

func (m *Mask) Solid(x, y int) bool {
	return m.solid[y*m.Width+x]
}

// Count 障碍物格点数
func (m *Mask) Count() int {
	n := 0
	for _, s := range m.solid {
		if s {
			n++
		}
	}
	return n
}
