package calculator

import (
	"math"

	"lbm/model"
)

// Equilibrium 计算 (rho, ux, uy) 的二阶平衡分布，写入 out
// 初始化和两种实现都使用此函数
func Equilibrium(rho, ux, uy float64, out []float64) {
	uSq := ux*ux + uy*uy
	for i := 0; i < model.Q; i++ {
		uDotC := float64(model.CX[i])*ux + float64(model.CY[i])*uy
		out[i] = rho * model.W[i] * (1.0 + 3.0*uDotC + 4.5*uDotC*uDotC - 1.5*uSq)
	}
}

// NewEquilibriumField 以均匀流的平衡分布初始化每个格点
func NewEquilibriumField(width, height int, rho, ux, uy float64) *Field {
	f := NewField(width, height)
	var feq [model.Q]float64
	Equilibrium(rho, ux, uy, feq[:])
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			copy(f.Cell(x, y), feq[:])
		}
	}
	return f
}

// Moments 计算格点的密度和速度
func Moments(cell []float64) (rho, ux, uy float64) {
	for i := 0; i < model.Q; i++ {
		rho += cell[i]
		ux += cell[i] * float64(model.CX[i])
		uy += cell[i] * float64(model.CY[i])
	}
	if !usableDensity(rho) {
		return rho, math.NaN(), math.NaN()
	}
	return rho, ux / rho, uy / rho
}

func usableDensity(rho float64) bool {
	return rho > 0 && !math.IsInf(rho, 1)
}

// collide BGK 碰撞，向局部平衡分布松弛
// 密度退化时 ok 为 false，格点数据保持不变
func collide(cell []float64, tau float64) (rho float64, ok bool) {
	rho, ux, uy := Moments(cell)
	if !usableDensity(rho) {
		return rho, false
	}
	var feq [model.Q]float64
	Equilibrium(rho, ux, uy, feq[:])
	for i := 0; i < model.Q; i++ {
		cell[i] -= (cell[i] - feq[i]) / tau
	}
	return rho, true
}
