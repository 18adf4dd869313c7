package model

// D2Q9 格子常量
//
//   6   2   5
//     \ | /
//   3 - 0 - 1
//     / | \
//   7   4   8

const Q = 9

var (
	// 权重
	W = [Q]float64{4.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 9.0, 1.0 / 36.0, 1.0 / 36.0, 1.0 / 36.0, 1.0 / 36.0}

	// 离散速度
	CX = [Q]int{0, 1, 0, -1, 0, 1, -1, -1, 1}
	CY = [Q]int{0, 0, 1, 0, -1, 1, 1, -1, -1}

	// 反方向，用于 bounce-back
	Opposite = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}
)
