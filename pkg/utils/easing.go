package utils

import "math"

// Easing Functions (缓动函数)
//
// 缓动函数接受一个进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 翻页的回弹动画使用 CSS 风格的 cubic-bezier 时间曲线。
//
// 参考：https://easings.net/

// EasingFunc 缓动函数类型
type EasingFunc func(t float64) float64

// EaseLinear 线性缓动（无缓动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutCubic 三次方缓出
// 特点：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Lerp 线性插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 将 t 限制在 [0, 1]
// Bezier 求值要求调用者先做此限制
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Bezier 计算三次贝塞尔曲线在参数 t 处的点
//
// 公式：(1-t)³·P0 + 3(1-t)²t·P1 + 3(1-t)t²·P2 + t³·P3
//
// t 必须在 [0, 1] 内，超出范围时结果无意义（调用者需先 Clamp01）。
func Bezier(p0, p1, p2, p3 Point2D, t float64) Point2D {
	mt := 1 - t
	mt2 := mt * mt
	t2 := t * t
	a := mt2 * mt
	b := 3 * mt2 * t
	c := 3 * mt * t2
	d := t2 * t
	return Point2D{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// CubicBezierEasing 生成 CSS cubic-bezier(x1, y1, x2, y2) 时间曲线
//
// 曲线固定从 (0,0) 出发、到达 (1,1)。给定进度 x，先用牛顿迭代求出参数 t，
// 再用 t 计算 y。牛顿法失败（导数为 0 或越界）时退回二分法。
//
// x1、x2 会被限制在 [0, 1]，保证曲线在 x 方向单调。
func CubicBezierEasing(x1, y1, x2, y2 float64) EasingFunc {
	x1 = Clamp01(x1)
	x2 = Clamp01(x2)

	sample := func(a1, a2, t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*t*a1 + 3*mt*t*t*a2 + t*t*t
	}
	slope := func(a1, a2, t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*a1 + 6*mt*t*(a2-a1) + 3*t*t*(1-a2)
	}

	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}

		t := x
		for i := 0; i < 8; i++ {
			err := sample(x1, x2, t) - x
			if math.Abs(err) < 1e-7 {
				return sample(y1, y2, t)
			}
			d := slope(x1, x2, t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= err / d
			if t < 0 || t > 1 {
				break
			}
		}

		// 二分法兜底
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 32; i++ {
			v := sample(x1, x2, t)
			if math.Abs(v-x) < 1e-7 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return sample(y1, y2, t)
	}
}
