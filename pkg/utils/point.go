// Package utils 提供翻页效果使用的纯函数工具
//
// point.go 定义二维点类型及其基础运算。
// 所有坐标均为页面局部坐标：原点位于页面左上角，书脊位于左边缘（x = 0），
// 可翻动的角位于右下角 (width, height)。
package utils

import (
	"fmt"
	"math"
)

// Point2D 二维坐标点（值类型，不可变）
type Point2D struct {
	X float64
	Y float64
}

// Pt 构造一个 Point2D
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// IsFinite 检查坐标是否都是有限数
// 指针事件带来的 NaN/Inf 坐标会被上层直接丢弃
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Add 向量相加
func (p Point2D) Add(o Point2D) Point2D {
	return Point2D{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub 向量相减 p - o
func (p Point2D) Sub(o Point2D) Point2D {
	return Point2D{X: p.X - o.X, Y: p.Y - o.Y}
}

// Scale 数乘
func (p Point2D) Scale(k float64) Point2D {
	return Point2D{X: p.X * k, Y: p.Y * k}
}

// Dot 点积
func (p Point2D) Dot(o Point2D) float64 {
	return p.X*o.X + p.Y*o.Y
}

// Len 向量长度
func (p Point2D) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist 两点距离
func (p Point2D) Dist(o Point2D) float64 {
	return p.Sub(o).Len()
}

// Lerp 线性插值，t=0 返回 p，t=1 返回 o
func (p Point2D) Lerp(o Point2D, t float64) Point2D {
	return Point2D{X: Lerp(p.X, o.X, t), Y: Lerp(p.Y, o.Y, t)}
}

// Rotate 绕原点旋转 angle 弧度
func (p Point2D) Rotate(angle float64) Point2D {
	s, c := math.Sincos(angle)
	return Point2D{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// MirrorX 关于竖直线 x = width/2 镜像
// 用于把左下角（向后翻页）的手势换算到右下角的局部坐标
func (p Point2D) MirrorX(width float64) Point2D {
	return Point2D{X: width - p.X, Y: p.Y}
}

// ApproxEqual 判断两点是否在 eps 范围内重合
func (p Point2D) ApproxEqual(o Point2D, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}
