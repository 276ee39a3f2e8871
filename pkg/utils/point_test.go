package utils

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	a, b := Pt(3, 4), Pt(-1, 2)

	tests := []struct {
		name string
		got  Point2D
		want Point2D
	}{
		{"Add", a.Add(b), Pt(2, 6)},
		{"Sub", a.Sub(b), Pt(4, 2)},
		{"Scale", a.Scale(-2), Pt(-6, -8)},
		{"Lerp 起点", a.Lerp(b, 0), a},
		{"Lerp 终点", a.Lerp(b, 1), b},
		{"Lerp 中点", a.Lerp(b, 0.5), Pt(1, 3)},
		{"MirrorX", Pt(350, 250).MirrorX(400), Pt(50, 250)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, 期望 %v", tt.got, tt.want)
			}
		})
	}

	if got := a.Dot(b); got != 5 {
		t.Errorf("Dot = %v, 期望 5", got)
	}
	if got := a.Len(); got != 5 {
		t.Errorf("Len = %v, 期望 5", got)
	}
	if got := a.Dist(Pt(0, 0)); got != 5 {
		t.Errorf("Dist = %v, 期望 5", got)
	}
}

func TestPointRotate(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  Point2D
	}{
		{"0", 0, Pt(1, 0)},
		{"90°", math.Pi / 2, Pt(0, 1)},
		{"180°", math.Pi, Pt(-1, 0)},
		{"-90°", -math.Pi / 2, Pt(0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pt(1, 0).Rotate(tt.angle)
			if !got.ApproxEqual(tt.want, 1e-12) {
				t.Errorf("Rotate(%v) = %v, 期望 %v", tt.angle, got, tt.want)
			}
		})
	}
}

// TestMirrorXInvolution 镜像两次回到原位
func TestMirrorXInvolution(t *testing.T) {
	for _, p := range []Point2D{Pt(0, 0), Pt(12.5, 7), Pt(-30, 300), Pt(400, 1)} {
		if got := p.MirrorX(400).MirrorX(400); got != p {
			t.Errorf("MirrorX 两次: %v -> %v", p, got)
		}
	}
}

func TestPointIsFinite(t *testing.T) {
	tests := []struct {
		p    Point2D
		want bool
	}{
		{Pt(1, 2), true},
		{Pt(-1e300, 1e300), true},
		{Pt(math.NaN(), 0), false},
		{Pt(0, math.NaN()), false},
		{Pt(math.Inf(1), 0), false},
		{Pt(0, math.Inf(-1)), false},
	}
	for _, tt := range tests {
		if got := tt.p.IsFinite(); got != tt.want {
			t.Errorf("%v.IsFinite() = %v, 期望 %v", tt.p, got, tt.want)
		}
	}
}

func TestPointString(t *testing.T) {
	if got := Pt(1.5, -2).String(); got != "(1.5, -2)" {
		t.Errorf("String() = %q", got)
	}
}
