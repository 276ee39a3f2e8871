package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/utils"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/webp"
)

var (
	testBackground = color.RGBA{R: 10, G: 10, B: 10, A: 255}
	testBackColor  = color.RGBA{R: 200, G: 100, B: 50, A: 255}
	testPage0      = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	testPage1      = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// newTestRasterizer 两页 40×30；画布 120×43，页面左上角在 (40, 10)
func newTestRasterizer(scale int) *FrameRasterizer {
	pages := []image.Image{
		uniformRGBA(40*scale, 30*scale, testPage0),
		uniformRGBA(40*scale, 30*scale, testPage1),
	}
	r := NewFrameRasterizer(pages, 40, 30, scale)
	r.BackColor = testBackColor
	r.Background = testBackground
	return r
}

func activeFrame(drag utils.Point2D, mirrored bool) components.FlipFrame {
	fold := utils.CalculateFold(drag, 40, 30, 10)
	return components.FlipFrame{
		Current:    0,
		Under:      1,
		Active:     true,
		Mirrored:   mirrored,
		Fold:       fold,
		Transforms: utils.GeneratePageTransforms(fold),
	}
}

func closeTo(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol && d(a.A, b.A) <= tol
}

func TestNewFrameRasterizerLayout(t *testing.T) {
	r := newTestRasterizer(1)
	if r.Bounds() != image.Rect(0, 0, 120, 43) {
		t.Errorf("Bounds = %v, want 120x43", r.Bounds())
	}
	if r.Origin() != utils.Pt(40, 10) {
		t.Errorf("Origin = %v, want (40, 10)", r.Origin())
	}

	if got := NewFrameRasterizer(nil, 40, 30, 0).Scale; got != 1 {
		t.Errorf("非法倍数应按 1 处理, got %d", got)
	}
}

func TestRasterizeFlatFrame(t *testing.T) {
	r := newTestRasterizer(1)
	img := r.Rasterize(components.FlipFrame{Current: 0, Under: -1})

	edge := color.RGBA{R: 164, G: 82, B: 41, A: 255}
	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"左侧空白", 5, 5, testBackground},
		{"右侧空白", 110, 20, testBackground},
		{"当前页", 60, 25, testPage0},
		{"堆叠边", 81, 41, edge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.RGBAAt(tt.x, tt.y); !closeTo(got, tt.want, 1) {
				t.Errorf("像素 (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRasterizeFullTurn(t *testing.T) {
	tests := []struct {
		name      string
		mirrored  bool
		x, y      int
		want      color.RGBA
		tolerance int
	}{
		// 完全翻过：背面落在书脊左侧，下一页完整露出
		{"背面在左侧", false, 20, 25, testBackColor, 2},
		{"下一页露出", false, 60, 25, testPage1, 1},
		// 向后翻页的镜像帧以右边缘为轴，背面翻到页面右侧，左侧保持空白
		{"镜像帧露出下层页", true, 60, 25, testPage1, 1},
		{"镜像帧背面在右侧", true, 100, 25, testBackColor, 2},
		{"镜像帧背面贴近画布右缘", true, 118, 15, testBackColor, 2},
		{"镜像帧左侧为空", true, 20, 25, testBackground, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRasterizer(1)
			img := r.Rasterize(activeFrame(utils.FullTurnPosition(40, 30), tt.mirrored))
			if got := img.RGBAAt(tt.x, tt.y); !closeTo(got, tt.want, tt.tolerance) {
				t.Errorf("像素 (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

// TestRasterizePartialFold 折角处露出背面，其余仍是当前页
func TestRasterizePartialFold(t *testing.T) {
	r := newTestRasterizer(1)
	// 悬停预览点 (35, 25)：折角是右下角的小三角形
	frame := activeFrame(utils.GetCornerPosition(40, 30, 10), false)
	img := r.Rasterize(frame)

	if got := img.RGBAAt(50, 20); !closeTo(got, testPage0, 1) {
		t.Errorf("平铺部分 = %v, want %v", got, testPage0)
	}
	// 页面 (38, 29) 在折角内、被翻起，露出下一页
	if got := img.RGBAAt(78, 39); !closeTo(got, testPage1, 1) {
		t.Errorf("翻起处应露出下一页, got %v", got)
	}
	// 页面 (36, 26) 被翻折后的背面覆盖，颜色接近背面色（可能带少量阴影）
	got := img.RGBAAt(76, 36)
	if closeTo(got, testPage0, 10) || closeTo(got, testPage1, 10) {
		t.Errorf("折角背面像素 = %v, 不应是正面颜色", got)
	}
}

// TestRasterizeMirroredPartialFold 向后翻页的折角在页面左下角
func TestRasterizeMirroredPartialFold(t *testing.T) {
	r := newTestRasterizer(1)
	img := r.Rasterize(activeFrame(utils.GetCornerPosition(40, 30, 10), true))

	if got := img.RGBAAt(70, 20); !closeTo(got, testPage0, 1) {
		t.Errorf("平铺部分 = %v, want %v", got, testPage0)
	}
	// 真实页面 (2, 29) 对应局部 (38, 29)，被翻起后露出下层页
	if got := img.RGBAAt(42, 39); !closeTo(got, testPage1, 1) {
		t.Errorf("翻起处应露出下层页, got %v", got)
	}
	// 真实页面 (4, 26) 被背面覆盖
	got := img.RGBAAt(44, 36)
	if closeTo(got, testPage0, 10) || closeTo(got, testPage1, 10) {
		t.Errorf("折角背面像素 = %v, 不应是正面颜色", got)
	}
	// 右下角不受影响
	if got := img.RGBAAt(78, 39); !closeTo(got, testPage0, 1) {
		t.Errorf("右下角 = %v, want %v", got, testPage0)
	}
}

func TestRasterizeSupersampled(t *testing.T) {
	r := newTestRasterizer(2)
	img := r.Rasterize(components.FlipFrame{Current: 1, Under: -1})
	if img.Bounds() != r.Bounds() {
		t.Fatalf("超采样输出应缩回 1 倍: %v", img.Bounds())
	}
	if got := img.RGBAAt(60, 25); !closeTo(got, testPage1, 1) {
		t.Errorf("当前页 = %v, want %v", got, testPage1)
	}
}

func TestAffineOf(t *testing.T) {
	fn := func(p utils.Point2D) utils.Point2D {
		return utils.Pt(2*p.X+3*p.Y+1, -p.X+4*p.Y+5)
	}
	want := f64.Aff3{2, 3, 1, -1, 4, 5}
	if got := affineOf(fn); got != want {
		t.Errorf("affineOf = %v, want %v", got, want)
	}
}

func TestPolygonMask(t *testing.T) {
	mask := polygonMask(image.Rect(0, 0, 10, 10), []utils.Point2D{
		utils.Pt(0, 0), utils.Pt(10, 0), utils.Pt(10, 5), utils.Pt(0, 5),
	})
	if a := mask.AlphaAt(5, 2).A; a != 0xFF {
		t.Errorf("多边形内 alpha = %d", a)
	}
	if a := mask.AlphaAt(5, 8).A; a != 0 {
		t.Errorf("多边形外 alpha = %d", a)
	}

	empty := polygonMask(image.Rect(0, 0, 4, 4), nil)
	if a := empty.AlphaAt(1, 1).A; a != 0 {
		t.Errorf("空多边形 alpha = %d", a)
	}
}

func TestWriteWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frame_0000.webp")
	src := uniformRGBA(12, 7, testPage0)

	if err := WriteWebP(path, src); err != nil {
		t.Fatalf("WriteWebP: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := webp.DecodeConfig(f)
	if err != nil {
		t.Fatalf("webp.DecodeConfig: %v", err)
	}
	if cfg.Width != 12 || cfg.Height != 7 {
		t.Errorf("尺寸 = %dx%d, want 12x7", cfg.Width, cfg.Height)
	}
}
