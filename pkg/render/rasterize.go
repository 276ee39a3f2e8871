package render

import (
	"image"
	"image/color"
	"math"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/utils"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// 与屏幕渲染保持一致的明暗参数
const (
	backShade      = 0.35
	stackEdgeShade = 0.82
	shadowAlpha    = 0.5
)

// FrameRasterizer 把 FlipFrame 画到 RGBA 画布上
//
// 画布比页面大：左右各留出一整页宽度（向前翻的翻折部分落在左侧，
// 向后翻的镜像帧落在右侧，见 config.SpreadWidth），上方留出 utils.CalculateWrapperHeight 要求的余量，下方放堆叠边。
type FrameRasterizer struct {
	// Pages 每页的位图，尺寸为 Width*Scale × Height*Scale
	Pages []image.Image
	// Back 背面位图；为 nil 时用 BackColor 填充
	Back       image.Image
	BackColor  color.RGBA
	Background color.RGBA

	Width, Height float64
	// Scale 超采样倍数；Rasterize 输出的是缩放回 1 倍的结果
	Scale int

	canvas image.Rectangle
	origin utils.Point2D
}

// NewFrameRasterizer 创建栅格器并计算画布布局
func NewFrameRasterizer(pages []image.Image, width, height float64, scale int) *FrameRasterizer {
	if scale < 1 {
		scale = 1
	}
	r := &FrameRasterizer{
		Pages:  pages,
		Width:  width,
		Height: height,
		Scale:  scale,
	}

	wrapper := utils.CalculateWrapperHeight(len(pages), width, height)
	stack := float64(min(max(len(pages)-1, 0), utils.MaxStackDepth)) * utils.StackOffset
	cw := int(math.Ceil(config.SpreadWidth(width, stack)))
	ch := int(math.Ceil(wrapper))
	r.canvas = image.Rect(0, 0, cw, ch)
	r.origin = utils.Pt(width, math.Max(0, wrapper-height-stack))
	return r
}

// Bounds 输出图片的尺寸（1 倍）
func (r *FrameRasterizer) Bounds() image.Rectangle {
	return r.canvas
}

// Origin 页面左上角在画布中的位置（1 倍）
func (r *FrameRasterizer) Origin() utils.Point2D {
	return r.origin
}

// Rasterize 绘制一帧，顺序与 FlipbookRenderSystem 一致
func (r *FrameRasterizer) Rasterize(frame components.FlipFrame) *image.RGBA {
	s := float64(r.Scale)
	big := image.NewRGBA(image.Rect(0, 0, r.canvas.Dx()*r.Scale, r.canvas.Dy()*r.Scale))
	draw.Draw(big, big.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)

	// 局部坐标 -> 真实页面坐标
	toPage := func(p utils.Point2D) utils.Point2D {
		if frame.Mirrored {
			return p.MirrorX(r.Width)
		}
		return p
	}
	// 真实页面坐标 -> 超采样画布坐标
	toCanvas := func(p utils.Point2D) utils.Point2D {
		return p.Add(r.origin).Scale(s)
	}

	r.drawStackEdges(big, frame.Current)

	if !frame.Active {
		r.drawPage(big, frame.Current)
		return r.downsample(big)
	}

	if frame.Under >= 0 {
		r.drawPage(big, frame.Under)
	}

	back := frame.Transforms.Back
	if back.Visible() && back.Shadow > 0 {
		poly := mapPolygon(frame.Fold.Flap, func(p utils.Point2D) utils.Point2D { return toCanvas(toPage(p)) })
		fillMask(big, polygonMask(big.Bounds(), poly), color.RGBA{A: uint8(255 * back.Shadow * shadowAlpha)})
	}

	front := frame.Transforms.Front
	if img := r.page(frame.Current); img != nil && front.Visible() {
		poly := mapPolygon(front.Clip, func(p utils.Point2D) utils.Point2D { return toCanvas(toPage(p)) })
		mask := polygonMask(big.Bounds(), poly)
		o := toCanvas(utils.Pt(0, 0))
		draw.DrawMask(big, big.Bounds(), img, image.Pt(-int(math.Round(o.X)), -int(math.Round(o.Y))), mask, image.Point{}, draw.Over)
	}

	if back.Visible() {
		dst := func(p utils.Point2D) utils.Point2D { return toCanvas(toPage(back.Apply(p))) }
		// 纹理坐标 = toPage(p) 左右颠倒后放大（从背后看纸张），texInv 是它的逆
		texInv := func(q utils.Point2D) utils.Point2D { return toPage(q.Scale(1 / s).MirrorX(r.Width)) }

		poly := mapPolygon(back.Clip, dst)
		mask := polygonMask(big.Bounds(), poly)
		backImg := r.backImage()
		s2d := affineOf(func(q utils.Point2D) utils.Point2D { return dst(texInv(q)) })
		draw.BiLinear.Transform(big, s2d, backImg, backImg.Bounds(), draw.Over, &draw.Options{
			DstMask:  mask,
			DstMaskP: image.Point{},
		})
		if k := back.Shadow * backShade; k > 0 {
			fillMask(big, mask, color.RGBA{A: uint8(255 * k)})
		}
	}

	return r.downsample(big)
}

func (r *FrameRasterizer) page(i int) image.Image {
	if i < 0 || i >= len(r.Pages) {
		return nil
	}
	return r.Pages[i]
}

func (r *FrameRasterizer) drawPage(dst *image.RGBA, i int) {
	img := r.page(i)
	if img == nil {
		return
	}
	o := r.origin.Scale(float64(r.Scale))
	at := image.Pt(int(math.Round(o.X)), int(math.Round(o.Y)))
	draw.Draw(dst, img.Bounds().Add(at), img, img.Bounds().Min, draw.Over)
}

func (r *FrameRasterizer) drawStackEdges(dst *image.RGBA, current int) {
	depth := min(len(r.Pages)-1-current, utils.MaxStackDepth)
	c := r.BackColor
	edge := image.NewUniform(color.RGBA{
		R: uint8(float64(c.R) * stackEdgeShade),
		G: uint8(float64(c.G) * stackEdgeShade),
		B: uint8(float64(c.B) * stackEdgeShade),
		A: 255,
	})
	s := float64(r.Scale)
	for i := depth; i >= 1; i-- {
		off := float64(i) * utils.StackOffset
		lo := r.origin.Add(utils.Pt(off, off)).Scale(s)
		hi := r.origin.Add(utils.Pt(off+r.Width, off+r.Height)).Scale(s)
		rect := image.Rect(int(math.Round(lo.X)), int(math.Round(lo.Y)), int(math.Round(hi.X)), int(math.Round(hi.Y)))
		draw.Draw(dst, rect, edge, image.Point{}, draw.Src)
	}
}

func (r *FrameRasterizer) backImage() image.Image {
	if r.Back != nil {
		return r.Back
	}
	w, h := int(r.Width)*r.Scale, int(r.Height)*r.Scale
	img := image.NewRGBA(image.Rect(0, 0, max(1, w), max(1, h)))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.BackColor), image.Point{}, draw.Src)
	r.Back = img
	return img
}

func (r *FrameRasterizer) downsample(big *image.RGBA) *image.RGBA {
	if r.Scale == 1 {
		return big
	}
	return ScaleTo(big, r.canvas.Dx(), r.canvas.Dy())
}

// polygonMask 用 x/image/vector 把多边形栅格化为 alpha 遮罩
func polygonMask(bounds image.Rectangle, poly []utils.Point2D) *image.Alpha {
	mask := image.NewAlpha(bounds)
	if len(poly) < 3 {
		return mask
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
	for _, p := range poly[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func fillMask(dst *image.RGBA, mask *image.Alpha, c color.RGBA) {
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func mapPolygon(poly []utils.Point2D, fn func(utils.Point2D) utils.Point2D) []utils.Point2D {
	out := make([]utils.Point2D, len(poly))
	for i, p := range poly {
		out[i] = fn(p)
	}
	return out
}

// affineOf 由仿射映射在三个点上的取值还原出矩阵
// x' = m[0]*x + m[1]*y + m[2]，y' = m[3]*x + m[4]*y + m[5]
func affineOf(fn func(utils.Point2D) utils.Point2D) f64.Aff3 {
	o := fn(utils.Pt(0, 0))
	ex := fn(utils.Pt(1, 0)).Sub(o)
	ey := fn(utils.Pt(0, 1)).Sub(o)
	return f64.Aff3{
		ex.X, ey.X, o.X,
		ex.Y, ey.Y, o.Y,
	}
}
