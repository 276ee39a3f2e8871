package systems

import (
	"image/color"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/ecs"
	"github.com/decker502/flipbook/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 渲染参数
const (
	// backShade 背面在最大阴影时再变暗的比例
	backShade = 0.35
	// stackEdgeShade 堆叠边相对纸张颜色的亮度
	stackEdgeShade = 0.82
)

// FlipbookRenderSystem 绘制翻页组件
//
// 绘制顺序：
//  1. 页面下方的堆叠边
//  2. 下一页（整页）
//  3. 背面投在下一页上的阴影
//  4. 当前页正面，裁剪为仍平铺的部分
//  5. 当前页背面，沿折痕镜像，裁剪为被翻折的部分
//  6. 调试信息（可选）
//
// 所有裁剪多边形都是凸多边形（矩形与半平面的交），用扇形三角化后交给 DrawTriangles。
type FlipbookRenderSystem struct {
	entityManager *ecs.EntityManager

	// whitePixel 纯色填充用的纹理
	whitePixel *ebiten.Image
	// backImages 按实体缓存的背面纯色图
	backImages map[ecs.EntityID]*ebiten.Image
}

// NewFlipbookRenderSystem 创建翻页渲染系统
func NewFlipbookRenderSystem(em *ecs.EntityManager) *FlipbookRenderSystem {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &FlipbookRenderSystem{
		entityManager: em,
		whitePixel:    white.SubImage(white.Bounds().Inset(1)).(*ebiten.Image),
		backImages:    make(map[ecs.EntityID]*ebiten.Image),
	}
}

// Draw 绘制所有翻页组件
func (s *FlipbookRenderSystem) Draw(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.FlipbookComponent, *components.PositionComponent](s.entityManager)
	for _, id := range entities {
		book, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		if book == nil || pos == nil || book.Source == nil {
			continue
		}
		s.drawBook(screen, id, book, pos)
	}
}

func (s *FlipbookRenderSystem) drawBook(screen *ebiten.Image, id ecs.EntityID, book *components.FlipbookComponent, pos *components.PositionComponent) {
	frame := book.Source.Frame()
	origin := utils.Pt(pos.X, pos.Y)
	w := book.Width

	s.drawStackEdges(screen, book, frame, origin)

	if !frame.Active {
		s.drawPage(screen, book, frame.Current, origin)
		s.drawDebug(screen, book, frame, origin)
		return
	}

	// 镜像帧（向后翻页）的局部坐标需要换回真实页面坐标
	toPage := func(p utils.Point2D) utils.Point2D {
		if frame.Mirrored {
			p = p.MirrorX(w)
		}
		return p
	}

	if frame.Under >= 0 {
		s.drawPage(screen, book, frame.Under, origin)
	}

	back := frame.Transforms.Back
	if back.Visible() && back.Shadow > 0 {
		shadow := make([]utils.Point2D, len(frame.Fold.Flap))
		for i, p := range frame.Fold.Flap {
			shadow[i] = toPage(p).Add(origin)
		}
		s.fillPolygon(screen, shadow, color.RGBA{A: uint8(255 * back.Shadow * 0.5)})
	}

	front := frame.Transforms.Front
	if img := s.pageImage(book, frame.Current); img != nil && front.Visible() {
		vs, is := BuildLayerVertices(front.Clip,
			func(p utils.Point2D) utils.Point2D { return toPage(p).Add(origin) },
			toPage,
			1)
		screen.DrawTriangles(vs, is, img, nil)
	}

	if back.Visible() {
		backImg := s.backImage(id, book)
		shade := float32(1 - back.Shadow*backShade)
		vs, is := BuildLayerVertices(back.Clip,
			func(p utils.Point2D) utils.Point2D { return toPage(back.Apply(p)).Add(origin) },
			func(p utils.Point2D) utils.Point2D {
				// 从背后看，纸张的正面坐标左右颠倒
				return toPage(p).MirrorX(w)
			},
			shade)
		screen.DrawTriangles(vs, is, backImg, nil)
	}

	s.drawDebug(screen, book, frame, origin)
}

func (s *FlipbookRenderSystem) drawPage(screen *ebiten.Image, book *components.FlipbookComponent, index int, origin utils.Point2D) {
	img := s.pageImage(book, index)
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(origin.X, origin.Y)
	screen.DrawImage(img, op)
}

// drawStackEdges 在页面下方绘制剩余页数的堆叠边
func (s *FlipbookRenderSystem) drawStackEdges(screen *ebiten.Image, book *components.FlipbookComponent, frame components.FlipFrame, origin utils.Point2D) {
	remaining := len(book.Pages) - 1 - frame.Current
	depth := min(remaining, utils.MaxStackDepth)
	c := book.BackColor
	edge := color.RGBA{
		R: uint8(float64(c.R) * stackEdgeShade),
		G: uint8(float64(c.G) * stackEdgeShade),
		B: uint8(float64(c.B) * stackEdgeShade),
		A: 255,
	}
	for i := depth; i >= 1; i-- {
		offset := float32(float64(i) * utils.StackOffset)
		vector.DrawFilledRect(screen,
			float32(origin.X)+offset, float32(origin.Y)+offset,
			float32(book.Width), float32(book.Height),
			edge, false)
	}
}

func (s *FlipbookRenderSystem) drawDebug(screen *ebiten.Image, book *components.FlipbookComponent, frame components.FlipFrame, origin utils.Point2D) {
	if !book.ShowDebug {
		return
	}
	ox, oy := float32(origin.X), float32(origin.Y)
	cs := float32(book.CornerSize)
	w, h := float32(book.Width), float32(book.Height)

	zone := color.RGBA{R: 255, G: 80, B: 80, A: 200}
	vector.StrokeRect(screen, ox+w-cs, oy+h-cs, cs, cs, 1, zone, false)
	vector.StrokeRect(screen, ox, oy+h-cs, cs, cs, 1, zone, false)

	if !frame.Active {
		return
	}
	a, b := frame.Fold.Crease[0], frame.Fold.Crease[1]
	drag := frame.Fold.Drag
	if frame.Mirrored {
		a, b, drag = a.MirrorX(book.Width), b.MirrorX(book.Width), drag.MirrorX(book.Width)
	}
	vector.StrokeLine(screen,
		ox+float32(a.X), oy+float32(a.Y), ox+float32(b.X), oy+float32(b.Y),
		2, color.RGBA{R: 80, G: 160, B: 255, A: 255}, true)
	vector.DrawFilledRect(screen, ox+float32(drag.X)-3, oy+float32(drag.Y)-3, 6, 6, color.RGBA{G: 200, A: 255}, false)
}

func (s *FlipbookRenderSystem) pageImage(book *components.FlipbookComponent, index int) *ebiten.Image {
	if index < 0 || index >= len(book.Pages) {
		return nil
	}
	return book.Pages[index]
}

func (s *FlipbookRenderSystem) backImage(id ecs.EntityID, book *components.FlipbookComponent) *ebiten.Image {
	if book.BackImage != nil {
		return book.BackImage
	}
	if img, ok := s.backImages[id]; ok {
		return img
	}
	img := ebiten.NewImage(max(1, int(book.Width)), max(1, int(book.Height)))
	img.Fill(book.BackColor)
	s.backImages[id] = img
	return img
}

func (s *FlipbookRenderSystem) fillPolygon(screen *ebiten.Image, poly []utils.Point2D, clr color.RGBA) {
	if len(poly) < 3 {
		return
	}
	r, g, b, a := clr.RGBA()
	vs, is := BuildLayerVertices(poly,
		func(p utils.Point2D) utils.Point2D { return p },
		func(utils.Point2D) utils.Point2D { return utils.Pt(1.5, 1.5) },
		1)
	for i := range vs {
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(g) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}
	screen.DrawTriangles(vs, is, s.whitePixel, nil)
}

// BuildLayerVertices 把凸多边形扇形三角化为 DrawTriangles 的顶点与索引
//
// dst 把多边形顶点映射到屏幕坐标，src 映射到纹理坐标；shade 为 RGB 乘数。
// 少于 3 个顶点时返回 nil。
func BuildLayerVertices(poly []utils.Point2D, dst, src func(utils.Point2D) utils.Point2D, shade float32) ([]ebiten.Vertex, []uint16) {
	if len(poly) < 3 {
		return nil, nil
	}
	vs := make([]ebiten.Vertex, len(poly))
	for i, p := range poly {
		d := dst(p)
		t := src(p)
		vs[i] = ebiten.Vertex{
			DstX:   float32(d.X),
			DstY:   float32(d.Y),
			SrcX:   float32(t.X),
			SrcY:   float32(t.Y),
			ColorR: shade,
			ColorG: shade,
			ColorB: shade,
			ColorA: 1,
		}
	}
	is := make([]uint16, 0, 3*(len(poly)-2))
	for i := 1; i < len(poly)-1; i++ {
		is = append(is, 0, uint16(i), uint16(i+1))
	}
	return vs, is
}
