package utils

import "math"

// fold_geometry.go 计算页面折角的几何形状
//
// # 模型
//
// 页面是 [0,width]×[0,height] 的矩形，书脊在左边缘。
// 可翻动的角原点 C = (width, height)。拖拽点 P 代表这个角当前被拖到的位置。
// 折痕是线段 CP 的垂直平分线：页面上位于 C 一侧的部分被翻折，
// 沿折痕镜像后覆盖在 P 附近；另一侧保持平铺。
//
// 两个边界情况：
//   - P 与 C 重合：零折叠，折痕退化为点 C，整页平铺
//   - P = (-width, height)：完全翻过，折痕就是书脊，整页都是翻折部分

const (
	// foldEpsilon 拖拽点与角原点的距离小于此值视为零折叠
	foldEpsilon = 1e-9

	// MaxShadowIntensity 默认最大阴影强度（折叠到 90° 时）
	MaxShadowIntensity = 0.6

	// StackOffset 页面堆叠时每层露出的像素
	StackOffset = 3.0
	// MaxStackDepth 最多绘制几层堆叠边
	MaxStackDepth = 4
)

// FoldGeometry 单帧的折叠描述
//
// 完全由拖拽点和页面尺寸推导，不持有独立状态，每帧重新计算。
type FoldGeometry struct {
	Drag   Point2D // 约束后的拖拽点
	Corner Point2D // 角原点 (width, height)

	// Crease 折痕与页面边界的两个交点；零折叠时两端都等于 Corner
	Crease [2]Point2D
	// Angle 折痕方向（弧度）
	Angle float64
	// Rotation 翻折角度 [0, π]：0 为平铺，π 为完全翻过
	Rotation float64

	Remainder  []Point2D // 仍然平铺的部分（页面坐标）
	FlapRegion []Point2D // 被翻折的部分，翻折前的位置（页面坐标）
	Flap       []Point2D // 被翻折的部分，翻折后的位置（页面坐标）

	Width      float64
	Height     float64
	CornerSize float64
}

// IsFlat 是否为零折叠
func (f FoldGeometry) IsFlat() bool {
	return len(f.FlapRegion) < 3
}

// CornerOrigin 返回页面右下角原点
func CornerOrigin(width, height float64) Point2D {
	return Point2D{X: width, Y: height}
}

// FullTurnPosition 返回完全翻页时角所在的位置（角原点关于书脊的镜像）
func FullTurnPosition(width, height float64) Point2D {
	return Point2D{X: -width, Y: height}
}

// ConstrainDragPoint 限制拖拽点，保证纸张不会被"拉伸"
//
// 先把点拉回底边之上、角所在竖边之左（越过角原点的拖拽退化为零折叠），
// 再保证角到书脊底部 (0,height) 的距离不超过 width，
// 角到书脊顶部 (0,0) 的距离不超过页面对角线。
func ConstrainDragPoint(p Point2D, width, height float64) Point2D {
	p.X = math.Min(p.X, width)
	p.Y = math.Min(p.Y, height)

	spineBottom := Point2D{X: 0, Y: height}
	if d := p.Dist(spineBottom); d > width {
		p = spineBottom.Add(p.Sub(spineBottom).Scale(width / d))
	}

	spineTop := Point2D{}
	diag := math.Hypot(width, height)
	if d := p.Dist(spineTop); d > diag {
		p = spineTop.Add(p.Sub(spineTop).Scale(diag / d))
	}
	return p
}

// CalculateFold 根据拖拽点计算折叠几何
//
// dragPoint 在激烈拖拽时可能位于页面外，会先经过 ConstrainDragPoint。
func CalculateFold(dragPoint Point2D, width, height, cornerSize float64) FoldGeometry {
	corner := CornerOrigin(width, height)
	page := rectPolygon(width, height)

	fold := FoldGeometry{
		Corner:     corner,
		Width:      width,
		Height:     height,
		CornerSize: cornerSize,
	}

	drag := ConstrainDragPoint(dragPoint, width, height)
	fold.Drag = drag

	toCorner := corner.Sub(drag)
	dist := toCorner.Len()
	if dist < foldEpsilon {
		fold.Drag = corner
		fold.Crease = [2]Point2D{corner, corner}
		fold.Remainder = page
		return fold
	}

	normal := toCorner.Scale(1 / dist) // 指向角原点一侧
	mid := corner.Lerp(drag, 0.5)
	dir := Point2D{X: -normal.Y, Y: normal.X}

	fold.Angle = math.Atan2(dir.Y, dir.X)
	fold.Rotation = math.Pi * math.Min(1, dist/(2*width))

	fold.Remainder = clipHalfPlane(page, mid, normal, false)
	fold.FlapRegion = clipHalfPlane(page, mid, normal, true)
	if len(fold.FlapRegion) < 3 {
		// 折痕完全落在页面外
		fold.FlapRegion = nil
		fold.Remainder = page
		fold.Crease = [2]Point2D{corner, corner}
		fold.Rotation = 0
		return fold
	}

	fold.Flap = make([]Point2D, len(fold.FlapRegion))
	for i, v := range fold.FlapRegion {
		fold.Flap[i] = reflectAcross(v, mid, normal)
	}

	if a, b, ok := clipLineToRect(mid, dir, width, height); ok {
		fold.Crease = [2]Point2D{a, b}
	} else {
		fold.Crease = [2]Point2D{mid, mid}
	}
	return fold
}

// CalculateWrapperHeight 计算容器需要的总高度
//
// 包括页面本身、底部露出的堆叠边，以及拖拽角能到达的最高点超出页面顶部的部分
// （角到书脊底部的距离不超过 width，所以最多超出 width - height）。
func CalculateWrapperHeight(pages int, width, height float64) float64 {
	total := height
	if pages > 1 {
		total += float64(min(pages-1, MaxStackDepth)) * StackOffset
	}
	if overhang := width - height; overhang > 0 {
		total += overhang
	}
	return math.Ceil(total)
}

// GetFlipEndPosition 决定松手后动画的终点
//
// 快速翻页总是完成翻页；否则拖拽点越过页面水平中线才完成翻页，
// 没有越过则回弹到角原点。
func GetFlipEndPosition(dragPoint Point2D, width, height float64, wasQuickFlip bool) Point2D {
	if wasQuickFlip || dragPoint.X < width/2 {
		return FullTurnPosition(width, height)
	}
	return CornerOrigin(width, height)
}

// IsTurnCompletion 判断终点是否为完成翻页的位置
func IsTurnCompletion(end Point2D, width, height float64) bool {
	return end.ApproxEqual(FullTurnPosition(width, height), 1e-6)
}

// GetCornerPosition 悬停预览时的静止点：右下角向内缩进半个角区
func GetCornerPosition(width, height, cornerSize float64) Point2D {
	return Point2D{X: width - cornerSize/2, Y: height - cornerSize/2}
}

// LayerTransform 单个页面图层的变换描述
//
// 图层局部坐标 p 映射到页面坐标：Rotate(Rotation)·Scale(ScaleX, ScaleY)·p + Translation。
// Clip 为图层局部坐标下的裁剪多边形，为空表示图层不可见。
type LayerTransform struct {
	ScaleX      float64
	ScaleY      float64
	Rotation    float64
	Translation Point2D
	Clip        []Point2D
	Shadow      float64
}

// Apply 把图层局部坐标映射到页面坐标
func (lt LayerTransform) Apply(p Point2D) Point2D {
	scaled := Point2D{X: p.X * lt.ScaleX, Y: p.Y * lt.ScaleY}
	return scaled.Rotate(lt.Rotation).Add(lt.Translation)
}

// Visible 图层是否有可见区域
func (lt LayerTransform) Visible() bool {
	return len(lt.Clip) >= 3
}

// PageTransforms 两个可见图层的变换
//
//   - Front：正在翻的页面的正面，保持原位，只裁剪出仍平铺的部分
//   - Back：正在翻的页面的背面，沿折痕镜像，裁剪出被翻折的部分；
//     Shadow 是它投在下一页上的阴影强度
type PageTransforms struct {
	Front LayerTransform
	Back  LayerTransform
}

// GeneratePageTransforms 把折叠几何映射为两个图层的变换
func GeneratePageTransforms(fold FoldGeometry) PageTransforms {
	return GeneratePageTransformsShaded(fold, MaxShadowIntensity)
}

// GeneratePageTransformsShaded 同 GeneratePageTransforms，可指定最大阴影强度
//
// 阴影强度 = maxShadow · (1 - |cos(Rotation)|)：平铺时为 0，90° 时最大，完全翻过时回到 0。
func GeneratePageTransformsShaded(fold FoldGeometry, maxShadow float64) PageTransforms {
	front := LayerTransform{
		ScaleX: 1,
		ScaleY: 1,
		Clip:   clonePolygon(fold.Remainder),
	}
	back := LayerTransform{
		ScaleX: 1,
		ScaleY: 1,
	}
	if fold.IsFlat() {
		return PageTransforms{Front: front, Back: back}
	}

	// 沿折痕的反射 = Rotate(2φ)·Scale(1,-1)，平移量让折痕上的点保持不动
	back.ScaleY = -1
	back.Rotation = 2 * fold.Angle
	anchor := fold.Crease[0]
	mapped := Point2D{X: anchor.X, Y: -anchor.Y}.Rotate(back.Rotation)
	back.Translation = anchor.Sub(mapped)
	back.Clip = clonePolygon(fold.FlapRegion)
	back.Shadow = maxShadow * (1 - math.Abs(math.Cos(fold.Rotation)))

	return PageTransforms{Front: front, Back: back}
}

func rectPolygon(width, height float64) []Point2D {
	return []Point2D{
		{X: 0, Y: 0},
		{X: width, Y: 0},
		{X: width, Y: height},
		{X: 0, Y: height},
	}
}

func clonePolygon(poly []Point2D) []Point2D {
	if len(poly) == 0 {
		return nil
	}
	out := make([]Point2D, len(poly))
	copy(out, poly)
	return out
}

// reflectAcross 关于过 origin、法向量为 normal（单位向量）的直线做镜像
func reflectAcross(p, origin, normal Point2D) Point2D {
	d := p.Sub(origin).Dot(normal)
	return p.Sub(normal.Scale(2 * d))
}

// clipHalfPlane Sutherland–Hodgman 半平面裁剪
// positive 为 true 时保留 (p-origin)·normal >= 0 的部分
func clipHalfPlane(poly []Point2D, origin, normal Point2D, positive bool) []Point2D {
	side := func(p Point2D) float64 {
		s := p.Sub(origin).Dot(normal)
		if !positive {
			s = -s
		}
		return s
	}

	out := make([]Point2D, 0, len(poly)+1)
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]
		sc, sn := side(cur), side(next)

		if sc >= 0 {
			out = append(out, cur)
		}
		if (sc >= 0) != (sn >= 0) {
			t := sc / (sc - sn)
			out = append(out, cur.Lerp(next, t))
		}
	}
	return dedupePolygon(out)
}

// dedupePolygon 去掉相邻的重复顶点（折痕恰好经过页面顶点时会产生）
func dedupePolygon(poly []Point2D) []Point2D {
	if len(poly) == 0 {
		return nil
	}
	out := poly[:0]
	for i, p := range poly {
		if i > 0 && p.ApproxEqual(out[len(out)-1], 1e-9) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].ApproxEqual(out[len(out)-1], 1e-9) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// clipLineToRect Liang–Barsky：求直线 origin + s·dir 与页面矩形的交线段
func clipLineToRect(origin, dir Point2D, width, height float64) (Point2D, Point2D, bool) {
	lo, hi := math.Inf(-1), math.Inf(1)

	clip := func(p, q float64) bool {
		// p·s <= q
		if math.Abs(p) < 1e-12 {
			return q >= 0
		}
		s := q / p
		if p < 0 {
			lo = math.Max(lo, s)
		} else {
			hi = math.Min(hi, s)
		}
		return lo <= hi
	}

	if !clip(-dir.X, origin.X) ||
		!clip(dir.X, width-origin.X) ||
		!clip(-dir.Y, origin.Y) ||
		!clip(dir.Y, height-origin.Y) {
		return Point2D{}, Point2D{}, false
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Point2D{}, Point2D{}, false
	}
	return origin.Add(dir.Scale(lo)), origin.Add(dir.Scale(hi)), true
}
