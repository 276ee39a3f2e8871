package systems

import (
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/utils"
)

// DefaultQuickFlipThreshold 按下时长低于此值的松手视为快速翻页
const DefaultQuickFlipThreshold = 200 * time.Millisecond

// CornerDetectorCallbacks 角区检测回调集合（均可为 nil）
type CornerDetectorCallbacks struct {
	// OnHoverChange 仅在悬停状态翻转时调用；corner 为 GetCornerPosition 给出的预览点
	OnHoverChange func(hovering bool, corner utils.Point2D)
	// OnDragStart 在角区内按下并捕获指针时调用
	OnDragStart func(p utils.Point2D)
	// OnDragMove 拖拽中每次移动调用
	OnDragMove func(p utils.Point2D)
	// OnRelease 松手（或捕获丢失）时调用
	OnRelease func(p utils.Point2D, quickFlip bool)
}

// CornerDetector 角区指针状态机：Idle / Hovering / Dragging
//
// 角区是页面右下角 cornerSize×cornerSize 的正方形。Mirrored 为 true 时
// 检测左下角：屏幕 x 先换算成 width - x，之后的逻辑与右下角完全一致，
// 回调给出的也是换算后的局部坐标。
//
// 职责：
//   - 悬停检测（只在布尔翻转时通知）
//   - 在角区内按下时捕获指针；同一时刻只跟踪一个指针（先捕获者胜）
//   - 松手时计算按下时长并判定是否为快速翻页
//
// 手势开始时记录页面尺寸快照，Resize 只影响下一次手势。
type CornerDetector struct {
	width      float64
	height     float64
	cornerSize float64
	mirrored   bool

	quickFlipThreshold time.Duration
	callbacks          CornerDetectorCallbacks

	phase     components.CornerPhase
	pointerID int
	pressAt   time.Duration
	last      utils.Point2D

	// 当前手势的尺寸快照
	gestureWidth  float64
	gestureHeight float64
}

// NewCornerDetector 创建角区检测器
func NewCornerDetector(width, height, cornerSize float64, mirrored bool, callbacks CornerDetectorCallbacks) *CornerDetector {
	return &CornerDetector{
		width:              width,
		height:             height,
		cornerSize:         cornerSize,
		mirrored:           mirrored,
		quickFlipThreshold: DefaultQuickFlipThreshold,
		callbacks:          callbacks,
		phase:              components.CornerIdle,
	}
}

// SetQuickFlipThreshold 设置快速翻页阈值
func (d *CornerDetector) SetQuickFlipThreshold(threshold time.Duration) {
	if threshold > 0 {
		d.quickFlipThreshold = threshold
	}
}

// Resize 更新页面尺寸，正在进行的手势继续使用按下时的快照
func (d *CornerDetector) Resize(width, height, cornerSize float64) {
	d.width = width
	d.height = height
	d.cornerSize = cornerSize
}

// Phase 当前状态
func (d *CornerDetector) Phase() components.CornerPhase {
	return d.phase
}

// Mirrored 是否检测左下角
func (d *CornerDetector) Mirrored() bool {
	return d.mirrored
}

// PointerID 当前捕获的指针编号，未拖拽时无意义
func (d *CornerDetector) PointerID() int {
	return d.pointerID
}

// GestureSize 当前手势的尺寸快照
func (d *CornerDetector) GestureSize() (width, height float64) {
	return d.gestureWidth, d.gestureHeight
}

// InCornerZone 判断局部坐标（已换算镜像）是否在角区内
//
// 严格包含：0 < x < width，0 < y < height，且 x >= width-cornerSize，y >= height-cornerSize。
func InCornerZone(p utils.Point2D, width, height, cornerSize float64) bool {
	return p.X > 0 && p.X < width &&
		p.Y > 0 && p.Y < height &&
		p.Y >= height-cornerSize &&
		p.X >= width-cornerSize
}

// IsQuickFlip 快速翻页判定
//
// 按下时长低于阈值，或者松手点越过了页面任一竖直边（x 不在 [0, width] 内）。
// 两个条件是"或"的关系：慢速的小幅拖拽只要刚好越过边缘也会被判为快速翻页。
// 这一规则按现状保留。
func IsQuickFlip(pressDuration time.Duration, releaseX, width float64, threshold time.Duration) bool {
	return pressDuration < threshold || releaseX < 0 || releaseX > width
}

func (d *CornerDetector) toLocal(p utils.Point2D, width float64) utils.Point2D {
	if d.mirrored {
		return p.MirrorX(width)
	}
	return p
}

// PointerMove 处理指针移动
func (d *CornerDetector) PointerMove(ev components.PointerEvent) {
	if d.phase == components.CornerDragging {
		if ev.ID != d.pointerID {
			return
		}
		d.last = d.toLocal(ev.Pos, d.gestureWidth)
		if d.callbacks.OnDragMove != nil {
			d.callbacks.OnDragMove(d.last)
		}
		return
	}

	local := d.toLocal(ev.Pos, d.width)
	inside := InCornerZone(local, d.width, d.height, d.cornerSize)
	switch {
	case inside && d.phase == components.CornerIdle:
		d.setHover(true)
	case !inside && d.phase == components.CornerHovering:
		d.setHover(false)
	}
}

// PointerDown 处理按下，返回是否捕获了该指针
// 角区外的按下被完全忽略
func (d *CornerDetector) PointerDown(ev components.PointerEvent) bool {
	if d.phase == components.CornerDragging {
		return false
	}

	local := d.toLocal(ev.Pos, d.width)
	if !InCornerZone(local, d.width, d.height, d.cornerSize) {
		return false
	}

	d.phase = components.CornerDragging
	d.pointerID = ev.ID
	d.pressAt = ev.At
	d.last = local
	d.gestureWidth = d.width
	d.gestureHeight = d.height

	if d.callbacks.OnDragStart != nil {
		d.callbacks.OnDragStart(local)
	}
	return true
}

// PointerUp 处理抬起
func (d *CornerDetector) PointerUp(ev components.PointerEvent) {
	if d.phase != components.CornerDragging || ev.ID != d.pointerID {
		return
	}
	d.release(d.toLocal(ev.Pos, d.gestureWidth), ev.At)
}

// PointerLeave 指针离开元素：只影响悬停状态，拖拽不会被取消
func (d *CornerDetector) PointerLeave(ev components.PointerEvent) {
	if d.phase == components.CornerHovering {
		d.setHover(false)
	}
}

// PointerCancel 捕获丢失：视为在最后已知位置松手
func (d *CornerDetector) PointerCancel(ev components.PointerEvent) {
	if d.phase != components.CornerDragging || ev.ID != d.pointerID {
		return
	}
	d.release(d.last, ev.At)
}

// Reset 直接回到 Idle，不触发任何回调
func (d *CornerDetector) Reset() {
	d.phase = components.CornerIdle
}

func (d *CornerDetector) release(p utils.Point2D, at time.Duration) {
	pressDuration := at - d.pressAt
	quick := IsQuickFlip(pressDuration, p.X, d.gestureWidth, d.quickFlipThreshold)
	d.phase = components.CornerIdle

	if d.callbacks.OnRelease != nil {
		d.callbacks.OnRelease(p, quick)
	}
}

func (d *CornerDetector) setHover(hovering bool) {
	if hovering {
		d.phase = components.CornerHovering
	} else {
		d.phase = components.CornerIdle
	}
	if d.callbacks.OnHoverChange != nil {
		d.callbacks.OnHoverChange(hovering, utils.GetCornerPosition(d.width, d.height, d.cornerSize))
	}
}
