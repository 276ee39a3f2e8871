package components

import (
	"time"

	"github.com/decker502/flipbook/pkg/utils"
)

// PointerEvent 一次指针事件
//
// Pos 为目标的局部坐标（由输入系统减去目标位置后传入）。
// At 为宿主时钟的时间戳，只用来计算按下时长，测试中可以直接构造。
type PointerEvent struct {
	// ID 指针编号：0 为鼠标，触摸从 1 开始
	ID  int
	Pos utils.Point2D
	At  time.Duration
}

// PointerHandler 指针事件处理接口
// 宿主的事件分发（PointerInputSystem 或测试）同步调用这些方法
type PointerHandler interface {
	// OnPointerDown 返回 true 表示捕获了这个指针，之后的移动/抬起都会继续投递给它
	OnPointerDown(ev PointerEvent) bool
	OnPointerMove(ev PointerEvent)
	OnPointerUp(ev PointerEvent)
	OnPointerLeave(ev PointerEvent)
	// OnPointerCancel 捕获丢失（如触摸被系统手势打断）
	OnPointerCancel(ev PointerEvent)
}

// FrameHandler 每帧回调接口
type FrameHandler interface {
	// OnAnimationFrame dt 为距上一帧的时间
	OnAnimationFrame(dt time.Duration)
}

// CornerPhase 角区交互状态
type CornerPhase int

const (
	// CornerIdle 无交互
	CornerIdle CornerPhase = iota
	// CornerHovering 指针在角区内但未按下
	CornerHovering
	// CornerDragging 指针已按下并被捕获
	CornerDragging
)

func (p CornerPhase) String() string {
	switch p {
	case CornerIdle:
		return "idle"
	case CornerHovering:
		return "hovering"
	case CornerDragging:
		return "dragging"
	default:
		return "unknown"
	}
}
