package systems

import (
	"time"

	"github.com/decker502/flipbook/pkg/utils"
)

// AnimationHandle 标识一次动画；新动画开始后旧的句柄失效
type AnimationHandle uint64

// FlipAnimator 松手后的回弹/完成动画驱动
//
// 宿主每帧调用 Step(dt)，动画沿三次贝塞尔轨迹从起点移动到终点，
// 进度经过缓动曲线映射。进度为 0 时输出恰好等于起点，
// 与拖拽阶段无缝衔接。
//
// 同一时刻只有一个动画：Start 会先同步取消上一个（其完成回调不会再触发）。
type FlipAnimator struct {
	easing utils.EasingFunc

	from utils.Point2D
	c1   utils.Point2D
	c2   utils.Point2D
	to   utils.Point2D

	duration time.Duration
	elapsed  time.Duration
	running  bool
	handle   AnimationHandle
	current  utils.Point2D

	onComplete func(end utils.Point2D)
}

// NewFlipAnimator 创建动画驱动，easing 为 nil 时使用 EaseOutCubic
func NewFlipAnimator(easing utils.EasingFunc) *FlipAnimator {
	if easing == nil {
		easing = utils.EaseOutCubic
	}
	return &FlipAnimator{easing: easing}
}

// Start 开始新动画并返回句柄
//
// 参数：
//   - from, to: 起点与终点（页面局部坐标）
//   - duration: 时长，<= 0 时下一次 Step 立即完成
//   - lift: 轨迹中段向上（-y 方向）抬起的像素，0 为直线
//   - onComplete: 动画自然结束时调用一次；被取消则不调用
func (a *FlipAnimator) Start(from, to utils.Point2D, duration time.Duration, lift float64, onComplete func(end utils.Point2D)) AnimationHandle {
	a.Cancel()

	raise := utils.Pt(0, -lift)
	a.from = from
	a.to = to
	a.c1 = from.Lerp(to, 1.0/3).Add(raise)
	a.c2 = from.Lerp(to, 2.0/3).Add(raise)
	a.duration = duration
	a.elapsed = 0
	a.running = true
	a.current = from
	a.onComplete = onComplete
	a.handle++
	return a.handle
}

// Step 推进 dt，返回当前点以及动画是否在这一步结束
// 未运行时返回最后的位置和 false
func (a *FlipAnimator) Step(dt time.Duration) (utils.Point2D, bool) {
	if !a.running {
		return a.current, false
	}

	if dt > 0 {
		a.elapsed += dt
	}
	progress := 1.0
	if a.duration > 0 {
		progress = utils.Clamp01(float64(a.elapsed) / float64(a.duration))
	}

	if progress >= 1 {
		a.current = a.to
		a.running = false
		cb := a.onComplete
		a.onComplete = nil
		if cb != nil {
			cb(a.to)
		}
		return a.to, true
	}

	t := utils.Clamp01(a.easing(progress))
	a.current = utils.Bezier(a.from, a.c1, a.c2, a.to, t)
	return a.current, false
}

// Cancel 立即停止当前动画，不触发完成回调
func (a *FlipAnimator) Cancel() {
	a.running = false
	a.onComplete = nil
}

// CancelHandle 只有句柄仍是当前动画时才取消
func (a *FlipAnimator) CancelHandle(h AnimationHandle) bool {
	if !a.running || h != a.handle {
		return false
	}
	a.Cancel()
	return true
}

// IsRunning 是否有动画在进行
func (a *FlipAnimator) IsRunning() bool {
	return a.running
}

// Current 最近一次输出的位置
func (a *FlipAnimator) Current() utils.Point2D {
	return a.current
}

// Progress 线性进度 [0, 1]
func (a *FlipAnimator) Progress() float64 {
	if a.duration <= 0 {
		if a.running {
			return 0
		}
		return 1
	}
	return utils.Clamp01(float64(a.elapsed) / float64(a.duration))
}
