package components

import (
	"time"

	"github.com/decker502/flipbook/pkg/utils"
)

// FlipState 翻页组件的权威状态
//
// 只由 FlipbookModule 持有和修改：
//   - CurrentPageIndex 始终在 [0, pageCount-1]，每次完成翻页只变化 ±1，拖拽过程中不变
//   - ActiveDragPoint 非空时 IsAnimating 一定为 false，反之亦然（拖拽与动画互斥）
type FlipState struct {
	// CurrentPageIndex 当前页（生命周期内一直有效）
	CurrentPageIndex int

	// ActiveDragPoint 当前手势的拖拽点（页面局部坐标），仅在一次手势内有效
	ActiveDragPoint *utils.Point2D

	// IsAnimating 是否正在播放回弹/完成动画
	IsAnimating bool

	// AnimationTarget 动画终点（页面局部坐标）
	AnimationTarget *utils.Point2D
}

// Clone 返回深拷贝，供外部只读查看
func (s FlipState) Clone() FlipState {
	out := s
	if s.ActiveDragPoint != nil {
		p := *s.ActiveDragPoint
		out.ActiveDragPoint = &p
	}
	if s.AnimationTarget != nil {
		p := *s.AnimationTarget
		out.AnimationTarget = &p
	}
	return out
}

// AnimationConfig 回弹动画配置（构造时提供，之后不可变）
type AnimationConfig struct {
	// Duration 动画时长
	Duration time.Duration

	// Easing CSS cubic-bezier 控制点 x1, y1, x2, y2
	Easing [4]float64

	// Lift 完成翻页时轨迹向页面顶部抬起的幅度（相对页面高度）
	Lift float64

	// MaxShadow 折叠到 90° 时的最大阴影强度
	MaxShadow float64
}

// DefaultAnimationConfig 默认动画配置
// ease-out 曲线，时长 600ms
func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{
		Duration:  600 * time.Millisecond,
		Easing:    [4]float64{0, 0, 0.58, 1},
		Lift:      0.15,
		MaxShadow: utils.MaxShadowIntensity,
	}
}

// EasingFunc 根据控制点生成缓动函数
func (c AnimationConfig) EasingFunc() utils.EasingFunc {
	return utils.CubicBezierEasing(c.Easing[0], c.Easing[1], c.Easing[2], c.Easing[3])
}
