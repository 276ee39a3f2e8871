package components

import (
	"image/color"

	"github.com/decker502/flipbook/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// PositionComponent 实体左上角的屏幕坐标
type PositionComponent struct {
	X, Y float64
}

// PointerTargetComponent 可接收指针事件的矩形区域
//
// PointerInputSystem 根据 Width/Height 做命中检测，
// 把屏幕坐标减去 PositionComponent 后投递给 Handler。
type PointerTargetComponent struct {
	Width   float64
	Height  float64
	Handler PointerHandler

	// Inside 上一帧指针是否在区域内（用于产生 leave 事件）
	Inside bool
}

// FrameTickComponent 需要逐帧推进的实体
type FrameTickComponent struct {
	Handler FrameHandler
}

// FlipFrame 某一时刻需要绘制的内容
//
// Current 是正在翻（或静止显示）的页；Under 是翻开后露出的页，-1 表示没有。
// Mirrored 为 true 时 Transforms 处于镜像局部坐标（向后翻页），绘制时需要水平翻转。
type FlipFrame struct {
	Current    int
	Under      int
	Active     bool
	Mirrored   bool
	Fold       utils.FoldGeometry
	Transforms utils.PageTransforms
}

// FlipFrameSource 提供当前帧内容
type FlipFrameSource interface {
	Frame() FlipFrame
}

// FlipbookComponent 翻页组件的渲染数据
type FlipbookComponent struct {
	Source FlipFrameSource

	// Pages 每页预渲染好的正面图像
	Pages []*ebiten.Image
	// BackImage 页面背面图像，为 nil 时用 BackColor 填充
	BackImage *ebiten.Image
	BackColor color.RGBA

	Width  float64
	Height float64

	// ShowDebug 绘制折痕、角区等调试信息
	ShowDebug  bool
	CornerSize float64
}
