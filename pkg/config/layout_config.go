package config

import "math"

// 布局配置常量
// 本文件定义了查看器窗口尺寸与书本在窗口中的摆放位置

const (
	// GameWindowWidth 查看器逻辑宽度
	GameWindowWidth = 1280
	// GameWindowHeight 查看器逻辑高度
	GameWindowHeight = 720

	// BookMarginTop 书本顶部与窗口顶部的最小间距（给标题栏留位置）
	BookMarginTop = 48.0

	// HUDLineHeight 调试信息每行的高度
	HUDLineHeight = 16.0
)

// SpreadWidth 书本占用的总宽度
//
// 向前翻时翻折部分落在页面左侧一整页宽的区域，向后翻（镜像）时落在右侧，
// 所以页面两侧各留一页宽；堆叠边画在右侧区域内。
func SpreadWidth(width, stackHeight float64) float64 {
	return math.Max(3*width, 2*width+stackHeight)
}

// CalculateBookPosition 计算书本左上角在窗口中的位置
//
// 水平方向按 SpreadWidth 的跨页整体居中，页面在中间；
// 竖直方向按包装高度居中。拖拽角只会向上越出页面，堆叠边画在页面右下方，
// 所以页面顶部 = 包装顶部 + (包装高度 - 页面高度 - 堆叠高度)。
//
// 参数：
//   - width, height: 页面尺寸
//   - wrapperHeight: 包装高度（见 utils.CalculateWrapperHeight）
//   - stackHeight: 堆叠边向右下方伸出的距离
//
// 返回：
//   - x, y: 页面左上角坐标（取整，避免采样模糊）
func CalculateBookPosition(width, height, wrapperHeight, stackHeight float64) (x, y float64) {
	x = math.Round((GameWindowWidth-SpreadWidth(width, stackHeight))/2 + width)
	top := math.Max(BookMarginTop, (GameWindowHeight-wrapperHeight)/2)
	y = math.Round(top + math.Max(0, wrapperHeight-height-stackHeight))
	return x, y
}
