package modules

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/systems"
	"github.com/decker502/flipbook/pkg/utils"
)

// FlipbookOptions 翻页组件构造参数
type FlipbookOptions struct {
	// Pages 有序的页面内容（对本模块不透明，只使用其数量）
	Pages []any

	// Width/Height 页面像素尺寸
	Width  float64
	Height float64

	// CornerSize 角区边长
	CornerSize float64

	// Animation 动画配置；Duration 必须 > 0
	Animation components.AnimationConfig

	// QuickFlipThreshold 快速翻页阈值，0 表示使用默认 200ms
	QuickFlipThreshold time.Duration

	// DisableBackward 关闭左下角向后翻页
	DisableBackward bool

	// OnPageChange 每次完成翻页（非回弹）后调用一次，参数为新的页码（从 0 开始）
	OnPageChange func(newIndex int)
}

// turnDirection 手势方向
type turnDirection int

const (
	turnForward  turnDirection = 1
	turnBackward turnDirection = -1
)

// flipGesture 一次手势（拖拽 + 随后的动画）期间的快照
type flipGesture struct {
	active    bool
	direction turnDirection
	width     float64
	height    float64
	corner    float64
	// point 当前折叠点（手势局部坐标）
	point utils.Point2D
}

// FlipbookModule 翻页组件
//
// 职责：
//   - 持有 FlipState（当前页、拖拽点、动画状态），是唯一写入者
//   - 组合角区检测（右下角向前，镜像的左下角向后）、动画驱动与几何计算
//   - 每帧通过 Frame() 提供两层页面的变换
//   - 动画结束时提交页码，并通知 OnPageChange
//
// 所有方法都应在同一个线程（宿主的事件循环）上调用。
type FlipbookModule struct {
	pages []any

	width      float64
	height     float64
	cornerSize float64

	anim         components.AnimationConfig
	onPageChange func(newIndex int)

	state    components.FlipState
	forward  *systems.CornerDetector
	backward *systems.CornerDetector
	animator *systems.FlipAnimator
	settle   systems.AnimationHandle

	gesture    flipGesture
	hovering   bool
	hoverDir   turnDirection
	hoverPoint utils.Point2D

	clock time.Duration
}

// 编译期检查
var (
	_ components.PointerHandler  = (*FlipbookModule)(nil)
	_ components.FrameHandler    = (*FlipbookModule)(nil)
	_ components.FlipFrameSource = (*FlipbookModule)(nil)
)

// NewFlipbookModule 创建翻页组件
//
// 参数非法（空页面列表、非正尺寸、角区超过页面短边、动画时长非正）时立即返回
// *config.ValidationError，可用 errors.Is(err, config.ErrInvalidConfig) 判断。
func NewFlipbookModule(opts FlipbookOptions) (*FlipbookModule, error) {
	if len(opts.Pages) == 0 {
		return nil, &config.ValidationError{Field: "pages", Value: 0, Reason: "at least one page is required"}
	}
	if err := config.ValidateDimensions(opts.Width, opts.Height, opts.CornerSize); err != nil {
		return nil, err
	}
	if opts.Animation.Duration <= 0 {
		return nil, &config.ValidationError{Field: "duration", Value: opts.Animation.Duration, Reason: "must be > 0"}
	}

	m := &FlipbookModule{
		pages:        append([]any(nil), opts.Pages...),
		width:        opts.Width,
		height:       opts.Height,
		cornerSize:   opts.CornerSize,
		anim:         opts.Animation,
		onPageChange: opts.OnPageChange,
		animator:     systems.NewFlipAnimator(opts.Animation.EasingFunc()),
	}

	m.forward = systems.NewCornerDetector(opts.Width, opts.Height, opts.CornerSize, false, m.detectorCallbacks(turnForward))
	m.forward.SetQuickFlipThreshold(opts.QuickFlipThreshold)
	if !opts.DisableBackward {
		m.backward = systems.NewCornerDetector(opts.Width, opts.Height, opts.CornerSize, true, m.detectorCallbacks(turnBackward))
		m.backward.SetQuickFlipThreshold(opts.QuickFlipThreshold)
	}

	log.Printf("[FlipbookModule] created: %d pages, %.0fx%.0f, corner %.0f, duration %v",
		len(m.pages), m.width, m.height, m.cornerSize, m.anim.Duration)
	return m, nil
}

func (m *FlipbookModule) detectorCallbacks(dir turnDirection) systems.CornerDetectorCallbacks {
	return systems.CornerDetectorCallbacks{
		OnHoverChange: func(hovering bool, corner utils.Point2D) {
			m.handleHover(dir, hovering, corner)
		},
		OnDragStart: func(p utils.Point2D) {
			m.handleDragStart(dir, p)
		},
		OnDragMove: m.handleDragMove,
		OnRelease: func(p utils.Point2D, quickFlip bool) {
			m.handleRelease(p, quickFlip)
		},
	}
}

func (m *FlipbookModule) detectors() []*systems.CornerDetector {
	if m.backward == nil {
		return []*systems.CornerDetector{m.forward}
	}
	return []*systems.CornerDetector{m.forward, m.backward}
}

// dragging 返回正在拖拽的检测器
func (m *FlipbookModule) dragging() *systems.CornerDetector {
	for _, d := range m.detectors() {
		if d.Phase() == components.CornerDragging {
			return d
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// PointerHandler

// OnPointerDown 在角区内按下时捕获指针；已有拖拽时忽略（先捕获者胜）
func (m *FlipbookModule) OnPointerDown(ev components.PointerEvent) bool {
	if !ev.Pos.IsFinite() || m.dragging() != nil {
		return false
	}
	for _, d := range m.detectors() {
		if d.PointerDown(ev) {
			return true
		}
	}
	return false
}

// OnPointerMove 转发移动；拖拽中只转发给正在拖拽的检测器
func (m *FlipbookModule) OnPointerMove(ev components.PointerEvent) {
	if !ev.Pos.IsFinite() {
		return
	}
	if d := m.dragging(); d != nil {
		d.PointerMove(ev)
		return
	}
	for _, d := range m.detectors() {
		d.PointerMove(ev)
	}
}

// OnPointerUp 转发抬起；坐标非法时按捕获丢失处理
func (m *FlipbookModule) OnPointerUp(ev components.PointerEvent) {
	d := m.dragging()
	if d == nil {
		return
	}
	if !ev.Pos.IsFinite() {
		d.PointerCancel(ev)
		return
	}
	d.PointerUp(ev)
}

// OnPointerLeave 只清除悬停，不取消拖拽
func (m *FlipbookModule) OnPointerLeave(ev components.PointerEvent) {
	for _, d := range m.detectors() {
		d.PointerLeave(ev)
	}
}

// OnPointerCancel 捕获丢失：在最后已知位置按正常松手逻辑处理
func (m *FlipbookModule) OnPointerCancel(ev components.PointerEvent) {
	if d := m.dragging(); d != nil {
		log.Printf("[FlipbookModule] pointer %d capture lost, releasing at last point", ev.ID)
		d.PointerCancel(ev)
	}
}

// ---------------------------------------------------------------------------
// FrameHandler

// OnAnimationFrame 每帧推进动画
func (m *FlipbookModule) OnAnimationFrame(dt time.Duration) {
	if dt > 0 {
		m.clock += dt
	}
	if !m.animator.IsRunning() {
		return
	}
	p, finished := m.animator.Step(dt)
	if !finished {
		m.gesture.point = p
	}
}

// ---------------------------------------------------------------------------
// 检测器回调

func (m *FlipbookModule) handleHover(dir turnDirection, hovering bool, corner utils.Point2D) {
	if hovering {
		m.hovering = true
		m.hoverDir = dir
		m.hoverPoint = corner
		return
	}
	if m.hoverDir == dir {
		m.hovering = false
	}
}

func (m *FlipbookModule) handleDragStart(dir turnDirection, p utils.Point2D) {
	// 新手势优先：立即停止正在进行的动画，其结果被丢弃
	if m.animator.CancelHandle(m.settle) {
		log.Printf("[FlipbookModule] drag started during settle animation, animation cancelled")
	}
	m.state.IsAnimating = false
	m.state.AnimationTarget = nil

	m.hovering = false
	m.gesture = flipGesture{
		active:    true,
		direction: dir,
		width:     m.width,
		height:    m.height,
		corner:    m.cornerSize,
		point:     p,
	}
	dp := p
	m.state.ActiveDragPoint = &dp
}

func (m *FlipbookModule) handleDragMove(p utils.Point2D) {
	if m.state.ActiveDragPoint == nil {
		return
	}
	m.gesture.point = p
	dp := p
	m.state.ActiveDragPoint = &dp
}

func (m *FlipbookModule) handleRelease(p utils.Point2D, quickFlip bool) {
	g := m.gesture
	end := utils.GetFlipEndPosition(p, g.width, g.height, quickFlip)
	if utils.IsTurnCompletion(end, g.width, g.height) && !m.hasAdjacent(g.direction) {
		// 第一页向后 / 最后一页向前：没有相邻页，只能回弹
		end = utils.CornerOrigin(g.width, g.height)
	}

	m.state.ActiveDragPoint = nil
	m.gesture.point = p
	m.startSettle(p, end)
}

// startSettle 开始从 from 到 end 的动画
func (m *FlipbookModule) startSettle(from, end utils.Point2D) {
	g := m.gesture
	lift := 0.0
	if utils.IsTurnCompletion(end, g.width, g.height) {
		lift = m.anim.Lift * g.height
	}

	target := end
	m.state.IsAnimating = true
	m.state.AnimationTarget = &target
	m.settle = m.animator.Start(from, end, m.anim.Duration, lift, m.handleSettled)
}

// handleSettled 动画自然结束：完成翻页则提交页码，回弹则丢弃
func (m *FlipbookModule) handleSettled(end utils.Point2D) {
	g := m.gesture
	m.state.IsAnimating = false
	m.state.AnimationTarget = nil
	m.gesture = flipGesture{}

	if !utils.IsTurnCompletion(end, g.width, g.height) {
		return
	}

	next := m.state.CurrentPageIndex + int(g.direction)
	if next < 0 || next >= len(m.pages) {
		return
	}
	m.state.CurrentPageIndex = next
	log.Printf("[FlipbookModule] page committed: %d", next)
	if m.onPageChange != nil {
		m.onPageChange(next)
	}
}

func (m *FlipbookModule) hasAdjacent(dir turnDirection) bool {
	next := m.state.CurrentPageIndex + int(dir)
	return next >= 0 && next < len(m.pages)
}

// ---------------------------------------------------------------------------
// 程序化控制

// FlipNext 以动画翻到下一页；拖拽中、动画中或已是最后一页时返回 false
func (m *FlipbookModule) FlipNext() bool {
	return m.flipProgrammatic(turnForward)
}

// FlipPrev 以动画翻回上一页；拖拽中、动画中或已是第一页时返回 false
func (m *FlipbookModule) FlipPrev() bool {
	if m.backward == nil {
		return false
	}
	return m.flipProgrammatic(turnBackward)
}

func (m *FlipbookModule) flipProgrammatic(dir turnDirection) bool {
	if m.state.ActiveDragPoint != nil || m.state.IsAnimating || !m.hasAdjacent(dir) {
		return false
	}
	m.hovering = false
	start := utils.GetCornerPosition(m.width, m.height, m.cornerSize)
	m.gesture = flipGesture{
		active:    true,
		direction: dir,
		width:     m.width,
		height:    m.height,
		corner:    m.cornerSize,
		point:     start,
	}
	m.startSettle(start, utils.FullTurnPosition(m.width, m.height))
	return true
}

// SetPage 直接跳到指定页，越界时截断到 [0, pageCount-1]
//
// 拖拽中忽略（页码在拖拽过程中不变）；动画中会先取消动画。
// 跳转不是翻页，不触发 OnPageChange。返回跳转后的页码。
func (m *FlipbookModule) SetPage(index int) int {
	if m.state.ActiveDragPoint != nil {
		return m.state.CurrentPageIndex
	}
	if m.animator.CancelHandle(m.settle) {
		m.state.IsAnimating = false
		m.state.AnimationTarget = nil
		m.gesture = flipGesture{}
	}
	m.state.CurrentPageIndex = clampIndex(index, len(m.pages))
	return m.state.CurrentPageIndex
}

// Resize 修改页面尺寸
// 正在进行的手势继续使用开始时的尺寸，新尺寸从下一次手势生效
func (m *FlipbookModule) Resize(width, height float64) error {
	if err := m.applyGeometry(width, height, m.cornerSize); err != nil {
		return fmt.Errorf("resize flipbook: %w", err)
	}
	return nil
}

// SetCornerSize 修改角区边长，生效时机同 Resize
func (m *FlipbookModule) SetCornerSize(size float64) error {
	if err := m.applyGeometry(m.width, m.height, size); err != nil {
		return fmt.Errorf("set corner size: %w", err)
	}
	return nil
}

func (m *FlipbookModule) applyGeometry(width, height, cornerSize float64) error {
	if err := config.ValidateDimensions(width, height, cornerSize); err != nil {
		return err
	}
	m.width = width
	m.height = height
	m.cornerSize = cornerSize
	for _, d := range m.detectors() {
		d.Resize(width, height, cornerSize)
	}
	if m.hovering {
		m.hoverPoint = utils.GetCornerPosition(width, height, cornerSize)
	}
	return nil
}

// SetDuration 修改松手动画时长；正在进行的动画不受影响
func (m *FlipbookModule) SetDuration(d time.Duration) error {
	if d <= 0 {
		return &config.ValidationError{Field: "duration", Value: d, Reason: "must be > 0"}
	}
	m.anim.Duration = d
	return nil
}

// Duration 松手动画时长
func (m *FlipbookModule) Duration() time.Duration {
	return m.anim.Duration
}

// ---------------------------------------------------------------------------
// 查询

// State 返回状态副本
func (m *FlipbookModule) State() components.FlipState {
	return m.state.Clone()
}

// CurrentPage 当前页码
func (m *FlipbookModule) CurrentPage() int {
	return m.state.CurrentPageIndex
}

// PageCount 页数
func (m *FlipbookModule) PageCount() int {
	return len(m.pages)
}

// Page 返回第 i 页的内容，越界返回 nil
func (m *FlipbookModule) Page(i int) any {
	if i < 0 || i >= len(m.pages) {
		return nil
	}
	return m.pages[i]
}

// Size 当前页面尺寸（下一次手势使用）
func (m *FlipbookModule) Size() (width, height, cornerSize float64) {
	return m.width, m.height, m.cornerSize
}

// WrapperHeight 容器所需高度
func (m *FlipbookModule) WrapperHeight() float64 {
	return utils.CalculateWrapperHeight(len(m.pages), m.width, m.height)
}

// SettleProgress 松手动画的线性进度；没有动画时 ok 为 false
func (m *FlipbookModule) SettleProgress() (progress float64, ok bool) {
	if !m.animator.IsRunning() {
		return 0, false
	}
	return m.animator.Progress(), true
}

// Clock 累计的帧时间
func (m *FlipbookModule) Clock() time.Duration {
	return m.clock
}

// Frame 计算当前需要绘制的内容
//
// 手势进行中：按手势快照尺寸从当前折叠点计算；
// 悬停：在角区预览点显示一个小折角；
// 其他：整页平铺。
func (m *FlipbookModule) Frame() components.FlipFrame {
	frame := components.FlipFrame{
		Current: m.state.CurrentPageIndex,
		Under:   -1,
	}

	var (
		point         utils.Point2D
		dir           turnDirection
		width, height float64
		corner        float64
	)
	switch {
	case m.gesture.active:
		g := m.gesture
		point, dir, width, height, corner = g.point, g.direction, g.width, g.height, g.corner
	case m.hovering:
		point, dir, width, height, corner = m.hoverPoint, m.hoverDir, m.width, m.height, m.cornerSize
	default:
		fold := utils.CalculateFold(utils.CornerOrigin(m.width, m.height), m.width, m.height, m.cornerSize)
		frame.Fold = fold
		frame.Transforms = utils.GeneratePageTransformsShaded(fold, m.anim.MaxShadow)
		return frame
	}

	fold := utils.CalculateFold(point, width, height, corner)
	frame.Active = true
	frame.Mirrored = dir == turnBackward
	frame.Fold = fold
	frame.Transforms = utils.GeneratePageTransformsShaded(fold, m.anim.MaxShadow)
	if m.hasAdjacent(dir) {
		frame.Under = m.state.CurrentPageIndex + int(dir)
	}
	return frame
}

func clampIndex(i, count int) int {
	if i < 0 {
		return 0
	}
	if i > count-1 {
		return count - 1
	}
	return i
}
