package scenes

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/ecs"
	"github.com/decker502/flipbook/pkg/game"
	"github.com/decker502/flipbook/pkg/modules"
	"github.com/decker502/flipbook/pkg/render"
	"github.com/decker502/flipbook/pkg/systems"
	"github.com/decker502/flipbook/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	// 缩放按键每次改变页面尺寸的比例
	resizeStep = 0.1

	// [ ] 调整动画时长的步长与范围
	durationStep = 100 * time.Millisecond
	minDuration  = 100 * time.Millisecond
	maxDuration  = 3 * time.Second

	// , . 调整角区的步长与下限（上限为页面短边）
	cornerStep    = 10.0
	minCornerSize = 10.0
)

// sceneKeys 场景响应的按键
var sceneKeys = []ebiten.Key{
	ebiten.KeyArrowRight,
	ebiten.KeyArrowLeft,
	ebiten.KeyHome,
	ebiten.KeyEnd,
	ebiten.KeyD,
	ebiten.KeyS,
	ebiten.KeyEqual,
	ebiten.KeyMinus,
	ebiten.KeyBracketLeft,
	ebiten.KeyBracketRight,
	ebiten.KeyComma,
	ebiten.KeyPeriod,
}

// FlipbookScene 翻页查看器场景
//
// 职责：
//   - 根据配置生成页面纹理，创建 FlipbookModule 和承载它的实体
//   - 每帧驱动指针输入与动画推进系统
//   - 处理键盘快捷键（翻页、跳转、调试显示、缩放、动画时长、角区、保存设置）
type FlipbookScene struct {
	cfg      *config.FlipbookConfig
	settings *game.SettingsManager
	baseDir  string

	entityManager *ecs.EntityManager
	pointerSystem *systems.PointerInputSystem
	frameSystem   *systems.FrameTickSystem
	renderSystem  *systems.FlipbookRenderSystem

	book       *modules.FlipbookModule
	bookEntity ecs.EntityID
	background color.RGBA

	// pageChanges 完成翻页的次数（HUD 显示）
	pageChanges int
}

// FlipbookSceneOptions 场景构造参数
type FlipbookSceneOptions struct {
	Config   *config.FlipbookConfig
	Settings *game.SettingsManager
	// BaseDir 页面图片相对路径的基准目录
	BaseDir string
	// ForceDebug 命令行 --debug，优先于保存的设置
	ForceDebug bool
	// Input 指针输入，nil 时使用 Ebitengine 鼠标/触摸
	Input systems.PointerInput
}

// NewFlipbookScene 创建查看器场景
func NewFlipbookScene(opts FlipbookSceneOptions) (*FlipbookScene, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("flipbook scene: config is nil")
	}
	if opts.Settings == nil {
		opts.Settings = game.NewSettingsManager(nil)
	}
	cfg := opts.Config
	viewer := opts.Settings.GetSettings()

	anim := components.AnimationConfig{
		Duration:  cfg.Duration(),
		Easing:    cfg.EasingControlPoints(),
		Lift:      cfg.Lift,
		MaxShadow: cfg.MaxShadow,
	}
	if d := viewer.Duration(); d > 0 {
		anim.Duration = d
	}
	cornerSize := cfg.CornerSize
	if viewer.CornerSize > 0 {
		cornerSize = math.Min(viewer.CornerSize, math.Min(cfg.Width, cfg.Height))
	}

	s := &FlipbookScene{
		cfg:           cfg,
		settings:      opts.Settings,
		baseDir:       opts.BaseDir,
		entityManager: ecs.NewEntityManager(),
		background:    config.MustParseHexColor(cfg.Background),
	}
	if opts.Input != nil {
		s.pointerSystem = systems.NewPointerInputSystemWithInput(s.entityManager, opts.Input)
	} else {
		s.pointerSystem = systems.NewPointerInputSystem(s.entityManager)
	}
	s.frameSystem = systems.NewFrameTickSystem(s.entityManager)
	s.renderSystem = systems.NewFlipbookRenderSystem(s.entityManager)

	pages := make([]any, len(cfg.Pages))
	for i := range cfg.Pages {
		pages[i] = cfg.Pages[i]
	}
	book, err := modules.NewFlipbookModule(modules.FlipbookOptions{
		Pages:              pages,
		Width:              cfg.Width,
		Height:             cfg.Height,
		CornerSize:         cornerSize,
		Animation:          anim,
		QuickFlipThreshold: cfg.QuickFlipThreshold(),
		DisableBackward:    cfg.DisableBackward,
		OnPageChange:       s.onPageChange,
	})
	if err != nil {
		return nil, fmt.Errorf("flipbook scene: %w", err)
	}
	s.book = book

	s.bookEntity = s.entityManager.CreateEntity()
	s.entityManager.AddComponent(s.bookEntity, &components.PositionComponent{})
	s.entityManager.AddComponent(s.bookEntity, &components.PointerTargetComponent{Handler: book})
	s.entityManager.AddComponent(s.bookEntity, &components.FrameTickComponent{Handler: book})
	s.entityManager.AddComponent(s.bookEntity, &components.FlipbookComponent{
		Source:     book,
		BackColor:  config.MustParseHexColor(cfg.BackColor),
		CornerSize: cornerSize,
		ShowDebug:  opts.ForceDebug || viewer.ShowDebug,
	})
	s.layoutBook()

	log.Printf("[FlipbookScene] ready: %d pages", book.PageCount())
	return s, nil
}

// layoutBook 按当前页面尺寸重建纹理并更新实体的位置与命中区域
func (s *FlipbookScene) layoutBook() {
	w, h, corner := s.book.Size()

	comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
	comp.Width, comp.Height, comp.CornerSize = w, h, corner
	comp.Pages = s.buildPageImages(w, h)

	x, y := config.CalculateBookPosition(w, h, s.book.WrapperHeight(), s.stackHeight())
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, s.bookEntity)
	pos.X, pos.Y = x, y

	target, _ := ecs.GetComponent[*components.PointerTargetComponent](s.entityManager, s.bookEntity)
	target.Width, target.Height = w, h
}

// stackHeight 堆叠边向右下方伸出的距离
func (s *FlipbookScene) stackHeight() float64 {
	return float64(min(s.book.PageCount()-1, utils.MaxStackDepth)) * utils.StackOffset
}

// buildPageImages 生成每页的纹理；图片加载失败时退回纯色页面
func (s *FlipbookScene) buildPageImages(w, h float64) []*ebiten.Image {
	images := make([]*ebiten.Image, len(s.cfg.Pages))
	for i, page := range s.cfg.Pages {
		img, err := render.PageImage(page, i, len(s.cfg.Pages), w, h, 1, s.baseDir)
		if err != nil {
			log.Printf("[FlipbookScene] Warning: page %d image: %v (using plain page)", i, err)
			page.Image = ""
			img, _ = render.PageImage(page, i, len(s.cfg.Pages), w, h, 1, s.baseDir)
		}
		images[i] = ebiten.NewImageFromImage(img)
	}
	return images
}

func (s *FlipbookScene) onPageChange(newIndex int) {
	s.pageChanges++
	log.Printf("[FlipbookScene] page changed to %d", newIndex)
}

// Update 处理键盘，然后推进指针与动画系统
func (s *FlipbookScene) Update(deltaTime float64) {
	for _, key := range sceneKeys {
		if inpututil.IsKeyJustPressed(key) {
			s.handleKey(key)
		}
	}
	s.pointerSystem.Update(deltaTime)
	s.frameSystem.Update(deltaTime)
}

// handleKey 处理单个按键
func (s *FlipbookScene) handleKey(key ebiten.Key) {
	switch key {
	case ebiten.KeyArrowRight:
		s.book.FlipNext()
	case ebiten.KeyArrowLeft:
		s.book.FlipPrev()
	case ebiten.KeyHome:
		s.book.SetPage(0)
	case ebiten.KeyEnd:
		s.book.SetPage(s.book.PageCount() - 1)
	case ebiten.KeyD:
		comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
		comp.ShowDebug = !comp.ShowDebug
		s.settings.SetShowDebug(comp.ShowDebug)
	case ebiten.KeyS:
		if err := s.settings.Save(); err != nil {
			log.Printf("[FlipbookScene] Warning: failed to save settings: %v", err)
		}
	case ebiten.KeyEqual:
		s.resizeBy(1 + resizeStep)
	case ebiten.KeyMinus:
		s.resizeBy(1 - resizeStep)
	case ebiten.KeyBracketLeft:
		s.adjustDuration(-durationStep)
	case ebiten.KeyBracketRight:
		s.adjustDuration(durationStep)
	case ebiten.KeyComma:
		s.adjustCornerSize(-cornerStep)
	case ebiten.KeyPeriod:
		s.adjustCornerSize(cornerStep)
	}
}

// adjustDuration 修改松手动画时长并记入设置（S 键或退出时保存）
func (s *FlipbookScene) adjustDuration(delta time.Duration) {
	d := min(max(s.book.Duration()+delta, minDuration), maxDuration)
	if d == s.book.Duration() {
		return
	}
	if err := s.book.SetDuration(d); err != nil {
		log.Printf("[FlipbookScene] duration rejected: %v", err)
		return
	}
	s.settings.SetDuration(d)
	log.Printf("[FlipbookScene] flip duration %v", d)
}

// adjustCornerSize 修改角区边长并记入设置
// 只更新命中与预览用的角区，不需要重建纹理
func (s *FlipbookScene) adjustCornerSize(delta float64) {
	w, h, corner := s.book.Size()
	size := math.Min(math.Max(corner+delta, minCornerSize), math.Min(w, h))
	if size == corner {
		return
	}
	if err := s.book.SetCornerSize(size); err != nil {
		log.Printf("[FlipbookScene] corner size rejected: %v", err)
		return
	}
	s.settings.SetCornerSize(size)
	comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
	comp.CornerSize = size
	log.Printf("[FlipbookScene] corner size %.0f", size)
}

// resizeBy 按比例缩放页面
// 纹理随之重建，所以手势或动画进行中不缩放
func (s *FlipbookScene) resizeBy(factor float64) {
	if state := s.book.State(); state.ActiveDragPoint != nil || state.IsAnimating {
		return
	}
	w, h, _ := s.book.Size()
	nw, nh := math.Round(w*factor), math.Round(h*factor)
	if config.SpreadWidth(nw, s.stackHeight()) > config.GameWindowWidth || nh+float64(config.BookMarginTop) > config.GameWindowHeight {
		return
	}
	if err := s.book.Resize(nw, nh); err != nil {
		log.Printf("[FlipbookScene] resize rejected: %v", err)
		return
	}
	s.layoutBook()
}

// Draw 绘制背景、书本与 HUD
func (s *FlipbookScene) Draw(screen *ebiten.Image) {
	screen.Fill(s.background)
	s.renderSystem.Draw(screen)
	s.drawHUD(screen)
}

func (s *FlipbookScene) drawHUD(screen *ebiten.Image) {
	state := s.book.State()
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("Page %d / %d   turned %d", state.CurrentPageIndex+1, s.book.PageCount(), s.pageChanges),
		8, 8)
	ebitenutil.DebugPrintAt(screen, controlsHint(utils.IsMobile()), 8, 8+config.HUDLineHeight)

	comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
	if comp == nil || !comp.ShowDebug {
		return
	}
	drag := "-"
	if state.ActiveDragPoint != nil {
		drag = state.ActiveDragPoint.String()
	}
	lines := []string{
		fmt.Sprintf("drag %s", drag),
		settleLine(s.book),
		fmt.Sprintf("clock %v", s.book.Clock().Truncate(time.Millisecond)),
	}
	y := config.GameWindowHeight - config.HUDLineHeight*float64(len(lines)+1)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 8, int(y)+i*config.HUDLineHeight)
	}
}

// settleLine 调试信息中的动画行
func settleLine(book *modules.FlipbookModule) string {
	_, _, corner := book.Size()
	if p, ok := book.SettleProgress(); ok {
		return fmt.Sprintf("animating %3.0f%%  duration %v  corner %.0f", p*100, book.Duration(), corner)
	}
	return fmt.Sprintf("animating false  duration %v  corner %.0f", book.Duration(), corner)
}

// controlsHint 返回 HUD 第二行的操作提示，移动端没有键盘
func controlsHint(mobile bool) string {
	if mobile {
		return "drag a page corner to flip"
	}
	return "<- -> flip  Home/End jump  +/- size  [ ] speed  , . corner  D debug  S save  F11 fullscreen"
}

// SaveOnExit 退出时保存查看器设置
func (s *FlipbookScene) SaveOnExit() bool {
	if err := s.settings.Save(); err != nil {
		log.Printf("[FlipbookScene] Warning: failed to save settings on exit: %v", err)
		return false
	}
	return true
}

// Book 返回翻页组件（用于测试与宿主集成）
func (s *FlipbookScene) Book() *modules.FlipbookModule {
	return s.book
}

// PageImages 当前页面纹理
func (s *FlipbookScene) PageImages() []*ebiten.Image {
	comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
	return comp.Pages
}

// BookRect 书本在屏幕上的区域
func (s *FlipbookScene) BookRect() image.Rectangle {
	pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, s.bookEntity)
	w, h, _ := s.book.Size()
	return image.Rect(int(pos.X), int(pos.Y), int(pos.X+w), int(pos.Y+h))
}
