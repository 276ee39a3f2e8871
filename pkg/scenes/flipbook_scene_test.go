package scenes

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/config"
	"github.com/decker502/flipbook/pkg/ecs"
	"github.com/decker502/flipbook/pkg/game"
	"github.com/decker502/flipbook/pkg/systems"
	"github.com/hajimehoshi/ebiten/v2"
)

const sceneTestConfig = `
width: 400
height: 300
cornerSize: 100
pages:
  - title: one
  - title: two
  - title: three
  - title: four
`

// scriptedInput 测试用的鼠标输入
type scriptedInput struct {
	x, y    int
	pressed bool
}

func (s *scriptedInput) Pointers() []systems.PointerSample {
	return []systems.PointerSample{{ID: 0, X: s.x, Y: s.y, Pressed: s.pressed}}
}

func (s *scriptedInput) Focused() bool { return true }

func newTestScene(t *testing.T, settings *game.SettingsManager) (*FlipbookScene, *scriptedInput) {
	t.Helper()
	cfg, err := config.ParseFlipbookConfig([]byte(sceneTestConfig))
	if err != nil {
		t.Fatal(err)
	}
	input := &scriptedInput{}
	scene, err := NewFlipbookScene(FlipbookSceneOptions{Config: cfg, Settings: settings, Input: input})
	if err != nil {
		t.Fatalf("NewFlipbookScene: %v", err)
	}
	return scene, input
}

// runFrames 以 60fps 推进场景
func runFrames(scene *FlipbookScene, n int) {
	for i := 0; i < n; i++ {
		scene.Update(1.0 / 60)
	}
}

func TestNewFlipbookSceneRequiresConfig(t *testing.T) {
	if _, err := NewFlipbookScene(FlipbookSceneOptions{}); err == nil {
		t.Error("没有配置时应报错")
	}
}

func TestFlipbookSceneLayout(t *testing.T) {
	scene, _ := newTestScene(t, nil)

	// 4 页 400×300：包装高度 409，堆叠 9，见 config.CalculateBookPosition
	if got, want := scene.BookRect(), image.Rect(440, 256, 840, 556); got != want {
		t.Errorf("BookRect = %v, want %v", got, want)
	}
	// 向前翻的翻折部分在左侧、向后翻在右侧，都要留在窗口内
	rect := scene.BookRect()
	if rect.Min.X-rect.Dx() < 0 || rect.Max.X+rect.Dx() > config.GameWindowWidth {
		t.Errorf("翻折区域越出窗口: BookRect = %v", rect)
	}
	if got := len(scene.PageImages()); got != 4 {
		t.Errorf("页面纹理 %d 张, want 4", got)
	}
}

func TestFlipbookSceneSettingsOverrides(t *testing.T) {
	settings := game.NewSettingsManager(nil)
	settings.SetDuration(250 * time.Millisecond)
	settings.SetCornerSize(500) // 超过页面短边时截断

	scene, _ := newTestScene(t, settings)
	if _, _, corner := scene.Book().Size(); corner != 300 {
		t.Errorf("cornerSize = %v, want 300", corner)
	}

	// 250ms 的动画在 16 帧内结束
	scene.handleKey(ebiten.KeyArrowRight)
	runFrames(scene, 16)
	if scene.Book().State().IsAnimating {
		t.Error("覆盖后的动画时长没有生效")
	}
}

func TestFlipbookSceneKeys(t *testing.T) {
	scene, _ := newTestScene(t, nil)
	book := scene.Book()

	scene.handleKey(ebiten.KeyArrowRight)
	if !book.State().IsAnimating {
		t.Fatal("→ 应开始翻页动画")
	}
	runFrames(scene, 60)
	if book.CurrentPage() != 1 {
		t.Fatalf("CurrentPage = %d, want 1", book.CurrentPage())
	}
	if scene.pageChanges != 1 {
		t.Errorf("pageChanges = %d, want 1", scene.pageChanges)
	}

	scene.handleKey(ebiten.KeyEnd)
	if book.CurrentPage() != 3 {
		t.Errorf("End 后 CurrentPage = %d, want 3", book.CurrentPage())
	}
	scene.handleKey(ebiten.KeyArrowRight)
	if book.State().IsAnimating {
		t.Error("最后一页 → 不应有动画")
	}

	scene.handleKey(ebiten.KeyArrowLeft)
	runFrames(scene, 60)
	if book.CurrentPage() != 2 {
		t.Errorf("← 后 CurrentPage = %d, want 2", book.CurrentPage())
	}

	scene.handleKey(ebiten.KeyHome)
	if book.CurrentPage() != 0 {
		t.Errorf("Home 后 CurrentPage = %d, want 0", book.CurrentPage())
	}
}

func TestFlipbookSceneDebugToggle(t *testing.T) {
	settings := game.NewSettingsManager(nil)
	scene, _ := newTestScene(t, settings)

	scene.handleKey(ebiten.KeyD)
	if !settings.GetSettings().ShowDebug {
		t.Error("D 应打开调试显示并记录到设置")
	}
	scene.handleKey(ebiten.KeyD)
	if settings.GetSettings().ShowDebug {
		t.Error("再次按 D 应关闭调试显示")
	}
	// 降级模式下保存总是成功
	scene.handleKey(ebiten.KeyS)
	if !scene.SaveOnExit() {
		t.Error("SaveOnExit 应返回 true")
	}
}

func TestFlipbookSceneResize(t *testing.T) {
	scene, _ := newTestScene(t, nil)
	book := scene.Book()

	scene.handleKey(ebiten.KeyMinus)
	if w, h, _ := book.Size(); w != 360 || h != 270 {
		t.Fatalf("缩小后 = %vx%v, want 360x270", w, h)
	}
	if b := scene.PageImages()[0].Bounds(); b.Dx() != 360 || b.Dy() != 270 {
		t.Errorf("纹理应随尺寸重建, got %v", b)
	}
	if got := scene.BookRect(); got.Dx() != 360 || got.Dy() != 270 {
		t.Errorf("BookRect = %v", got)
	}

	// 放大到两侧翻折区域超过窗口时拒绝（3×436 > 1280）
	scene.handleKey(ebiten.KeyEqual)
	if w, _, _ := book.Size(); w != 396 {
		t.Fatalf("放大后宽度 = %v, want 396", w)
	}
	scene.handleKey(ebiten.KeyEqual)
	if w, _, _ := book.Size(); w != 396 {
		t.Errorf("跨页宽度超过窗口时不应放大, got %v", w)
	}

	// 动画中不缩放
	scene.handleKey(ebiten.KeyArrowRight)
	scene.handleKey(ebiten.KeyMinus)
	if w, _, _ := book.Size(); w != 396 {
		t.Errorf("动画中不应缩放, got %v", w)
	}
}

// TestFlipbookScenePointerDrag 通过指针输入系统完成一次拖拽翻页
func TestFlipbookScenePointerDrag(t *testing.T) {
	scene, input := newTestScene(t, nil)
	rect := scene.BookRect()

	// 在右下角内侧按下
	input.x, input.y, input.pressed = rect.Max.X-1, rect.Max.Y-1, true
	runFrames(scene, 1)
	if scene.Book().State().ActiveDragPoint == nil {
		t.Fatal("角区内按下应开始拖拽")
	}

	// 拖到页面左侧并停留约 600ms
	input.x, input.y = rect.Min.X+50, rect.Min.Y+150
	runFrames(scene, 36)

	input.pressed = false
	runFrames(scene, 1)
	if !scene.Book().State().IsAnimating {
		t.Fatal("松手后应开始动画")
	}
	runFrames(scene, 60)

	if got := scene.Book().CurrentPage(); got != 1 {
		t.Errorf("CurrentPage = %d, want 1", got)
	}
}

func TestFlipbookSceneDurationKeys(t *testing.T) {
	settings := game.NewSettingsManager(nil)
	scene, _ := newTestScene(t, settings)
	book := scene.Book()

	scene.handleKey(ebiten.KeyBracketLeft)
	scene.handleKey(ebiten.KeyBracketLeft)
	if got := book.Duration(); got != 400*time.Millisecond {
		t.Errorf("Duration = %v, want 400ms", got)
	}
	if got := settings.GetSettings().Duration(); got != 400*time.Millisecond {
		t.Errorf("设置中的时长 = %v, want 400ms", got)
	}

	for i := 0; i < 10; i++ {
		scene.handleKey(ebiten.KeyBracketLeft)
	}
	if got := book.Duration(); got != minDuration {
		t.Errorf("时长下限 = %v, want %v", got, minDuration)
	}
	for i := 0; i < 40; i++ {
		scene.handleKey(ebiten.KeyBracketRight)
	}
	if got := book.Duration(); got != maxDuration {
		t.Errorf("时长上限 = %v, want %v", got, maxDuration)
	}

	// 新时长用于下一次动画：200ms 在 13 帧内结束
	for book.Duration() > 200*time.Millisecond {
		scene.handleKey(ebiten.KeyBracketLeft)
	}
	scene.handleKey(ebiten.KeyArrowRight)
	runFrames(scene, 13)
	if book.State().IsAnimating || book.CurrentPage() != 1 {
		t.Errorf("animating = %v, page = %d", book.State().IsAnimating, book.CurrentPage())
	}
}

func TestFlipbookSceneCornerKeys(t *testing.T) {
	settings := game.NewSettingsManager(nil)
	scene, _ := newTestScene(t, settings)

	cornerOf := func(s *FlipbookScene) (module, drawn float64) {
		_, _, module = s.Book().Size()
		comp, _ := ecs.GetComponent[*components.FlipbookComponent](s.entityManager, s.bookEntity)
		return module, comp.CornerSize
	}

	scene.handleKey(ebiten.KeyPeriod)
	if module, drawn := cornerOf(scene); module != 110 || drawn != 110 {
		t.Errorf("角区 = %v / %v, want 110", module, drawn)
	}
	if got := settings.GetSettings().CornerSize; got != 110 {
		t.Errorf("设置中的角区 = %v, want 110", got)
	}

	for i := 0; i < 20; i++ {
		scene.handleKey(ebiten.KeyComma)
	}
	if module, _ := cornerOf(scene); module != minCornerSize {
		t.Errorf("角区下限 = %v, want %v", module, minCornerSize)
	}
	for i := 0; i < 40; i++ {
		scene.handleKey(ebiten.KeyPeriod)
	}
	if module, _ := cornerOf(scene); module != 300 {
		t.Errorf("角区上限 = %v, want 300（页面短边）", module)
	}

	// 同一份设置创建的新场景沿用调整后的角区
	scene.handleKey(ebiten.KeyComma)
	again, _ := newTestScene(t, settings)
	if module, _ := cornerOf(again); module != 290 {
		t.Errorf("新场景角区 = %v, want 290", module)
	}
}

func TestSettleLine(t *testing.T) {
	scene, _ := newTestScene(t, nil)
	if got, want := settleLine(scene.Book()), "animating false  duration 600ms  corner 100"; got != want {
		t.Errorf("静止时 = %q, want %q", got, want)
	}

	scene.handleKey(ebiten.KeyArrowRight)
	runFrames(scene, 18)
	got := settleLine(scene.Book())
	if !strings.HasPrefix(got, "animating  50%") {
		t.Errorf("动画进行一半时 = %q", got)
	}
}

func TestControlsHint(t *testing.T) {
	if got := controlsHint(true); got != "drag a page corner to flip" {
		t.Errorf("移动端提示 = %q", got)
	}
	if got := controlsHint(false); got == controlsHint(true) {
		t.Error("桌面端应显示键盘提示")
	}
}
