package systems

import (
	"log"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/ecs"
	"github.com/decker502/flipbook/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// PointerSample 某一帧中一个指针的状态
type PointerSample struct {
	// ID 0 为鼠标，触摸为 1 + TouchID
	ID      int
	X, Y    int
	Pressed bool
}

// PointerInput 指针输入接口
// 用于依赖注入，支持测试时 mock
type PointerInput interface {
	// Pointers 返回当前帧的所有指针；鼠标总是存在，触摸只在按住时存在
	Pointers() []PointerSample
	// Focused 窗口是否有焦点；失去焦点时所有捕获都视为丢失
	Focused() bool
}

// ebitenPointerInput Ebitengine 默认实现
type ebitenPointerInput struct {
	touchIDs []ebiten.TouchID
}

func (e *ebitenPointerInput) Pointers() []PointerSample {
	x, y := ebiten.CursorPosition()
	samples := []PointerSample{{
		ID:      0,
		X:       x,
		Y:       y,
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}}

	e.touchIDs = ebiten.AppendTouchIDs(e.touchIDs[:0])
	for _, id := range e.touchIDs {
		tx, ty := ebiten.TouchPosition(id)
		samples = append(samples, PointerSample{ID: 1 + int(id), X: tx, Y: ty, Pressed: true})
	}
	return samples
}

func (e *ebitenPointerInput) Focused() bool {
	return ebiten.IsFocused()
}

// pointerTrack 跨帧记录的指针状态
type pointerTrack struct {
	pressed  bool
	last     utils.Point2D
	captured ecs.EntityID // 0 表示未被捕获
}

// PointerInputSystem 把 Ebitengine 的鼠标/触摸状态转换为 PointerHandler 事件
//
// 职责：
//   - 按下：命中检测（后创建的实体优先），目标返回 true 则捕获该指针
//   - 移动：已捕获的指针只投递给捕获者（即使已移出区域）；未捕获的鼠标投递给所在区域
//   - 离开：未捕获的鼠标移出区域时投递 leave
//   - 抬起：投递给捕获者并释放捕获；触摸消失视为在最后位置抬起
//   - 失去焦点：所有捕获投递 cancel；仍按住的指针要先抬起才能再次按下
//
// 事件时间戳来自本系统累计的帧时间。
type PointerInputSystem struct {
	entityManager *ecs.EntityManager
	input         PointerInput

	clock  time.Duration
	tracks map[int]*pointerTrack
}

// NewPointerInputSystem 创建指针输入系统
func NewPointerInputSystem(em *ecs.EntityManager) *PointerInputSystem {
	return NewPointerInputSystemWithInput(em, &ebitenPointerInput{})
}

// NewPointerInputSystemWithInput 创建带自定义输入的指针输入系统（用于测试）
func NewPointerInputSystemWithInput(em *ecs.EntityManager, input PointerInput) *PointerInputSystem {
	return &PointerInputSystem{
		entityManager: em,
		input:         input,
		tracks:        make(map[int]*pointerTrack),
	}
}

// Update 处理本帧输入
func (s *PointerInputSystem) Update(deltaTime float64) {
	s.clock += time.Duration(deltaTime * float64(time.Second))

	if !s.input.Focused() {
		s.cancelAll()
		return
	}

	samples := s.input.Pointers()
	seen := make(map[int]bool, len(samples))

	for _, sample := range samples {
		seen[sample.ID] = true
		pos := utils.Pt(float64(sample.X), float64(sample.Y))

		track, ok := s.tracks[sample.ID]
		if !ok {
			track = &pointerTrack{}
			s.tracks[sample.ID] = track
		}

		switch {
		case sample.Pressed && !track.pressed:
			s.press(sample.ID, track, pos)
		case sample.Pressed && track.captured != 0:
			s.dispatchToCaptured(sample.ID, track, pos, func(h components.PointerHandler, ev components.PointerEvent) {
				h.OnPointerMove(ev)
			})
		case !sample.Pressed && track.pressed:
			s.releaseTrack(sample.ID, track, pos)
		}

		if track.captured == 0 && sample.ID == 0 {
			s.hover(sample.ID, pos)
		}

		track.pressed = sample.Pressed
		track.last = pos
	}

	// 消失的触摸：在最后位置抬起
	for id, track := range s.tracks {
		if seen[id] {
			continue
		}
		if track.pressed {
			s.releaseTrack(id, track, track.last)
		}
		delete(s.tracks, id)
	}
}

// Clock 累计时间
func (s *PointerInputSystem) Clock() time.Duration {
	return s.clock
}

func (s *PointerInputSystem) press(id int, track *pointerTrack, pos utils.Point2D) {
	entities := ecs.GetEntitiesWith2[*components.PointerTargetComponent, *components.PositionComponent](s.entityManager)

	// 后创建的实体画在上层，优先命中
	for i := len(entities) - 1; i >= 0; i-- {
		entityID := entities[i]
		target, _ := ecs.GetComponent[*components.PointerTargetComponent](s.entityManager, entityID)
		position, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entityID)
		if target == nil || position == nil || target.Handler == nil {
			continue
		}

		local := pos.Sub(utils.Pt(position.X, position.Y))
		if !containsLocal(target, local) {
			continue
		}
		if target.Handler.OnPointerDown(components.PointerEvent{ID: id, Pos: local, At: s.clock}) {
			track.captured = entityID
			return
		}
	}
}

func (s *PointerInputSystem) releaseTrack(id int, track *pointerTrack, pos utils.Point2D) {
	s.dispatchToCaptured(id, track, pos, func(h components.PointerHandler, ev components.PointerEvent) {
		h.OnPointerUp(ev)
	})
	track.captured = 0
	track.pressed = false
}

func (s *PointerInputSystem) dispatchToCaptured(id int, track *pointerTrack, pos utils.Point2D, fn func(components.PointerHandler, components.PointerEvent)) {
	if track.captured == 0 {
		return
	}
	target, ok := ecs.GetComponent[*components.PointerTargetComponent](s.entityManager, track.captured)
	position, ok2 := ecs.GetComponent[*components.PositionComponent](s.entityManager, track.captured)
	if !ok || !ok2 || target.Handler == nil {
		// 捕获者已被销毁
		track.captured = 0
		return
	}
	local := pos.Sub(utils.Pt(position.X, position.Y))
	fn(target.Handler, components.PointerEvent{ID: id, Pos: local, At: s.clock})
}

// hover 未捕获的鼠标：区域内投递 move，移出时投递 leave
func (s *PointerInputSystem) hover(id int, pos utils.Point2D) {
	entities := ecs.GetEntitiesWith2[*components.PointerTargetComponent, *components.PositionComponent](s.entityManager)
	for _, entityID := range entities {
		target, _ := ecs.GetComponent[*components.PointerTargetComponent](s.entityManager, entityID)
		position, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, entityID)
		if target == nil || position == nil || target.Handler == nil {
			continue
		}

		local := pos.Sub(utils.Pt(position.X, position.Y))
		ev := components.PointerEvent{ID: id, Pos: local, At: s.clock}
		inside := containsLocal(target, local)
		switch {
		case inside:
			target.Handler.OnPointerMove(ev)
		case target.Inside:
			target.Handler.OnPointerLeave(ev)
		}
		target.Inside = inside
	}
}

// cancelAll 取消所有捕获，但保留按下状态
// 焦点回来时仍按住的按键不会被当作一次新的按下
func (s *PointerInputSystem) cancelAll() {
	for id, track := range s.tracks {
		if track.captured != 0 {
			log.Printf("[PointerInputSystem] focus lost, cancelling capture of pointer %d", id)
			s.dispatchToCaptured(id, track, track.last, func(h components.PointerHandler, ev components.PointerEvent) {
				h.OnPointerCancel(ev)
			})
			track.captured = 0
		}
	}
}

func containsLocal(target *components.PointerTargetComponent, p utils.Point2D) bool {
	return p.X >= 0 && p.X <= target.Width && p.Y >= 0 && p.Y <= target.Height
}
