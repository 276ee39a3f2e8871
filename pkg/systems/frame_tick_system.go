package systems

import (
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/ecs"
)

// FrameTickSystem 每帧调用所有 FrameTickComponent 的 OnAnimationFrame
// 动画不依赖隐式定时器，时间完全由这里传入的 dt 推进
type FrameTickSystem struct {
	entityManager *ecs.EntityManager
}

// NewFrameTickSystem 创建逐帧推进系统
func NewFrameTickSystem(em *ecs.EntityManager) *FrameTickSystem {
	return &FrameTickSystem{entityManager: em}
}

// Update deltaTime 单位为秒（与其他系统一致）
func (s *FrameTickSystem) Update(deltaTime float64) {
	dt := time.Duration(deltaTime * float64(time.Second))
	for _, id := range ecs.GetEntitiesWith1[*components.FrameTickComponent](s.entityManager) {
		tick, ok := ecs.GetComponent[*components.FrameTickComponent](s.entityManager, id)
		if !ok || tick.Handler == nil {
			continue
		}
		tick.Handler.OnAnimationFrame(dt)
	}
}
