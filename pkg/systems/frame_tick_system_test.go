package systems

import (
	"testing"
	"time"

	"github.com/decker502/flipbook/pkg/components"
	"github.com/decker502/flipbook/pkg/ecs"
)

type countingFrameHandler struct {
	calls int
	total time.Duration
}

func (h *countingFrameHandler) OnAnimationFrame(dt time.Duration) {
	h.calls++
	h.total += dt
}

func TestFrameTickSystemUpdate(t *testing.T) {
	em := ecs.NewEntityManager()
	a, b := &countingFrameHandler{}, &countingFrameHandler{}

	for _, h := range []*countingFrameHandler{a, b} {
		id := em.CreateEntity()
		em.AddComponent(id, &components.FrameTickComponent{Handler: h})
	}
	// 没有 Handler 的组件被跳过
	empty := em.CreateEntity()
	em.AddComponent(empty, &components.FrameTickComponent{})

	sys := NewFrameTickSystem(em)
	for i := 0; i < 3; i++ {
		sys.Update(0.5)
	}

	for i, h := range []*countingFrameHandler{a, b} {
		if h.calls != 3 {
			t.Errorf("handler %d 被调用 %d 次, 期望 3", i, h.calls)
		}
		if h.total != 1500*time.Millisecond {
			t.Errorf("handler %d 累计 %v, 期望 1.5s", i, h.total)
		}
	}
}
