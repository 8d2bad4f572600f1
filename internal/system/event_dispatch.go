package system

import (
	"time"

	"github.com/l1jgo/teams/internal/core/event"
	coresys "github.com/l1jgo/teams/internal/core/system"
	"github.com/l1jgo/teams/internal/metrics"
)

// EventDispatchSystem swaps the bus buffers and delivers the events queued
// since the last tick. Phase 1 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	if n := s.bus.DispatchAll(); n > 0 {
		metrics.Events.Add(float64(n))
	}
}
