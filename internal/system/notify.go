package system

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/core/event"
	coresys "github.com/l1jgo/teams/internal/core/system"
)

// Notice is a chat-style message addressed to one player.
type Notice struct {
	Player uuid.UUID
	Text   string
}

// NotifySystem turns team events into player notices and hands them to a
// sink once per tick. Phase 1 (Events), after EventDispatchSystem.
type NotifySystem struct {
	pending []Notice
	sink    func(Notice)
}

func NewNotifySystem(bus *event.Bus, sink func(Notice)) *NotifySystem {
	s := &NotifySystem{sink: sink}
	event.Subscribe(bus, s.onMembershipChanged)
	event.Subscribe(bus, s.onTeamDeleted)
	return s
}

func (s *NotifySystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *NotifySystem) Update(_ time.Duration) {
	for _, n := range s.pending {
		s.sink(n)
	}
	s.pending = s.pending[:0]
}

func (s *NotifySystem) onMembershipChanged(ev event.MembershipChanged) {
	switch {
	case ev.From.ID == uuid.Nil:
		// first login
	case !ev.To.Type.IsPlayer():
		s.push(ev.Player, "You joined %s.", ev.To.Name)
	case !ev.From.Type.IsPlayer():
		s.push(ev.Player, "You are no longer in %s.", ev.From.Name)
	}
}

func (s *NotifySystem) onTeamDeleted(ev event.TeamDeleted) {
	for _, p := range ev.Members {
		s.push(p, "%s %s was disbanded.", ev.Team.Type, ev.Team.Name)
	}
}

func (s *NotifySystem) push(p uuid.UUID, format string, a ...any) {
	s.pending = append(s.pending, Notice{Player: p, Text: fmt.Sprintf(format, a...)})
}
