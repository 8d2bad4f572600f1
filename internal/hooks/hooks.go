// Package hooks provides registry.Hooks implementations that can be combined
// with Multi.
package hooks

import (
	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/core/event"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/team"
	"go.uber.org/zap"
)

// Multi calls each hook in order.
type Multi []registry.Hooks

func (m Multi) TeamCreated(t *team.Team) {
	for _, h := range m {
		h.TeamCreated(t)
	}
}

func (m Multi) TeamDeleted(t *team.Team) {
	for _, h := range m {
		h.TeamDeleted(t)
	}
}

func (m Multi) MembershipChanged(player uuid.UUID, from, to *team.Team) {
	for _, h := range m {
		h.MembershipChanged(player, from, to)
	}
}

// Log writes every change at debug level.
type Log struct {
	L *zap.Logger
}

func (h Log) TeamCreated(t *team.Team) {
	h.L.Debug("hook: team created", zap.String("team", t.String()))
}

func (h Log) TeamDeleted(t *team.Team) {
	h.L.Debug("hook: team deleted", zap.String("team", t.String()), zap.Int("members", t.MemberCount()))
}

func (h Log) MembershipChanged(player uuid.UUID, from, to *team.Team) {
	fromName := "-"
	if from != nil {
		fromName = from.String()
	}
	h.L.Debug("hook: membership changed",
		zap.String("player", player.String()),
		zap.String("from", fromName),
		zap.String("to", to.String()),
	)
}

// Bus republishes changes as snapshot events for the next tick.
type Bus struct {
	B *event.Bus
}

func (h Bus) TeamCreated(t *team.Team) {
	event.Emit(h.B, event.TeamCreated{Team: event.RefOf(t), Creator: t.Creator()})
}

func (h Bus) TeamDeleted(t *team.Team) {
	event.Emit(h.B, event.TeamDeleted{Team: event.RefOf(t), Members: t.Members()})
}

func (h Bus) MembershipChanged(player uuid.UUID, from, to *team.Team) {
	event.Emit(h.B, event.MembershipChanged{Player: player, From: event.RefOf(from), To: event.RefOf(to)})
}
