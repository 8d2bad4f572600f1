package hooks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/core/event"
	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
	"go.uber.org/zap"
)

func TestMultiFansOutToBus(t *testing.T) {
	is := is.New(t)
	bus := event.NewBus()
	h := Multi{Log{L: zap.NewNop()}, Bus{B: bus}}

	var got []event.MembershipChanged
	event.Subscribe(bus, func(ev event.MembershipChanged) { got = append(got, ev) })

	p := uuid.New()
	own := team.New(p, team.TypePlayer)
	own.SetPlayerName("alice")
	party := team.New(uuid.New(), team.TypeParty)
	party.SetDisplayName("Raiders")

	h.TeamCreated(own)
	h.MembershipChanged(p, nil, own)
	h.MembershipChanged(p, own, party)
	h.TeamDeleted(party)
	is.Equal(bus.Pending(), 4)

	bus.SwapBuffers()
	bus.DispatchAll()
	is.Equal(len(got), 2)
	is.Equal(got[0].From, event.TeamRef{})
	is.Equal(got[1].From, event.TeamRef{ID: p, Type: team.TypePlayer, Name: "alice"})
	is.Equal(got[1].To.Name, "Raiders")
}
