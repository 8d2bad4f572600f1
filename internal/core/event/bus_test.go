package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"
)

func TestBusDeliversAfterSwap(t *testing.T) {
	is := is.New(t)
	b := NewBus()

	var got []string
	Subscribe(b, func(ev TeamCreated) { got = append(got, "created:"+ev.Team.Name) })
	Subscribe(b, func(ev TeamDeleted) { got = append(got, "deleted:"+ev.Team.Name) })

	Emit(b, TeamCreated{Team: TeamRef{Name: "a"}})
	Emit(b, TeamDeleted{Team: TeamRef{Name: "a"}})
	Emit(b, TeamCreated{Team: TeamRef{Name: "b"}})
	is.Equal(b.Pending(), 3)

	is.Equal(b.DispatchAll(), 0) // nothing swapped in yet
	is.Equal(len(got), 0)

	b.SwapBuffers()
	is.Equal(b.Pending(), 0)
	is.Equal(b.DispatchAll(), 3)
	is.Equal(got, []string{"created:a", "deleted:a", "created:b"})
}

func TestBusEmitFromHandlerWaitsATick(t *testing.T) {
	is := is.New(t)
	b := NewBus()

	var moves int
	Subscribe(b, func(ev TeamDeleted) {
		for _, p := range ev.Members {
			Emit(b, MembershipChanged{Player: p})
		}
	})
	Subscribe(b, func(MembershipChanged) { moves++ })

	Emit(b, TeamDeleted{Members: []uuid.UUID{uuid.New(), uuid.New()}})
	b.SwapBuffers()
	b.DispatchAll()
	is.Equal(moves, 0)
	is.Equal(b.Pending(), 2)

	b.SwapBuffers()
	b.DispatchAll()
	is.Equal(moves, 2)
}

func TestRefOfNil(t *testing.T) {
	is := is.New(t)
	is.Equal(RefOf(nil), TeamRef{})
}
