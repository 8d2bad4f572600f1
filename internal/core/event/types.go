package event

import (
	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
)

// Events carry snapshots, not *team.Team, because they are delivered a tick
// after the change and the team may be gone by then.

// TeamRef identifies a team as it was when the event was emitted.
type TeamRef struct {
	ID   uuid.UUID
	Type team.Type
	Name string
}

// RefOf snapshots t. A nil team yields the zero TeamRef.
func RefOf(t *team.Team) TeamRef {
	if t == nil {
		return TeamRef{}
	}
	return TeamRef{ID: t.ID(), Type: t.Type(), Name: t.DisplayName()}
}

type TeamCreated struct {
	Team    TeamRef
	Creator uuid.UUID
}

type TeamDeleted struct {
	Team    TeamRef
	Members []uuid.UUID
}

type MembershipChanged struct {
	Player uuid.UUID
	From   TeamRef // zero for a newly registered player
	To     TeamRef
}
