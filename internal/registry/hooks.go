package registry

import (
	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
)

// Hooks receives structural changes synchronously, after the indexes are
// updated. Implementations must not call back into the registry.
type Hooks interface {
	TeamCreated(t *team.Team)
	// TeamDeleted fires before the team's document is archived.
	TeamDeleted(t *team.Team)
	// MembershipChanged fires when a player's effective team changes. from is
	// nil for a player seen for the first time.
	MembershipChanged(player uuid.UUID, from, to *team.Team)
}

// NopHooks ignores every change.
type NopHooks struct{}

func (NopHooks) TeamCreated(*team.Team) {}
func (NopHooks) TeamDeleted(*team.Team) {}
func (NopHooks) MembershipChanged(uuid.UUID, *team.Team, *team.Team) {}
