package registry

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
)

// Team returns the team with the given id.
func (r *Registry) Team(id uuid.UUID) (*team.Team, error) {
	t, ok := r.teams[id]
	if !ok || id == uuid.Nil {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, id)
	}
	return t, nil
}

// IsKnown reports whether the player has a player team.
func (r *Registry) IsKnown(player uuid.UUID) bool {
	_, ok := r.known[player]
	return ok
}

// KnownPlayers returns every known player id in id order.
func (r *Registry) KnownPlayers() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(r.known))
	for p := range r.known {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

// PlayerTeam returns the player's own team regardless of party membership.
func (r *Registry) PlayerTeam(player uuid.UUID) (*team.Team, error) {
	if !r.IsKnown(player) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	return r.teams[player], nil
}

// EffectiveTeam returns the team governing the player right now: their party
// or server team if they are in one, otherwise their own player team.
func (r *Registry) EffectiveTeam(player uuid.UUID) (*team.Team, error) {
	id, ok := r.effective[player]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	t, ok := r.teams[id]
	if !ok {
		// effective only ever points at indexed teams; reaching here is a bug
		return nil, fmt.Errorf("%w: effective team %s of %s", ErrTeamNotFound, id, player)
	}
	return t, nil
}

// EffectiveTeamID returns the id of the player's effective team, or the
// player id itself for unknown players.
func (r *Registry) EffectiveTeamID(player uuid.UUID) uuid.UUID {
	if id, ok := r.effective[player]; ok {
		return id
	}
	return player
}

// SameTeam reports whether two known players share an effective team.
func (r *Registry) SameTeam(a, b uuid.UUID) bool {
	ta, okA := r.effective[a]
	tb, okB := r.effective[b]
	return okA && okB && ta == tb
}

// TeamByName resolves a team reference: a team id, a StringID
// ("Name#1a2b3c4d") or a display name. Matching is case-insensitive.
func (r *Registry) TeamByName(ref string) (*team.Team, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.Team(id)
	}
	if id, ok := r.nameIndex()[r.fold.String(ref)]; ok {
		return r.teams[id], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTeamNotFound, ref)
}

// nameIndex builds the folded name cache on demand. StringIDs take
// precedence over display names, and earlier ids win display-name clashes.
func (r *Registry) nameIndex() map[string]uuid.UUID {
	if r.names != nil {
		return r.names
	}
	teams := r.Teams()
	names := make(map[string]uuid.UUID, len(teams)*2)
	for _, t := range teams {
		names[r.fold.String(t.StringID())] = t.ID()
	}
	for _, t := range teams {
		key := r.fold.String(t.DisplayName())
		if _, taken := names[key]; !taken {
			names[key] = t.ID()
		}
	}
	r.names = names
	return names
}

// PlayerByName finds a known player by their last seen name or by id.
func (r *Registry) PlayerByName(name string) (uuid.UUID, error) {
	if id, err := uuid.Parse(name); err == nil {
		if _, ok := r.effective[id]; ok {
			return id, nil
		}
		return uuid.Nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	want := r.fold.String(name)
	for _, p := range r.KnownPlayers() {
		if r.fold.String(r.teams[p].PlayerName()) == want {
			return p, nil
		}
	}
	return uuid.Nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}
