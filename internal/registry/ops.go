package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
	"go.uber.org/zap"
)

// RegisterPlayer is called on every login. The first call for a player
// creates their player team; later calls only refresh the stored name.
// created reports whether a new team was made.
func (r *Registry) RegisterPlayer(player uuid.UUID, name string) (t *team.Team, created bool, err error) {
	if player == uuid.Nil {
		return nil, false, fmt.Errorf("%w: nil player id", ErrInvalidValue)
	}
	if r.IsKnown(player) {
		t = r.teams[player]
		if t.SetPlayerName(name) {
			r.log.Info("player renamed", zap.String("player", player.String()), zap.String("name", name))
			r.Save()
		}
		return t, false, nil
	}
	if other, taken := r.teams[player]; taken {
		return nil, false, fmt.Errorf("%w: id %s already used by %s", ErrInvalidOperation, player, other)
	}

	t = team.New(player, team.TypePlayer)
	r.teams[player] = t
	r.known[player] = struct{}{}

	t.SetPlayerName(name)
	t.SetDisplayName(name)
	t.SetColor(r.colors.Random())
	t.Created(player, r.now())
	r.hooks.TeamCreated(t)

	// A party loaded from disk may already list this player; that membership
	// stays in force and the player team is left without an owner rank.
	if cur, ok := r.effective[player]; !ok || cur == player {
		r.effective[player] = player
		t.SetRank(player, team.RankOwner)
		r.hooks.MembershipChanged(player, nil, t)
	}

	r.Save()
	r.log.Info("player registered", zap.String("player", player.String()), zap.String("name", name))
	return t, true, nil
}

// CreateTeam creates a party or server team with creator as its only member
// and owner. Player teams are created by RegisterPlayer.
func (r *Registry) CreateTeam(creator uuid.UUID, typ team.Type, name string) (*team.Team, error) {
	if typ.IsPlayer() || !typ.Deletable() {
		return nil, fmt.Errorf("%w: cannot create %s team", ErrInvalidType, typ)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is empty", ErrInvalidValue)
	}
	old, err := r.EffectiveTeam(creator)
	if err != nil {
		return nil, err
	}
	if !old.Type().IsPlayer() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInParty, old.DisplayName())
	}

	id := r.newID()
	for r.idTaken(id) {
		id = r.newID()
	}
	t := team.New(id, typ)
	r.teams[id] = t

	t.SetDisplayName(name)
	t.SetColor(r.colors.Random())
	t.Created(creator, r.now())
	r.hooks.TeamCreated(t)

	r.move(creator, old, t, team.RankOwner)
	r.Save()
	r.log.Info("team created",
		zap.String("type", typ.String()),
		zap.String("team", t.ID().String()),
		zap.String("name", name),
		zap.String("creator", creator.String()),
	)
	return t, nil
}

// CreateParty creates a party owned by player.
func (r *Registry) CreateParty(player uuid.UUID, name string) (*team.Team, error) {
	return r.CreateTeam(player, team.TypeParty, name)
}

// CreateServerTeam creates a server team owned by player.
func (r *Registry) CreateServerTeam(player uuid.UUID, name string) (*team.Team, error) {
	return r.CreateTeam(player, team.TypeServer, name)
}

// JoinParty moves a player from their own team into a party or server team
// as a plain member.
func (r *Registry) JoinParty(player, target uuid.UUID) error {
	old, err := r.EffectiveTeam(player)
	if err != nil {
		return err
	}
	t, err := r.Team(target)
	if err != nil {
		return err
	}
	if t.Type().IsPlayer() {
		return fmt.Errorf("%w: cannot join a player team", ErrInvalidType)
	}
	if !old.Type().IsPlayer() {
		return fmt.Errorf("%w: %s", ErrAlreadyInParty, old.DisplayName())
	}

	r.move(player, old, t, team.RankMember)
	r.Save()
	return nil
}

// LeaveParty returns a player to their own team. A party left empty is
// deleted before LeaveParty returns; a party that lost its owner rank hands
// it to the strongest remaining member.
func (r *Registry) LeaveParty(ctx context.Context, player uuid.UUID) error {
	old, err := r.EffectiveTeam(player)
	if err != nil {
		return err
	}
	if old.Type().IsPlayer() {
		return ErrNotInParty
	}
	own, err := r.PlayerTeam(player)
	if err != nil {
		return err
	}

	wasOwner := old.RankOf(player) == team.RankOwner
	r.move(player, old, own, team.RankOwner)
	r.Save()

	switch {
	case old.MemberCount() == 0:
		r.deleteTeam(ctx, old)
	case wasOwner:
		r.promoteOwner(old)
	}
	return nil
}

// DeleteTeam deletes a party or server team. Remaining members return to
// their own teams; the team's document is archived, not destroyed.
func (r *Registry) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	t, err := r.Team(id)
	if err != nil {
		return err
	}
	if !t.Type().Deletable() {
		return fmt.Errorf("%w: %s teams cannot be deleted", ErrInvalidType, t.Type())
	}
	r.deleteTeam(ctx, t)
	return nil
}

func (r *Registry) deleteTeam(ctx context.Context, t *team.Team) {
	r.hooks.TeamDeleted(t)

	for _, p := range t.Members() {
		if r.effective[p] != t.ID() {
			continue
		}
		own, ok := r.teams[p]
		if !ok || !r.IsKnown(p) {
			// member never logged in on this world
			delete(r.effective, p)
			continue
		}
		own.SetRank(p, team.RankOwner)
		r.effective[p] = p
		r.hooks.MembershipChanged(p, t, own)
	}

	r.Flush(ctx)
	delete(r.teams, t.ID())
	if err := r.store.Archive(ctx, t.Type(), t.ID()); err != nil {
		r.archives[t.ID()] = t.Type()
		r.log.Error("team archive failed, retrying on next flush", zap.String("team", t.ID().String()), zap.Error(err))
	}
	r.Save()
	r.log.Info("team deleted",
		zap.String("type", t.Type().String()),
		zap.String("team", t.ID().String()),
		zap.String("name", t.DisplayName()),
	)
}

// SetProperty parses and stores one property value. Renames take effect in
// name lookups immediately.
func (r *Registry) SetProperty(id uuid.UUID, key, raw string) error {
	t, err := r.Team(id)
	if err != nil {
		return err
	}
	if key == team.PropDisplayName.Key {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return fmt.Errorf("%w: team name is empty", ErrInvalidValue)
		}
	}
	if err := t.SetPropertyString(key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	r.Save()
	return nil
}

// SetRank changes a member's rank inside a party or server team. Granting
// RankOwner demotes the previous owner to officer; the owner cannot be
// demoted directly.
func (r *Registry) SetRank(id, player uuid.UUID, rank team.Rank) error {
	t, err := r.Team(id)
	if err != nil {
		return err
	}
	if t.Type().IsPlayer() {
		return fmt.Errorf("%w: player teams have a single owner", ErrInvalidType)
	}
	cur := t.RankOf(player)
	if !cur.IsMember() {
		return fmt.Errorf("%w: %s", ErrNotMember, player)
	}
	if !rank.IsMember() {
		return fmt.Errorf("%w: rank %s", ErrInvalidValue, rank)
	}
	if cur == rank {
		return nil
	}
	if cur == team.RankOwner {
		return fmt.Errorf("%w: transfer ownership instead of demoting the owner", ErrInvalidOperation)
	}
	if rank == team.RankOwner {
		if prev, ok := t.OwnerMember(); ok {
			t.SetRank(prev, team.RankOfficer)
		}
	}
	t.SetRank(player, rank)
	r.Save()
	return nil
}

// move rewires a player from one team to another and updates the effective
// index. Both teams are marked for saving.
func (r *Registry) move(player uuid.UUID, from, to *team.Team, rank team.Rank) {
	from.RemoveMember(player)
	from.MarkDirty()
	to.SetRank(player, rank)
	to.MarkDirty()
	r.effective[player] = to.ID()
	r.hooks.MembershipChanged(player, from, to)
}

// idTaken rejects the nil id and ids of teams or players already indexed.
func (r *Registry) idTaken(id uuid.UUID) bool {
	if id == uuid.Nil {
		return true
	}
	if _, ok := r.teams[id]; ok {
		return true
	}
	_, ok := r.effective[id]
	return ok
}

func (r *Registry) promoteOwner(t *team.Team) {
	members := t.Members()
	if len(members) == 0 {
		return
	}
	next := members[0]
	t.SetRank(next, team.RankOwner)
	r.log.Info("team owner promoted",
		zap.String("team", t.ID().String()),
		zap.String("owner", next.String()),
	)
}
