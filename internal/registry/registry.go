// Package registry holds every team in memory together with the indexes
// derived from them, and persists changes on explicit checkpoints.
//
// A Registry is not safe for concurrent use. The host runs every call on one
// goroutine (the game loop) and marshals external triggers onto it.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/persist"
	"github.com/l1jgo/teams/internal/team"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Colors supplies display colors for new teams.
type Colors interface {
	Random() team.Color
}

type Options struct {
	Store  persist.Store
	Hooks  Hooks  // nil = NopHooks
	Colors Colors // nil = always white
	Log    *zap.Logger
	Now    func() time.Time // nil = time.Now
	NewID  func() uuid.UUID // nil = uuid.New
}

// Registry is the in-memory team store.
//
// teams is the only index that owns entities; known, effective and names
// hold ids resolved through it.
type Registry struct {
	store  persist.Store
	hooks  Hooks
	colors Colors
	log    *zap.Logger
	now    func() time.Time
	newID  func() uuid.UUID

	id         uuid.UUID // registry instance id, generated lazily
	shouldSave bool      // registry document dirty

	teams     map[uuid.UUID]*team.Team
	known     map[uuid.UUID]struct{}  // player id → has a player team of the same id
	effective map[uuid.UUID]uuid.UUID // player id → team currently governing the player
	names     map[string]uuid.UUID    // folded name → team id; nil when stale
	archives  map[uuid.UUID]team.Type // deleted teams whose document is still live
	fold      cases.Caser
}

type whiteColors struct{}

func (whiteColors) Random() team.Color { return team.Color(0xFFFFFF) }

func New(opts Options) *Registry {
	r := &Registry{
		store:  opts.Store,
		hooks:  opts.Hooks,
		colors: opts.Colors,
		log:    opts.Log,
		now:    opts.Now,
		newID:  opts.NewID,
		fold:   cases.Fold(),
	}
	if r.hooks == nil {
		r.hooks = NopHooks{}
	}
	if r.colors == nil {
		r.colors = whiteColors{}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.New
	}
	r.reset()
	return r
}

func (r *Registry) reset() {
	r.id = uuid.Nil
	r.shouldSave = false
	r.teams = make(map[uuid.UUID]*team.Team)
	r.known = make(map[uuid.UUID]struct{})
	r.effective = make(map[uuid.UUID]uuid.UUID)
	r.names = nil
	r.archives = make(map[uuid.UUID]team.Type)
}

// ID returns the registry instance id, generating it on first use.
func (r *Registry) ID() uuid.UUID {
	if r.id == uuid.Nil {
		r.id = r.newID()
		r.shouldSave = true
	}
	return r.id
}

// LoadReport summarizes Load. Failures lists every skipped document.
type LoadReport struct {
	Teams        int
	KnownPlayers int
	Failures     []persist.Failure
}

// Load replaces the in-memory state with what the store holds. A document
// that cannot be read is skipped and reported; Load itself never fails.
func (r *Registry) Load(ctx context.Context) LoadReport {
	r.reset()
	var rep LoadReport

	doc, found, err := r.store.ReadRegistry(ctx)
	switch {
	case err != nil:
		rep.Failures = append(rep.Failures, persist.Failure{Op: "load", Path: "registry", Err: err})
	case found:
		r.setID(doc.ID, "registry", &rep)
	}
	if !found && err == nil {
		legacyID, ok, err := r.store.ReadLegacyID(ctx)
		if err != nil {
			rep.Failures = append(rep.Failures, persist.Failure{Op: "load", Path: "legacy registry", Err: err})
		} else if ok {
			r.setID(legacyID, "legacy registry", &rep)
		}
	}
	if !found || err != nil {
		r.Save()
	}

	for _, typ := range team.Types() {
		loaded, failures := r.store.LoadTeams(ctx, typ)
		rep.Failures = append(rep.Failures, failures...)
		for _, t := range loaded {
			if _, dup := r.teams[t.ID()]; dup {
				rep.Failures = append(rep.Failures, persist.Failure{
					Op: "load", Path: typ.String() + "/" + t.ID().String(), Err: ErrDuplicateTeam,
				})
				continue
			}
			r.teams[t.ID()] = t
		}
	}

	r.rebuildIndexes(&rep)

	rep.Teams = len(r.teams)
	rep.KnownPlayers = len(r.known)
	for _, f := range rep.Failures {
		r.log.Error("team document skipped", zap.String("op", f.Op), zap.String("path", f.Path), zap.Error(f.Err))
	}
	r.log.Info("teams loaded",
		zap.Int("teams", rep.Teams),
		zap.Int("known_players", rep.KnownPlayers),
		zap.Int("failures", len(rep.Failures)),
	)
	return rep
}

func (r *Registry) setID(raw, source string, rep *LoadReport) {
	id, err := uuid.Parse(raw)
	if err != nil {
		rep.Failures = append(rep.Failures, persist.Failure{Op: "load", Path: source, Err: fmt.Errorf("registry id: %w", err)})
		return
	}
	r.id = id
}

// rebuildIndexes derives known and effective from the team index: every
// player team first, then party and server membership on top. A player listed
// by several teams stays in the first one by id and is dropped from the
// others; a team left empty by that is queued for archiving.
func (r *Registry) rebuildIndexes(rep *LoadReport) {
	for id, t := range r.teams {
		if t.Type().IsPlayer() {
			r.known[id] = struct{}{}
			r.effective[id] = id
		}
	}
	for _, t := range r.Teams() {
		if t.Type().IsPlayer() {
			continue
		}
		dropped := false
		for _, p := range t.Members() {
			if cur, ok := r.effective[p]; ok && cur != p {
				r.log.Warn("player listed by more than one team, keeping first",
					zap.String("player", p.String()),
					zap.String("kept", cur.String()),
					zap.String("dropped", t.ID().String()),
				)
				t.RemoveMember(p)
				dropped = true
				rep.Failures = append(rep.Failures, persist.Failure{
					Op:   "load",
					Path: t.Type().String() + "/" + t.ID().String(),
					Err:  fmt.Errorf("%w: %s also in %s", ErrDuplicateMember, p, cur),
				})
				continue
			}
			r.effective[p] = t.ID()
		}
		if dropped && t.MemberCount() == 0 {
			delete(r.teams, t.ID())
			r.archives[t.ID()] = t.Type()
			r.log.Warn("team emptied on load, archiving", zap.String("team", t.ID().String()))
		}
	}
	r.names = nil
}

// Save marks the registry document dirty and drops cached lookups. It never
// touches disk.
func (r *Registry) Save() {
	r.shouldSave = true
	r.names = nil
}

// FlushReport summarizes Flush.
type FlushReport struct {
	RegistryWritten bool
	TeamsWritten    int
	TeamsArchived   int
	Failures        []persist.Failure
}

// Flush writes the registry document if dirty and every dirty team, then
// archives deleted teams whose earlier archive failed. A failed write or
// archive stays pending so the next Flush retries it.
func (r *Registry) Flush(ctx context.Context) FlushReport {
	var rep FlushReport

	if err := r.store.Prepare(ctx); err != nil {
		rep.Failures = append(rep.Failures, persist.Failure{Op: "write", Path: "layout", Err: err})
	}

	if r.shouldSave {
		if err := r.store.WriteRegistry(ctx, r.document()); err != nil {
			rep.Failures = append(rep.Failures, persist.Failure{Op: "write", Path: "registry", Err: err})
		} else {
			r.shouldSave = false
			rep.RegistryWritten = true
		}
	}

	for _, t := range r.Teams() {
		if !t.Dirty() {
			continue
		}
		if err := r.store.WriteTeam(ctx, t); err != nil {
			rep.Failures = append(rep.Failures, persist.Failure{
				Op: "write", Path: t.Type().String() + "/" + t.ID().String(), Err: err,
			})
			continue
		}
		t.ClearDirty()
		rep.TeamsWritten++
	}

	for id, typ := range r.archives {
		if err := r.store.Archive(ctx, typ, id); err != nil {
			rep.Failures = append(rep.Failures, persist.Failure{
				Op: "archive", Path: typ.String() + "/" + id.String(), Err: err,
			})
			continue
		}
		delete(r.archives, id)
		rep.TeamsArchived++
	}

	for _, f := range rep.Failures {
		r.log.Error("team flush failed", zap.String("path", f.Path), zap.Error(f.Err))
	}
	return rep
}

func (r *Registry) document() codec.RegistryDocument {
	return codec.RegistryDocument{ID: r.ID().String()}
}

// DirtyCount counts entities whose in-memory state is not yet persisted,
// including the registry document itself and pending archives.
func (r *Registry) DirtyCount() int {
	n := len(r.archives)
	if r.shouldSave {
		n++
	}
	for _, t := range r.teams {
		if t.Dirty() {
			n++
		}
	}
	return n
}

// Teams returns every team ordered by id.
func (r *Registry) Teams() []*team.Team {
	out := make([]*team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ID(), out[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out
}

// KnownCount returns the number of known players.
func (r *Registry) KnownCount() int {
	return len(r.known)
}

// TeamCount returns the number of teams of typ.
func (r *Registry) TeamCount(typ team.Type) int {
	n := 0
	for _, t := range r.teams {
		if t.Type() == typ {
			n++
		}
	}
	return n
}
