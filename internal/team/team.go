package team

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Team is one entity of the registry. The variant is selected by Type; fields
// that only make sense for some variants (Owner, PlayerName) are left zero on
// the others.
//
// A Team is owned by the registry and accessed only from its goroutine.
type Team struct {
	id         uuid.UUID
	typ        Type
	owner      uuid.UUID // creator of a party/server team
	playerName string    // last known name of the player behind a player team
	creator    uuid.UUID
	createdAt  time.Time

	props map[string]any
	extra map[string]string // unrecognized property keys, kept verbatim
	ranks map[uuid.UUID]Rank
	dirty bool
}

// New returns an empty team of the given type.
func New(id uuid.UUID, typ Type) *Team {
	return &Team{
		id:    id,
		typ:   typ,
		props: make(map[string]any),
		extra: make(map[string]string),
		ranks: make(map[uuid.UUID]Rank),
	}
}

func (t *Team) ID() uuid.UUID { return t.id }
func (t *Team) Type() Type { return t.typ }
func (t *Team) Owner() uuid.UUID { return t.owner }
func (t *Team) PlayerName() string { return t.playerName }
func (t *Team) Creator() uuid.UUID { return t.creator }
func (t *Team) CreatedAt() time.Time { return t.createdAt }
func (t *Team) Dirty() bool { return t.dirty }
func (t *Team) MarkDirty() { t.dirty = true }
func (t *Team) ClearDirty() { t.dirty = false }
func (t *Team) ShortID() string { return t.id.String()[:8] }
func (t *Team) MemberCount() int { return len(t.ranks) }
func (t *Team) IsMember(p uuid.UUID) bool {
	return t.ranks[p].IsMember()
}

// Created stamps creation metadata. Party and server teams remember their
// creator as owner even if ownership rank later moves to someone else.
func (t *Team) Created(creator uuid.UUID, at time.Time) {
	t.creator = creator
	t.createdAt = at.UTC().Truncate(time.Millisecond)
	if !t.typ.IsPlayer() {
		t.owner = creator
	}
	t.dirty = true
}

// SetPlayerName updates the stored player name. Returns false when unchanged.
func (t *Team) SetPlayerName(name string) bool {
	if t.playerName == name {
		return false
	}
	t.playerName = name
	t.dirty = true
	return true
}

// Property returns the typed value of p, or its default.
func (t *Team) Property(p *Property) any {
	if v, ok := t.props[p.Key]; ok {
		return v
	}
	return p.Default
}

func (t *Team) setProperty(p *Property, v any) {
	t.props[p.Key] = v
	t.dirty = true
}

func (t *Team) SetDisplayName(name string) { t.setProperty(PropDisplayName, name) }
func (t *Team) SetDescription(s string) { t.setProperty(PropDescription, s) }
func (t *Team) SetColor(c Color) { t.setProperty(PropColor, c) }
func (t *Team) SetFreeToJoin(b bool) { t.setProperty(PropFreeToJoin, b) }

// SetPropertyString parses raw with the property registered under key and
// stores the result.
func (t *Team) SetPropertyString(key, raw string) error {
	p, ok := LookupProperty(key)
	if !ok {
		return fmt.Errorf("unknown property %q", key)
	}
	v, err := p.Parse(raw)
	if err != nil {
		return err
	}
	t.setProperty(p, v)
	return nil
}

// DisplayName falls back to the player name for player teams and to the
// short id when nothing else is set.
func (t *Team) DisplayName() string {
	if s := t.Property(PropDisplayName).(string); s != "" {
		return s
	}
	if t.playerName != "" {
		return t.playerName
	}
	return t.ShortID()
}

func (t *Team) Description() string { return t.Property(PropDescription).(string) }
func (t *Team) Color() Color { return t.Property(PropColor).(Color) }
func (t *Team) FreeToJoin() bool { return t.Property(PropFreeToJoin).(bool) }

// StringID is the key used by name lookups: the display name with every
// non-word rune replaced by '_', then '#' and the short id.
func (t *Team) StringID() string {
	var b strings.Builder
	for _, r := range t.DisplayName() {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteByte('#')
	b.WriteString(t.ShortID())
	return b.String()
}

// RankOf returns the player's rank in this team, RankNone if absent.
func (t *Team) RankOf(p uuid.UUID) Rank {
	return t.ranks[p]
}

// SetRank sets or, for RankNone, removes a player's rank.
func (t *Team) SetRank(p uuid.UUID, r Rank) {
	if r == RankNone {
		t.RemoveMember(p)
		return
	}
	t.ranks[p] = r
	t.dirty = true
}

// RemoveMember drops a player from the rank map. Returns false if absent.
func (t *Team) RemoveMember(p uuid.UUID) bool {
	if _, ok := t.ranks[p]; !ok {
		return false
	}
	delete(t.ranks, p)
	t.dirty = true
	return true
}

// OwnerMember returns the member currently holding RankOwner.
func (t *Team) OwnerMember() (uuid.UUID, bool) {
	for p, r := range t.ranks {
		if r == RankOwner {
			return p, true
		}
	}
	return uuid.Nil, false
}

// Members lists members by rank, strongest first, ties broken by id.
func (t *Team) Members() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.ranks))
	for p := range t.ranks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := t.ranks[out[i]], t.ranks[out[j]]
		if ri != rj {
			return ri > rj
		}
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (t *Team) String() string {
	return fmt.Sprintf("%s %s (%s)", t.typ, t.DisplayName(), t.id)
}
