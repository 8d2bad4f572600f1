package team

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted form of a Team: everything except transient state.
// Codecs marshal Records, never Teams.
type Record struct {
	ID         string            `bson:"id" yaml:"id"`
	Type       string            `bson:"type" yaml:"type"`
	Owner      string            `bson:"owner,omitempty" yaml:"owner,omitempty"`
	PlayerName string            `bson:"player_name,omitempty" yaml:"player_name,omitempty"`
	Creator    string            `bson:"creator,omitempty" yaml:"creator,omitempty"`
	CreatedAt  int64             `bson:"created_at,omitempty" yaml:"created_at,omitempty"` // unix millis
	Properties map[string]string `bson:"properties" yaml:"properties"`
	Ranks      map[string]string `bson:"ranks" yaml:"ranks"`
}

// Record snapshots the team's persisted state.
func (t *Team) Record() Record {
	r := Record{
		ID:         t.id.String(),
		Type:       t.typ.String(),
		PlayerName: t.playerName,
		Properties: make(map[string]string, len(t.props)+len(t.extra)),
		Ranks:      make(map[string]string, len(t.ranks)),
	}
	if t.owner != uuid.Nil {
		r.Owner = t.owner.String()
	}
	if t.creator != uuid.Nil {
		r.Creator = t.creator.String()
	}
	if !t.createdAt.IsZero() {
		r.CreatedAt = t.createdAt.UnixMilli()
	}
	for k, v := range t.extra {
		r.Properties[k] = v
	}
	for k, v := range t.props {
		p, _ := LookupProperty(k)
		r.Properties[k] = p.Format(v)
	}
	for p, rank := range t.ranks {
		r.Ranks[p.String()] = rank.String()
	}
	return r
}

// FromRecord rebuilds a clean (not dirty) team from its persisted form.
func FromRecord(r Record) (*Team, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("team id %q: %w", r.ID, err)
	}
	typ, err := ParseType(r.Type)
	if err != nil {
		return nil, err
	}

	t := New(id, typ)
	t.playerName = r.PlayerName
	if r.Owner != "" {
		if t.owner, err = uuid.Parse(r.Owner); err != nil {
			return nil, fmt.Errorf("owner %q: %w", r.Owner, err)
		}
	}
	if r.Creator != "" {
		if t.creator, err = uuid.Parse(r.Creator); err != nil {
			return nil, fmt.Errorf("creator %q: %w", r.Creator, err)
		}
	}
	if r.CreatedAt != 0 {
		t.createdAt = time.UnixMilli(r.CreatedAt).UTC()
	}

	for k, raw := range r.Properties {
		p, ok := LookupProperty(k)
		if !ok {
			t.extra[k] = raw
			continue
		}
		v, err := p.Parse(raw)
		if err != nil {
			return nil, err
		}
		t.props[k] = v
	}
	for k, raw := range r.Ranks {
		p, err := uuid.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", k, err)
		}
		rank, err := ParseRank(raw)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", k, err)
		}
		t.ranks[p] = rank
	}
	return t, nil
}
