package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/team"
)

// PGStore keeps the same documents as FileStore in PostgreSQL. Archived teams
// keep their row with deleted_at set.
type PGStore struct {
	db    *DB
	codec codec.Codec
}

func NewPGStore(db *DB, c codec.Codec) *PGStore {
	return &PGStore{db: db, codec: c}
}

// Prepare checks the database is reachable. The schema itself is created by
// RunMigrations at startup.
func (s *PGStore) Prepare(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *PGStore) ReadRegistry(ctx context.Context) (codec.RegistryDocument, bool, error) {
	var data []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT doc FROM team_registry WHERE singleton`).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return codec.RegistryDocument{}, false, nil
		}
		return codec.RegistryDocument{}, false, err
	}
	doc, err := codec.DecodeRegistry(s.codec, data)
	if err != nil {
		return codec.RegistryDocument{}, true, err
	}
	return doc, true, nil
}

// ReadLegacyID always reports not found; the legacy file predates the
// database layout.
func (s *PGStore) ReadLegacyID(_ context.Context) (string, bool, error) {
	return "", false, nil
}

func (s *PGStore) WriteRegistry(ctx context.Context, doc codec.RegistryDocument) error {
	data, err := codec.EncodeRegistry(s.codec, doc)
	if err != nil {
		return err
	}
	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO team_registry (singleton, doc) VALUES (TRUE, $1)
		 ON CONFLICT (singleton) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		data)
	return err
}

func (s *PGStore) LoadTeams(ctx context.Context, typ team.Type) ([]*team.Team, []Failure) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, doc FROM teams WHERE type = $1 AND deleted_at IS NULL ORDER BY id`,
		typ.String())
	if err != nil {
		return nil, []Failure{{Op: "load", Path: "teams/" + typ.String(), Err: err}}
	}
	defer rows.Close()

	var (
		teams    []*team.Team
		failures []Failure
	)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			failures = append(failures, Failure{Op: "load", Path: "teams/" + typ.String(), Err: err})
			continue
		}
		key := "teams/" + id
		t, err := codec.DecodeTeam(s.codec, data)
		if err != nil {
			failures = append(failures, Failure{Op: "load", Path: key, Err: err})
			continue
		}
		if t.ID().String() != id || t.Type() != typ {
			failures = append(failures, Failure{Op: "load", Path: key,
				Err: fmt.Errorf("%w: row key does not match document", codec.ErrCorrupt)})
			continue
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		failures = append(failures, Failure{Op: "load", Path: "teams/" + typ.String(), Err: err})
	}
	return teams, failures
}

func (s *PGStore) WriteTeam(ctx context.Context, t *team.Team) error {
	data, err := codec.EncodeTeam(s.codec, t)
	if err != nil {
		return err
	}
	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO teams (id, type, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET type = EXCLUDED.type, doc = EXCLUDED.doc, deleted_at = NULL, updated_at = now()`,
		t.ID().String(), t.Type().String(), data)
	return err
}

func (s *PGStore) Archive(ctx context.Context, typ team.Type, id uuid.UUID) error {
	// No live row means the team was never written; there is nothing to keep.
	_, err := s.db.Pool.Exec(ctx,
		`UPDATE teams SET deleted_at = now() WHERE id = $1 AND type = $2 AND deleted_at IS NULL`,
		id.String(), typ.String())
	if err != nil {
		return fmt.Errorf("archive %s: %w", id, err)
	}
	return nil
}
