package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/team"
)

// Store reads and writes registry and team documents. Implementations never
// abort a batch on a single bad document: LoadTeams returns what it could read
// together with one Failure per skipped item.
type Store interface {
	// Prepare creates whatever layout later writes need (directories, tables).
	Prepare(ctx context.Context) error
	// ReadRegistry returns the registry document; found is false if none exists.
	ReadRegistry(ctx context.Context) (doc codec.RegistryDocument, found bool, err error)
	// ReadLegacyID reads the registry id from the historical single-field
	// document, if the store knows of one.
	ReadLegacyID(ctx context.Context) (id string, found bool, err error)
	WriteRegistry(ctx context.Context, doc codec.RegistryDocument) error
	LoadTeams(ctx context.Context, typ team.Type) ([]*team.Team, []Failure)
	WriteTeam(ctx context.Context, t *team.Team) error
	// Archive moves a team's document out of the live set. Data is kept.
	Archive(ctx context.Context, typ team.Type, id uuid.UUID) error
}

// Failure describes one document that could not be read, written or archived.
type Failure struct {
	Op   string // "load", "write", "archive"
	Path string // file path or table key
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }
