package persist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	root := t.TempDir()
	s := NewFileStore(filepath.Join(root, "teams"), filepath.Join(root, "info.json"), codec.BSON{})
	if err := s.Prepare(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFileStoreWriteAndLoad(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	a := team.New(uuid.New(), team.TypeParty)
	a.SetDisplayName("A")
	b := team.New(uuid.New(), team.TypeParty)
	b.SetDisplayName("B")
	is.NoErr(s.WriteTeam(ctx, a))
	is.NoErr(s.WriteTeam(ctx, b))

	loaded, failures := s.LoadTeams(ctx, team.TypeParty)
	is.Equal(len(failures), 0)
	is.Equal(len(loaded), 2)

	none, failures := s.LoadTeams(ctx, team.TypeServer)
	is.Equal(len(failures), 0)
	is.Equal(len(none), 0)
}

func TestFileStoreSkipsCorrupt(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 2; i++ {
		is.NoErr(s.WriteTeam(ctx, team.New(uuid.New(), team.TypeServer)))
	}
	bad := s.TeamPath(team.TypeServer, uuid.New())
	is.NoErr(os.WriteFile(bad, []byte("not bson"), 0o644))
	// leftovers of an interrupted write are ignored
	is.NoErr(os.WriteFile(bad+".123.tmp", []byte("partial"), 0o644))

	loaded, failures := s.LoadTeams(ctx, team.TypeServer)
	is.Equal(len(loaded), 2)
	is.Equal(len(failures), 1)
	is.Equal(failures[0].Path, bad)
	is.True(errors.Is(failures[0], codec.ErrCorrupt))
}

func TestFileStoreRejectsMisplacedDocument(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	p := team.New(uuid.New(), team.TypeParty)
	data, err := codec.EncodeTeam(codec.BSON{}, p)
	is.NoErr(err)
	// party document stored under server/
	is.NoErr(os.WriteFile(s.TeamPath(team.TypeServer, p.ID()), data, 0o644))
	// party document under another id
	is.NoErr(os.WriteFile(s.TeamPath(team.TypeParty, uuid.New()), data, 0o644))

	_, failures := s.LoadTeams(ctx, team.TypeServer)
	is.Equal(len(failures), 1)
	_, failures = s.LoadTeams(ctx, team.TypeParty)
	is.Equal(len(failures), 1)
}

func TestFileStoreArchive(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	p := team.New(uuid.New(), team.TypeParty)
	is.NoErr(s.WriteTeam(ctx, p))
	is.NoErr(s.Archive(ctx, team.TypeParty, p.ID()))

	_, err := os.Stat(s.TeamPath(team.TypeParty, p.ID()))
	is.True(errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(s.ArchivePath(p.ID()))
	is.NoErr(err)

	is.NoErr(s.Archive(ctx, team.TypeParty, p.ID())) // already archived
	is.NoErr(s.Archive(ctx, team.TypeParty, uuid.New())) // never written
}

func TestFileStoreRegistryDocument(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	_, found, err := s.ReadRegistry(ctx)
	is.NoErr(err)
	is.True(!found)

	doc := codec.RegistryDocument{ID: uuid.NewString()}
	is.NoErr(s.WriteRegistry(ctx, doc))
	got, found, err := s.ReadRegistry(ctx)
	is.NoErr(err)
	is.True(found)
	is.Equal(got, doc)
}

func TestFileStoreLegacyID(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := newTestStore(t)

	_, found, err := s.ReadLegacyID(ctx)
	is.NoErr(err)
	is.True(!found)

	id := uuid.NewString()
	is.NoErr(os.WriteFile(s.legacy, []byte(`{"id":"`+id+`"}`), 0o644))
	got, found, err := s.ReadLegacyID(ctx)
	is.NoErr(err)
	is.True(found)
	is.Equal(got, id)

	is.NoErr(os.WriteFile(s.legacy, []byte(`{`), 0o644))
	_, _, err = s.ReadLegacyID(ctx)
	is.True(errors.Is(err, codec.ErrCorrupt))
}
