package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/team"
)

// ArchiveDir holds documents of deleted teams.
const ArchiveDir = "deleted"

// FileStore keeps one document per team on disk:
//
//	<root>/registry.<ext>
//	<root>/<type>/<id>.<ext>
//	<root>/deleted/<id>.<ext>
//
// The directory tree is owned by a single process.
type FileStore struct {
	root   string
	legacy string // historical {"id": ...} JSON file, may be empty
	codec  codec.Codec
}

func NewFileStore(root, legacyPath string, c codec.Codec) *FileStore {
	return &FileStore{root: root, legacy: legacyPath, codec: c}
}

func (s *FileStore) Root() string { return s.root }

func (s *FileStore) RegistryPath() string {
	return filepath.Join(s.root, "registry."+s.codec.Ext())
}

func (s *FileStore) TeamPath(typ team.Type, id uuid.UUID) string {
	return filepath.Join(s.root, typ.String(), id.String()+"."+s.codec.Ext())
}

func (s *FileStore) ArchivePath(id uuid.UUID) string {
	return filepath.Join(s.root, ArchiveDir, id.String()+"."+s.codec.Ext())
}

func (s *FileStore) Prepare(_ context.Context) error {
	for _, typ := range team.Types() {
		dir := filepath.Join(s.root, typ.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (s *FileStore) ReadRegistry(_ context.Context) (codec.RegistryDocument, bool, error) {
	data, err := os.ReadFile(s.RegistryPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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

func (s *FileStore) ReadLegacyID(_ context.Context) (string, bool, error) {
	if s.legacy == "" {
		return "", false, nil
	}
	data, err := os.ReadFile(s.legacy)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", true, fmt.Errorf("%w: %v", codec.ErrCorrupt, err)
	}
	return doc.ID, true, nil
}

func (s *FileStore) WriteRegistry(_ context.Context, doc codec.RegistryDocument) error {
	data, err := codec.EncodeRegistry(s.codec, doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.RegistryPath(), data)
}

func (s *FileStore) LoadTeams(ctx context.Context, typ team.Type) ([]*team.Team, []Failure) {
	dir := filepath.Join(s.root, typ.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // nothing saved yet
		}
		return nil, []Failure{{Op: "load", Path: dir, Err: err}}
	}

	ext := "." + s.codec.Ext()
	var (
		teams    []*team.Team
		failures []Failure
	)
	for _, entry := range entries {
		if ctx.Err() != nil {
			failures = append(failures, Failure{Op: "load", Path: dir, Err: ctx.Err()})
			break
		}
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext {
			continue
		}
		path := filepath.Join(dir, name)
		t, err := s.readTeam(path, typ, strings.TrimSuffix(name, ext))
		if err != nil {
			failures = append(failures, Failure{Op: "load", Path: path, Err: err})
			continue
		}
		teams = append(teams, t)
	}
	return teams, failures
}

func (s *FileStore) readTeam(path string, typ team.Type, fileID string) (*team.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := codec.DecodeTeam(s.codec, data)
	if err != nil {
		return nil, err
	}
	if t.Type() != typ {
		return nil, fmt.Errorf("%w: %s team stored under %s", codec.ErrCorrupt, t.Type(), typ)
	}
	if t.ID().String() != fileID {
		return nil, fmt.Errorf("%w: document id %s does not match file name", codec.ErrCorrupt, t.ID())
	}
	return t, nil
}

func (s *FileStore) WriteTeam(_ context.Context, t *team.Team) error {
	data, err := codec.EncodeTeam(s.codec, t)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.TeamPath(t.Type(), t.ID()), data)
}

func (s *FileStore) Archive(_ context.Context, typ team.Type, id uuid.UUID) error {
	dst := s.ArchivePath(id)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	if err := os.Rename(s.TeamPath(typ, id), dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // never written, nothing to keep
		}
		return fmt.Errorf("archive %s: %w", id, err)
	}
	return nil
}

// writeFileAtomic replaces path so readers never observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
