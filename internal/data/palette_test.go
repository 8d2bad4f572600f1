package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
)

func TestLoadPalette(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "colors.yaml")
	is.NoErr(os.WriteFile(path, []byte(`
- name: Ember
  color: "#ff4500"
- name: moss
  color: "8a9a5b"
`), 0o644))

	p, err := LoadPalette(path)
	is.NoErr(err)
	is.Equal(p.Count(), 2)
	is.Equal(p.Names(), []string{"ember", "moss"})

	c, ok := p.Lookup("EMBER")
	is.True(ok)
	is.Equal(c, team.Color(0xff4500))

	got := p.Random()
	is.True(got == 0xff4500 || got == 0x8a9a5b)
}

func TestLoadPaletteMissingFile(t *testing.T) {
	is := is.New(t)
	p, err := LoadPalette(filepath.Join(t.TempDir(), "absent.yaml"))
	is.NoErr(err)
	is.Equal(p.Count(), DefaultPalette().Count())
}

func TestLoadPaletteRejectsBadColor(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "colors.yaml")
	is.NoErr(os.WriteFile(path, []byte("- name: x\n  color: blue\n"), 0o644))
	_, err := LoadPalette(path)
	is.True(err != nil)
}

func TestShippedPalette(t *testing.T) {
	is := is.New(t)
	p, err := LoadPalette("../../data/yaml/team_colors.yaml")
	is.NoErr(err)
	is.True(p.Count() > 0)
}
