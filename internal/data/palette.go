package data

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/l1jgo/teams/internal/team"
	"gopkg.in/yaml.v3"
)

// PaletteEntry is one named color of team_colors.yaml.
type PaletteEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Palette is the set of colors new teams are randomly assigned from.
type Palette struct {
	names  []string
	colors []team.Color
	byName map[string]team.Color
}

// defaultPalette mirrors the sixteen classic chat colors minus black.
var defaultPalette = []PaletteEntry{
	{Name: "dark_blue", Color: "#0000aa"},
	{Name: "dark_green", Color: "#00aa00"},
	{Name: "dark_aqua", Color: "#00aaaa"},
	{Name: "dark_red", Color: "#aa0000"},
	{Name: "dark_purple", Color: "#aa00aa"},
	{Name: "gold", Color: "#ffaa00"},
	{Name: "gray", Color: "#aaaaaa"},
	{Name: "dark_gray", Color: "#555555"},
	{Name: "blue", Color: "#5555ff"},
	{Name: "green", Color: "#55ff55"},
	{Name: "aqua", Color: "#55ffff"},
	{Name: "red", Color: "#ff5555"},
	{Name: "light_purple", Color: "#ff55ff"},
	{Name: "yellow", Color: "#ffff55"},
	{Name: "white", Color: "#ffffff"},
}

// LoadPalette loads team_colors.yaml. A missing file yields the built-in
// palette.
func LoadPalette(path string) (*Palette, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPalette(), nil
		}
		return nil, fmt.Errorf("read palette: %w", err)
	}
	var entries []PaletteEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("palette %s has no colors", path)
	}
	return newPalette(entries)
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	p, err := newPalette(defaultPalette)
	if err != nil {
		panic(err) // built-in table is static
	}
	return p
}

func newPalette(entries []PaletteEntry) (*Palette, error) {
	p := &Palette{
		names:  make([]string, 0, len(entries)),
		colors: make([]team.Color, 0, len(entries)),
		byName: make(map[string]team.Color, len(entries)),
	}
	for _, e := range entries {
		c, err := team.ParseColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: %w", e.Name, err)
		}
		name := strings.ToLower(e.Name)
		p.names = append(p.names, name)
		p.colors = append(p.colors, c)
		p.byName[name] = c
	}
	return p, nil
}

// Random picks a palette color.
func (p *Palette) Random() team.Color {
	return p.colors[rand.Intn(len(p.colors))]
}

// Lookup resolves a color by palette name (case-insensitive).
func (p *Palette) Lookup(name string) (team.Color, bool) {
	c, ok := p.byName[strings.ToLower(name)]
	return c, ok
}

// Names lists palette names in file order.
func (p *Palette) Names() []string {
	return p.names
}

// Count returns the number of colors loaded.
func (p *Palette) Count() int {
	return len(p.colors)
}
