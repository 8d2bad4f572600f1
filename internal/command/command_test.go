package command

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/codec"
	"github.com/l1jgo/teams/internal/data"
	"github.com/l1jgo/teams/internal/persist"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
	"go.uber.org/zap"
)

type harness struct {
	teams *registry.Registry
	cmds  *Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := persist.NewFileStore(filepath.Join(t.TempDir(), "teams"), "", codec.YAML{})
	teams := registry.New(registry.Options{Store: store, Log: zap.NewNop()})
	teams.Load(context.Background())
	cmds := NewRegistry(&Deps{Registry: teams, Colors: data.DefaultPalette(), Log: zap.NewNop()})
	RegisterBuiltins(cmds)
	return &harness{teams: teams, cmds: cmds}
}

func (h *harness) admin(line string) Result {
	return h.cmds.Dispatch(context.Background(), uuid.Nil, LevelAdmin, line)
}

func (h *harness) as(p uuid.UUID, level Level, line string) Result {
	return h.cmds.Dispatch(context.Background(), p, level, line)
}

func (h *harness) login(t *testing.T, name string) uuid.UUID {
	t.Helper()
	p := uuid.New()
	if res := h.admin("login " + p.String() + " " + name); res.Err() != nil {
		t.Fatal(res.Err())
	}
	return p
}

func TestLogin(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	p := uuid.New()

	res := h.admin("login " + p.String() + " alice")
	is.NoErr(res.Err())
	is.Equal(res.Lines, []string{"Registered alice."})

	res = h.admin("login " + p.String() + " alice")
	is.Equal(res.Lines, []string{"Welcome back, alice."})

	res = h.admin("login not-a-uuid bob")
	is.True(errors.Is(res.Err(), registry.ErrInvalidValue))

	res = h.as(p, LevelPlayer, "login "+uuid.NewString()+" eve")
	is.True(errors.Is(res.Err(), ErrPermission))
}

func TestPartyLifecycle(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	a, b := h.login(t, "alice"), h.login(t, "bob")

	res := h.as(a, LevelPlayer, `party create "Night Watch"`)
	is.NoErr(res.Err())
	party, err := h.teams.TeamByName("night watch")
	is.NoErr(err)

	// invite only until free_to_join is set
	res = h.as(b, LevelPlayer, "party join "+party.StringID())
	is.True(errors.Is(res.Err(), ErrPermission))

	res = h.as(a, LevelPlayer, "team set "+party.StringID()+" free_to_join true")
	is.NoErr(res.Err())
	res = h.as(b, LevelPlayer, "party join "+party.StringID())
	is.NoErr(res.Err())
	is.True(h.teams.SameTeam(a, b))

	// members cannot edit, officers can
	res = h.as(b, LevelPlayer, "team set "+party.ID().String()+" description hi")
	is.True(errors.Is(res.Err(), ErrPermission))
	res = h.as(a, LevelPlayer, "team rank "+party.ID().String()+" bob officer")
	is.NoErr(res.Err())
	res = h.as(b, LevelPlayer, "team set "+party.ID().String()+" description night shift")
	is.NoErr(res.Err())
	is.Equal(party.Description(), "night shift")

	res = h.as(a, LevelPlayer, "party create Other")
	is.Equal(res.Error, "You are already in a party: leave it first.")

	is.NoErr(h.as(a, LevelPlayer, "party leave").Err())
	is.NoErr(h.as(b, LevelPlayer, "party leave").Err())
	_, err = h.teams.Team(party.ID())
	is.True(errors.Is(err, registry.ErrTeamNotFound))

	res = h.as(b, LevelPlayer, "party leave")
	is.Equal(res.Error, "You are not in a party.")
}

func TestServerTeams(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	a := h.login(t, "alice")

	res := h.as(a, LevelPlayer, "server create Reds")
	is.True(errors.Is(res.Err(), ErrPermission))

	res = h.admin("server create Reds")
	is.True(errors.Is(res.Err(), ErrNeedsPlayer))

	res = h.as(a, LevelAdmin, "server create Reds")
	is.NoErr(res.Err())
	is.Equal(h.teams.TeamCount(team.TypeServer), 1)

	res = h.admin("server delete " + a.String())
	is.True(errors.Is(res.Err(), registry.ErrInvalidType))

	res = h.admin("server delete reds")
	is.NoErr(res.Err())
	is.Equal(h.teams.TeamCount(team.TypeServer), 0)
	is.Equal(h.teams.EffectiveTeamID(a), a)
}

func TestTeamInfoAndList(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	a := h.login(t, "alice")
	h.login(t, "bob")

	res := h.as(a, LevelPlayer, "team info")
	is.NoErr(res.Err())
	is.True(strings.HasPrefix(res.Lines[0], "alice [player]"))
	is.True(strings.Contains(res.Lines[len(res.Lines)-1], "alice"))

	res = h.admin("team info")
	is.True(errors.Is(res.Err(), ErrNeedsPlayer))

	res = h.admin("team list player")
	is.NoErr(res.Err())
	is.Equal(res.Lines[len(res.Lines)-1], "2 teams")

	res = h.admin("team list party")
	is.Equal(res.Lines, []string{"0 teams"})

	res = h.admin("team list clan")
	is.True(errors.Is(res.Err(), registry.ErrInvalidValue))
}

func TestDispatchErrors(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)

	is.True(errors.Is(h.admin("dance").Err(), ErrUnknownCommand))
	is.True(errors.Is(h.admin(`party create "unclosed`).Err(), ErrUsage))
	is.True(errors.Is(h.admin("team rank x").Err(), ErrUsage))
	is.True(errors.Is(h.admin("party leave").Err(), ErrNeedsPlayer))
	is.Equal(h.admin("   "), Result{})

	res := h.admin("team info nobody")
	is.Equal(res.Error, "No such team.")
}

func TestDispatchRecoversPanic(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	h.cmds.Register("explode", LevelPlayer, false, "explode", func(*Context) error {
		panic("kaboom")
	})
	res := h.admin("explode")
	is.True(res.Err() != nil)
	is.True(strings.Contains(res.Error, "kaboom"))
}

func TestFlushCommand(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	h.login(t, "alice")

	res := h.admin("flush")
	is.NoErr(res.Err())
	is.Equal(res.Lines, []string{"Flushed 1 teams (registry written: true)."})
	is.Equal(h.teams.DirtyCount(), 0)
}

func TestHelpListsByLevel(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	player := len(h.cmds.Usage(LevelPlayer))
	admin := len(h.cmds.Usage(LevelAdmin))
	is.True(admin > player)

	res := h.as(uuid.Nil, LevelPlayer, "help")
	is.Equal(len(res.Lines), player)
}

func TestTeamSetColorsAndKeys(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	a := h.login(t, "alice")
	own := a.String()

	res := h.as(a, LevelPlayer, "team set "+own+" color Gold")
	is.NoErr(res.Err())
	own2, err := h.teams.PlayerTeam(a)
	is.NoErr(err)
	is.Equal(own2.Color().String(), "#ffaa00")

	is.NoErr(h.as(a, LevelPlayer, "team set "+own+" color #123456").Err())
	is.Equal(own2.Color().String(), "#123456")

	res = h.as(a, LevelPlayer, "team set "+own+" color mauve")
	is.True(errors.Is(res.Err(), registry.ErrInvalidValue))

	res = h.as(a, LevelPlayer, "team set "+own+" motto onward")
	is.True(errors.Is(res.Err(), registry.ErrInvalidValue))
	is.True(strings.Contains(res.Err().Error(), "display_name, description, color, free_to_join"))

	res = h.as(a, LevelPlayer, "team colors")
	is.NoErr(res.Err())
	is.Equal(len(res.Lines), data.DefaultPalette().Count())
	is.True(strings.Contains(res.Lines[0], "dark_blue"))
}

func TestPlayersCannotJoinServerTeams(t *testing.T) {
	is := is.New(t)
	h := newHarness(t)
	a, b := h.login(t, "alice"), h.login(t, "bob")

	is.NoErr(h.as(a, LevelAdmin, "server create Reds").Err())
	srv, err := h.teams.TeamByName("reds")
	is.NoErr(err)
	is.NoErr(h.admin("team set reds free_to_join true").Err())

	res := h.as(b, LevelPlayer, "party join reds")
	is.True(errors.Is(res.Err(), ErrPermission))
	is.True(!srv.IsMember(b))

	is.NoErr(h.as(b, LevelAdmin, "party join reds").Err())
	is.True(srv.IsMember(b))
}
