package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
	"github.com/matryer/is"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		if err := os.MkdirAll(filepath.Join(dir, "hooks"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "hooks", "test.lua"), []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngineCallsHooks(t *testing.T) {
	is := is.New(t)
	e := newEngine(t, `
created = {}
moves = 0
function on_team_created(t)
  created[#created + 1] = t.type .. ":" .. t.name .. ":" .. #t.members
end
function on_membership_changed(player, from, to)
  moves = moves + 1
  last_from = from
  last_to = to.id
end
`)
	is.True(e.HasHandler("on_team_created"))
	is.True(!e.HasHandler("on_team_deleted"))

	owner := uuid.New()
	p := team.New(uuid.New(), team.TypeParty)
	p.SetDisplayName("Raiders")
	p.SetRank(owner, team.RankOwner)

	e.TeamCreated(p)
	e.TeamDeleted(p) // no handler, ignored
	e.MembershipChanged(owner, nil, p)

	created := e.vm.GetGlobal("created").(*lua.LTable)
	is.Equal(created.RawGetInt(1).String(), "party:Raiders:1")
	is.Equal(e.vm.GetGlobal("moves"), lua.LNumber(1))
	is.Equal(e.vm.GetGlobal("last_from"), lua.LNil)
	is.Equal(e.vm.GetGlobal("last_to").String(), p.ID().String())
}

func TestEngineScriptErrorIsContained(t *testing.T) {
	is := is.New(t)
	e := newEngine(t, `
function on_team_deleted(t)
  error("boom")
end
`)
	e.TeamDeleted(team.New(uuid.New(), team.TypeServer))
	is.NoErr(e.vm.DoString(`ok = true`))
}

func TestEngineWithoutScripts(t *testing.T) {
	is := is.New(t)
	e := newEngine(t, "")
	is.True(!e.HasHandler("on_team_created"))
	e.TeamCreated(team.New(uuid.New(), team.TypeParty))
}

func TestEngineRejectsBadScript(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	is.NoErr(os.MkdirAll(filepath.Join(dir, "hooks"), 0o755))
	is.NoErr(os.WriteFile(filepath.Join(dir, "hooks", "bad.lua"), []byte("function ("), 0o644))
	_, err := NewEngine(dir, zap.NewNop())
	is.True(err != nil)
}

func TestShippedHookScripts(t *testing.T) {
	is := is.New(t)
	e, err := NewEngine("../../scripts", zap.NewNop())
	is.NoErr(err)
	defer e.Close()
	is.Equal(e.Handlers(), []string{"on_team_created", "on_team_deleted", "on_membership_changed"})

	p := team.New(uuid.New(), team.TypeParty)
	p.SetRank(uuid.New(), team.RankOwner)
	e.TeamCreated(p)
	e.TeamDeleted(p)
	e.MembershipChanged(uuid.New(), team.New(uuid.New(), team.TypePlayer), p)
}
