package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/team"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM that receives registry hooks.
// Single-goroutine access only (game loop).
//
// Scripts may define any of these globals:
//
//	on_team_created(team)
//	on_team_deleted(team)
//	on_membership_changed(player, from, to)   -- from is nil on first login
//
// team tables carry id, type, name, owner, color and members.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under
// <scriptsDir>/hooks. A missing directory yields an engine with no handlers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLog))

	if err := e.loadDir(filepath.Join(scriptsDir, "hooks")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load hook scripts: %w", err)
	}
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasHandler reports whether the script defines the named global function.
func (e *Engine) HasHandler(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) TeamCreated(t *team.Team) {
	e.call("on_team_created", e.teamTable(t))
}

func (e *Engine) TeamDeleted(t *team.Team) {
	e.call("on_team_deleted", e.teamTable(t))
}

func (e *Engine) MembershipChanged(player uuid.UUID, from, to *team.Team) {
	var fromV lua.LValue = lua.LNil
	if from != nil {
		fromV = e.teamTable(from)
	}
	e.call("on_membership_changed", lua.LString(player.String()), fromV, e.teamTable(to))
}

// Handlers lists the hook functions the loaded scripts define.
func (e *Engine) Handlers() []string {
	var out []string
	for _, name := range hookNames {
		if e.HasHandler(name) {
			out = append(out, name)
		}
	}
	return out
}

var hookNames = []string{"on_team_created", "on_team_deleted", "on_membership_changed"}

// call invokes an optional global. Script errors are logged and never reach
// the registry.
func (e *Engine) call(name string, args ...lua.LValue) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
	}
}

func (e *Engine) teamTable(t *team.Team) *lua.LTable {
	tbl := e.vm.NewTable()
	tbl.RawSetString("id", lua.LString(t.ID().String()))
	tbl.RawSetString("type", lua.LString(t.Type().String()))
	tbl.RawSetString("name", lua.LString(t.DisplayName()))
	tbl.RawSetString("color", lua.LString(t.Color().String()))
	if owner, ok := t.OwnerMember(); ok {
		tbl.RawSetString("owner", lua.LString(owner.String()))
	}
	members := e.vm.NewTable()
	for _, m := range t.Members() {
		members.Append(lua.LString(m.String()))
	}
	tbl.RawSetString("members", members)
	return tbl
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
