// Package command parses and dispatches text commands against the team
// registry. Everything here runs on the game loop goroutine.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/team"
	"go.uber.org/zap"
)

// Level is the permission level of the caller.
type Level int

const (
	LevelPlayer Level = iota
	LevelAdmin
)

func (l Level) String() string {
	switch l {
	case LevelPlayer:
		return "player"
	case LevelAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrPermission     = errors.New("permission denied")
	ErrNeedsPlayer    = errors.New("command must be run as a player")
	ErrUsage          = errors.New("usage")
)

// ColorNames resolves named colors for `team set <team> color <name>`.
type ColorNames interface {
	Lookup(name string) (team.Color, bool)
	Names() []string
}

// Deps is what handlers may touch. Colors may be nil.
type Deps struct {
	Registry *registry.Registry
	Colors   ColorNames
	Log      *zap.Logger
}

// Context is handed to a handler for a single invocation.
type Context struct {
	Ctx   context.Context
	Actor uuid.UUID // uuid.Nil when run from the console without @player
	Level Level
	Args  []string
	Deps  *Deps

	out []string
}

// Reply appends one line to the response.
func (c *Context) Reply(format string, a ...any) {
	c.out = append(c.out, fmt.Sprintf(format, a...))
}

func (c *Context) usage(u string) error {
	return fmt.Errorf("%w: %s", ErrUsage, u)
}

// HandlerFunc executes one command. A returned error is shown to the caller.
type HandlerFunc func(c *Context) error

type entry struct {
	fn          HandlerFunc
	level       Level
	needsPlayer bool
	usage       string
}

// Registry maps command paths ("party create", "flush") to handlers with
// level-based access control.
type Registry struct {
	handlers map[string]*entry
	deps     *Deps
	log      *zap.Logger
}

func NewRegistry(deps *Deps) *Registry {
	return &Registry{
		handlers: make(map[string]*entry),
		deps:     deps,
		log:      deps.Log,
	}
}

// Register maps a command path to a handler.
func (reg *Registry) Register(path string, level Level, needsPlayer bool, usage string, fn HandlerFunc) {
	reg.handlers[path] = &entry{fn: fn, level: level, needsPlayer: needsPlayer, usage: usage}
}

// Usage lists every command available at level, sorted.
func (reg *Registry) Usage(level Level) []string {
	var out []string
	for _, e := range reg.handlers {
		if e.level <= level {
			out = append(out, e.usage)
		}
	}
	sort.Strings(out)
	return out
}

// Result is the outcome of one command line.
type Result struct {
	Lines []string `json:"lines,omitempty"`
	Error string   `json:"error,omitempty"`
	err   error
}

// Err returns the underlying error, if any.
func (r Result) Err() error { return r.err }

// Dispatch splits line, resolves the command path and runs the handler.
// A handler panic is recovered and reported as an error.
func (reg *Registry) Dispatch(ctx context.Context, actor uuid.UUID, level Level, line string) Result {
	args, err := shlex.Split(line, true)
	if err != nil {
		return failed(fmt.Errorf("%w: %v", ErrUsage, err))
	}
	if len(args) == 0 {
		return Result{}
	}

	path, rest := reg.resolve(args)
	e, ok := reg.handlers[path]
	if !ok {
		return failed(fmt.Errorf("%w: %s", ErrUnknownCommand, args[0]))
	}
	if level < e.level {
		reg.log.Warn("command not allowed at this level",
			zap.String("command", path),
			zap.String("level", level.String()),
		)
		return failed(fmt.Errorf("%w: %s", ErrPermission, path))
	}
	if e.needsPlayer && actor == uuid.Nil {
		return failed(fmt.Errorf("%w: %s", ErrNeedsPlayer, path))
	}

	c := &Context{Ctx: ctx, Actor: actor, Level: level, Args: rest, Deps: reg.deps}
	if err := reg.safeCall(e.fn, c, path); err != nil {
		if errors.Is(err, ErrUsage) {
			err = fmt.Errorf("%w: %s", ErrUsage, e.usage)
		}
		return Result{Lines: c.out, Error: Message(err), err: err}
	}
	return Result{Lines: c.out}
}

// resolve prefers a two-word path ("team info") over a single word.
func (reg *Registry) resolve(args []string) (string, []string) {
	if len(args) >= 2 {
		p := strings.ToLower(args[0]) + " " + strings.ToLower(args[1])
		if _, ok := reg.handlers[p]; ok {
			return p, args[2:]
		}
	}
	return strings.ToLower(args[0]), args[1:]
}

// safeCall executes a handler with panic recovery so a single bad command
// cannot crash the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, c *Context, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("command panic recovered",
				zap.String("command", path),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("command %s panicked: %v", path, rec)
		}
	}()
	return fn(c)
}

func failed(err error) Result {
	return Result{Error: Message(err), err: err}
}

// Message turns an error into the text shown to the caller.
func Message(err error) string {
	switch {
	case errors.Is(err, registry.ErrAlreadyInParty):
		return "You are already in a party: leave it first."
	case errors.Is(err, registry.ErrNotInParty):
		return "You are not in a party."
	case errors.Is(err, registry.ErrTeamNotFound):
		return "No such team."
	case errors.Is(err, registry.ErrPlayerNotFound):
		return "No such player."
	case errors.Is(err, registry.ErrNotMember):
		return "That player is not a member of the team."
	}
	return err.Error()
}
