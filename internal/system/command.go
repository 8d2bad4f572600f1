package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/l1jgo/teams/internal/command"
	coresys "github.com/l1jgo/teams/internal/core/system"
	"github.com/l1jgo/teams/internal/metrics"
	"github.com/l1jgo/teams/internal/registry"
	"go.uber.org/zap"
)

// CommandSystem drains queued command requests and dispatches them through
// the command registry. Phase 0 (Command).
type CommandSystem struct {
	queue      *command.Queue
	commands   *command.Registry
	teams      *registry.Registry
	maxPerTick int
	timeout    time.Duration
	log        *zap.Logger
}

func NewCommandSystem(queue *command.Queue, commands *command.Registry, teams *registry.Registry, maxPerTick int, timeout time.Duration, log *zap.Logger) *CommandSystem {
	return &CommandSystem{
		queue:      queue,
		commands:   commands,
		teams:      teams,
		maxPerTick: maxPerTick,
		timeout:    timeout,
		log:        log,
	}
}

func (s *CommandSystem) Phase() coresys.Phase { return coresys.PhaseCommand }

func (s *CommandSystem) Update(_ time.Duration) {
	for n := 0; s.maxPerTick <= 0 || n < s.maxPerTick; n++ {
		select {
		case req := <-s.queue.Requests():
			s.handle(req)
		default:
			return
		}
	}
}

func (s *CommandSystem) handle(req command.Request) {
	res := s.run(req)
	if res.Error != "" {
		metrics.Commands.WithLabelValues("error").Inc()
		s.log.Debug("command failed", zap.String("actor", req.Actor), zap.String("line", req.Line), zap.Error(res.Err()))
	} else {
		metrics.Commands.WithLabelValues("ok").Inc()
	}
	if req.Reply != nil {
		req.Reply(res)
	}
}

func (s *CommandSystem) run(req command.Request) command.Result {
	actor := uuid.Nil
	if req.Actor != "" {
		p, err := s.teams.PlayerByName(req.Actor)
		if err != nil {
			return command.Result{Error: command.Message(err)}
		}
		actor = p
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.commands.Dispatch(ctx, actor, req.Level, req.Line)
}
