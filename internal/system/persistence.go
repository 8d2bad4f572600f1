package system

import (
	"context"
	"time"

	"github.com/l1jgo/teams/internal/admin"
	coresys "github.com/l1jgo/teams/internal/core/system"
	"github.com/l1jgo/teams/internal/metrics"
	"github.com/l1jgo/teams/internal/registry"
	"github.com/l1jgo/teams/internal/team"
	"go.uber.org/zap"
)

// PersistenceSystem flushes dirty teams every N ticks and publishes a status
// snapshot every tick. Phase 2 (Persist).
type PersistenceSystem struct {
	teams     *registry.Registry
	board     *admin.Board
	log       *zap.Logger
	timeout   time.Duration
	tickCount int
	interval  int // flush every N ticks

	lastFlush    time.Time
	lastFailures int
}

func NewPersistenceSystem(teams *registry.Registry, board *admin.Board, log *zap.Logger, intervalTicks int, timeout time.Duration) *PersistenceSystem {
	return &PersistenceSystem{
		teams:    teams,
		board:    board,
		log:      log,
		timeout:  timeout,
		interval: intervalTicks,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount >= s.interval {
		s.tickCount = 0
		s.Flush()
		return
	}
	s.publish()
}

// Flush writes every dirty entity now. Called on the interval and once more
// at shutdown.
func (s *PersistenceSystem) Flush() registry.FlushReport {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	dirty := s.teams.DirtyCount()
	rep := s.teams.Flush(ctx)
	s.lastFlush = time.Now()
	s.lastFailures = len(rep.Failures)

	metrics.Flushes.Inc()
	metrics.FlushFailures.Add(float64(len(rep.Failures)))
	if dirty > 0 {
		s.log.Debug("teams flushed",
			zap.Int("dirty", dirty),
			zap.Int("written", rep.TeamsWritten),
			zap.Int("archived", rep.TeamsArchived),
			zap.Bool("registry", rep.RegistryWritten),
			zap.Int("failures", len(rep.Failures)),
		)
	}
	s.publish()
	return rep
}

func (s *PersistenceSystem) publish() {
	st := admin.Status{
		Teams:             make(map[string]int, 3),
		KnownPlayers:      s.teams.KnownCount(),
		Dirty:             s.teams.DirtyCount(),
		LastFlush:         s.lastFlush,
		LastFlushFailures: s.lastFailures,
	}
	for _, typ := range team.Types() {
		n := s.teams.TeamCount(typ)
		st.Teams[typ.String()] = n
		metrics.Teams.WithLabelValues(typ.String()).Set(float64(n))
	}
	st.Healthy = st.LastFlushFailures == 0 || st.Dirty == 0
	metrics.KnownPlayers.Set(float64(st.KnownPlayers))
	metrics.DirtyEntities.Set(float64(st.Dirty))
	s.board.Publish(st)
}
