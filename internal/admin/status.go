package admin

import (
	"sync/atomic"
	"time"
)

// Status is a snapshot of the registry published by the game loop.
type Status struct {
	Server            string         `json:"server"`
	StartedAt         time.Time      `json:"started_at"`
	Teams             map[string]int `json:"teams"`
	KnownPlayers      int            `json:"known_players"`
	Dirty             int            `json:"dirty"`
	LastFlush         time.Time      `json:"last_flush,omitempty"`
	LastFlushFailures int            `json:"last_flush_failures"`
	Healthy           bool           `json:"healthy"`
}

// Board holds the latest Status. Publish is called from the game loop, Load
// from HTTP goroutines. Server and StartedAt are stamped on every snapshot
// and must not change after the loop starts.
type Board struct {
	Server    string
	StartedAt time.Time

	cur atomic.Pointer[Status]
}

func (b *Board) Publish(s Status) {
	s.Server, s.StartedAt = b.Server, b.StartedAt
	b.cur.Store(&s)
}

// Load returns the latest status, or a healthy empty one before the first
// publish.
func (b *Board) Load() Status {
	if s := b.cur.Load(); s != nil {
		return *s
	}
	return Status{Server: b.Server, StartedAt: b.StartedAt, Teams: map[string]int{}, Healthy: true}
}
