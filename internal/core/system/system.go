package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseCommand Phase = iota // 0: drain queued console/admin commands
	PhaseEvents               // 1: deliver last tick's events
	PhasePersist              // 2: periodic flush of dirty teams

	phaseCount
)

// System is one unit of per-tick work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
