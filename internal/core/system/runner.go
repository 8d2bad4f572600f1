package system

import "time"

// Runner executes systems phase by phase each tick. Systems in the same phase
// keep their registration order.
type Runner struct {
	phases [phaseCount][]System
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to its phase. It panics on a phase outside the known set.
func (r *Runner) Register(s System) {
	p := s.Phase()
	if p < 0 || p >= phaseCount {
		panic("system: unknown phase")
	}
	r.phases[p] = append(r.phases[p], s)
}

func (r *Runner) Tick(dt time.Duration) {
	for p := range r.phases {
		r.TickPhase(Phase(p), dt)
	}
}

// TickPhase runs only the systems of one phase. The host uses it to drain
// commands once more on shutdown.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.phases[phase] {
		s.Update(dt)
	}
}

// Len returns the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, ss := range r.phases {
		n += len(ss)
	}
	return n
}
