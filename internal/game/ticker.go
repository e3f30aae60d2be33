package game

import "time"

// ticker decides when the next simulator tick is due. Each tick receives the
// wall time since the previous one, so a slow frame yields a longer step.
type ticker struct {
	period time.Duration
	last   time.Time
	paused bool
}

// due reports whether a tick should fire at now and, if so, how much wall
// time it covers. The first call only starts the clock.
func (t *ticker) due(now time.Time) (time.Duration, bool) {
	if t.paused {
		return 0, false
	}
	if t.last.IsZero() {
		t.last = now
		return 0, false
	}
	elapsed := now.Sub(t.last)
	if elapsed < t.period {
		return 0, false
	}
	t.last = now
	return elapsed, true
}

// setPaused stops or resumes ticking. Time spent paused is not handed to the
// simulator.
func (t *ticker) setPaused(p bool) {
	t.paused = p
	t.last = time.Time{}
}
