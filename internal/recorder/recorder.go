// Package recorder turns simulator output into recording rows and fans them
// out to storage backends. Backend failures are logged and never stop the
// simulation.
package recorder

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/model"
	"github.com/Garsondee/Drone-Fleet/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Recorder is a fleet.EventSink that also receives tick reports.
type Recorder struct {
	backends    []storage.Backend
	log         zerolog.Logger
	sampleEvery int
	now         func() time.Time

	mu      sync.Mutex
	session *model.Session
	failed  map[int]bool // backend index → already reported a write error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSampleEvery records drone states on every n-th tick.
func WithSampleEvery(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.sampleEvery = n
		}
	}
}

// WithClock sets the timestamp source for recorded rows.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a recorder. Nil backends are skipped.
func New(log zerolog.Logger, backends []storage.Backend, opts ...Option) *Recorder {
	r := &Recorder{log: log, sampleEvery: 1, now: time.Now, failed: map[int]bool{}}
	for _, b := range backends {
		if b != nil {
			r.backends = append(r.backends, b)
		}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Enabled reports whether anything is recorded at all.
func (r *Recorder) Enabled() bool { return len(r.backends) > 0 }

// Init initialises every backend. Backends that fail are dropped.
func (r *Recorder) Init() {
	kept := r.backends[:0]
	for _, b := range r.backends {
		if err := b.Init(); err != nil {
			r.log.Error().Err(err).Msgf("Storage backend %T disabled", b)
			continue
		}
		kept = append(kept, b)
	}
	r.backends = kept
}

// Start opens a new session and returns its id. scenario is stored as JSON
// alongside the session.
func (r *Recorder) Start(name string, scenario any, tickPeriod time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.Marshal(scenario)
	if err != nil {
		return "", err
	}
	r.session = &model.Session{
		ID:           uuid.NewString(),
		ScenarioName: name,
		StartTime:    r.now(),
		TickPeriodMs: float64(tickPeriod) / float64(time.Millisecond),
		Scenario:     datatypes.JSON(raw),
	}
	r.failed = map[int]bool{}
	r.each("start session", func(b storage.Backend) error { return b.StartSession(r.session) })
	r.log.Info().Str("session", r.session.ID).Str("scenario", name).Int("backends", len(r.backends)).
		Msg("Recording started")
	return r.session.ID, nil
}

// SessionID returns the id of the open session, or "".
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ""
	}
	return r.session.ID
}

// Record implements fleet.EventSink.
func (r *Recorder) Record(e fleet.FlightEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return
	}
	row := model.NewFlightEvent(r.session.ID, r.now(), e)
	r.each("record event", func(b storage.Backend) error { return b.RecordEvent(row) })
}

// OnTick records the tick and, every sampleEvery ticks, each drone's state.
func (r *Recorder) OnTick(rep fleet.TickReport, snap fleet.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return
	}
	at := r.now()
	r.session.Ticks = rep.Tick

	stat := model.NewTickStat(r.session.ID, at, rep)
	r.each("record tick", func(b storage.Backend) error { return b.RecordTick(stat) })

	if rep.Tick%r.sampleEvery != 0 {
		return
	}
	for _, d := range snap.Drones {
		row, err := model.NewDroneState(r.session.ID, at, rep.Tick, d)
		if err != nil {
			r.log.Warn().Err(err).Int("tick", rep.Tick).Msg("Skipping drone state")
			continue
		}
		r.each("record drone state", func(b storage.Backend) error { return b.RecordDroneState(row) })
	}
}

// End closes the session on every backend.
func (r *Recorder) End() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	r.session.EndTime = r.now()

	var errs []error
	for _, b := range r.backends {
		if err := b.EndSession(); err != nil {
			errs = append(errs, err)
		}
		if ex, ok := b.(storage.Exporter); ok && ex.ExportedFilePath() != "" {
			r.log.Info().Str("path", ex.ExportedFilePath()).Msg("Session exported")
		}
	}
	r.log.Info().Str("session", r.session.ID).Int("ticks", r.session.Ticks).Msg("Recording ended")
	r.session = nil
	return errors.Join(errs...)
}

// Close releases every backend.
func (r *Recorder) Close() error {
	var errs []error
	for _, b := range r.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// each runs fn on every backend. Only the first failure per backend and
// session is logged.
func (r *Recorder) each(op string, fn func(storage.Backend) error) {
	for i, b := range r.backends {
		if err := fn(b); err != nil && !r.failed[i] {
			r.failed[i] = true
			r.log.Error().Err(err).Str("op", op).Msgf("Storage backend %T failed", b)
		}
	}
}
