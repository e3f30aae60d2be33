package memory

import (
	"sync"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/model"
)

// DroneRecord groups the sampled states of one drone.
type DroneRecord struct {
	Name   string
	States []model.DroneState
}

// Backend stores a session in memory and exports it to JSON when the
// session ends.
type Backend struct {
	cfg     config.MemoryConfig
	session *model.Session

	ticks  []model.TickStat
	drones map[string]*DroneRecord
	order  []string // drone names in first-seen order
	events []model.FlightEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:    cfg,
		drones: make(map[string]*DroneRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session and drops anything recorded
// for the previous one.
func (b *Backend) StartSession(s *model.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = s
	b.ticks = nil
	b.drones = make(map[string]*DroneRecord)
	b.order = nil
	b.events = nil
	b.lastExportPath = ""
	return nil
}

// EndSession exports the session data.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return nil
	}
	return b.exportJSON()
}

func (b *Backend) RecordTick(t *model.TickStat) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = append(b.ticks, *t)
	return nil
}

func (b *Backend) RecordDroneState(s *model.DroneState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.drones[s.Drone]
	if !ok {
		rec = &DroneRecord{Name: s.Drone}
		b.drones[s.Drone] = rec
		b.order = append(b.order, s.Drone)
	}
	rec.States = append(rec.States, *s)
	return nil
}

func (b *Backend) RecordEvent(e *model.FlightEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, *e)
	return nil
}

// ExportedFilePath returns the file written by the last EndSession.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Counts reports how much has been recorded in the current session.
func (b *Backend) Counts() (ticks, states, events int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, rec := range b.drones {
		states += len(rec.States)
	}
	return len(b.ticks), states, len(b.events)
}
