package fleet

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

const (
	// DroneIconSize is the on-screen drone glyph size in pixels.
	DroneIconSize = 64
	// DroneCollisionDistance is the default repulsion threshold.
	DroneCollisionDistance = DroneIconSize * 1.5

	DefaultInitialSteps = 5
	DefaultMaxSteps     = 10
	DefaultTickBudget   = 90 * time.Millisecond
)

// TickReport describes one completed tick.
type TickReport struct {
	Tick      int
	Elapsed   time.Duration // wall-clock interval the tick covered
	Steps     int           // sub-steps actually run
	NextSteps int           // sub-steps the next tick will run
	Cost      time.Duration // measured compute time
	Airborne  int           // drones not landed after the tick
	Colliding int           // drones inside another drone's threshold
}

// StatusText is the one-line status shown under the canvas.
func (r TickReport) StatusText() string {
	return fmt.Sprintf("duration:%d steps=%d", r.Cost.Milliseconds(), r.Steps)
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithSteps sets the initial and maximum sub-step counts.
func WithSteps(initial, maxSteps int) Option {
	return func(s *Simulator) {
		s.steps = initial
		s.maxSteps = maxSteps
	}
}

// WithTickBudget sets the compute time above which the step count halves.
func WithTickBudget(d time.Duration) Option {
	return func(s *Simulator) { s.budget = d }
}

// WithCollisionDistance sets the repulsion threshold in pixels.
func WithCollisionDistance(px float64) Option {
	return func(s *Simulator) { s.collisionDistance = px }
}

// WithClock replaces time.Now for tick cost measurement.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithEventSink registers a receiver for flight events.
func WithEventSink(sink EventSink) Option {
	return func(s *Simulator) { s.sinks = append(s.sinks, sink) }
}

// Simulator advances a fleet in adaptive fixed sub-steps. Ticks, commands
// and snapshots are serialised on one mutex, so every external read or
// write lands on a tick boundary.
type Simulator struct {
	mu sync.Mutex

	classifier *Classifier
	drones     []*Drone // sorted by name
	byName     map[string]*Drone

	steps             int
	maxSteps          int
	budget            time.Duration
	collisionDistance float64
	now               func() time.Time
	sinks             []EventSink

	tick int
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		classifier:        NewClassifier(),
		byName:            map[string]*Drone{},
		steps:             DefaultInitialSteps,
		maxSteps:          DefaultMaxSteps,
		budget:            DefaultTickBudget,
		collisionDistance: DroneCollisionDistance,
		now:               time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddSink registers another event receiver.
func (s *Simulator) AddSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Load replaces the servers and the fleet. The step count carries over.
func (s *Simulator) Load(servers []Server, drones []*Drone) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.classifier = NewClassifier(servers...)
	s.classifier.Clear()

	s.drones = make([]*Drone, len(drones))
	copy(s.drones, drones)
	sort.SliceStable(s.drones, func(i, j int) bool {
		return s.drones[i].name < s.drones[j].name
	})
	s.byName = make(map[string]*Drone, len(s.drones))
	for _, d := range s.drones {
		s.byName[d.name] = d
	}
}

// Tick advances the fleet by elapsed wall-clock time split into the current
// number of sub-steps, then retunes the step count from the measured cost.
func (s *Simulator) Tick(elapsed time.Duration) TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	s.tick++
	steps := s.steps
	if steps > 0 {
		dt := elapsed.Seconds() / float64(steps)
		for step := 0; step < steps; step++ {
			s.subStep(dt)
		}
	}
	cost := s.now().Sub(start)

	if cost > s.budget {
		s.steps /= 2
	} else if s.steps < s.maxSteps {
		s.steps++
	}
	if s.steps != steps {
		s.emit(FlightEvent{Tick: s.tick, Drone: "--", Category: CatSim, Key: KeySteps,
			Value: fmt.Sprintf("%d → %d", steps, s.steps), NumVal: float64(s.steps)})
	}

	rep := TickReport{
		Tick:      s.tick,
		Elapsed:   elapsed,
		Steps:     steps,
		NextSteps: s.steps,
		Cost:      cost,
	}
	for _, d := range s.drones {
		if d.status != Landed {
			rep.Airborne++
		}
		if d.showCollision {
			rep.Colliding++
		}
	}
	return rep
}

func (s *Simulator) subStep(dt float64) {
	for _, d := range s.drones {
		if srv, ok := s.classifier.FindByName(d.targetServer); ok {
			d.SetGoalPosition(srv.Position)
		}

		prevStatus, prevCollision := d.status, d.showCollision
		if d.status != Landed {
			d.InitCollision()
			for _, o := range s.drones {
				if o != d && o.status != Landed {
					d.AddCollisionForce(o.position, s.collisionDistance)
				}
			}
		}
		d.Update(dt)
		s.noteChanges(d, prevStatus, prevCollision)
	}
}

// noteChanges emits events for status and collision flips of d.
func (s *Simulator) noteChanges(d *Drone, prevStatus Status, prevCollision bool) {
	if len(s.sinks) == 0 {
		return
	}
	if d.status != prevStatus {
		s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatStatus, Key: d.status.String(),
			Value: fmt.Sprintf("%s → %s", prevStatus, d.status), NumVal: d.Power()})
		if d.status == Landing {
			s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatLanding, Key: d.landingCause,
				Value: fmt.Sprintf("power=%.1f%%", d.Power()), NumVal: d.Power()})
		}
	}
	if d.showCollision != prevCollision {
		key := KeyEnd
		if d.showCollision {
			key = KeyBegin
		}
		s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatCollision, Key: key,
			Value: d.position.String(), NumVal: d.collisionForce.Length()})
	}
}

func (s *Simulator) emit(e FlightEvent) {
	for _, sink := range s.sinks {
		sink.Record(e)
	}
}

// Steps returns the sub-step count the next tick will use.
func (s *Simulator) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// CollisionDistance returns the repulsion threshold in pixels.
func (s *Simulator) CollisionDistance() float64 {
	return s.collisionDistance
}

// Classifier returns the current server partition. It is replaced, never
// mutated, by Load, so the returned value stays valid for rendering.
func (s *Simulator) Classifier() *Classifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classifier
}

// Snapshot copies the fleet state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tick:    s.tick,
		Steps:   s.steps,
		Servers: s.classifier.Servers(),
		Drones:  make([]DroneState, 0, len(s.drones)),
	}
	for _, d := range s.drones {
		snap.Drones = append(snap.Drones, stateOf(d))
	}
	return snap
}
