package fleet

import (
	"image/color"
	"time"
)

// HeadlessSim drives a Simulator without a window. Ticks are fed a fixed
// elapsed interval and, unless configured otherwise, a fake clock that
// charges a constant cost per tick, so runs are deterministic.
type HeadlessSim struct {
	Sim     *Simulator
	Log     *FlightLog
	Reports []TickReport

	servers []Server
	drones  []*Drone
	simOpts []Option

	clock    *fakeClock
	realTime bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // clock and simulator options, applied first
	simOptServer                      // servers, applied before drones reference them
	simOptDrone                       // drones
)

// SimOption is a builder function applied to a HeadlessSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*HeadlessSim)
}

// WithFixedCost makes every tick appear to take d of compute time.
func WithFixedCost(d time.Duration) SimOption {
	return SimOption{simOptInfra, func(hs *HeadlessSim) {
		hs.clock.cost = d
	}}
}

// WithRealClock measures tick cost with time.Now instead of the fake clock.
func WithRealClock() SimOption {
	return SimOption{simOptInfra, func(hs *HeadlessSim) {
		hs.realTime = true
	}}
}

// WithSimOptions passes options straight to the underlying Simulator.
func WithSimOptions(opts ...Option) SimOption {
	return SimOption{simOptInfra, func(hs *HeadlessSim) {
		hs.simOpts = append(hs.simOpts, opts...)
	}}
}

// WithServer adds a server at (x,y).
func WithServer(name string, x, y float64, c color.RGBA) SimOption {
	return SimOption{simOptServer, func(hs *HeadlessSim) {
		hs.servers = append(hs.servers, NewServer(name, V2(x, y), c))
	}}
}

// WithDrone adds a landed drone at (x,y) assigned to a target server.
func WithDrone(name string, x, y float64, server string) SimOption {
	return SimOption{simOptDrone, func(hs *HeadlessSim) {
		d := NewDrone(name)
		d.SetInitialPosition(V2(x, y))
		d.SetTargetServer(server)
		hs.drones = append(hs.drones, d)
	}}
}

// WithFleet adds prebuilt servers and drones, e.g. from a scenario file.
func WithFleet(servers []Server, drones []*Drone) SimOption {
	return SimOption{simOptDrone, func(hs *HeadlessSim) {
		hs.servers = append(hs.servers, servers...)
		hs.drones = append(hs.drones, drones...)
	}}
}

// NewHeadlessSim constructs a HeadlessSim from options in ordered passes:
//  1. Infrastructure (clock, simulator options)
//  2. Servers
//  3. Drones
func NewHeadlessSim(opts ...SimOption) *HeadlessSim {
	hs := &HeadlessSim{
		Log:   NewFlightLog(),
		clock: &fakeClock{t: time.Unix(0, 0), cost: time.Millisecond},
	}
	for _, pass := range []simOptionKind{simOptInfra, simOptServer, simOptDrone} {
		for _, o := range opts {
			if o.kind == pass {
				o.fn(hs)
			}
		}
	}

	simOpts := []Option{WithEventSink(hs.Log)}
	if !hs.realTime {
		simOpts = append(simOpts, WithClock(hs.clock.Now))
	}
	hs.Sim = NewSimulator(append(simOpts, hs.simOpts...)...)
	hs.Sim.Load(hs.servers, hs.drones)
	return hs
}

// Drone returns the live drone by name. Tests may poke at it between ticks.
func (hs *HeadlessSim) Drone(name string) *Drone {
	for _, d := range hs.drones {
		if d.name == name {
			return d
		}
	}
	return nil
}

// RunTicks advances n ticks of the given wall-clock period.
func (hs *HeadlessSim) RunTicks(n int, period time.Duration) {
	for i := 0; i < n; i++ {
		hs.Reports = append(hs.Reports, hs.Sim.Tick(period))
	}
}

// RunUntil ticks until pred holds or maxTicks is reached, and reports
// whether pred was satisfied.
func (hs *HeadlessSim) RunUntil(pred func(Snapshot) bool, maxTicks int, period time.Duration) bool {
	for i := 0; i < maxTicks; i++ {
		hs.Reports = append(hs.Reports, hs.Sim.Tick(period))
		if pred(hs.Sim.Snapshot()) {
			return true
		}
	}
	return false
}

// AllLanded is a RunUntil predicate.
func AllLanded(s Snapshot) bool {
	return s.Airborne() == 0
}

// fakeClock advances by cost on every second reading, so a tick measured
// as now()-now() costs exactly cost.
type fakeClock struct {
	t     time.Time
	cost  time.Duration
	reads int
}

func (c *fakeClock) Now() time.Time {
	c.reads++
	if c.reads%2 == 0 {
		c.t = c.t.Add(c.cost)
	}
	return c.t
}
