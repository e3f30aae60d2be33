package fleet

import (
	"errors"
	"fmt"
)

// ErrUnknownDrone is returned by commands addressed to a missing drone.
var ErrUnknownDrone = errors.New("unknown drone")

// StartNext launches the first landed drone in name order towards goal.
// The drone's target server is left untouched. It returns the drone name,
// or false when every drone is already off the ground.
func (s *Simulator) StartNext(goal Vec2) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.drones {
		if d.status != Landed {
			continue
		}
		d.SetGoalPosition(goal)
		s.start(d)
		return d.name, true
	}
	return "", false
}

// Start launches the named drone if it is landed. applied is false for a
// drone that is already flying.
func (s *Simulator) Start(name string) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	return s.start(d), nil
}

func (s *Simulator) start(d *Drone) bool {
	prev := d.status
	if !d.Start() {
		return false
	}
	s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatCommand, Key: KeyStart,
		Value: "goal " + d.goal.String(), NumVal: d.Power()})
	s.noteChanges(d, prev, d.showCollision)
	return true
}

// Stop sends the named drone into its landing phase.
func (s *Simulator) Stop(name string) (applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(name)
	if err != nil {
		return false, err
	}
	return s.stop(d), nil
}

// StopAll lands every flying drone and returns how many were affected.
func (s *Simulator) StopAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.drones {
		if s.stop(d) {
			n++
		}
	}
	return n
}

func (s *Simulator) stop(d *Drone) bool {
	prev := d.status
	if !d.Stop() {
		return false
	}
	s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatCommand, Key: KeyStop,
		Value: prev.String(), NumVal: d.Power()})
	s.noteChanges(d, prev, d.showCollision)
	return true
}

// SetGoal points the named drone at p. A drone with a resolvable target
// server is re-aimed at that server on the next sub-step.
func (s *Simulator) SetGoal(name string, p Vec2) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(name)
	if err != nil {
		return err
	}
	d.SetGoalPosition(p)
	s.emit(FlightEvent{Tick: s.tick, Drone: d.name, Category: CatCommand, Key: KeyGoal, Value: p.String()})
	return nil
}

// SetSpeed stores a speed setpoint on the named drone.
func (s *Simulator) SetSpeed(name string, speed float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(name)
	if err != nil {
		return err
	}
	d.SetSpeed(speed)
	return nil
}

func (s *Simulator) lookup(name string) (*Drone, error) {
	d, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDrone, name)
	}
	return d, nil
}
