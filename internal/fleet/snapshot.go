package fleet

// DroneState is a read-only copy of a drone taken between ticks.
type DroneState struct {
	Name         string
	Status       Status
	Position     Vec2
	Goal         Vec2
	Velocity     Vec2
	Azimuth      float64
	Power        float64 // 0–100
	Speed        float64
	Height       float64
	Collision    bool
	TargetServer string
}

// Snapshot is everything a renderer or recorder may read after a tick.
type Snapshot struct {
	Tick    int
	Steps   int
	Servers []Server
	Drones  []DroneState // name order
}

func stateOf(d *Drone) DroneState {
	return DroneState{
		Name:         d.name,
		Status:       d.status,
		Position:     d.position,
		Goal:         d.goal,
		Velocity:     d.velocity,
		Azimuth:      d.azimuth,
		Power:        d.Power(),
		Speed:        d.speed,
		Height:       d.height,
		Collision:    d.showCollision,
		TargetServer: d.targetServer,
	}
}

// Drone returns the state of the named drone.
func (s Snapshot) Drone(name string) (DroneState, bool) {
	for _, d := range s.Drones {
		if d.Name == name {
			return d, true
		}
	}
	return DroneState{}, false
}

// Count returns how many drones are in the given status.
func (s Snapshot) Count(st Status) int {
	n := 0
	for _, d := range s.Drones {
		if d.Status == st {
			n++
		}
	}
	return n
}

// Airborne counts drones that are off the ground in any phase.
func (s Snapshot) Airborne() int {
	return len(s.Drones) - s.Count(Landed)
}
