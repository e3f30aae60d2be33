package fleet

import "math"

// Flight constants shared by every drone.
const (
	MaxSpeed         = 50.0   // px/s, upper bound of the speed setpoint
	MaxPower         = 200.0  // battery capacity
	TakeoffSpeed     = 2.5    // height units per second, up and down
	HoveringHeight   = 5.0    // cruise height
	CoefCollision    = 1000.0 // repulsion gain
	Damping          = 0.2
	ChargingSpeed    = 10.0 // power per second while landed
	PowerConsumption = 5.0  // power per second while off the ground

	// LowPowerThreshold forces a landing once power drops below it, leaving
	// enough charge for the descent.
	LowPowerThreshold = 20 + PowerConsumption/TakeoffSpeed

	// arrivalDistance and arrivalSpeed bound the "reached goal" test.
	arrivalDistance = 1.0
	arrivalSpeed    = 10.0
)

// Landing causes recorded on the transition into Landing.
const (
	CauseArrived  = "arrived"
	CauseLowPower = "low_power"
	CauseStopped  = "stopped"
)

var (
	defaultDronePosition = Vec2{X: 50, Y: 50}
	defaultDroneGoal     = Vec2{X: 550, Y: 600}
)

// Drone owns its kinematic and power state. It is not safe for concurrent
// use; the Simulator serialises all access.
type Drone struct {
	name   string
	status Status

	position       Vec2
	goal           Vec2
	velocity       Vec2
	collisionForce Vec2

	speed         float64
	speedSetpoint float64 // stored only; the velocity law ignores it
	power         float64
	height        float64
	azimuth       float64 // degrees, 0 faces +y

	targetServer  string
	showCollision bool
	landingCause  string
}

// NewDrone returns a landed drone at half charge.
func NewDrone(name string) *Drone {
	return &Drone{
		name:     name,
		status:   Landed,
		power:    MaxPower / 2,
		position: defaultDronePosition,
		goal:     defaultDroneGoal,
	}
}

func (d *Drone) Name() string             { return d.name }
func (d *Drone) Status() Status           { return d.status }
func (d *Drone) Position() Vec2           { return d.position }
func (d *Drone) Goal() Vec2               { return d.goal }
func (d *Drone) Velocity() Vec2           { return d.velocity }
func (d *Drone) CollisionForce() Vec2     { return d.collisionForce }
func (d *Drone) Speed() float64           { return d.speed }
func (d *Drone) SpeedSetpoint() float64   { return d.speedSetpoint }
func (d *Drone) Height() float64          { return d.height }
func (d *Drone) Azimuth() float64         { return d.azimuth }
func (d *Drone) HasCollision() bool       { return d.showCollision }
func (d *Drone) TargetServer() string     { return d.targetServer }
func (d *Drone) SetTargetServer(n string) { d.targetServer = n }

// Power returns the charge on a 0–100 scale.
func (d *Drone) Power() float64 {
	return 100 * d.power / MaxPower
}

// Start begins a takeoff. It only applies to a landed drone.
func (d *Drone) Start() bool {
	if d.status != Landed {
		return false
	}
	d.height = 0
	d.status = Takeoff
	d.landingCause = ""
	return true
}

// Stop sends the drone into its landing phase from any flight phase.
func (d *Drone) Stop() bool {
	if d.status == Landed || d.status == Landing {
		return false
	}
	d.beginLanding(CauseStopped)
	return true
}

// SetSpeed stores a speed setpoint clamped to [0, MaxSpeed].
func (d *Drone) SetSpeed(s float64) {
	d.speedSetpoint = math.Max(0, math.Min(MaxSpeed, s))
}

// SetInitialPosition moves a landed drone. Airborne drones ignore it.
func (d *Drone) SetInitialPosition(p Vec2) bool {
	if d.status != Landed {
		return false
	}
	d.position = p
	return true
}

func (d *Drone) SetGoalPosition(p Vec2) {
	d.goal = p
}

// InitCollision clears the force accumulated during the previous sub-step.
func (d *Drone) InitCollision() {
	d.collisionForce = Vec2{}
	d.showCollision = false
}

// AddCollisionForce pushes the drone away from another drone at b when it is
// closer than threshold.
func (d *Drone) AddCollisionForce(b Vec2, threshold float64) {
	ab := b.Sub(d.position)
	if ab.Length() < threshold {
		d.collisionForce = d.collisionForce.Add(ab.Scale(-CoefCollision / threshold))
		d.showCollision = true
	}
}

// Update advances the drone by dt seconds.
func (d *Drone) Update(dt float64) {
	switch {
	case d.status == Landed:
		d.power = math.Min(MaxPower, d.power+dt*ChargingSpeed)

	case d.status == Takeoff:
		d.height += dt * TakeoffSpeed
		if d.height >= HoveringHeight {
			d.height = HoveringHeight
			d.status = Hovering
		}
		d.consume(dt)
		if d.power < LowPowerThreshold {
			d.speed = 0
			d.beginLanding(CauseLowPower)
		}

	case d.status == Landing:
		d.height -= dt * TakeoffSpeed
		if d.height <= 0 {
			d.height = 0
			d.status = Landed
			d.showCollision = false
		}
		d.consume(dt)

	case d.status.Airborne():
		d.cruise(dt)
	}
}

// cruise integrates the spring-like velocity law towards the goal.
func (d *Drone) cruise(dt float64) {
	toGoal := d.goal.Sub(d.position)
	dist := toGoal.Length()

	damp := 1 - dt*(1-Damping)
	v := d.velocity.Scale(damp)
	if dist > 0 {
		v = v.Add(toGoal.Scale(MaxPower * dt / dist))
	}
	v = v.Add(d.collisionForce.Scale(dt))

	d.velocity = v
	d.position = d.position.Add(v.Scale(dt))
	d.speed = v.Length()
	if d.speed > 0 {
		d.azimuth = azimuthOf(v, d.speed)
	}

	if dist < arrivalDistance && d.speed < arrivalSpeed {
		d.halt()
		d.beginLanding(CauseArrived)
	}

	d.consume(dt)
	if d.power < LowPowerThreshold {
		d.halt()
		d.beginLanding(CauseLowPower)
	}
}

// azimuthOf converts a velocity into a heading in degrees where 0 faces +y.
func azimuthOf(v Vec2, speed float64) float64 {
	nx := float64(v.X) / speed
	ny := float64(v.Y) / speed
	switch {
	case ny == 0:
		if nx > 0 {
			return -90
		}
		return 90
	case ny > 0:
		return 180 - 180*math.Atan(nx/ny)/math.Pi
	default:
		return -180 * math.Atan(nx/ny) / math.Pi
	}
}

func (d *Drone) halt() {
	d.velocity = Vec2{}
	d.speed = 0
}

func (d *Drone) beginLanding(cause string) {
	d.status = Landing
	d.landingCause = cause
}

func (d *Drone) consume(dt float64) {
	d.power = math.Max(0, d.power-dt*PowerConsumption)
}
