package influx

import (
	"github.com/Garsondee/Drone-Fleet/internal/model"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// TickPoint builds a fleet_tick point.
func TickPoint(scenario string, t *model.TickStat) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementTick).
		AddTag("session", t.SessionID).
		AddField("tick", t.Tick).
		AddField("elapsed_ms", t.ElapsedMs).
		AddField("cost_ms", t.CostMs).
		AddField("steps", t.Steps).
		AddField("next_steps", t.NextSteps).
		AddField("airborne", t.Airborne).
		AddField("colliding", t.Colliding).
		SetTime(t.Time)
	return withScenario(p, scenario)
}

// DronePoint builds a drone_state point.
func DronePoint(scenario string, s *model.DroneState) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementDroneState).
		AddTag("session", s.SessionID).
		AddTag("drone", s.Drone).
		AddTag("status", s.Status).
		AddField("tick", s.Tick).
		AddField("azimuth", s.Azimuth).
		AddField("speed", s.Speed).
		AddField("height", s.Height).
		AddField("power", s.Power).
		AddField("collision", s.Collision).
		SetTime(s.Time)
	if xy, ok := s.Position.XY(); ok {
		p.AddField("x", xy.X).AddField("y", xy.Y)
	}
	return withScenario(p, scenario)
}

// EventPoint builds a flight_event point.
func EventPoint(scenario string, e *model.FlightEvent) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementEvent).
		AddTag("session", e.SessionID).
		AddTag("drone", e.Drone).
		AddTag("category", e.Category).
		AddTag("key", e.Key).
		AddField("tick", e.Tick).
		AddField("value", e.Value).
		AddField("num", e.NumVal).
		SetTime(e.Time)
	return withScenario(p, scenario)
}

// withScenario tags p with the scenario name; empty tag values are not
// valid line protocol.
func withScenario(p *influxdb2_write.Point, scenario string) *influxdb2_write.Point {
	if scenario != "" {
		p.AddTag("scenario", scenario)
	}
	return p
}
