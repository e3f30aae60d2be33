// Package model holds the recording schema shared by every storage backend.
package model

import (
	"fmt"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Session{},
	&TickStat{},
	&DroneState{},
	&FlightEvent{},
}

// Session is one recorded run of a scenario.
type Session struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	ScenarioName string         `json:"scenarioName" gorm:"size:127"`
	StartTime    time.Time      `json:"startTime" gorm:"index:idx_session_start"`
	EndTime      time.Time      `json:"endTime"`
	TickPeriodMs float64        `json:"tickPeriodMs"`
	Ticks        int            `json:"ticks"`
	Scenario     datatypes.JSON `json:"scenario"`
}

func (*Session) TableName() string { return "sessions" }

// TickStat is the outcome of one simulator tick.
type TickStat struct {
	ID        uint      `json:"-" gorm:"primarykey;autoIncrement"`
	SessionID string    `json:"sessionId" gorm:"size:36;index:idx_tickstat_session"`
	Time      time.Time `json:"time"`
	Tick      int       `json:"tick"`
	ElapsedMs float64   `json:"elapsedMs"`
	CostMs    float64   `json:"costMs"`
	Steps     int       `json:"steps"`
	NextSteps int       `json:"nextSteps"`
	Airborne  int       `json:"airborne"`
	Colliding int       `json:"colliding"`
}

func (*TickStat) TableName() string { return "tick_stats" }

// DroneState is a sampled drone state.
type DroneState struct {
	ID           uint       `json:"-" gorm:"primarykey;autoIncrement"`
	SessionID    string     `json:"sessionId" gorm:"size:36;index:idx_dronestate_session"`
	Time         time.Time  `json:"time"`
	Tick         int        `json:"tick" gorm:"index:idx_dronestate_tick"`
	Drone        string     `json:"drone" gorm:"size:64;index:idx_dronestate_drone"`
	Status       string     `json:"status" gorm:"size:16"`
	Position     geom.Point `json:"position"`
	GoalX        float64    `json:"goalX"`
	GoalY        float64    `json:"goalY"`
	Azimuth      float64    `json:"azimuth"`
	Speed        float64    `json:"speed"`
	Height       float64    `json:"height"`
	Power        float64    `json:"power"`
	Collision    bool       `json:"collision"`
	TargetServer string     `json:"targetServer" gorm:"size:64"`
}

func (*DroneState) TableName() string { return "drone_states" }

// FlightEvent is a recorded flight event.
type FlightEvent struct {
	ID        uint      `json:"-" gorm:"primarykey;autoIncrement"`
	SessionID string    `json:"sessionId" gorm:"size:36;index:idx_flightevent_session"`
	Time      time.Time `json:"time"`
	Tick      int       `json:"tick"`
	Drone     string    `json:"drone" gorm:"size:64"`
	Category  string    `json:"category" gorm:"size:16;index:idx_flightevent_category"`
	Key       string    `json:"key" gorm:"size:32"`
	Value     string    `json:"value" gorm:"size:255"`
	NumVal    float64   `json:"numVal"`
}

func (*FlightEvent) TableName() string { return "flight_events" }

// NewPosition converts a plane position to a geom.Point. Non-finite
// coordinates are rejected.
func NewPosition(v fleet.Vec2) (geom.Point, error) {
	pt, err := geom.XY{X: float64(v.X), Y: float64(v.Y)}.AsPoint()
	if err != nil {
		return geom.Point{}, fmt.Errorf("position %v: %w", v, err)
	}
	return pt, nil
}

// NewTickStat converts a tick report.
func NewTickStat(sessionID string, at time.Time, r fleet.TickReport) *TickStat {
	return &TickStat{
		SessionID: sessionID,
		Time:      at,
		Tick:      r.Tick,
		ElapsedMs: float64(r.Elapsed) / float64(time.Millisecond),
		CostMs:    float64(r.Cost) / float64(time.Millisecond),
		Steps:     r.Steps,
		NextSteps: r.NextSteps,
		Airborne:  r.Airborne,
		Colliding: r.Colliding,
	}
}

// NewDroneState converts a snapshot entry.
func NewDroneState(sessionID string, at time.Time, tick int, d fleet.DroneState) (*DroneState, error) {
	pos, err := NewPosition(d.Position)
	if err != nil {
		return nil, fmt.Errorf("drone %s: %w", d.Name, err)
	}
	return &DroneState{
		SessionID:    sessionID,
		Time:         at,
		Tick:         tick,
		Drone:        d.Name,
		Status:       d.Status.String(),
		Position:     pos,
		GoalX:        float64(d.Goal.X),
		GoalY:        float64(d.Goal.Y),
		Azimuth:      d.Azimuth,
		Speed:        d.Speed,
		Height:       d.Height,
		Power:        d.Power,
		Collision:    d.Collision,
		TargetServer: d.TargetServer,
	}, nil
}

// NewFlightEvent converts a flight event.
func NewFlightEvent(sessionID string, at time.Time, e fleet.FlightEvent) *FlightEvent {
	return &FlightEvent{
		SessionID: sessionID,
		Time:      at,
		Tick:      e.Tick,
		Drone:     e.Drone,
		Category:  e.Category,
		Key:       e.Key,
		Value:     e.Value,
		NumVal:    e.NumVal,
	}
}
