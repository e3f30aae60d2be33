package report

import (
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
)

// Markers holds the first tick at which each phase was reached, or -1.
type Markers struct {
	FirstTakeoff   int
	FirstHovering  int
	FirstCollision int
	FirstLanding   int
	AllLanded      int // first tick after a takeoff with nothing airborne
}

// EventTotals counts flight events per category.
type EventTotals struct {
	Status     int
	Landing    int
	Collision  int
	Command    int
	StepChange int
	LowPower   int
	Arrived    int
}

// Run is everything kept from one headless run.
type Run struct {
	Index    int
	Scenario string
	Ticks    int
	Markers  Markers
	Totals   EventTotals
	Window   *WindowReport
	Final    []fleet.DroneState
	Events   []fleet.FlightEvent
}

// Analyze extracts phase markers and totals from a finished run.
func Analyze(index int, scenario string, ticks int, log *fleet.FlightLog, rep *Reporter, final fleet.Snapshot) Run {
	entries := log.Entries()
	return Run{
		Index:    index,
		Scenario: scenario,
		Ticks:    ticks,
		Markers: Markers{
			FirstTakeoff:   FirstTick(entries, fleet.CatStatus, fleet.Takeoff.String(), ""),
			FirstHovering:  FirstTick(entries, fleet.CatStatus, fleet.Hovering.String(), ""),
			FirstCollision: FirstTick(entries, fleet.CatCollision, fleet.KeyBegin, ""),
			FirstLanding:   FirstTick(entries, fleet.CatStatus, fleet.Landing.String(), ""),
			AllLanded:      allLandedTick(rep.History()),
		},
		Totals: EventTotals{
			Status:     log.CountCategory(fleet.CatStatus, ""),
			Landing:    log.CountCategory(fleet.CatLanding, ""),
			Collision:  log.CountCategory(fleet.CatCollision, fleet.KeyBegin),
			Command:    log.CountCategory(fleet.CatCommand, ""),
			StepChange: log.CountCategory(fleet.CatSim, fleet.KeySteps),
			LowPower:   log.CountCategory(fleet.CatLanding, fleet.CauseLowPower),
			Arrived:    log.CountCategory(fleet.CatLanding, fleet.CauseArrived),
		},
		Window: rep.WindowSummary(),
		Final:  final.Drones,
		Events: entries,
	}
}

// FirstTick returns the tick of the first entry matching category and key
// (empty key matches any) whose value contains the given text, or -1.
func FirstTick(entries []fleet.FlightEvent, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || (key != "" && e.Key != key) {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func allLandedTick(history []Sample) int {
	flown := false
	for _, s := range history {
		if s.Airborne > 0 {
			flown = true
			continue
		}
		if flown {
			return s.Tick
		}
	}
	return -1
}
