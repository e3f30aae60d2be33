package fleet

import (
	"fmt"
	"strings"
)

// Event categories and keys emitted by the Simulator.
const (
	CatStatus    = "status"
	CatLanding   = "landing"
	CatCollision = "collision"
	CatCommand   = "command"
	CatSim       = "sim"

	KeyBegin = "begin"
	KeyEnd   = "end"
	KeyStart = "start"
	KeyStop  = "stop"
	KeyGoal  = "goal"
	KeySteps = "steps"
)

// FlightEvent is one notable change during a run.
type FlightEvent struct {
	Tick     int
	Drone    string  // drone name, or "--" for fleet-wide events
	Category string  // status, landing, collision, command, sim
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] d2       status    hovering        takeoff → hovering
func (e FlightEvent) String() string {
	return fmt.Sprintf("[T=%03d] %-8s %-9s %-15s %s",
		e.Tick, e.Drone, e.Category, e.Key, e.Value)
}

// EventSink receives flight events as they happen, inside the tick that
// produced them. Implementations must not call back into the Simulator.
type EventSink interface {
	Record(e FlightEvent)
}

// FlightLog is an unbounded, in-memory EventSink for headless runs.
type FlightLog struct {
	entries []FlightEvent
}

func NewFlightLog() *FlightLog {
	return &FlightLog{}
}

func (fl *FlightLog) Record(e FlightEvent) {
	fl.entries = append(fl.entries, e)
}

func (fl *FlightLog) Entries() []FlightEvent {
	return fl.entries
}

// Filter returns entries matching category and key; empty matches anything.
func (fl *FlightLog) Filter(category, key string) []FlightEvent {
	var out []FlightEvent
	for _, e := range fl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterDrone returns the entries for one drone.
func (fl *FlightLog) FilterDrone(name string) []FlightEvent {
	var out []FlightEvent
	for _, e := range fl.entries {
		if e.Drone == name {
			out = append(out, e)
		}
	}
	return out
}

func (fl *FlightLog) CountCategory(category, key string) int {
	return len(fl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key.
func (fl *FlightLog) LastOf(category, key string) (FlightEvent, bool) {
	entries := fl.Filter(category, key)
	if len(entries) == 0 {
		return FlightEvent{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and a value substring.
func (fl *FlightLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range fl.entries {
		if e.Category == category && e.Key == key && strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Format renders every entry, one per line.
func (fl *FlightLog) Format() string {
	var sb strings.Builder
	for _, e := range fl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
