package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logMaxEntries = 60
	logLineHeight = 14
)

var categoryColors = map[string]color.RGBA{
	fleet.CatStatus:    {R: 90, G: 170, B: 240, A: 255},
	fleet.CatLanding:   {R: 240, G: 200, B: 60, A: 255},
	fleet.CatCollision: {R: 230, G: 70, B: 70, A: 255},
	fleet.CatCommand:   {R: 120, G: 210, B: 120, A: 255},
	fleet.CatSim:       {R: 170, G: 170, B: 170, A: 255},
}

// EventPanel is a ring buffer of recent flight events rendered on-screen.
// It is registered with the simulator as an EventSink.
type EventPanel struct {
	entries []fleet.FlightEvent
	head    int
	count   int
}

// NewEventPanel creates an event panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]fleet.FlightEvent, logMaxEntries),
	}
}

// Record implements fleet.EventSink.
func (ep *EventPanel) Record(e fleet.FlightEvent) {
	ep.entries[ep.head] = e
	ep.head = (ep.head + 1) % logMaxEntries
	if ep.count < logMaxEntries {
		ep.count++
	}
}

// Note adds a viewer-side message, such as a scenario warning.
func (ep *EventPanel) Note(tick int, category, msg string) {
	ep.Record(fleet.FlightEvent{Tick: tick, Drone: "--", Category: category, Value: msg})
}

// Recent returns entries in chronological order (oldest first).
func (ep *EventPanel) Recent() []fleet.FlightEvent {
	result := make([]fleet.FlightEvent, ep.count)
	for i := 0; i < ep.count; i++ {
		idx := (ep.head - ep.count + i + logMaxEntries) % logMaxEntries
		result[i] = ep.entries[idx]
	}
	return result
}

// Draw renders the newest entries that fit in the panel, newest at the bottom.
func (ep *EventPanel) Draw(screen *ebiten.Image, x, y, w, h int) {
	px, py := float32(x), float32(y)
	vector.FillRect(screen, px, py, float32(w), float32(h), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, px, py, px, py+float32(h), 1.0, color.RGBA{R: 50, G: 60, B: 70, A: 255}, false)

	vector.FillRect(screen, px, py, float32(w), 16, color.RGBA{R: 20, G: 26, B: 32, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "FLIGHT EVENTS", x+8, y+1)

	entries := ep.Recent()
	maxVisible := (h - 22) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	ly := y + 20
	for _, e := range entries {
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 200, G: 200, B: 200, A: 255}
		}
		vector.FillRect(screen, px+5, float32(ly+4), 3, 6, dot, false)
		ebitenutil.DebugPrintAt(screen, formatEntry(e), x+12, ly)
		ly += logLineHeight
	}
}

func formatEntry(e fleet.FlightEvent) string {
	if e.Key == "" {
		return fmt.Sprintf("%4d %-8s %s", e.Tick, e.Drone, e.Value)
	}
	return fmt.Sprintf("%4d %-8s %s %s", e.Tick, e.Drone, e.Key, e.Value)
}
