// Package report summarises simulator runs: sliding-window tick statistics,
// the clipboard fleet summary and the spreadsheet export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
)

// reportWindowTicks is the default sliding-window size (10s at 100ms ticks).
const reportWindowTicks = 100

// Sample is the fleet condition after one tick.
type Sample struct {
	Tick      int
	Steps     int
	NextSteps int
	Cost      time.Duration
	Airborne  int
	Colliding int
	ByStatus  map[fleet.Status]int
	AvgPower  float64
}

// Reporter collects samples and summarises them over a sliding window.
type Reporter struct {
	history     []Sample
	windowTicks int
}

// NewReporter creates a reporter with the given window size.
func NewReporter(windowTicks int) *Reporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &Reporter{windowTicks: windowTicks}
}

// Collect records the outcome of one tick.
func (r *Reporter) Collect(rep fleet.TickReport, snap fleet.Snapshot) {
	s := Sample{
		Tick:      rep.Tick,
		Steps:     rep.Steps,
		NextSteps: rep.NextSteps,
		Cost:      rep.Cost,
		Airborne:  rep.Airborne,
		Colliding: rep.Colliding,
		ByStatus:  make(map[fleet.Status]int),
	}
	for _, d := range snap.Drones {
		s.ByStatus[d.Status]++
		s.AvgPower += d.Power
	}
	if len(snap.Drones) > 0 {
		s.AvgPower /= float64(len(snap.Drones))
	}
	r.history = append(r.history, s)
}

// Latest returns the most recent sample, or nil.
func (r *Reporter) Latest() *Sample {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected samples.
func (r *Reporter) History() []Sample {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// Share of drone-ticks spent in each status (0-100).
	StatusPct map[fleet.Status]float64

	AvgSteps     float64
	AvgCostMs    float64
	MaxCostMs    float64
	AvgAirborne  float64
	AvgColliding float64
	AvgPower     float64

	// Ticks whose cost went over budget and halved the step count.
	Halvings int
}

// WindowSummary averages the samples of the recent window.
func (r *Reporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []Sample
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick <= cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		StatusPct:   make(map[fleet.Status]float64),
	}

	statusTotal := make(map[fleet.Status]float64)
	var droneTicks float64
	for _, s := range window {
		for st, c := range s.ByStatus {
			statusTotal[st] += float64(c)
			droneTicks += float64(c)
		}
		cost := float64(s.Cost.Microseconds()) / 1000
		wr.AvgSteps += float64(s.Steps)
		wr.AvgCostMs += cost
		if cost > wr.MaxCostMs {
			wr.MaxCostMs = cost
		}
		wr.AvgAirborne += float64(s.Airborne)
		wr.AvgColliding += float64(s.Colliding)
		wr.AvgPower += s.AvgPower
		if s.NextSteps < s.Steps {
			wr.Halvings++
		}
	}

	if droneTicks > 0 {
		for st, c := range statusTotal {
			wr.StatusPct[st] = c / droneTicks * 100
		}
	}
	wr.AvgSteps /= n
	wr.AvgCostMs /= n
	wr.AvgAirborne /= n
	wr.AvgColliding /= n
	wr.AvgPower /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Fleet Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("--- Status Distribution ---\n")
	for st := fleet.Landed; st <= fleet.Flying; st++ {
		if pct, ok := wr.StatusPct[st]; ok && pct > 0.5 {
			fmt.Fprintf(&sb, "  %-10s %5.1f%%\n", st, pct)
		}
	}
	sb.WriteString("--- Loop ---\n")
	fmt.Fprintf(&sb, "  steps=%.1f cost_avg=%.2fms cost_max=%.2fms halvings=%d\n",
		wr.AvgSteps, wr.AvgCostMs, wr.MaxCostMs, wr.Halvings)
	sb.WriteString("--- Fleet ---\n")
	fmt.Fprintf(&sb, "  airborne=%.1f colliding=%.1f power=%.1f%%\n",
		wr.AvgAirborne, wr.AvgColliding, wr.AvgPower)
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent sample.
func (r *Reporter) FormatLatest() string {
	s := r.Latest()
	if s == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", s.Tick)
	fmt.Fprintf(&sb, "steps=%d→%d cost=%dms airborne=%d colliding=%d power=%.1f%%\n",
		s.Steps, s.NextSteps, s.Cost.Milliseconds(), s.Airborne, s.Colliding, s.AvgPower)
	for st := fleet.Landed; st <= fleet.Flying; st++ {
		if c := s.ByStatus[st]; c > 0 {
			fmt.Fprintf(&sb, "%s=%d ", st, c)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
