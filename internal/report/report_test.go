package report

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tickPeriod = 100 * time.Millisecond

// flyOne runs a single drone from (0,0) to a server at (300,0) and back
// onto the ground, collecting a sample every tick.
func flyOne(t *testing.T) (*fleet.HeadlessSim, *Reporter, int) {
	t.Helper()
	hs := fleet.NewHeadlessSim(
		fleet.WithServer("base", 300, 0, color.RGBA{R: 255, A: 255}),
		fleet.WithDrone("d1", 0, 0, "base"),
	)
	_, err := hs.Sim.Start("d1")
	require.NoError(t, err)

	rep := NewReporter(0)
	ticks := 0
	for ; ticks < 600; ticks++ {
		tr := hs.Sim.Tick(tickPeriod)
		snap := hs.Sim.Snapshot()
		rep.Collect(tr, snap)
		if snap.Airborne() == 0 {
			ticks++
			break
		}
	}
	require.Less(t, ticks, 600, "drone never landed:\n%s", hs.Log.Format())
	return hs, rep, ticks
}

func TestReporter_WindowSummary(t *testing.T) {
	r := NewReporter(5)
	assert.Nil(t, r.WindowSummary())
	assert.Nil(t, r.Latest())

	snap := fleet.Snapshot{Drones: []fleet.DroneState{
		{Name: "a", Status: fleet.Landed, Power: 40},
		{Name: "b", Status: fleet.Hovering, Power: 80},
	}}
	for i := 1; i <= 10; i++ {
		r.Collect(fleet.TickReport{Tick: i, Steps: 4, NextSteps: 2, Cost: 2 * time.Millisecond, Airborne: 1}, snap)
	}

	wr := r.WindowSummary()
	require.NotNil(t, wr)
	assert.Equal(t, 6, wr.FromTick)
	assert.Equal(t, 10, wr.ToTick)
	assert.Equal(t, 5, wr.SampleCount)
	assert.InDelta(t, 4.0, wr.AvgSteps, 1e-9)
	assert.InDelta(t, 2.0, wr.AvgCostMs, 1e-9)
	assert.InDelta(t, 2.0, wr.MaxCostMs, 1e-9)
	assert.InDelta(t, 60.0, wr.AvgPower, 1e-9)
	assert.InDelta(t, 50.0, wr.StatusPct[fleet.Landed], 1e-9)
	assert.InDelta(t, 50.0, wr.StatusPct[fleet.Hovering], 1e-9)
	assert.Equal(t, 5, wr.Halvings)

	out := wr.Format()
	assert.Contains(t, out, "=== Fleet Report (T=6..10, 5 samples) ===")
	assert.Contains(t, out, "hovering")
	assert.Contains(t, r.FormatLatest(), "T=10")
}

func TestFormat_NilReport(t *testing.T) {
	var wr *WindowReport
	assert.Equal(t, "No data collected yet.\n", wr.Format())
	assert.Equal(t, "No data.\n", NewReporter(0).FormatLatest())
}

func TestAnalyze_SingleFlight(t *testing.T) {
	hs, rep, ticks := flyOne(t)
	run := Analyze(1, "solo", ticks, hs.Log, rep, hs.Sim.Snapshot())

	assert.Equal(t, "solo", run.Scenario)
	assert.Equal(t, 0, run.Markers.FirstTakeoff, "takeoff is commanded before the first tick")
	assert.Greater(t, run.Markers.FirstHovering, run.Markers.FirstTakeoff)
	assert.Greater(t, run.Markers.FirstLanding, run.Markers.FirstHovering)
	assert.Equal(t, ticks, run.Markers.AllLanded)
	assert.Equal(t, -1, run.Markers.FirstCollision)

	assert.Equal(t, 4, run.Totals.Status)
	assert.Equal(t, 1, run.Totals.Landing)
	assert.Equal(t, 1, run.Totals.Arrived+run.Totals.LowPower)
	assert.Zero(t, run.Totals.Collision)
	require.Len(t, run.Final, 1)
	assert.Equal(t, fleet.Landed, run.Final[0].Status)
	assert.NotNil(t, run.Window)
}

func TestFirstTick(t *testing.T) {
	entries := []fleet.FlightEvent{
		{Tick: 3, Drone: "a", Category: fleet.CatCommand, Key: fleet.KeyStart, Value: "start"},
		{Tick: 5, Drone: "b", Category: fleet.CatLanding, Key: fleet.CauseLowPower, Value: "power 19%"},
		{Tick: 9, Drone: "a", Category: fleet.CatLanding, Key: fleet.CauseArrived, Value: "at goal"},
	}
	assert.Equal(t, 5, FirstTick(entries, fleet.CatLanding, "", ""))
	assert.Equal(t, 9, FirstTick(entries, fleet.CatLanding, fleet.CauseArrived, ""))
	assert.Equal(t, 5, FirstTick(entries, fleet.CatLanding, "", "power"))
	assert.Equal(t, -1, FirstTick(entries, fleet.CatCollision, "", ""))
}

func TestFleetSummary(t *testing.T) {
	snap := fleet.Snapshot{
		Tick:  12,
		Steps: 7,
		Drones: []fleet.DroneState{
			{Name: "d1", Status: fleet.Hovering, Position: fleet.V2(10, 20), Goal: fleet.V2(300, 40),
				Power: 75, TargetServer: "north", Collision: true},
			{Name: "d2", Status: fleet.Landed, Position: fleet.V2(5, 5), Goal: fleet.V2(5, 5), Power: 50},
		},
	}
	out := FleetSummary(snap)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "T=12")
	assert.Contains(t, lines[0], "1/2 airborne")
	assert.Contains(t, lines[2], "10,20")
	assert.Contains(t, lines[2], "north !")
	assert.True(t, strings.HasSuffix(lines[3], "-"))
}

func TestWriteWorkbook(t *testing.T) {
	hs, rep, ticks := flyOne(t)
	run := Analyze(1, "solo", ticks, hs.Log, rep, hs.Sim.Snapshot())

	path := filepath.Join(t.TempDir(), "out", "fleet.xlsx")
	require.NoError(t, WriteWorkbook(path, []Run{run}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetRuns, sheetDrones, sheetEvents}, f.GetSheetList())

	rows, err := f.GetRows(sheetRuns)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Run", rows[0][0])
	assert.Equal(t, "solo", rows[1][1])

	rows, err = f.GetRows(sheetDrones)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d1", rows[1][1])
	assert.Equal(t, "landed", rows[1][2])

	rows, err = f.GetRows(sheetEvents)
	require.NoError(t, err)
	assert.Len(t, rows, len(run.Events)+1)
}
