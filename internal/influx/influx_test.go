package influx

import (
	"compress/gzip"
	"io"
	"os"
	"testing"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/model"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)

func TestDronePoint(t *testing.T) {
	pos, err := model.NewPosition(fleet.V2(10, 20))
	require.NoError(t, err)
	p := DronePoint("demo", &model.DroneState{
		SessionID: "s1", Time: at, Tick: 4, Drone: "d1", Status: "hovering", Position: pos, Power: 50,
	})
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.Contains(t, line, "drone_state,")
	assert.Contains(t, line, "drone=d1")
	assert.Contains(t, line, "scenario=demo")
	assert.Contains(t, line, "status=hovering")
	assert.Contains(t, line, "x=10")
	assert.Contains(t, line, "y=20")
	assert.Contains(t, line, "collision=false")
}

func TestDronePoint_EmptyPositionHasNoCoordinates(t *testing.T) {
	p := DronePoint("demo", &model.DroneState{SessionID: "s1", Time: at, Drone: "d1", Status: "landed"})
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.NotContains(t, line, "x=")
	assert.NotContains(t, line, "y=")
}

func TestTickPoint_NoEmptyScenarioTag(t *testing.T) {
	p := TickPoint("", &model.TickStat{SessionID: "s1", Time: at, Tick: 2, Steps: 6})
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.Contains(t, line, "fleet_tick,")
	assert.Contains(t, line, "session=s1")
	assert.NotContains(t, line, "scenario=")
	assert.Contains(t, line, "steps=6i")
}

func TestEventPoint(t *testing.T) {
	p := EventPoint("demo", &model.FlightEvent{
		SessionID: "s1", Time: at, Drone: "d2", Category: "collision", Key: "begin",
	})
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "flight_event,")
	assert.Contains(t, line, "category=collision")
	assert.Contains(t, line, "key=begin")
}

func TestInit_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop())
	assert.ErrorIs(t, m.Init(), ErrDisabled)
}

func TestInit_UnreachableFallsBackToBackup(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(config.InfluxConfig{
		Enabled:   true,
		Protocol:  "http",
		Host:      "127.0.0.1",
		Port:      "1",
		Org:       "fleet",
		Bucket:    "fleet",
		BackupDir: dir,
	}, zerolog.Nop())

	require.NoError(t, m.Init())
	assert.False(t, m.IsValid)

	require.NoError(t, m.StartSession(&model.Session{ID: "s1", ScenarioName: "demo"}))
	require.NoError(t, m.RecordTick(&model.TickStat{SessionID: "s1", Time: at, Tick: 1}))
	require.NoError(t, m.RecordDroneState(&model.DroneState{SessionID: "s1", Time: at, Drone: "d1", Status: "landed"}))
	require.NoError(t, m.EndSession())
	require.NoError(t, m.Close())

	f, err := os.Open(m.BackupPath())
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.Contains(t, string(data), "fleet_tick,")
	assert.Contains(t, string(data), "scenario=demo")
	assert.Contains(t, string(data), "drone_state,")
}

func TestWritePoint_WithoutInit(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop())
	assert.Error(t, m.WritePoint(TickPoint("", &model.TickStat{SessionID: "s"})))
}
