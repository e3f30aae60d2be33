package gormstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/database"
	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "rec.db")}, zerolog.Nop())
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func count(t *testing.T, b *Backend, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, b.DB().Model(m).Count(&n).Error)
	return n
}

func TestSession_RoundTripsThroughSQLite(t *testing.T) {
	b := newFileBackend(t)
	start := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	s := &model.Session{ID: "sess-1", ScenarioName: "demo", StartTime: start}
	require.NoError(t, b.StartSession(s))

	require.NoError(t, b.RecordTick(model.NewTickStat(s.ID, start, fleet.TickReport{Tick: 1, Steps: 5})))
	ds, err := model.NewDroneState(s.ID, start, 1, fleet.DroneState{Name: "d1", Position: fleet.V2(10, 20)})
	require.NoError(t, err)
	require.NoError(t, b.RecordDroneState(ds))
	require.NoError(t, b.RecordEvent(model.NewFlightEvent(s.ID, start, fleet.FlightEvent{
		Tick: 1, Drone: "d1", Category: fleet.CatStatus, Key: "takeoff",
	})))

	// Nothing reaches the database before the buffer fills or the session ends.
	assert.Equal(t, int64(0), count(t, b, &model.TickStat{}))

	s.Ticks = 1
	s.EndTime = start.Add(time.Second)
	require.NoError(t, b.EndSession())

	assert.Equal(t, int64(1), count(t, b, &model.TickStat{}))
	assert.Equal(t, int64(1), count(t, b, &model.DroneState{}))
	assert.Equal(t, int64(1), count(t, b, &model.FlightEvent{}))

	var stored model.Session
	require.NoError(t, b.DB().First(&stored, "id = ?", "sess-1").Error)
	assert.Equal(t, 1, stored.Ticks)

	var ev model.FlightEvent
	require.NoError(t, b.DB().First(&ev).Error)
	assert.Equal(t, "takeoff", ev.Key)
}

func TestRecord_FlushesWhenBufferFills(t *testing.T) {
	b := newFileBackend(t)
	require.NoError(t, b.StartSession(&model.Session{ID: "sess-2"}))
	for i := 0; i < flushAt; i++ {
		require.NoError(t, b.RecordTick(&model.TickStat{SessionID: "sess-2", Tick: i}))
	}
	assert.Equal(t, int64(flushAt), count(t, b, &model.TickStat{}))
}

func TestEndSession_DumpsInMemoryDatabase(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "dump.db")
	b := NewSQLite(config.SQLiteConfig{DumpPath: dump}, zerolog.Nop())
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.StartSession(&model.Session{ID: "sess-mem"}))
	require.NoError(t, b.EndSession())

	_, err := os.Stat(dump)
	require.NoError(t, err)
}

func TestNewWithDB(t *testing.T) {
	db, err := database.OpenSqlite(filepath.Join(t.TempDir(), "w.db"))
	require.NoError(t, err)
	b := NewWithDB(db, zerolog.Nop())
	require.NoError(t, b.Init())
	assert.Equal(t, "sqlite", b.dialect)
}

func TestEndSession_WithoutSessionIsNoop(t *testing.T) {
	b := newFileBackend(t)
	assert.NoError(t, b.EndSession())
}
