package recorder

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/model"
	"github.com/Garsondee/Drone-Fleet/internal/storage"
	"github.com/Garsondee/Drone-Fleet/internal/storage/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fleet.EventSink = (*Recorder)(nil)

// brokenBackend fails every write.
type brokenBackend struct {
	initErr error
	writes  int
}

func (b *brokenBackend) Init() error                       { return b.initErr }
func (b *brokenBackend) Close() error                      { return nil }
func (b *brokenBackend) StartSession(*model.Session) error { return nil }
func (b *brokenBackend) EndSession() error                 { return nil }
func (b *brokenBackend) RecordTick(*model.TickStat) error  { b.writes++; return errors.New("disk full") }
func (b *brokenBackend) RecordEvent(*model.FlightEvent) error {
	b.writes++
	return errors.New("disk full")
}
func (b *brokenBackend) RecordDroneState(*model.DroneState) error {
	b.writes++
	return errors.New("disk full")
}

func flight(t *testing.T, rec *Recorder) *fleet.HeadlessSim {
	t.Helper()
	hs := fleet.NewHeadlessSim(
		fleet.WithServer("base", 200, 0, color.RGBA{R: 255, A: 255}),
		fleet.WithDrone("d1", 0, 0, "base"),
		fleet.WithDrone("d2", 0, 300, "base"),
		fleet.WithSimOptions(fleet.WithEventSink(rec)),
	)
	_, err := hs.Sim.Start("d1")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		rep := hs.Sim.Tick(100 * time.Millisecond)
		rec.OnTick(rep, hs.Sim.Snapshot())
	}
	return hs
}

func TestRecorder_SamplesAndRecords(t *testing.T) {
	mem := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	rec := New(zerolog.Nop(), []storage.Backend{mem, nil}, WithSampleEvery(5))
	rec.Init()
	require.True(t, rec.Enabled())

	id, err := rec.Start("demo", map[string]string{"k": "v"}, 100*time.Millisecond)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.SessionID())

	hs := flight(t, rec)

	ticks, states, events := mem.Counts()
	assert.Equal(t, 20, ticks)
	assert.Equal(t, 4*2, states, "ticks 5,10,15,20 for two drones")
	assert.Equal(t, len(hs.Log.Entries()), events)

	require.NoError(t, rec.End())
	assert.Empty(t, rec.SessionID())
	assert.NotEmpty(t, mem.ExportedFilePath())
	require.NoError(t, rec.Close())
}

func TestRecorder_NothingBeforeStart(t *testing.T) {
	mem := memory.New(config.MemoryConfig{})
	rec := New(zerolog.Nop(), []storage.Backend{mem})
	rec.Init()

	rec.Record(fleet.FlightEvent{Drone: "d1", Category: fleet.CatStatus})
	rec.OnTick(fleet.TickReport{Tick: 1}, fleet.Snapshot{})
	ticks, states, events := mem.Counts()
	assert.Zero(t, ticks+states+events)
	assert.NoError(t, rec.End())
}

func TestRecorder_BrokenBackendDoesNotStopOthers(t *testing.T) {
	broken := &brokenBackend{}
	mem := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	rec := New(zerolog.Nop(), []storage.Backend{broken, mem})
	rec.Init()
	_, err := rec.Start("demo", nil, 100*time.Millisecond)
	require.NoError(t, err)

	flight(t, rec)

	ticks, _, _ := mem.Counts()
	assert.Equal(t, 20, ticks)
	assert.Greater(t, broken.writes, 20, "writes keep being attempted")
}

func TestRecorder_InitDropsFailingBackends(t *testing.T) {
	rec := New(zerolog.Nop(), []storage.Backend{&brokenBackend{initErr: errors.New("no db")}})
	rec.Init()
	assert.False(t, rec.Enabled())
}

func TestFromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	r, err := FromConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	viper.Set("storage.type", "memory")
	viper.Set("storage.memory.outputDir", t.TempDir())
	r, err = FromConfig(zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, r.Enabled())

	viper.Set("storage.type", "floppy")
	_, err = FromConfig(zerolog.Nop())
	assert.Error(t, err)
}

func TestRecorder_SkipsUnrecordableDroneState(t *testing.T) {
	mem := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	rec := New(zerolog.Nop(), []storage.Backend{mem}, WithSampleEvery(1))
	rec.Init()
	_, err := rec.Start("demo", nil, 100*time.Millisecond)
	require.NoError(t, err)

	rec.OnTick(fleet.TickReport{Tick: 1}, fleet.Snapshot{Drones: []fleet.DroneState{
		{Name: "lost", Position: fleet.V2(math.NaN(), 0)},
		{Name: "ok", Position: fleet.V2(10, 10)},
	}})

	ticks, states, _ := mem.Counts()
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 1, states, "the non-finite state is dropped, the rest are kept")
	require.NoError(t, rec.End())
}
