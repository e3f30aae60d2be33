package recorder

import (
	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/influx"
	"github.com/Garsondee/Drone-Fleet/internal/storage"
	"github.com/rs/zerolog"
)

// FromConfig builds and initialises a recorder from the storage and influx
// settings. With storage.type "none" and influx disabled it records nothing.
func FromConfig(log zerolog.Logger) (*Recorder, error) {
	scfg := config.Storage()
	b, err := storage.NewBackend(scfg, log)
	if err != nil {
		return nil, err
	}
	backends := []storage.Backend{b}
	if icfg := config.Influx(); icfg.Enabled {
		backends = append(backends, influx.NewManager(icfg, log))
	}

	r := New(log, backends, WithSampleEvery(scfg.SampleEvery))
	r.Init()
	return r, nil
}
