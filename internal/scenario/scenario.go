// Package scenario loads fleet layouts (servers and drones) from JSON, YAML
// or TOML files and turns them into simulator entities.
package scenario

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var (
	// ErrMissingField is returned when a descriptor lacks a required field.
	ErrMissingField = errors.New("missing field")
	// ErrDuplicateName is returned when two servers or two drones share a name.
	ErrDuplicateName = errors.New("duplicate name")
)

// defaultDroneColor is used for drones that do not specify one.
var defaultDroneColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// ServerSpec describes a server as written in a scenario file.
type ServerSpec struct {
	Name     string `json:"name" mapstructure:"name"`
	Position string `json:"position" mapstructure:"position"` // "x,y"
	Color    string `json:"color" mapstructure:"color"`
}

// DroneSpec describes a drone as written in a scenario file.
type DroneSpec struct {
	Name     string `json:"name" mapstructure:"name"`
	Position string `json:"position" mapstructure:"position"`
	Color    string `json:"color" mapstructure:"color"`
	Server   string `json:"server" mapstructure:"server"` // target server name
}

// Scenario is the raw content of a scenario file.
type Scenario struct {
	Name    string       `json:"name" mapstructure:"name"`
	Servers []ServerSpec `json:"servers" mapstructure:"servers"`
	Drones  []DroneSpec  `json:"drones" mapstructure:"drones"`
}

// Fleet is a validated scenario ready to hand to a Simulator.
type Fleet struct {
	Name     string
	Servers  []fleet.Server
	Drones   []*fleet.Drone
	Colors   map[string]color.RGBA // drone name → display colour
	Warnings []string

	// Source is the descriptor the fleet was built from.
	Source *Scenario
}

// Loader reads scenario files.
type Loader struct {
	log zerolog.Logger
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads a scenario file; the format follows the file extension.
func (l *Loader) Load(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	sc, err := decode(v)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	l.log.Info().Str("path", path).Int("servers", len(sc.Servers)).Int("drones", len(sc.Drones)).
		Msg("Scenario loaded")
	return sc, nil
}

// Read parses a scenario from r in the given format ("json", "yaml", "toml").
func (l *Loader) Read(r io.Reader, format string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error parsing scenario: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Scenario, error) {
	var sc Scenario
	if err := v.Unmarshal(&sc); err != nil {
		return nil, fmt.Errorf("error decoding scenario: %w", err)
	}
	return &sc, nil
}

// Build validates sc and creates its servers and drones. Malformed entries
// fail the whole build; a drone whose target server does not exist only
// produces a warning, since such a drone simply holds its goal.
func (l *Loader) Build(sc *Scenario) (*Fleet, error) {
	f := &Fleet{Name: sc.Name, Source: sc, Colors: make(map[string]color.RGBA, len(sc.Drones))}

	serverNames := make(map[string]bool, len(sc.Servers))
	for i, s := range sc.Servers {
		if s.Name == "" {
			return nil, fmt.Errorf("server %d: name: %w", i, ErrMissingField)
		}
		if serverNames[s.Name] {
			return nil, fmt.Errorf("server %q: %w", s.Name, ErrDuplicateName)
		}
		serverNames[s.Name] = true

		pos, err := requirePosition(s.Position)
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", s.Name, err)
		}
		if s.Color == "" {
			return nil, fmt.Errorf("server %q: color: %w", s.Name, ErrMissingField)
		}
		col, err := ParseColor(s.Color)
		if err != nil {
			return nil, fmt.Errorf("server %q: %q: %w", s.Name, s.Color, err)
		}
		f.Servers = append(f.Servers, fleet.NewServer(s.Name, pos, col))
		l.log.Debug().Str("server", s.Name).Str("position", s.Position).Str("color", HexString(col)).
			Msg("Loaded server")
	}

	droneNames := make(map[string]bool, len(sc.Drones))
	for i, d := range sc.Drones {
		if d.Name == "" {
			return nil, fmt.Errorf("drone %d: name: %w", i, ErrMissingField)
		}
		if droneNames[d.Name] {
			return nil, fmt.Errorf("drone %q: %w", d.Name, ErrDuplicateName)
		}
		droneNames[d.Name] = true

		pos, err := requirePosition(d.Position)
		if err != nil {
			return nil, fmt.Errorf("drone %q: %w", d.Name, err)
		}
		col := defaultDroneColor
		if d.Color != "" {
			if col, err = ParseColor(d.Color); err != nil {
				return nil, fmt.Errorf("drone %q: %q: %w", d.Name, d.Color, err)
			}
		}

		drone := fleet.NewDrone(d.Name)
		drone.SetInitialPosition(pos)
		drone.SetTargetServer(d.Server)
		f.Drones = append(f.Drones, drone)
		f.Colors[d.Name] = col

		if d.Server != "" && !serverNames[d.Server] {
			w := fmt.Sprintf("drone %q targets unknown server %q", d.Name, d.Server)
			f.Warnings = append(f.Warnings, w)
			l.log.Warn().Str("drone", d.Name).Str("server", d.Server).Msg("Drone targets unknown server")
		}
		l.log.Debug().Str("drone", d.Name).Str("position", d.Position).Str("server", d.Server).
			Msg("Loaded drone")
	}
	return f, nil
}

// LoadFleet is Load followed by Build.
func (l *Loader) LoadFleet(path string) (*Fleet, error) {
	sc, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return l.Build(sc)
}

func requirePosition(s string) (fleet.Vec2, error) {
	if s == "" {
		return fleet.Vec2{}, fmt.Errorf("position: %w", ErrMissingField)
	}
	pos, err := ParsePosition(s)
	if err != nil {
		return fleet.Vec2{}, fmt.Errorf("position %q: %w", s, err)
	}
	return pos, nil
}
