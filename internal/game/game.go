package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/logging"
	"github.com/Garsondee/Drone-Fleet/internal/recorder"
	"github.com/Garsondee/Drone-Fleet/internal/report"
	"github.com/Garsondee/Drone-Fleet/internal/scenario"
	"github.com/Garsondee/Drone-Fleet/internal/telemetry"
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// panelWidth is the width of the drone and event panels right of the canvas.
const panelWidth = 320

// Options wires a Game to its scenario, settings and outputs. Recorder and
// Metrics may be nil.
type Options struct {
	Scenario string // file path, or "" for the built-in scenario
	Sim      config.SimConfig
	Viewer   config.ViewerConfig
	Recorder *recorder.Recorder
	Metrics  *telemetry.Metrics
	Log      zerolog.Logger
}

// Game implements ebiten.Game on top of a fleet.Simulator.
type Game struct {
	width  int // canvas width; the panels take panelWidth more
	height int

	sim      *fleet.Simulator
	loader   *scenario.Loader
	scenario string
	fleet    *scenario.Fleet
	simOpts  []fleet.Option
	log      zerolog.Logger
	tickLog  zerolog.Logger // sampled, for per-tick output

	recorder *recorder.Recorder
	metrics  *telemetry.Metrics
	reporter *report.Reporter
	events   *EventPanel

	ticker   ticker
	now      func() time.Time
	lastTick fleet.TickReport
	snap     fleet.Snapshot

	shaded        bool
	showHUD       bool
	coverage      *ebiten.Image
	coverageDirty bool
	flash         string // one-line feedback shown in the HUD
	flashUntil    time.Time

	copyText func(string) error
}

// New loads the scenario and builds the simulator. Nothing is drawn until
// ebiten starts calling Update and Draw.
func New(opts Options) (*Game, error) {
	if opts.Sim.TickPeriod <= 0 {
		opts.Sim.TickPeriod = 100 * time.Millisecond
	}
	if opts.Viewer.Width <= 0 || opts.Viewer.Height <= 0 {
		opts.Viewer.Width, opts.Viewer.Height = 1000, 800
	}

	g := &Game{
		width:    opts.Viewer.Width,
		height:   opts.Viewer.Height,
		loader:   scenario.NewLoader(opts.Log),
		scenario: opts.Scenario,
		log:      opts.Log,
		tickLog:  logging.Sampled(opts.Log),
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		reporter: report.NewReporter(0),
		events:   NewEventPanel(),
		ticker:   ticker{period: opts.Sim.TickPeriod},
		now:      time.Now,
		shaded:   opts.Viewer.Shaded,
		showHUD:  true,
		copyText: clipboard.WriteAll,
	}

	g.simOpts = append(opts.Sim.Options(), fleet.WithEventSink(g.events))
	if g.recorder != nil {
		g.simOpts = append(g.simOpts, fleet.WithEventSink(g.recorder))
	}
	if g.metrics != nil {
		g.simOpts = append(g.simOpts, fleet.WithEventSink(g.metrics))
	}
	g.sim = fleet.NewSimulator(g.simOpts...)

	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

// load resolves the scenario and replaces the simulator fleet with it. A
// failed load leaves the current fleet flying.
func (g *Game) load() error {
	f, err := g.loader.Resolve(g.scenario)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	for _, w := range f.Warnings {
		g.events.Note(g.snap.Tick, "scenario", w)
	}

	if g.recorder != nil && g.fleet != nil {
		if err := g.recorder.End(); err != nil {
			g.log.Error().Err(err).Msg("Ending recording session")
		}
	}

	g.fleet = f
	g.sim.Load(f.Servers, f.Drones)
	g.snap = g.sim.Snapshot()
	g.coverageDirty = true

	if g.recorder != nil {
		if _, err := g.recorder.Start(f.Name, f.Source, g.ticker.period); err != nil {
			g.log.Error().Err(err).Msg("Starting recording session")
		}
	}
	g.log.Info().Str("scenario", f.Name).Int("servers", len(f.Servers)).Int("drones", len(f.Drones)).
		Msg("Fleet loaded")
	return nil
}

// Update handles input, then fires a simulator tick once a tick period of
// wall time has passed.
func (g *Game) Update() error {
	g.handleInput()

	if elapsed, ok := g.ticker.due(g.now()); ok {
		g.simTick(elapsed)
	}
	return nil
}

// simTick runs one simulator tick and hands the result to every observer.
func (g *Game) simTick(elapsed time.Duration) {
	rep := g.sim.Tick(elapsed)
	g.lastTick = rep
	g.snap = g.sim.Snapshot()

	g.reporter.Collect(rep, g.snap)
	if g.recorder != nil {
		g.recorder.OnTick(rep, g.snap)
	}
	if g.metrics != nil {
		g.metrics.ObserveTick(rep)
	}
	g.tickLog.Debug().Int("tick", rep.Tick).Int("steps", rep.Steps).Dur("cost", rep.Cost).
		Int("airborne", rep.Airborne).Msg("Tick")
	if rep.NextSteps == 0 && rep.Steps > 0 {
		g.log.Warn().Int("tick", rep.Tick).Dur("cost", rep.Cost).Msg("Tick over budget, integration suspended")
	}
}

// Close ends the recording session, if any.
func (g *Game) Close() error {
	if g.recorder == nil {
		return nil
	}
	err := g.recorder.End()
	if cerr := g.recorder.Close(); err == nil {
		err = cerr
	}
	return err
}

// Draw renders the coverage canvas, the fleet and the side panels.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	g.drawCoverage(screen)
	for _, s := range g.snap.Servers {
		drawServer(screen, s)
	}
	for _, d := range g.snap.Drones {
		g.drawDrone(screen, d)
	}

	panelX := g.width
	dronesH := g.height / 2
	g.drawDronePanel(screen, panelX, dronesH)
	g.events.Draw(screen, panelX, dronesH, panelWidth, g.height-dronesH)

	g.drawStatusLine(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width + panelWidth, g.height
}

// WindowSize returns the full window size including the panels.
func (g *Game) WindowSize() (int, int) {
	return g.width + panelWidth, g.height
}

// Snapshot returns the fleet state as of the last tick or load.
func (g *Game) Snapshot() fleet.Snapshot {
	return g.snap
}

func (g *Game) setFlash(msg string) {
	g.flash = msg
	g.flashUntil = g.now().Add(3 * time.Second)
}
