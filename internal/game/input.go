package game

import (
	"strings"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/Garsondee/Drone-Fleet/internal/report"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type action int

const (
	actionToggleShading action = iota
	actionStopAll
	actionReload
	actionPause
	actionCopyReport
	actionToggleHUD
)

// keyActions maps edge-triggered keys to viewer actions.
var keyActions = map[ebiten.Key]action{
	ebiten.KeyV: actionToggleShading,
	ebiten.KeyS: actionStopAll,
	ebiten.KeyR: actionReload,
	ebiten.KeyP: actionPause,
	ebiten.KeyC: actionCopyReport,
	ebiten.KeyH: actionToggleHUD,
}

func (g *Game) handleInput() {
	for k, a := range keyActions {
		if inpututil.IsKeyJustPressed(k) {
			g.apply(a)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		g.click(mx, my)
	}
}

// click sends the next landed drone (in name order) to the clicked point.
// Clicks on the panels are ignored.
func (g *Game) click(mx, my int) {
	if mx < 0 || my < 0 || mx >= g.width || my >= g.height {
		return
	}
	name, ok := g.sim.StartNext(fleet.V2(float64(mx), float64(my)))
	if !ok {
		g.setFlash("no landed drone to start")
		return
	}
	g.log.Debug().Str("drone", name).Int("x", mx).Int("y", my).Msg("Drone started")
	g.snap = g.sim.Snapshot()
}

func (g *Game) apply(a action) {
	switch a {
	case actionToggleShading:
		g.shaded = !g.shaded
		g.coverageDirty = true

	case actionStopAll:
		n := g.sim.StopAll()
		g.log.Info().Int("drones", n).Msg("Stop all")
		g.snap = g.sim.Snapshot()

	case actionReload:
		if err := g.load(); err != nil {
			g.log.Error().Err(err).Msg("Reload failed")
			g.setFlash("reload failed: " + err.Error())
			return
		}
		g.setFlash("reloaded " + g.fleet.Name)

	case actionPause:
		g.ticker.setPaused(!g.ticker.paused)

	case actionCopyReport:
		if err := g.copyText(g.reportText()); err != nil {
			g.log.Warn().Err(err).Msg("Clipboard copy failed")
			g.setFlash("clipboard unavailable")
			return
		}
		g.setFlash("fleet report copied")

	case actionToggleHUD:
		g.showHUD = !g.showHUD
	}
}

// reportText is the fleet table followed by the sliding-window summary.
func (g *Game) reportText() string {
	var sb strings.Builder
	sb.WriteString(report.FleetSummary(g.snap))
	sb.WriteByte('\n')
	sb.WriteString(g.reporter.WindowSummary().Format())
	return sb.String()
}
