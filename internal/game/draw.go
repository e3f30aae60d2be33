package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/Drone-Fleet/internal/fleet"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	serverRadius = 6 // 12px disc
	rotorRadius  = fleet.DroneIconSize / 8
	armLength    = fleet.DroneIconSize / 4
)

var (
	goalLineColor   = color.RGBA{R: 30, G: 30, B: 30, A: 140}
	collisionColor  = color.RGBA{R: 220, G: 30, B: 30, A: 220}
	ledFrontColor   = color.RGBA{R: 40, G: 230, B: 60, A: 255}
	ledRearColor    = color.RGBA{R: 240, G: 40, B: 40, A: 255}
	panelBackground = color.RGBA{R: 10, G: 12, B: 14, A: 248}
)

// drawCoverage blits the nearest-server map, regenerating it after a load
// or a shading toggle.
func (g *Game) drawCoverage(screen *ebiten.Image) {
	if g.coverage == nil {
		g.coverage = ebiten.NewImage(g.width, g.height)
		g.coverageDirty = true
	}
	if g.coverageDirty {
		img := g.sim.Classifier().Coverage(g.width, g.height, g.shaded)
		g.coverage.WritePixels(img.Pix)
		g.coverageDirty = false
	}
	screen.DrawImage(g.coverage, nil)
}

func drawServer(screen *ebiten.Image, s fleet.Server) {
	x, y := s.Position.X, s.Position.Y
	vector.FillCircle(screen, x, y, serverRadius, s.Color, true)
	vector.StrokeCircle(screen, x, y, serverRadius, 1.5, color.Black, true)
	ebitenutil.DebugPrintAt(screen, s.Name, int(x)+serverRadius+2, int(y)-8)
}

// heading converts an azimuth (0 faces up the screen) into a unit vector.
func heading(azimuth float64) (float64, float64) {
	rad := azimuth * math.Pi / 180
	return -math.Sin(rad), -math.Cos(rad)
}

func (g *Game) drawDrone(screen *ebiten.Image, d fleet.DroneState) {
	x, y := d.Position.X, d.Position.Y
	body := g.fleet.Colors[d.Name]
	if body.A == 0 {
		body = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	}

	if d.Status != fleet.Landed {
		vector.StrokeLine(screen, x, y, d.Goal.X, d.Goal.Y, 1, goalLineColor, true)
	}
	if d.Collision {
		r := float32(g.sim.CollisionDistance() / 2)
		vector.StrokeCircle(screen, x, y, r, 2, collisionColor, true)
	}

	hx, hy := heading(d.Azimuth)
	for i := 0; i < 4; i++ {
		// Arms at ±45° and ±135° from the heading.
		a := math.Pi/4 + float64(i)*math.Pi/2
		ax := hx*math.Cos(a) - hy*math.Sin(a)
		ay := hx*math.Sin(a) + hy*math.Cos(a)
		rx := x + float32(ax*armLength)
		ry := y + float32(ay*armLength)
		vector.StrokeLine(screen, x, y, rx, ry, 3, body, true)
		vector.StrokeCircle(screen, rx, ry, rotorRadius, 2, body, true)

		if d.Status != fleet.Landed {
			led := ledRearColor
			if i == 0 || i == 3 {
				led = ledFrontColor
			}
			vector.FillCircle(screen, rx, ry, 2.5, led, true)
		}
	}
	vector.FillCircle(screen, x, y, 5, body, true)
	ebitenutil.DebugPrintAt(screen, d.Name, int(x)-len(d.Name)*3, int(y)+armLength+rotorRadius)
}

// drawDronePanel lists each drone with power and speed bars.
func (g *Game) drawDronePanel(screen *ebiten.Image, x, h int) {
	px := float32(x)
	vector.FillRect(screen, px, 0, panelWidth, float32(h), panelBackground, false)
	vector.StrokeLine(screen, px, 0, px, float32(h), 1.0, color.RGBA{R: 50, G: 60, B: 70, A: 255}, false)
	vector.FillRect(screen, px, 0, panelWidth, 16, color.RGBA{R: 20, G: 26, B: 32, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("DRONES  %d/%d airborne", g.snap.Airborne(), len(g.snap.Drones)), x+8, 1)

	const rowH = 34
	const barW = 120
	y := 22
	for _, d := range g.snap.Drones {
		if y+rowH > h {
			break
		}
		col := g.fleet.Colors[d.Name]
		vector.FillRect(screen, px+6, float32(y+3), 6, 10, col, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-8s %-9s %s", d.Name, d.Status, d.TargetServer), x+16, y)

		power := d.Power / 100
		speed := d.Speed / fleet.MaxSpeed
		drawBar(screen, px+16, float32(y+17), barW, power, powerColor(d.Power))
		drawBar(screen, px+16+barW+40, float32(y+17), barW/2, speed, color.RGBA{R: 90, G: 170, B: 240, A: 255})
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%3.0f%%", d.Power), x+16+barW+4, y+12)
		y += rowH
	}
}

func powerColor(pct float64) color.RGBA {
	switch {
	case pct >= 50:
		return color.RGBA{R: 70, G: 200, B: 90, A: 255}
	case pct >= 20:
		return color.RGBA{R: 230, G: 190, B: 50, A: 255}
	default:
		return color.RGBA{R: 220, G: 60, B: 60, A: 255}
	}
}

// drawBar draws a horizontal gauge; frac is clamped to [0,1].
func drawBar(screen *ebiten.Image, x, y, w float32, frac float64, c color.Color) {
	frac = math.Max(0, math.Min(1, frac))
	vector.FillRect(screen, x, y, w, 6, color.RGBA{R: 40, G: 44, B: 48, A: 255}, false)
	vector.FillRect(screen, x, y, w*float32(frac), 6, c, false)
}

func (g *Game) drawStatusLine(screen *ebiten.Image) {
	line := g.lastTick.StatusText()
	if g.ticker.paused {
		line += "  PAUSED"
	}
	vector.FillRect(screen, 0, float32(g.height-16), float32(g.width), 16, color.RGBA{A: 160}, false)
	ebitenutil.DebugPrintAt(screen, line, 6, g.height-16)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("scenario: %s  T=%d", g.fleet.Name, g.snap.Tick),
		"click=start next drone  S=stop all",
		"V=shading  R=reload  P=pause",
		"C=copy report  H=hide help",
	}
	if g.recorder != nil && g.recorder.SessionID() != "" {
		lines = append(lines, "session: "+g.recorder.SessionID())
	}
	if g.flash != "" && g.now().Before(g.flashUntil) {
		lines = append(lines, "> "+g.flash)
	}

	const lineH = 16
	const charW = 6
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + 10)
	boxH := float32(len(lines)*lineH + 8)
	vector.FillRect(screen, 4, 4, boxW, boxH, color.RGBA{R: 6, G: 8, B: 10, A: 200}, false)
	vector.StrokeRect(screen, 4, 4, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 100, A: 180}, false)
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 9, 8+i*lineH)
	}
}
