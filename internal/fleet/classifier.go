package fleet

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// shadeRadius is the distance under which a classified colour is lightened.
	shadeRadius   = 50
	shadeLighten  = 20
	shadeDarken   = -10
	lightnessSpan = 255
)

// background is returned for points when no server exists.
var background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Classifier assigns plane points to their nearest server (a brute-force
// Voronoi partition). Servers keep their list order, which decides ties.
type Classifier struct {
	servers []Server
}

func NewClassifier(servers ...Server) *Classifier {
	c := &Classifier{servers: make([]Server, len(servers))}
	copy(c.servers, servers)
	return c
}

func (c *Classifier) Len() int { return len(c.servers) }

// Servers returns a deep copy of the server list in classification order.
func (c *Classifier) Servers() []Server {
	out := make([]Server, len(c.servers))
	for i, s := range c.servers {
		s.neighbors = s.Neighbors()
		out[i] = s
	}
	return out
}

// Nearest returns the closest server to p and its distance. Equal distances
// resolve to the earlier server. ok is false when there are no servers.
func (c *Classifier) Nearest(p Vec2) (srv Server, dist float64, ok bool) {
	best := -1
	dist = math.MaxFloat64
	for i := range c.servers {
		d := c.servers[i].Position.Sub(p).Length()
		if d < dist {
			dist = d
			best = i
		}
	}
	if best < 0 {
		return Server{}, 0, false
	}
	return c.servers[best], dist, true
}

// Classify returns the nearest server together with a display colour: the
// server colour lightened near the server and darkened elsewhere.
func (c *Classifier) Classify(p Vec2) (Server, color.RGBA, bool) {
	srv, dist, ok := c.Nearest(p)
	if !ok {
		return Server{}, background, false
	}
	delta := shadeDarken
	if dist < shadeRadius {
		delta = shadeLighten
	}
	return srv, shade(srv.Color, delta), true
}

// FindByName is a linear scan over the servers.
func (c *Classifier) FindByName(name string) (Server, bool) {
	for i := range c.servers {
		if c.servers[i].Name == name {
			return c.servers[i], true
		}
	}
	return Server{}, false
}

// Clear resets every server's neighbor list. Classification is unaffected.
func (c *Classifier) Clear() {
	for i := range c.servers {
		c.servers[i].clear()
	}
}

// shade moves the HSL lightness of c by delta on a 0..255 scale, clamped.
// Lightness is measured as (max+min)/2 of the 8-bit channels.
func shade(c color.RGBA, delta int) color.RGBA {
	hi := max(c.R, c.G, c.B)
	lo := min(c.R, c.G, c.B)
	l := (int(hi)+int(lo))/2 + delta
	l = max(0, min(lightnessSpan, l))

	h, s, _ := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsl()
	r, g, b := colorful.Hsl(h, s, float64(l)/lightnessSpan).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: c.A}
}
