package fleet

import (
	"image"
	"image/color"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Coverage renders the nearest-server map for a w×h canvas, one classification
// per pixel. shaded selects the lightness-adjusted colours of Classify; the
// plain map uses the raw server colour.
func (c *Classifier) Coverage(w, h int, shaded bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}

	workers := runtime.GOMAXPROCS(0)
	bands := min(4*workers, h)
	rows := (h + bands - 1) / bands

	// Bands write disjoint rows and never fail; the group bounds and joins them.
	var eg errgroup.Group
	eg.SetLimit(workers)
	for y0 := 0; y0 < h; y0 += rows {
		y1 := min(y0+rows, h)
		eg.Go(func() error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					img.SetRGBA(x, y, c.pixel(V2(float64(x), float64(y)), shaded))
				}
			}
			return nil
		})
	}
	eg.Wait() //nolint:errcheck // band workers always return nil
	return img
}

func (c *Classifier) pixel(p Vec2, shaded bool) color.RGBA {
	if shaded {
		_, col, _ := c.Classify(p)
		return col
	}
	srv, _, ok := c.Nearest(p)
	if !ok {
		return background
	}
	return srv.Color
}
