package tiler

import (
	"fmt"
	"io"
	"math"

	"github.com/dave/wherepoints/mapdata"
	"github.com/dave/wherepoints/routedata"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"golang.org/x/image/font/basicfont"
)

const (
	TileSize = 256
	MaxZoom  = 18
	margin   = 24
)

// Save renders the route preview to a PNG file.
func Save(fpath string, r *routedata.Route, size int) error {
	dc, err := render(r, size)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(fpath); err != nil {
		return fmt.Errorf("saving preview %q: %w", fpath, err)
	}
	return nil
}

// Render writes a size x size PNG overview of the track and its cues.
func Render(w io.Writer, r *routedata.Route, size int) error {
	dc, err := render(r, size)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding preview: %w", err)
	}
	return nil
}

func render(r *routedata.Route, size int) (*gg.Context, error) {
	if r.Track.Len() == 0 {
		return nil, fmt.Errorf("rendering preview: %w", routedata.ErrMissingInput)
	}
	if size <= 2*margin {
		return nil, fmt.Errorf("preview size %d is too small", size)
	}
	bound := mapdata.Bound(r)
	zoom := fitZoom(bound, float64(size-2*margin))
	project := projector(bound, zoom, float64(size))

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB(0.8, 0.1, 0.1)
	dc.SetLineWidth(2.0)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for i, p := range r.Track.Points {
		x, y := project(p.Lat, p.Lon)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()

	for _, c := range r.Cues {
		x, y := project(c.Pos.Lat, c.Pos.Lon)
		dc.SetRGB(0.1, 0.3, 0.8)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawString(c.Name, x+5, y-5)
	}

	line := r.Track.Line()
	first, last := line.Start(), line.End()
	dc.SetRGB(0, 0, 0)
	startX, startY := project(first.Lat, first.Lon)
	dc.DrawStringAnchored(r.Name+" (start)", startX, startY, 0, 1)
	endX, endY := project(last.Lat, last.Lon)
	dc.DrawStringAnchored(r.Name+" (end)", endX, endY, 1, 0)
	return dc, nil
}

// fitZoom is the largest zoom level at which the bound fits in px pixels.
func fitZoom(b orb.Bound, px float64) int {
	for z := MaxZoom; z > 0; z-- {
		x0, y0 := latLonToPixelXY(b.Max.Lat(), b.Min.Lon(), z)
		x1, y1 := latLonToPixelXY(b.Min.Lat(), b.Max.Lon(), z)
		if x1-x0 <= px && y1-y0 <= px {
			return z
		}
	}
	return 0
}

// projector maps lat/lon to image pixels with the bound centered in the image.
func projector(b orb.Bound, zoom int, size float64) func(lat, lon float64) (float64, float64) {
	center := b.Center()
	cx, cy := latLonToPixelXY(center.Lat(), center.Lon(), zoom)
	return func(lat, lon float64) (float64, float64) {
		x, y := latLonToPixelXY(lat, lon, zoom)
		return x - cx + size/2, y - cy + size/2
	}
}

// latLonToPixelXY converts latitude and longitude to world pixel coordinates at a zoom level.
func latLonToPixelXY(lat, lon float64, zoom int) (float64, float64) {
	sinLat := math.Sin(lat * math.Pi / 180.0)
	pixelX := ((lon + 180.0) / 360.0) * TileSize * math.Exp2(float64(zoom))
	pixelY := (0.5 - math.Log((1.0+sinLat)/(1.0-sinLat))/(4.0*math.Pi)) * TileSize * math.Exp2(float64(zoom))
	return pixelX, pixelY
}
