package gpx

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
	gpxgo "github.com/tkrajina/gpxgo/gpx"
)

// File is the content of a base or POI gpx file
type File struct {
	Name        string
	Track       []routedata.TrackPoint // all segments of all tracks, in file order
	Waypoints   []routedata.Annotation
	RoutePoints []routedata.Annotation
}

func Load(fpath string) (*File, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fpath, err)
	}
	g, err := gpxgo.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", fpath, routedata.ErrParse, err)
	}
	return fromGPX(g), nil
}

func Decode(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gpx: %w", err)
	}
	g, err := gpxgo.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("parsing gpx: %w: %w", routedata.ErrParse, err)
	}
	return fromGPX(g), nil
}

func fromGPX(g *gpxgo.GPX) *File {
	f := &File{Name: g.Name}
	for _, trk := range g.Tracks {
		if f.Name == "" {
			f.Name = trk.Name
		}
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				f.Track = append(f.Track, routedata.TrackPoint{Pos: PointPos(p), HasEle: p.Elevation.NotNull()})
			}
		}
	}
	for _, w := range g.Waypoints {
		f.Waypoints = append(f.Waypoints, annotation(w, "Waypoint", routedata.SourceWaypoint))
	}
	for _, rte := range g.Routes {
		for _, p := range rte.Points {
			f.RoutePoints = append(f.RoutePoints, annotation(p, "Cue", routedata.SourceRoutePoint))
		}
	}
	return f
}

func annotation(p gpxgo.GPXPoint, defaultName string, source routedata.Source) routedata.Annotation {
	a := routedata.Annotation{
		Name:   p.Name,
		Pos:    PointPos(p),
		HasEle: p.Elevation.NotNull(),
		Notes:  p.Description,
		Source: source,
	}
	if a.Name == "" {
		a.Name = defaultName
	}
	if a.Notes == "" {
		a.Notes = a.Name
	}
	if t, ok := routedata.ParseCueType(p.Type); ok {
		a.Type = t
	} else {
		a.Type = routedata.Classify(a.Name)
	}
	return a
}

// Extra returns the waypoints and route points of a POI file as extra annotations.
func (f *File) Extra() []routedata.Annotation {
	var out []routedata.Annotation
	for _, list := range [][]routedata.Annotation{f.Waypoints, f.RoutePoints} {
		for _, a := range list {
			a.Source = routedata.SourceExtra
			out = append(out, a)
		}
	}
	return out
}

func PointPos(p gpxgo.GPXPoint) geo.Pos {
	pos := geo.Pos{Lat: p.Latitude, Lon: p.Longitude}
	if p.Elevation.NotNull() {
		pos.Ele = p.Elevation.Value()
	}
	return pos
}

// PosPoint converts a position. The elevation is only written when hasEle is set and it is finite.
func PosPoint(pos geo.Pos, hasEle bool) gpxgo.GPXPoint {
	var p gpxgo.GPXPoint
	p.Latitude = pos.Lat
	p.Longitude = pos.Lon
	if hasEle && !math.IsNaN(pos.Ele) && !math.IsInf(pos.Ele, 0) {
		p.Elevation = *gpxgo.NewNullableFloat64(math.Round(pos.Ele*10) / 10)
	}
	return p
}

// EncodeWaypoints writes the cues as a waypoint-only GPX 1.1 document, sorted by distance.
func EncodeWaypoints(w io.Writer, name string, cues []routedata.Cue) error {
	sorted := make([]routedata.Cue, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Distance < sorted[j].Distance })

	g := &gpxgo.GPX{
		Creator: "wherepoints",
		Name:    fmt.Sprintf("%s CSV Cues as GPX Waypoints", name),
	}
	for _, c := range sorted {
		wp := PosPoint(c.Pos, c.HasEle)
		wp.Name = c.Name
		wp.Description = c.Notes
		wp.Type = c.Type.String()
		wp.Timestamp = c.Time
		g.Waypoints = append(g.Waypoints, wp)
	}
	b, err := g.ToXml(gpxgo.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("encoding gpx: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing gpx: %w", err)
	}
	return nil
}
