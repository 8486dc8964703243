// Package mapdata converts routes to and from GeoJSON.
package mapdata

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func LineString(t *routedata.Track) orb.LineString {
	ls := make(orb.LineString, t.Len())
	for i, p := range t.Points {
		ls[i] = PosPoint(p.Pos)
	}
	return ls
}

func PosPoint(pos geo.Pos) orb.Point {
	return orb.Point{pos.Lon, pos.Lat}
}

func PointPos(p orb.Point) geo.Pos {
	return geo.Pos{Lat: p.Lat(), Lon: p.Lon()}
}

// Bound is the bounding box of the track and every cue.
func Bound(r *routedata.Route) orb.Bound {
	var mp orb.MultiPoint
	for _, p := range r.Track.Points {
		mp = append(mp, PosPoint(p.Pos))
	}
	for _, c := range r.Cues {
		mp = append(mp, PosPoint(c.Pos))
	}
	return mp.Bound()
}

// FeatureCollection has one LineString feature for the track, with the point times in
// coordTimes, followed by one Point feature per cue.
func FeatureCollection(r *routedata.Route) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(LineString(r.Track))
	coordTimes := make([]string, r.Track.Len())
	for i, p := range r.Track.Points {
		coordTimes[i] = formatTime(p.Time)
	}
	line.Properties["name"] = r.Name
	line.Properties["length_m"] = r.Length()
	line.Properties["coordTimes"] = coordTimes
	if r.Track.Len() > 0 {
		line.Properties["time"] = coordTimes[0]
	}
	fc.Append(line)

	for _, c := range r.Cues {
		f := geojson.NewFeature(PosPoint(c.Pos))
		f.Properties["name"] = c.Name
		f.Properties["type"] = c.Type.String()
		f.Properties["notes"] = c.Notes
		f.Properties["distance_m"] = c.Distance
		f.Properties["index"] = c.Index
		f.Properties["time"] = formatTime(c.Time)
		fc.Append(f)
	}
	return fc
}

func Encode(w io.Writer, r *routedata.Route) error {
	b, err := FeatureCollection(r).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}
	return nil
}

func Save(fpath string, r *routedata.Route) error {
	f, err := os.Create(fpath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", fpath, err)
	}
	if err := Encode(f, r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", fpath, err)
	}
	return nil
}

// Decode reads a base track and waypoints from a feature collection. LineString and
// MultiLineString features are joined into the track, Point features become waypoints.
// GeoJSON coordinates are read without elevation.
func Decode(r io.Reader) ([]routedata.TrackPoint, []routedata.Annotation, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing geojson: %w: %w", routedata.ErrParse, err)
	}
	var track []routedata.TrackPoint
	var waypoints []routedata.Annotation
	addLine := func(ls orb.LineString) {
		for _, p := range ls {
			track = append(track, routedata.TrackPoint{Pos: PointPos(p)})
		}
	}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.LineString:
			addLine(g)
		case orb.MultiLineString:
			for _, ls := range g {
				addLine(ls)
			}
		case orb.Point:
			a := routedata.Annotation{
				Name:   f.Properties.MustString("name", "Waypoint"),
				Pos:    PointPos(g),
				Source: routedata.SourceWaypoint,
			}
			a.Notes = f.Properties.MustString("notes", a.Name)
			if t, ok := routedata.ParseCueType(f.Properties.MustString("type", "")); ok {
				a.Type = t
			} else {
				a.Type = routedata.Classify(a.Name)
			}
			waypoints = append(waypoints, a)
		}
	}
	return track, waypoints, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
