package mapdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
	"github.com/paulmach/orb"
)

func testRoute(t *testing.T) *routedata.Route {
	t.Helper()
	r, err := routedata.Assemble(routedata.Input{
		Name: "ride",
		Track: []routedata.TrackPoint{
			{Pos: geo.Pos{Lat: 46.0, Lon: 11.0}},
			{Pos: geo.Pos{Lat: 46.0, Lon: 11.01}},
			{Pos: geo.Pos{Lat: 46.01, Lon: 11.02}},
		},
		Waypoints: []routedata.Annotation{
			{Name: "Summit", Pos: geo.Pos{Lat: 46.02, Lon: 11.03}, Type: routedata.Generic},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFeatureCollection(t *testing.T) {
	r := testRoute(t)
	fc := FeatureCollection(r)
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2", len(fc.Features))
	}
	ls, ok := fc.Features[0].Geometry.(orb.LineString)
	if !ok || len(ls) != r.Track.Len() {
		t.Fatalf("line = %v", fc.Features[0].Geometry)
	}
	if ls[1] != (orb.Point{11.01, 46.0}) {
		t.Errorf("point 1 = %v, want lon,lat", ls[1])
	}
	if times := fc.Features[0].Properties["coordTimes"].([]string); times[0] != "2025-07-14T08:30:51Z" {
		t.Errorf("first time = %q", times[0])
	}

	// the summit is off the end of the track and snaps to the last point
	pt := fc.Features[1]
	if pt.Geometry.(orb.Point) != (orb.Point{11.02, 46.01}) {
		t.Errorf("cue at %v", pt.Geometry)
	}
	if pt.Properties["name"] != "Summit" || pt.Properties["index"] != 2 {
		t.Errorf("cue properties = %v", pt.Properties)
	}
}

func TestBound(t *testing.T) {
	b := Bound(testRoute(t))
	if b.Min != (orb.Point{11.0, 46.0}) || b.Max != (orb.Point{11.02, 46.01}) {
		t.Errorf("bound = %v", b)
	}
}

func TestEncodeDecode(t *testing.T) {
	r := testRoute(t)
	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Fatalf("invalid json: %s", buf.String())
	}
	track, waypoints, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(track) != r.Track.Len() {
		t.Errorf("track = %d, want %d", len(track), r.Track.Len())
	}
	if len(waypoints) != 1 || waypoints[0].Name != "Summit" || waypoints[0].Type != routedata.Generic {
		t.Errorf("waypoints = %+v", waypoints)
	}
}

func TestSave(t *testing.T) {
	r := testRoute(t)
	fpath := filepath.Join(t.TempDir(), "ride.geojson")
	if err := Save(fpath, r); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(fpath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	track, waypoints, err := Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(track) != r.Track.Len() || len(waypoints) != len(r.Cues) {
		t.Errorf("read %d points, %d waypoints, want %d, %d", len(track), len(waypoints), r.Track.Len(), len(r.Cues))
	}

	if err := Save(filepath.Join(t.TempDir(), "missing", "ride.geojson"), r); err == nil {
		t.Error("saving into a missing dir succeeded")
	}
}

func TestDecodeMultiLineString(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"MultiLineString","coordinates":[[[1,2],[1.1,2]],[[1.2,2]]]}},
		{"type":"Feature","properties":{"name":"Turn left"},"geometry":{"type":"Point","coordinates":[1.05,2]}}
	]}`
	track, waypoints, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(track) != 3 || track[2].Lon != 1.2 || track[2].Lat != 2 {
		t.Errorf("track = %+v", track)
	}
	if len(waypoints) != 1 || waypoints[0].Type != routedata.Left || waypoints[0].Notes != "Turn left" {
		t.Errorf("waypoints = %+v", waypoints)
	}

	if _, _, err := Decode(strings.NewReader("{")); !errors.Is(err, routedata.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}
