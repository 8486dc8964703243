package kml

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
)

const doc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>Dolomites</name>
    <Placemark>
      <name>Day 1</name>
      <LineString>
        <coordinates>
          11.0,46.0,1200
          11.01,46.0,1250 11.02,46.01
        </coordinates>
      </LineString>
    </Placemark>
    <Folder>
      <name>Stops</name>
      <Folder>
        <Placemark>
          <name>Rifugio hotel</name>
          <description>Half board</description>
          <Point><coordinates>11.015,46.002,1300</coordinates></Point>
        </Placemark>
      </Folder>
      <Placemark>
        <Point><coordinates> 11.005,46.001 </coordinates></Point>
      </Placemark>
      <Placemark>
        <name>Day 2</name>
        <MultiGeometry>
          <LineString><coordinates>11.02,46.01 11.03,46.02</coordinates></LineString>
        </MultiGeometry>
      </Placemark>
    </Folder>
  </Document>
</kml>`

func TestDecode(t *testing.T) {
	root, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if root.Document.Name != "Dolomites" {
		t.Errorf("name = %q", root.Document.Name)
	}

	track, err := root.Track()
	if err != nil {
		t.Fatal(err)
	}
	if len(track) != 5 {
		t.Fatalf("track points = %d, want 5", len(track))
	}
	if track[1].Pos != (geo.Pos{Lat: 46.0, Lon: 11.01, Ele: 1250}) || !track[1].HasEle {
		t.Errorf("point 1 = %+v", track[1])
	}
	if track[2].HasEle {
		t.Errorf("point 2 has elevation: %+v", track[2])
	}

	wps, err := root.Waypoints()
	if err != nil {
		t.Fatal(err)
	}
	if len(wps) != 2 {
		t.Fatalf("waypoints = %d, want 2", len(wps))
	}
	// placemarks directly in a folder come before those of nested folders
	if wps[0].Name != "Waypoint" || wps[0].HasEle {
		t.Errorf("waypoint 0 = %+v", wps[0])
	}
	if wps[1].Name != "Rifugio hotel" || wps[1].Type != routedata.Hotel || wps[1].Notes != "Half board" || wps[1].Pos.Ele != 1300 {
		t.Errorf("waypoint 1 = %+v", wps[1])
	}
}

func TestDecodeBadCoordinates(t *testing.T) {
	root, err := Decode(strings.NewReader(`<kml><Document><Placemark><LineString><coordinates>1,x 2,3</coordinates></LineString></Placemark></Document></kml>`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := root.Track(); !errors.Is(err, routedata.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestSaveLoad(t *testing.T) {
	r, err := routedata.Assemble(routedata.Input{
		Name: "loop",
		Track: []routedata.TrackPoint{
			{Pos: geo.Pos{Lat: 46.0, Lon: 11.0, Ele: 1000}, HasEle: true},
			{Pos: geo.Pos{Lat: 46.0, Lon: 11.01, Ele: 1010}, HasEle: true},
		},
		Tabular: []routedata.Annotation{routedata.NewTabularCue("Food & water", 0.3)},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"loop.kml", "loop.kmz"} {
		t.Run(name, func(t *testing.T) {
			fpath := filepath.Join(t.TempDir(), name)
			if err := FromRoute(r).Save(fpath); err != nil {
				t.Fatal(err)
			}
			root, err := Load(fpath)
			if err != nil {
				t.Fatal(err)
			}
			if root.Document.Name != "loop" || root.Xmlns != Namespace {
				t.Errorf("document = %q, %q", root.Document.Name, root.Xmlns)
			}
			track, err := root.Track()
			if err != nil {
				t.Fatal(err)
			}
			if len(track) != r.Track.Len() {
				t.Errorf("track points = %d, want %d", len(track), r.Track.Len())
			}
			wps, err := root.Waypoints()
			if err != nil {
				t.Fatal(err)
			}
			if len(wps) != 1 || wps[0].Name != "Food & water" || wps[0].Type != routedata.Food {
				t.Errorf("waypoints = %+v", wps)
			}
			if !wps[0].Pos.Same(r.Cues[0].Pos) {
				t.Errorf("waypoint at %+v, cue at %+v", wps[0].Pos, r.Cues[0].Pos)
			}
		})
	}
}

func TestLoadMissingKmzDocument(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.kmz")); err == nil {
		t.Error("expected an error")
	}
}
