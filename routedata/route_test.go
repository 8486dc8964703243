package routedata

import (
	"errors"
	"testing"
	"time"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/globals"
)

func TestAssembleMissingTrack(t *testing.T) {
	_, err := Assemble(Input{Name: "empty"})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestAssembleTabularScenario(t *testing.T) {
	// three points on the equator, the tabular cue sits between the second and third
	in := Input{
		Name:    "scenario",
		Track:   equatorTrack(3).Points,
		Tabular: []Annotation{NewTabularCue("Food stop", 1.5)},
	}
	r, err := Assemble(in)
	if err != nil {
		t.Fatal(err)
	}
	if r.Track.Len() != 4 {
		t.Fatalf("len = %d, want 4", r.Track.Len())
	}
	if len(r.Cues) != 1 {
		t.Fatalf("cues = %d, want 1", len(r.Cues))
	}
	c := r.Cues[0]
	if c.Index != 2 || c.Distance != 1500 || c.Type != Food {
		t.Errorf("cue = %+v", c)
	}
	step := geo.DistanceMeters(0, 0, 0, 0.01)
	wantLon := 0.01 + 0.01*(1500-step)/step
	if !approx(c.Pos.Lon, wantLon, 1e-12) || !approx(r.Track.Points[2].Lon, wantLon, 1e-12) {
		t.Errorf("lon = %v, want %v", c.Pos.Lon, wantLon)
	}
	wantSecs := 1500 / globals.DEFAULT_SPEED
	wantTime := globals.DEFAULT_START.Add(time.Duration(wantSecs * float64(time.Second)))
	if d := c.Time.Sub(wantTime); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("time = %v, want %v", c.Time, wantTime)
	}
	if !c.Time.Equal(r.Track.Points[2].Time) {
		t.Errorf("cue time %v, trackpoint time %v", c.Time, r.Track.Points[2].Time)
	}
}

func TestAssembleMixed(t *testing.T) {
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	in := Input{
		Name:  "mixed",
		Track: equatorTrack(3).Points,
		Waypoints: []Annotation{
			{Name: "Viewpoint", Pos: geo.Pos{Lat: 0.001, Lon: 0.005}, Source: SourceWaypoint},
		},
		RoutePoints: []Annotation{
			{Name: "Turn left", Pos: geo.Pos{Lon: 0.02}, Type: Left, Source: SourceRoutePoint},
		},
		Extra: []Annotation{
			// same spot as the route point, shares its trackpoint
			{Name: "Cafe", Pos: geo.Pos{Lon: 0.02}, Type: Food, Source: SourceExtra},
		},
		Tabular: []Annotation{
			NewTabularCue("Bear right", 1.5),
			NewTabularCue("Beyond the end", 99),
		},
		Start: start,
		Speed: 5,
	}
	r, err := Assemble(in)
	if err != nil {
		t.Fatal(err)
	}

	// viewpoint and 1.5 km are new points, the rest land on existing ones
	if r.Track.Len() != 5 {
		t.Fatalf("len = %d, want 5", r.Track.Len())
	}
	if len(r.Cues) != 5 {
		t.Fatalf("cues = %d, want 5", len(r.Cues))
	}
	for i := 1; i < r.Track.Len(); i++ {
		if r.Track.Points[i].Distance < r.Track.Points[i-1].Distance {
			t.Fatalf("distance decreases at %d", i)
		}
	}

	names := []string{"Viewpoint", "Bear right", "Turn left", "Cafe", "Beyond the end"}
	for i, c := range r.Cues {
		if c.Name != names[i] {
			t.Errorf("cue %d = %q, want %q", i, c.Name, names[i])
		}
		p := r.Track.Points[c.Index]
		if !p.Pos.Same(c.Pos) {
			t.Errorf("cue %q at %+v is not on trackpoint %d %+v", c.Name, c.Pos, c.Index, p.Pos)
		}
		if !c.Time.Equal(p.Time) {
			t.Errorf("cue %q time %v, trackpoint time %v", c.Name, c.Time, p.Time)
		}
		if i > 0 && c.Distance < r.Cues[i-1].Distance {
			t.Errorf("cue %q out of order", c.Name)
		}
	}
	if r.Cues[0].Pos.Lat != 0 {
		t.Errorf("viewpoint not snapped: %+v", r.Cues[0].Pos)
	}
	if r.Cues[4].Distance != r.Length() || r.Cues[4].Index != r.Track.Len()-1 {
		t.Errorf("cue beyond the end = %+v, want clamped to the last point", r.Cues[4])
	}
	if !r.Track.Points[0].Time.Equal(start) {
		t.Errorf("start = %v, want %v", r.Track.Points[0].Time, start)
	}

	tabular := r.CuesFrom(SourceTabular)
	if len(tabular) != 2 || tabular[0].Type != Right {
		t.Errorf("tabular cues = %+v", tabular)
	}
	if got := len(r.CuesFrom(SourceWaypoint, SourceRoutePoint, SourceExtra)); got != 3 {
		t.Errorf("waypoint cues = %d, want 3", got)
	}
}

func TestAssembleIdempotentCue(t *testing.T) {
	wp := Annotation{Name: "Bench", Pos: geo.Pos{Lon: 0.004}}
	r, err := Assemble(Input{
		Track:     equatorTrack(2).Points,
		Waypoints: []Annotation{wp, wp},
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Track.Len() != 3 {
		t.Errorf("len = %d, want 3", r.Track.Len())
	}
	if r.Cues[0].Index != 1 || r.Cues[1].Index != 1 {
		t.Errorf("indexes = %d, %d, want 1, 1", r.Cues[0].Index, r.Cues[1].Index)
	}
}
