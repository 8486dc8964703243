package routedata

import (
	"fmt"
	"sort"
	"time"

	"github.com/dave/wherepoints/globals"
)

// Route is the merged track and its cues, ordered by distance
type Route struct {
	Name  string
	Track *Track
	Cues  []Cue
}

// Input is everything the assembler merges. Track is the base track without distances.
type Input struct {
	Name        string
	Track       []TrackPoint
	Waypoints   []Annotation // waypoints in the base file
	RoutePoints []Annotation // route points (cues) in the base file
	Extra       []Annotation // waypoints from the optional POI file
	Tabular     []Annotation // name,km cues
	Start       time.Time    // zero means globals.DEFAULT_START
	Speed       float64      // m/s, zero means globals.DEFAULT_SPEED
}

// Assemble snaps every annotation onto the base track, then stamps the merged track with times.
// Tabular cues are placed last: their distance search runs over the track that already contains
// the snapped waypoints.
func Assemble(in Input) (*Route, error) {
	if len(in.Track) == 0 {
		return nil, fmt.Errorf("base track: %w", ErrMissingInput)
	}
	start := in.Start
	if start.IsZero() {
		start = globals.DEFAULT_START
	}
	speed := in.Speed
	if speed <= 0 {
		speed = globals.DEFAULT_SPEED
	}

	track := NewTrack(in.Track)
	logln("assembling route",
		"name", in.Name,
		"points", track.Len(),
		"length_km", track.Length()/1000,
		"waypoints", len(in.Waypoints)+len(in.RoutePoints)+len(in.Extra),
		"tabular", len(in.Tabular))

	var cues []Cue
	for _, group := range [][]Annotation{in.Waypoints, in.RoutePoints, in.Extra, in.Tabular} {
		for _, a := range group {
			cues = append(cues, track.resolve(a))
		}
	}
	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Distance < cues[j].Distance })

	track.AssignTimes(start, speed)

	r := &Route{Name: in.Name, Track: track, Cues: cues}
	r.IndexCues()

	logln("assembled route", "name", r.Name, "points", track.Len(), "cues", len(r.Cues))
	return r, nil
}

// IndexCues points each cue at its trackpoint in the current track and copies that point's time.
// Indexes recorded during insertion go stale as later points are inserted before them.
func (r *Route) IndexCues() {
	if r.Track.Len() == 0 {
		return
	}
	for i := range r.Cues {
		c := &r.Cues[i]
		index := r.Track.Find(c.Pos, c.Distance)
		if index < 0 {
			index = r.Track.nearestDistance(c.Distance)
		}
		c.Index = index
		c.Time = r.Track.Points[index].Time
	}
}

// CuesFrom returns the cues that came from one of the sources, in route order.
func (r *Route) CuesFrom(sources ...Source) []Cue {
	var out []Cue
	for _, c := range r.Cues {
		for _, s := range sources {
			if c.Source == s {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (r *Route) Length() float64 {
	return r.Track.Length()
}

func (t *Track) nearestDistance(distance float64) int {
	i := sort.Search(len(t.Points), func(i int) bool { return t.Points[i].Distance >= distance })
	if i == len(t.Points) {
		return i - 1
	}
	if i > 0 && distance-t.Points[i-1].Distance < t.Points[i].Distance-distance {
		return i - 1
	}
	return i
}
