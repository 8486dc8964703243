package routedata

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/dave/wherepoints/geo"
)

// TrackPoint is a point of the route polyline
type TrackPoint struct {
	geo.Pos
	HasEle   bool      // false when the source had no elevation for this point
	Distance float64   // cumulative distance from the first point in meters
	Time     time.Time // zero until AssignTimes
}

// Track is the distance ordered trackpoint sequence of a route. A Track is owned by a single
// assembly or split pass, and Insert is the only operation that grows it.
type Track struct {
	Points []TrackPoint
}

// NewTrack copies the points and sets the cumulative distances, starting at 0.
func NewTrack(points []TrackPoint) *Track {
	t := &Track{Points: make([]TrackPoint, len(points))}
	copy(t.Points, points)
	for i := range t.Points {
		if i == 0 {
			t.Points[i].Distance = 0
			continue
		}
		prev := t.Points[i-1]
		t.Points[i].Distance = prev.Distance + prev.Pos.Distance(t.Points[i].Pos)
	}
	return t
}

func (t *Track) Len() int {
	return len(t.Points)
}

// Length is the cumulative distance of the last point.
func (t *Track) Length() float64 {
	if len(t.Points) == 0 {
		return 0
	}
	return t.Points[len(t.Points)-1].Distance
}

func (t *Track) Line() geo.Line {
	line := make(geo.Line, len(t.Points))
	for i, p := range t.Points {
		line[i] = p.Pos
	}
	return line
}

// Projection is the result of snapping a position onto the track.
type Projection struct {
	geo.Pos
	HasEle    bool
	Distance  float64
	Segment   int     // first point of the segment, or the vertex when OnSegment is false
	Fraction  float64 // position along the segment, 0 for a vertex
	OnSegment bool    // false when the nearest vertex was used
}

// Index is the fractional position of the projection in the point sequence.
func (p Projection) Index() float64 {
	return float64(p.Segment) + p.Fraction
}

func (p Projection) TrackPoint() TrackPoint {
	return TrackPoint{Pos: p.Pos, HasEle: p.HasEle, Distance: p.Distance}
}

// Project finds the point on the track closest to q. A segment AB only accepts q when q is no
// further from A or from B than the length of AB. When no segment accepts q, the nearest vertex
// is returned. Project returns false only for an empty track.
func (t *Track) Project(q geo.Pos) (Projection, bool) {
	if len(t.Points) == 0 {
		return Projection{}, false
	}

	var best Projection
	minDist := math.Inf(1)
	for i := 0; i < len(t.Points)-1; i++ {
		a, b := t.Points[i], t.Points[i+1]
		dAB := a.Pos.Distance(b.Pos)
		dA := a.Pos.Distance(q)
		dB := b.Pos.Distance(q)
		if dA > dAB || dB > dAB {
			continue
		}
		var f float64
		if dAB > 0 {
			f = dA / dAB
		}
		p := interpolate(a, b, f)
		if d := p.Pos.Distance(q); d < minDist {
			minDist = d
			best = Projection{
				Pos:       p.Pos,
				HasEle:    p.HasEle,
				Distance:  p.Distance,
				Segment:   i,
				Fraction:  f,
				OnSegment: true,
			}
		}
	}
	if best.OnSegment {
		return best, true
	}

	nearest := 0
	minDist = math.Inf(1)
	for i, p := range t.Points {
		if d := p.Pos.Distance(q); d < minDist {
			minDist = d
			nearest = i
		}
	}
	p := t.Points[nearest]
	return Projection{Pos: p.Pos, HasEle: p.HasEle, Distance: p.Distance, Segment: nearest}, true
}

// AtDistance returns the point at the target distance along the track, interpolated between the
// first point at or beyond target and its predecessor. Targets past the end give the last point.
func (t *Track) AtDistance(target float64) TrackPoint {
	if len(t.Points) == 0 {
		return TrackPoint{}
	}
	for i := 1; i < len(t.Points); i++ {
		b := t.Points[i]
		if b.Distance < target {
			continue
		}
		a := t.Points[i-1]
		var f float64
		if span := b.Distance - a.Distance; span > 0 {
			f = (target - a.Distance) / span
		}
		if f < 0 {
			f = 0
		}
		return interpolate(a, b, f)
	}
	last := t.Points[len(t.Points)-1]
	last.Time = time.Time{}
	return last
}

// Find returns the index of the point with the same coordinates as pos (within geo.Tolerance).
// When the track passes the same coordinates more than once, the match closest to distance wins.
// Find returns -1 if there is no such point.
func (t *Track) Find(pos geo.Pos, distance float64) int {
	found := -1
	var best float64
	for i, p := range t.Points {
		if !p.Pos.Same(pos) {
			continue
		}
		if d := math.Abs(p.Distance - distance); found == -1 || d < best {
			found = i
			best = d
		}
	}
	return found
}

// Insert adds p before the first point with a greater distance, so the sequence stays ordered by
// distance. If a point with the same coordinates already exists nothing is inserted, and the index
// of the existing point is returned.
func (t *Track) Insert(p TrackPoint) (index int, inserted bool) {
	if i := t.Find(p.Pos, p.Distance); i >= 0 {
		return i, false
	}
	index = sort.Search(len(t.Points), func(i int) bool { return t.Points[i].Distance > p.Distance })
	t.Points = slices.Insert(t.Points, index, p)
	return index, true
}

// AssignTimes stamps every point with start + distance / speed.
func (t *Track) AssignTimes(start time.Time, speed float64) {
	for i := range t.Points {
		seconds := t.Points[i].Distance / speed
		t.Points[i].Time = start.Add(time.Duration(seconds * float64(time.Second)))
	}
}

// interpolate between a (f = 0) and b (f = 1). When only one end has an elevation that elevation
// is used as is.
func interpolate(a, b TrackPoint, f float64) TrackPoint {
	p := TrackPoint{
		Pos:      a.Pos.Lerp(b.Pos, f),
		Distance: geo.Lerp(a.Distance, b.Distance, f),
	}
	switch {
	case a.HasEle && b.HasEle:
		p.HasEle = true
	case a.HasEle:
		p.Ele, p.HasEle = a.Ele, true
	case b.HasEle:
		p.Ele, p.HasEle = b.Ele, true
	default:
		p.Ele = 0
	}
	return p
}
