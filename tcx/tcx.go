// Package tcx reads and writes Garmin Training Center v2 courses.
package tcx

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
	"golang.org/x/net/html/charset"
)

const (
	Namespace      = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	schemaLocation = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2 http://www.garmin.com/xmlschemas/TrainingCenterDatabasev2.xsd"
	TimeFormat     = "2006-01-02T15:04:05.000Z"
)

type Root struct {
	XMLName        xml.Name `xml:"TrainingCenterDatabase"`
	Xmlns          string   `xml:"xmlns,attr,omitempty"`
	XmlnsXsi       string   `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr,omitempty"`
	Courses        []Course `xml:"Courses>Course"`
}

type Course struct {
	Name         string        `xml:"Name"`
	Lap          *Lap          `xml:"Lap,omitempty"`
	Track        []Trackpoint  `xml:"Track>Trackpoint"`
	CoursePoints []CoursePoint `xml:"CoursePoint"`

	// Some tools wrap the course points in a CoursePoints element. Only read.
	Wrapped *struct {
		CoursePoints []CoursePoint `xml:"CoursePoint"`
	} `xml:"CoursePoints,omitempty"`
}

type Lap struct {
	TotalTimeSeconds float64  `xml:"TotalTimeSeconds"`
	DistanceMeters   Meters   `xml:"DistanceMeters"`
	BeginPosition    Position `xml:"BeginPosition"`
	EndPosition      Position `xml:"EndPosition"`
	Intensity        string   `xml:"Intensity"`
}

type Trackpoint struct {
	Time           Time     `xml:"Time"`
	Position       Position `xml:"Position"`
	AltitudeMeters *Meters  `xml:"AltitudeMeters,omitempty"`
	DistanceMeters *Meters  `xml:"DistanceMeters,omitempty"`
}

type CoursePoint struct {
	Name           string   `xml:"Name"`
	Time           Time     `xml:"Time"`
	Position       Position `xml:"Position"`
	AltitudeMeters *Meters  `xml:"AltitudeMeters,omitempty"`
	DistanceMeters *Meters  `xml:"DistanceMeters,omitempty"` // not in the schema, read if present
	PointType      string   `xml:"PointType"`
	Notes          string   `xml:"Notes,omitempty"`
}

type Position struct {
	LatitudeDegrees  Degrees `xml:"LatitudeDegrees"`
	LongitudeDegrees Degrees `xml:"LongitudeDegrees"`
}

func (p Position) Pos() geo.Pos {
	return geo.Pos{Lat: float64(p.LatitudeDegrees), Lon: float64(p.LongitudeDegrees)}
}

func PosPosition(pos geo.Pos) Position {
	return Position{LatitudeDegrees: Degrees(pos.Lat), LongitudeDegrees: Degrees(pos.Lon)}
}

// Degrees is written in full precision without an exponent
type Degrees float64

func (d Degrees) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(d), 'f', -1, 64), nil
}

func (d *Degrees) UnmarshalText(b []byte) error {
	v, err := parseFloat(b)
	*d = Degrees(v)
	return err
}

// Meters is written with one decimal
type Meters float64

func (m Meters) MarshalText() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(m), 'f', 1, 64), nil
}

func (m *Meters) UnmarshalText(b []byte) error {
	v, err := parseFloat(b)
	*m = Meters(v)
	return err
}

func meters(v float64) *Meters {
	m := Meters(v)
	return &m
}

// Time is written in UTC with milliseconds
type Time time.Time

func (t Time) MarshalText() ([]byte, error) {
	return []byte(time.Time(t).UTC().Format(TimeFormat)), nil
}

func (t *Time) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*t = Time{}
		return nil
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parsing time %q: %w", s, err)
	}
	*t = Time(v)
	return nil
}

func parseFloat(b []byte) (float64, error) {
	s := strings.TrimSpace(string(b))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing number %q: %w", s, err)
	}
	return v, nil
}

// PointType is the course point type a device understands for t.
func PointType(t routedata.CueType) string {
	switch t {
	case routedata.Hotel:
		return "Generic"
	case routedata.SharpLeft:
		return "Left"
	case routedata.SharpRight:
		return "Right"
	}
	return t.String()
}

// FromRoute builds a single course document. Times are taken from the route, so
// routedata.Assemble must have run.
func FromRoute(r *routedata.Route) *Root {
	c := Course{Name: r.Name}
	for _, p := range r.Track.Points {
		tp := Trackpoint{
			Time:           Time(p.Time),
			Position:       PosPosition(p.Pos),
			DistanceMeters: meters(p.Distance),
		}
		if p.HasEle {
			tp.AltitudeMeters = meters(p.Ele)
		}
		c.Track = append(c.Track, tp)
	}
	if n := r.Track.Len(); n > 0 {
		first, last := r.Track.Points[0], r.Track.Points[n-1]
		c.Lap = &Lap{
			TotalTimeSeconds: last.Time.Sub(first.Time).Seconds(),
			DistanceMeters:   Meters(last.Distance - first.Distance),
			BeginPosition:    PosPosition(first.Pos),
			EndPosition:      PosPosition(last.Pos),
			Intensity:        "Active",
		}
	}
	for _, cue := range r.Cues {
		notes := cue.Notes
		if notes == "" {
			notes = cue.Name
		}
		c.CoursePoints = append(c.CoursePoints, CoursePoint{
			Name:      cue.Name,
			Time:      Time(cue.Time),
			Position:  PosPosition(cue.Pos),
			PointType: PointType(cue.Type),
			Notes:     notes,
		})
	}
	return &Root{
		Xmlns:          Namespace,
		XmlnsXsi:       xsiNamespace,
		SchemaLocation: schemaLocation,
		Courses:        []Course{c},
	}
}

func Encode(w io.Writer, r *routedata.Route) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing tcx: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(FromRoute(r)); err != nil {
		return fmt.Errorf("encoding tcx: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing tcx: %w", err)
	}
	return nil
}

// Decode reads the first course of a document back into a route. Trackpoint distances are
// recomputed when any point has none. Course points without a distance are matched to the
// trackpoint with the same time and position, otherwise located on the track.
func Decode(r io.Reader) (*routedata.Route, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var root Root
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing tcx: %w: %w", routedata.ErrParse, err)
	}
	if len(root.Courses) == 0 {
		return nil, fmt.Errorf("no course in tcx: %w", routedata.ErrMissingInput)
	}
	c := root.Courses[0]
	if len(c.Track) == 0 {
		return nil, fmt.Errorf("course %q has no track: %w", c.Name, routedata.ErrMissingInput)
	}

	points := make([]routedata.TrackPoint, len(c.Track))
	missing := false
	for i, tp := range c.Track {
		p := routedata.TrackPoint{Pos: tp.Position.Pos(), Time: time.Time(tp.Time)}
		if tp.AltitudeMeters != nil {
			p.Ele, p.HasEle = float64(*tp.AltitudeMeters), true
		}
		if tp.DistanceMeters != nil {
			p.Distance = float64(*tp.DistanceMeters)
		} else {
			missing = true
		}
		points[i] = p
	}
	track := &routedata.Track{Points: points}
	if missing {
		track = routedata.NewTrack(points)
	}

	cps := c.CoursePoints
	if c.Wrapped != nil {
		cps = append(cps, c.Wrapped.CoursePoints...)
	}
	route := &routedata.Route{Name: c.Name, Track: track}
	for _, cp := range cps {
		a := routedata.Annotation{
			Name:   cp.Name,
			Pos:    cp.Position.Pos(),
			Notes:  cp.Notes,
			Source: routedata.SourceRoutePoint,
		}
		if t, ok := routedata.ParseCueType(cp.PointType); ok {
			a.Type = t
		} else {
			a.Type = routedata.Classify(cp.Name)
		}
		cue := routedata.Cue{Annotation: a, Pos: a.Pos, Time: time.Time(cp.Time)}
		if cp.DistanceMeters != nil {
			cue.Distance = float64(*cp.DistanceMeters)
		} else if i := atTime(track, cue); i >= 0 {
			cue.Distance = track.Points[i].Distance
		} else if i := track.Find(cue.Pos, 0); i >= 0 {
			p := track.Points[i]
			cue.Distance, cue.Pos, cue.HasEle = p.Distance, p.Pos, p.HasEle
		} else {
			proj, _ := track.Project(cue.Pos)
			cue.Distance, cue.Pos, cue.HasEle = proj.Distance, proj.Pos, proj.HasEle
		}
		route.Cues = append(route.Cues, cue)
	}
	sort.SliceStable(route.Cues, func(i, j int) bool { return route.Cues[i].Distance < route.Cues[j].Distance })
	route.IndexCues()
	return route, nil
}

// atTime returns the index of the trackpoint written together with cue, or -1.
func atTime(track *routedata.Track, cue routedata.Cue) int {
	if cue.Time.IsZero() {
		return -1
	}
	for i, p := range track.Points {
		if p.Time.Equal(cue.Time) && p.Pos.Same(cue.Pos) {
			return i
		}
	}
	return -1
}
