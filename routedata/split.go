package routedata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Part is one window of a split route. Distances in Route are re-based so the part starts at 0.
type Part struct {
	Number   int
	Name     string
	FileName string
	Start    float64 // window start in the parent route, meters
	End      float64 // window end in the parent route, meters
	Route    *Route
}

// Split cuts r at the threshold distances (meters). Windows are closed at both ends, so a point
// that lies exactly on a threshold is in both neighbouring parts. A window with fewer than two
// points is dropped but keeps its number, so part numbers always match window positions.
func Split(r *Route, thresholds []float64) []Part {
	bounds := append([]float64{0}, thresholds...)
	bounds = append(bounds, r.Length())

	var parts []Part
	for w := 0; w < len(bounds)-1; w++ {
		start, end := bounds[w], bounds[w+1]
		var points []TrackPoint
		for _, p := range r.Track.Points {
			if p.Distance >= start && p.Distance <= end {
				points = append(points, p)
			}
		}
		number := w + 1
		if len(points) < 2 {
			logln("dropping short part", "part", number, "start_km", start/1000, "end_km", end/1000, "points", len(points))
			continue
		}
		offset := points[0].Distance
		for i := range points {
			points[i].Distance -= offset
		}

		var cues []Cue
		for _, c := range r.Cues {
			if c.Distance < start || c.Distance > end {
				continue
			}
			c.Distance -= offset
			cues = append(cues, c)
		}

		part := Part{
			Number:   number,
			Name:     fmt.Sprintf("%s Part %d", r.Name, number),
			FileName: fmt.Sprintf("%s-part-%d.tcx", r.Name, number),
			Start:    start,
			End:      end,
			Route: &Route{
				Track: &Track{Points: points},
				Cues:  cues,
			},
		}
		part.Route.Name = part.Name
		part.Route.IndexCues()
		parts = append(parts, part)

		logln("split part", "part", number, "points", len(points), "cues", len(cues))
	}
	return parts
}

// ParseSplitMarkers reads a comma separated list of distances in km, e.g. "100, 255.5". Entries
// that are not positive numbers are ignored. The result is sorted and in meters.
func ParseSplitMarkers(s string) ([]float64, error) {
	var markers []float64
	for _, field := range strings.Split(s, ",") {
		km, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || km <= 0 {
			continue
		}
		markers = append(markers, km*1000)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("parsing %q: %w", s, ErrInvalidSplitMarkers)
	}
	sort.Float64s(markers)
	return markers, nil
}
