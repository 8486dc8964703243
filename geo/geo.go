package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadius is the radius of the spherical earth used for every distance, in meters.
const EarthRadius = 6371000.0

// Tolerance is the coordinate tolerance in degrees below which two positions are the same point.
const Tolerance = 1e-9

type Line []Pos

// Length in meters
func (l Line) Length() float64 {
	var total float64
	for i, pos := range l {
		if i == 0 {
			continue
		}
		total += l[i-1].Distance(pos)
	}
	return total
}

// Start is the first Pos in the line
func (l Line) Start() Pos {
	return l[0]
}

// End is the last Pos in the line
func (l Line) End() Pos {
	return l[len(l)-1]
}

type Pos struct {
	Lat, Lon, Ele float64
}

// Distance in meters to another location (only considering lat and lon)
func (p1 Pos) Distance(p2 Pos) float64 {
	return DistanceMeters(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
}

// Same reports whether both coordinates are within Tolerance degrees of p2.
func (p1 Pos) Same(p2 Pos) bool {
	return math.Abs(p1.Lat-p2.Lat) < Tolerance && math.Abs(p1.Lon-p2.Lon) < Tolerance
}

// Lerp interpolates lat, lon and elevation linearly between p1 (t = 0) and p2 (t = 1).
func (p1 Pos) Lerp(p2 Pos, t float64) Pos {
	return Pos{
		Lat: Lerp(p1.Lat, p2.Lat, t),
		Lon: Lerp(p1.Lon, p2.Lon, t),
		Ele: Lerp(p1.Ele, p2.Ele, t),
	}
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// DistanceMeters is the great-circle distance between two coordinates given in degrees. s2 computes
// the central angle with the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadius
}
