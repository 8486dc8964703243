package routedata

import (
	"strings"
	"time"

	"github.com/dave/wherepoints/geo"
)

type CueType int

const (
	Generic CueType = iota
	Left
	Right
	SharpLeft
	SharpRight
	Straight
	Food
	Hotel
)

var cueTypeNames = map[CueType]string{
	Generic:    "Generic",
	Left:       "Left",
	Right:      "Right",
	SharpLeft:  "SharpLeft",
	SharpRight: "SharpRight",
	Straight:   "Straight",
	Food:       "Food",
	Hotel:      "Hotel",
}

func (c CueType) String() string {
	if s, ok := cueTypeNames[c]; ok {
		return s
	}
	return "Generic"
}

// explicit type names found in source files
var cueTypeAliases = map[string]CueType{
	"generic":      Generic,
	"left":         Left,
	"slight left":  Left,
	"right":        Right,
	"slight right": Right,
	"sharp left":   SharpLeft,
	"sharpleft":    SharpLeft,
	"sharp right":  SharpRight,
	"sharpright":   SharpRight,
	"straight":     Straight,
	"food":         Food,
	"resupply":     Food,
	"hotel":        Hotel,
}

// ParseCueType maps a type name from a source file to a CueType.
func ParseCueType(s string) (CueType, bool) {
	c, ok := cueTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Classify guesses the type of a cue from its name. The first matching keyword wins.
func Classify(name string) CueType {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "right"):
		return Right
	case strings.Contains(name, "left"):
		return Left
	case strings.Contains(name, "food"), strings.Contains(name, "resupply"):
		return Food
	case strings.Contains(name, "hotel"):
		return Hotel
	}
	return Generic
}

type Source int

const (
	SourceWaypoint   Source = iota // waypoint in the base file
	SourceRoutePoint               // route point in the base file
	SourceExtra                    // waypoint in the optional POI file
	SourceTabular                  // name,km row
)

// Annotation is a waypoint or cue as read from an input source.
type Annotation struct {
	Name              string
	Pos               geo.Pos
	HasEle            bool
	SourceDistance    float64 // meters, tabular cues only
	HasSourceDistance bool
	Type              CueType
	Notes             string
	Source            Source
}

// NewTabularCue builds an annotation from a name,km row. The type is guessed from the name.
func NewTabularCue(name string, km float64) Annotation {
	return Annotation{
		Name:              name,
		SourceDistance:    km * 1000,
		HasSourceDistance: true,
		Type:              Classify(name),
		Notes:             name,
		Source:            SourceTabular,
	}
}

// Cue is an annotation snapped onto the track.
type Cue struct {
	Annotation
	Pos      geo.Pos // snapped position
	HasEle   bool
	Distance float64
	Index    int // index of the cue's point in the merged track
	Time     time.Time
}
