package routedata

import (
	"math"
)

// resolve snaps a onto the track and inserts the snapped point. Annotations with a source distance
// are placed by distance along the track, everything else by projection.
func (t *Track) resolve(a Annotation) Cue {
	if a.HasSourceDistance {
		return t.resolveDistance(a)
	}
	return t.resolveProjection(a)
}

func (t *Track) resolveProjection(a Annotation) Cue {
	proj, _ := t.Project(a.Pos)
	index, inserted := t.Insert(proj.TrackPoint())
	debugln("snapped cue",
		"name", a.Name,
		"index", index,
		"fraction", proj.Index(),
		"inserted", inserted,
		"on_segment", proj.OnSegment,
		"offset_m", proj.Pos.Distance(a.Pos))
	return Cue{
		Annotation: a,
		Pos:        proj.Pos,
		HasEle:     proj.HasEle,
		Distance:   proj.Distance,
		Index:      index,
	}
}

func (t *Track) resolveDistance(a Annotation) Cue {
	p := t.AtDistance(a.SourceDistance)
	p.Distance = math.Min(math.Max(a.SourceDistance, 0), t.Length())
	index, inserted := t.Insert(p)
	debugln("placed cue",
		"name", a.Name,
		"km", a.SourceDistance/1000,
		"index", index,
		"inserted", inserted)
	return Cue{
		Annotation: a,
		Pos:        p.Pos,
		HasEle:     p.HasEle,
		Distance:   p.Distance,
		Index:      index,
	}
}
