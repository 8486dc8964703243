package main

import (
	"fmt"
	"math"
	"net/http"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/globals"
	"github.com/dave/wherepoints/routedata"
	"github.com/tkrajina/go-elevations/geoelevations"
)

type elevationSource interface {
	GetElevation(client *http.Client, lat, lon float64) (float64, error)
}

func newSrtm(cacheDir string) (*geoelevations.Srtm, error) {
	var err error
	if cacheDir != "" {
		globals.SrtmClient, err = geoelevations.NewSrtmWithCustomCacheDir(http.DefaultClient, cacheDir)
	} else {
		globals.SrtmClient, err = geoelevations.NewSrtm(http.DefaultClient)
	}
	if err != nil {
		return nil, fmt.Errorf("creating srtm client: %w", err)
	}
	return globals.SrtmClient, nil
}

// fillElevations looks up the elevation of every track point and annotation that has none.
// Existing elevations are never changed. Points the model has no data for stay without one.
func fillElevations(src elevationSource, track []routedata.TrackPoint, annotations ...[]routedata.Annotation) error {
	elevationCache := map[geo.Pos]float64{}
	lookup := func(pos geo.Pos) (float64, bool, error) {
		key := geo.Pos{Lat: pos.Lat, Lon: pos.Lon}
		ele, found := elevationCache[key]
		if !found {
			var err error
			ele, err = src.GetElevation(http.DefaultClient, pos.Lat, pos.Lon)
			if err != nil {
				return 0, false, fmt.Errorf("looking up elevation at %v,%v: %w", pos.Lat, pos.Lon, err)
			}
			elevationCache[key] = ele
		}
		if math.IsNaN(ele) {
			return 0, false, nil
		}
		return ele, true, nil
	}

	logln("looking up track elevations")
	var filled int
	for i := range track {
		if track[i].HasEle {
			continue
		}
		ele, ok, err := lookup(track[i].Pos)
		if err != nil {
			return err
		}
		if ok {
			track[i].Ele, track[i].HasEle = ele, true
			filled++
		}
	}

	logln("looking up waypoint elevations")
	for _, list := range annotations {
		for i := range list {
			if list[i].HasEle {
				continue
			}
			ele, ok, err := lookup(list[i].Pos)
			if err != nil {
				return err
			}
			if ok {
				list[i].Pos.Ele, list[i].HasEle = ele, true
				filled++
			}
		}
	}
	logln("filled elevations", "points", filled, "lookups", len(elevationCache))
	return nil
}
