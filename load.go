package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/wherepoints/cuesheet"
	"github.com/dave/wherepoints/gpx"
	"github.com/dave/wherepoints/kml"
	"github.com/dave/wherepoints/mapdata"
	"github.com/dave/wherepoints/routedata"
	"github.com/dave/wherepoints/tcx"
)

// loadBase reads a track and its annotations from any of the supported formats.
func loadBase(fpath string) (*gpx.File, error) {
	switch ext := strings.ToLower(filepath.Ext(fpath)); ext {
	case ".gpx":
		return gpx.Load(fpath)
	case ".kml", ".kmz":
		root, err := kml.Load(fpath)
		if err != nil {
			return nil, err
		}
		track, err := root.Track()
		if err != nil {
			return nil, fmt.Errorf("reading track from %q: %w", fpath, err)
		}
		waypoints, err := root.Waypoints()
		if err != nil {
			return nil, fmt.Errorf("reading waypoints from %q: %w", fpath, err)
		}
		return &gpx.File{Name: root.Document.Name, Track: track, Waypoints: waypoints}, nil
	case ".geojson", ".json":
		f, err := os.Open(fpath)
		if err != nil {
			return nil, fmt.Errorf("opening %q: %w", fpath, err)
		}
		defer f.Close()
		track, waypoints, err := mapdata.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", fpath, err)
		}
		return &gpx.File{Track: track, Waypoints: waypoints}, nil
	default:
		return nil, fmt.Errorf("%q: %w %q", fpath, errUnknownFormat, ext)
	}
}

func loadCues(fpath string, html bool) ([]routedata.Annotation, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("opening cue sheet %q: %w", fpath, err)
	}
	defer f.Close()
	var rows []cuesheet.Row
	if html {
		rows, err = cuesheet.ParseHTML(f)
	} else {
		rows, err = cuesheet.ParseCSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading cue sheet %q: %w", fpath, err)
	}
	return cuesheet.Annotations(rows), nil
}

func loadCourse(fpath string) (*routedata.Route, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, fmt.Errorf("opening course %q: %w", fpath, err)
	}
	defer f.Close()
	r, err := tcx.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading course %q: %w", fpath, err)
	}
	return r, nil
}
