package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/wherepoints/config"
	"github.com/dave/wherepoints/gpx"
	"github.com/dave/wherepoints/kml"
	"github.com/dave/wherepoints/mapdata"
	"github.com/dave/wherepoints/routedata"
	"github.com/dave/wherepoints/tcx"
	"github.com/dave/wherepoints/tiler"
)

// save writes the course, the tabular cues as waypoints and any extra formats that are configured.
func save(cfg *config.Config, r *routedata.Route) error {
	if err := os.MkdirAll(cfg.Output, 0777); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	if err := saveCourse(filepath.Join(cfg.Output, r.Name+".tcx"), r); err != nil {
		return err
	}

	if tabular := r.CuesFrom(routedata.SourceTabular); len(tabular) > 0 {
		fpath := filepath.Join(cfg.Output, r.Name+"-csv-cues-waypoints.gpx")
		if err := saveFile(fpath, func(f *os.File) error { return gpx.EncodeWaypoints(f, r.Name, tabular) }); err != nil {
			return err
		}
	}

	if cfg.KML != "" {
		fpath := outputPath(cfg, cfg.KML)
		logln("saving kml", "path", fpath)
		if err := kml.FromRoute(r).Save(fpath); err != nil {
			return fmt.Errorf("saving kml: %w", err)
		}
	}
	if cfg.GeoJSON != "" {
		fpath := outputPath(cfg, cfg.GeoJSON)
		logln("saving geojson", "path", fpath)
		if err := mapdata.Save(fpath, r); err != nil {
			return fmt.Errorf("saving geojson: %w", err)
		}
	}
	if cfg.Preview != "" {
		fpath := outputPath(cfg, cfg.Preview)
		logln("saving preview", "path", fpath)
		if err := tiler.Save(fpath, r, cfg.PreviewSize); err != nil {
			return fmt.Errorf("saving preview: %w", err)
		}
	}
	return nil
}

// saveParts splits the route at the configured markers and writes one course per part.
func saveParts(cfg *config.Config, r *routedata.Route) error {
	markers, err := routedata.ParseSplitMarkers(cfg.Split)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output, 0777); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	parts := routedata.Split(r, markers)
	for _, part := range parts {
		if err := saveCourse(filepath.Join(cfg.Output, part.FileName), part.Route); err != nil {
			return fmt.Errorf("saving part %d: %w", part.Number, err)
		}
	}
	logln("split route", "name", r.Name, "markers", len(markers), "parts", len(parts))
	return nil
}

func saveCourse(fpath string, r *routedata.Route) error {
	logln("saving course", "path", fpath, "points", r.Track.Len(), "cues", len(r.Cues))
	return saveFile(fpath, func(f *os.File) error { return tcx.Encode(f, r) })
}

func saveFile(fpath string, write func(f *os.File) error) error {
	f, err := os.Create(fpath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", fpath, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", fpath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", fpath, err)
	}
	return nil
}

// outputPath puts relative paths in the output dir.
func outputPath(cfg *config.Config, fpath string) string {
	if filepath.IsAbs(fpath) {
		return fpath
	}
	return filepath.Join(cfg.Output, fpath)
}
