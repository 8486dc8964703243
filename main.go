package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/dave/wherepoints/config"
	"github.com/dave/wherepoints/globals"
	"github.com/dave/wherepoints/routedata"
)

func main() {
	if err := Main(); err != nil {
		log.Fatalf("%v", err)
	}
}

// Inputs are the files a run reads.
type Inputs struct {
	Base     string // base track with optional waypoints and route points
	Poi      string // optional extra waypoints
	Cues     string // name,km csv
	CuesHTML string // name,km html table
	TCX      string // existing course to split
}

func Main() error {
	def := config.Default()

	var in Inputs
	flag.StringVar(&in.Base, "base", "", "base track file (.gpx, .kml, .kmz or .geojson)")
	flag.StringVar(&in.Poi, "poi", "", "extra waypoints file (.gpx, .kml, .kmz or .geojson)")
	flag.StringVar(&in.Cues, "cues", "", "cue sheet with name,km rows")
	flag.StringVar(&in.CuesHTML, "cues-html", "", "cue sheet as an html table")
	flag.StringVar(&in.TCX, "tcx", "", "split this tcx course instead of building one")
	name := flag.String("name", def.Name, "route name, defaults to the base file name")
	output := flag.String("output", def.Output, "output dir")
	speed := flag.Float64("speed", def.Speed, "average speed in m/s used for trackpoint times")
	start := flag.String("start", def.Start, "start time (RFC 3339)")
	split := flag.String("split", def.Split, "split markers in km, comma separated")
	ele := flag.Bool("ele", def.Elevation, "look up missing elevations")
	kmlOut := flag.String("kml", def.KML, "also write the route as .kml or .kmz")
	geojsonOut := flag.String("geojson", def.GeoJSON, "also write the route as geojson")
	preview := flag.String("preview", def.Preview, "also write a png preview")
	configPath := flag.String("config", "", "yaml config file")
	logFlag := flag.Bool("log", false, "log progress")
	debug := flag.Bool("debug", false, "log debug details")
	logfile := flag.String("logfile", def.LogFile, "write the log to this file instead of stderr")
	version := flag.Bool("version", false, "show version")
	flag.Parse()

	if *version {
		fmt.Println(globals.VERSION)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Name = *name
		case "output":
			cfg.Output = *output
		case "speed":
			cfg.Speed = *speed
		case "start":
			cfg.Start = *start
		case "split":
			cfg.Split = *split
		case "ele":
			cfg.Elevation = *ele
		case "kml":
			cfg.KML = *kmlOut
		case "geojson":
			cfg.GeoJSON = *geojsonOut
		case "preview":
			cfg.Preview = *preview
		case "logfile":
			cfg.LogFile = *logfile
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	globals.LOG = *logFlag
	globals.DEBUG = *debug
	closer := globals.SetupLogger(cfg.LogFile)
	defer closer.Close()

	if in.TCX != "" {
		if err := splitCourse(cfg, in.TCX); err != nil {
			return fmt.Errorf("splitting %q: %w", in.TCX, err)
		}
		return nil
	}
	if err := build(cfg, in); err != nil {
		return fmt.Errorf("building route: %w", err)
	}
	return nil
}

// build merges the inputs into one route and writes the outputs.
func build(cfg *config.Config, in Inputs) error {
	if in.Base == "" {
		return fmt.Errorf("no base track given: %w", routedata.ErrMissingInput)
	}
	start, err := cfg.StartTime()
	if err != nil {
		return err
	}

	base, err := loadBase(in.Base)
	if err != nil {
		return fmt.Errorf("loading base track: %w", err)
	}
	input := routedata.Input{
		Name:        routeName(cfg.Name, base.Name, in.Base),
		Track:       base.Track,
		Waypoints:   base.Waypoints,
		RoutePoints: base.RoutePoints,
		Start:       start,
		Speed:       cfg.Speed,
	}
	if in.Poi != "" {
		poi, err := loadBase(in.Poi)
		if err != nil {
			return fmt.Errorf("loading extra waypoints: %w", err)
		}
		input.Extra = poi.Extra()
	}
	if in.Cues != "" {
		rows, err := loadCues(in.Cues, false)
		if err != nil {
			return err
		}
		input.Tabular = append(input.Tabular, rows...)
	}
	if in.CuesHTML != "" {
		rows, err := loadCues(in.CuesHTML, true)
		if err != nil {
			return err
		}
		input.Tabular = append(input.Tabular, rows...)
	}

	if cfg.Elevation {
		src, err := newSrtm(cfg.SrtmCache)
		if err != nil {
			return err
		}
		if err := fillElevations(src, input.Track, input.Waypoints, input.RoutePoints, input.Extra); err != nil {
			return fmt.Errorf("filling elevations: %w", err)
		}
	}

	r, err := routedata.Assemble(input)
	if err != nil {
		return fmt.Errorf("assembling: %w", err)
	}
	if err := save(cfg, r); err != nil {
		return err
	}
	if cfg.Split != "" {
		if err := saveParts(cfg, r); err != nil {
			return err
		}
	}
	return nil
}

// splitCourse splits a course written by an earlier run.
func splitCourse(cfg *config.Config, fpath string) error {
	if cfg.Split == "" {
		return fmt.Errorf("no split markers given: %w", routedata.ErrInvalidSplitMarkers)
	}
	r, err := loadCourse(fpath)
	if err != nil {
		return err
	}
	r.Name = routeName(cfg.Name, "", fpath)
	return saveParts(cfg, r)
}

// routeName prefers the configured name, then the base file name without its extension, then the
// name inside the file.
func routeName(configured, inFile, fpath string) string {
	if configured != "" {
		return configured
	}
	if fpath != "" {
		if n := strings.TrimSuffix(filepath.Base(fpath), filepath.Ext(fpath)); n != "" && n != "." {
			return n
		}
	}
	if inFile != "" {
		return inFile
	}
	return globals.DEFAULT_NAME
}

var errUnknownFormat = errors.New("unknown file format")
