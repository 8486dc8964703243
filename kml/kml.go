package kml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dave/wherepoints/geo"
	"github.com/dave/wherepoints/routedata"
	"github.com/klauspost/compress/zip"
	"golang.org/x/net/html/charset"
)

const Namespace = "http://www.opengis.net/kml/2.2"

// Load reads a .kml file, or the first .kml document inside a .kmz archive.
func Load(fpath string) (Root, error) {
	if strings.EqualFold(filepath.Ext(fpath), ".kmz") {
		return loadKmz(fpath)
	}
	f, err := os.Open(fpath)
	if err != nil {
		return Root{}, fmt.Errorf("reading kml %q: %w", fpath, err)
	}
	defer f.Close()
	return Decode(f)
}

func loadKmz(fpath string) (Root, error) {
	zr, err := zip.OpenReader(fpath)
	if err != nil {
		return Root{}, fmt.Errorf("opening kmz %q: %w: %w", fpath, routedata.ErrParse, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Root{}, fmt.Errorf("opening %s in %q: %w", f.Name, fpath, err)
		}
		defer rc.Close()
		return Decode(rc)
	}
	return Root{}, fmt.Errorf("no kml document in %q: %w", fpath, routedata.ErrParse)
}

func Decode(reader io.Reader) (Root, error) {
	var r Root
	dec := xml.NewDecoder(reader)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&r); err != nil {
		return Root{}, fmt.Errorf("decoding kml: %w: %w", routedata.ErrParse, err)
	}
	return r, nil
}

type Root struct {
	Xmlns    string   `xml:"xmlns,attr"`
	Document Document `xml:"Document"`
}

func (r Root) Encode(w io.Writer) error {
	wrapper := struct {
		Root
		XMLName struct{} `xml:"kml"`
	}{Root: r}
	bw, err := xml.MarshalIndent(wrapper, "", "\t")
	if err != nil {
		return fmt.Errorf("marshaling kml: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header+string(bw)+"\n"); err != nil {
		return fmt.Errorf("writing kml: %w", err)
	}
	return nil
}

// Save writes a .kml file, or a .kmz archive holding doc.kml when fpath ends in .kmz.
func (r Root) Save(fpath string) error {
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(fpath), ".kmz") {
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("doc.kml")
		if err != nil {
			return fmt.Errorf("creating kmz entry: %w", err)
		}
		if err := r.Encode(w); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("closing kmz: %w", err)
		}
	} else if err := r.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(fpath, buf.Bytes(), 0666); err != nil {
		return fmt.Errorf("writing kml file %q: %w", fpath, err)
	}
	return nil
}

type Document struct {
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	Visibility  int          `xml:"visibility"`
	Open        int          `xml:"open"`
	Styles      []*Style     `xml:"Style"`
	Placemarks  []*Placemark `xml:"Placemark"`
	Folders     []*Folder    `xml:"Folder"`
}

type Style struct {
	Id        string     `xml:"id,attr,omitempty"`
	LineStyle *LineStyle `xml:"LineStyle,omitempty"`
	IconStyle *IconStyle `xml:"IconStyle,omitempty"`
}

type LineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width,omitempty"`
}

type IconStyle struct {
	Color string  `xml:"color,omitempty"`
	Scale float64 `xml:"scale,omitempty"`
}

type Folder struct {
	Name        string       `xml:"name"`
	Description string       `xml:"description"`
	Visibility  int          `xml:"visibility"`
	Open        int          `xml:"open"`
	Placemarks  []*Placemark `xml:"Placemark"`
	Folders     []*Folder    `xml:"Folder"`
}

type Placemark struct {
	Name          string         `xml:"name"`
	Description   string         `xml:"description"`
	Visibility    int            `xml:"visibility"`
	Open          int            `xml:"open"`
	StyleUrl      string         `xml:"styleUrl,omitempty"`
	Point         *Point         `xml:"Point,omitempty"`
	LineString    *LineString    `xml:"LineString,omitempty"`
	MultiGeometry *MultiGeometry `xml:"MultiGeometry,omitempty"`
	Style         *Style         `xml:"Style,omitempty"`
}

type Point struct {
	Coordinates string `xml:"coordinates"`
}

// Pos parses "lon,lat[,ele]". hasEle is false when the elevation is missing.
func (p Point) Pos() (pos geo.Pos, hasEle bool, err error) {
	return parseCoordinate(strings.TrimSpace(p.Coordinates))
}

type LineString struct {
	Extrude      bool   `xml:"extrude"`
	Tessellate   bool   `xml:"tessellate"`
	AltitudeMode string `xml:"altitudeMode"`
	Coordinates  string `xml:"coordinates"`
}

type MultiGeometry struct {
	LineStrings []*LineString `xml:"LineString"`
	Points      []*Point      `xml:"Point"`
}

// TrackPoints parses the coordinate tuples, which are separated by any whitespace.
func (l LineString) TrackPoints() ([]routedata.TrackPoint, error) {
	var points []routedata.TrackPoint
	for _, tuple := range strings.Fields(l.Coordinates) {
		pos, hasEle, err := parseCoordinate(tuple)
		if err != nil {
			return nil, err
		}
		points = append(points, routedata.TrackPoint{Pos: pos, HasEle: hasEle})
	}
	return points, nil
}

func parseCoordinate(s string) (pos geo.Pos, hasEle bool, err error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return geo.Pos{}, false, fmt.Errorf("coordinate %q: %w", s, routedata.ErrParse)
	}
	if pos.Lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return geo.Pos{}, false, fmt.Errorf("coordinate %q: %w: %w", s, routedata.ErrParse, err)
	}
	if pos.Lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return geo.Pos{}, false, fmt.Errorf("coordinate %q: %w: %w", s, routedata.ErrParse, err)
	}
	if len(parts) > 2 {
		if ele, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
			pos.Ele, hasEle = ele, true
		}
	}
	return pos, hasEle, nil
}

func LineCoordinates(points []routedata.TrackPoint) string {
	var sb strings.Builder
	for i, p := range points {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(PosCoordinates(p.Pos, p.HasEle))
	}
	return sb.String()
}

func PosCoordinates(pos geo.Pos, hasEle bool) string {
	s := strconv.FormatFloat(pos.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(pos.Lat, 'f', -1, 64)
	if hasEle {
		s += "," + strconv.FormatFloat(pos.Ele, 'f', 1, 64)
	}
	return s
}

// Placemarks lists every placemark of the document in document order, folders included.
func (r Root) Placemarks() []*Placemark {
	var out []*Placemark
	var walk func(folders []*Folder)
	walk = func(folders []*Folder) {
		for _, f := range folders {
			out = append(out, f.Placemarks...)
			walk(f.Folders)
		}
	}
	out = append(out, r.Document.Placemarks...)
	walk(r.Document.Folders)
	return out
}

// Track joins all line strings of the document into one base track.
func (r Root) Track() ([]routedata.TrackPoint, error) {
	var lines []*LineString
	for _, p := range r.Placemarks() {
		if p.LineString != nil {
			lines = append(lines, p.LineString)
		}
		if p.MultiGeometry != nil {
			lines = append(lines, p.MultiGeometry.LineStrings...)
		}
	}
	var track []routedata.TrackPoint
	for _, l := range lines {
		points, err := l.TrackPoints()
		if err != nil {
			return nil, fmt.Errorf("reading line string: %w", err)
		}
		track = append(track, points...)
	}
	return track, nil
}

// Waypoints returns the point placemarks of the document.
func (r Root) Waypoints() ([]routedata.Annotation, error) {
	var out []routedata.Annotation
	for _, p := range r.Placemarks() {
		var points []*Point
		if p.Point != nil {
			points = append(points, p.Point)
		}
		if p.MultiGeometry != nil {
			points = append(points, p.MultiGeometry.Points...)
		}
		for _, pt := range points {
			pos, hasEle, err := pt.Pos()
			if err != nil {
				return nil, fmt.Errorf("reading placemark %q: %w", p.Name, err)
			}
			a := routedata.Annotation{
				Name:   strings.TrimSpace(p.Name),
				Pos:    pos,
				HasEle: hasEle,
				Notes:  strings.TrimSpace(p.Description),
				Source: routedata.SourceWaypoint,
			}
			if a.Name == "" {
				a.Name = "Waypoint"
			}
			if a.Notes == "" {
				a.Notes = a.Name
			}
			a.Type = routedata.Classify(a.Name)
			out = append(out, a)
		}
	}
	return out, nil
}

var styles = []struct{ Id, Color string }{
	{"track", "961400FF"},
	{"Generic", "96FF7800"},
	{"Left", "9678FF00"},
	{"Right", "9678FF00"},
	{"SharpLeft", "96008C14"},
	{"SharpRight", "96008C14"},
	{"Straight", "96F0FF14"},
	{"Food", "961478FF"},
	{"Hotel", "96FF7878"},
}

// FromRoute builds a document with the merged track and one placemark per cue.
func FromRoute(r *routedata.Route) Root {
	var docStyles []*Style
	for _, s := range styles {
		style := &Style{Id: s.Id}
		if s.Id == "track" {
			style.LineStyle = &LineStyle{Color: s.Color, Width: 4}
		} else {
			style.IconStyle = &IconStyle{Color: s.Color, Scale: 1}
		}
		docStyles = append(docStyles, style)
	}

	trackFolder := &Folder{
		Name:       "Track",
		Visibility: 1,
		Placemarks: []*Placemark{{
			Name:       r.Name,
			Visibility: 1,
			StyleUrl:   "#track",
			LineString: &LineString{
				Tessellate:   true,
				AltitudeMode: "clampToGround",
				Coordinates:  LineCoordinates(r.Track.Points),
			},
		}},
	}

	cueFolder := &Folder{
		Name:       "Cues",
		Visibility: 1,
	}
	for _, c := range r.Cues {
		cueFolder.Placemarks = append(cueFolder.Placemarks, &Placemark{
			Name:        c.Name,
			Description: fmt.Sprintf("%s (%.1f km)", c.Notes, c.Distance/1000),
			Visibility:  1,
			StyleUrl:    "#" + c.Type.String(),
			Point:       &Point{Coordinates: PosCoordinates(c.Pos, c.HasEle)},
		})
	}

	return Root{
		Xmlns: Namespace,
		Document: Document{
			Name:       r.Name,
			Visibility: 1,
			Open:       1,
			Styles:     docStyles,
			Folders:    []*Folder{trackFolder, cueFolder},
		},
	}
}
