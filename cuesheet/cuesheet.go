// Package cuesheet reads tabular cue sheets: one cue per row, a name followed by the distance
// along the route in km.
package cuesheet

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dave/wherepoints/globals"
	"github.com/dave/wherepoints/routedata"
)

type Row struct {
	Name       string
	DistanceKm float64
}

func (r Row) Annotation() routedata.Annotation {
	return routedata.NewTabularCue(r.Name, r.DistanceKm)
}

func Annotations(rows []Row) []routedata.Annotation {
	out := make([]routedata.Annotation, len(rows))
	for i, r := range rows {
		out[i] = r.Annotation()
	}
	return out
}

// ParseCSV reads "name,km" lines. Blank lines, rows without a name and rows without a numeric
// distance are skipped. Fields after the second are ignored. Each line is parsed on its own, so
// an unbalanced quote only loses its own row.
func ParseCSV(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []Row
	var line int
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		name, distance, ok := splitLine(text)
		if !ok {
			debugln("skipping row without distance", "line", line, "text", text)
			continue
		}
		if row, ok := parseRow(name, distance); ok {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cue sheet: %w", err)
	}
	logln("parsed csv cue sheet", "rows", len(rows))
	return rows, nil
}

// splitLine returns the first two fields of a line. Quoted fields are honored when the line is
// well formed csv, otherwise the line is cut at its first comma.
func splitLine(text string) (name, distance string, ok bool) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if record, err := cr.Read(); err == nil && len(record) >= 2 {
		return record[0], record[1], true
	}
	name, rest, ok := strings.Cut(text, ",")
	if !ok {
		return "", "", false
	}
	distance, _, _ = strings.Cut(rest, ",")
	return name, distance, true
}

// ParseHTML reads the first two cells of every table row in the document.
func ParseHTML(r io.Reader) ([]Row, error) {
	dom, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing cue sheet html: %w: %w", routedata.ErrParse, err)
	}
	var rows []Row
	dom.Find("tr").Each(func(i int, s *goquery.Selection) {
		cells := s.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		if row, ok := parseRow(cells.Eq(0).Text(), cells.Eq(1).Text()); ok {
			rows = append(rows, row)
		}
	})
	logln("parsed html cue sheet", "rows", len(rows))
	return rows, nil
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func parseRow(name, distance string) (Row, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Row{}, false
	}
	km, ok := parseDistance(distance)
	if !ok {
		debugln("skipping row without distance", "name", name, "distance", distance)
		return Row{}, false
	}
	return Row{Name: name, DistanceKm: km}, true
}

// parseDistance accepts any value that starts with a number, so "25.4km" is 25.4.
func parseDistance(s string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func logln(msg string, args ...any) {
	if globals.LOG {
		globals.Logger.Info(msg, args...)
	}
}

func debugln(msg string, args ...any) {
	if globals.DEBUG {
		globals.Logger.Debug(msg, args...)
	}
}
