package cuesheet

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dave/wherepoints/routedata"
)

func TestParseCSV(t *testing.T) {
	in := `Start,0

Turn right onto Main St, 1.5
"Cafe, town square",3.25km
,4
Bad distance,abc
Only a name
  Grand Hotel ,12
Resupply,-0.5
`
	rows, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{
		{"Start", 0},
		{"Turn right onto Main St", 1.5},
		{"Cafe, town square", 3.25},
		{"Grand Hotel", 12},
		{"Resupply", -0.5},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v\nwant %+v", rows, want)
	}
}

func TestParseCSVUnbalancedQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want []Row
	}{
		{
			in:   "\"The Barn\" cafe,5\nHotel,20\nTurn left,30\n",
			want: []Row{{`"The Barn" cafe`, 5}, {"Hotel", 20}, {"Turn left", 30}},
		},
		{
			in:   "\"Cafe,12\nHotel,20\n",
			want: []Row{{`"Cafe`, 12}, {"Hotel", 20}},
		},
		{
			in:   "\"Unclosed\nHotel,20\n",
			want: []Row{{"Hotel", 20}},
		},
	}
	for _, tt := range tests {
		rows, err := ParseCSV(strings.NewReader(tt.in))
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(rows, tt.want) {
			t.Errorf("ParseCSV(%q) = %+v, want %+v", tt.in, rows, tt.want)
		}
	}
}

func TestParseHTML(t *testing.T) {
	in := `<html><body>
<table>
  <tr><th>Cue</th><th>Km</th></tr>
  <tr><td>Left at fork</td><td>2.0 km</td></tr>
  <tr><td>  Resupply  </td><td>10.75</td><td>ignored</td></tr>
  <tr><td>lonely cell</td></tr>
  <tr><td></td><td>5</td></tr>
</table>
</body></html>`
	rows, err := ParseHTML(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []Row{
		{"Left at fork", 2},
		{"Resupply", 10.75},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v\nwant %+v", rows, want)
	}
}

func TestAnnotations(t *testing.T) {
	got := Annotations([]Row{{"Left at fork", 2}, {"Hotel Alpina", 80.5}})
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].SourceDistance != 2000 || got[0].Type != routedata.Left || got[0].Source != routedata.SourceTabular {
		t.Errorf("annotation 0 = %+v", got[0])
	}
	if got[1].SourceDistance != 80500 || got[1].Type != routedata.Hotel {
		t.Errorf("annotation 1 = %+v", got[1])
	}
}
