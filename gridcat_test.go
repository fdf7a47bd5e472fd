/*
Copyright © 2019 the GridCat authors.
This file is part of GridCat.

GridCat is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridCat is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridCat.  If not, see <http://www.gnu.org/licenses/>.
*/

package gridcat

import (
	"strings"
	"testing"
)

// basicDataset builds a small lon-lat dataset: an unlimited time
// dimension with 3 steps, 1-D lat/lon coordinates, and one data
// variable over (time, lat, lon).
func basicDataset() *Memfile {
	m := NewMemfile()
	dTime := m.AddDim("time", 3)
	dLat := m.AddDim("lat", 4)
	dLon := m.AddDim("lon", 8)
	m.dims[dTime].Unlimited = true

	vTime := m.AddVar("time", TypeDouble, dTime)
	m.SetAttr(vTime, "units", "days since 2000-01-01")
	m.SetData(vTime, []float64{0, 1, 2})

	vLat := m.AddVar("lat", TypeDouble, dLat)
	m.SetAttr(vLat, "units", "degrees_north")
	m.SetData(vLat, []float64{-45, -15, 15, 45})

	vLon := m.AddVar("lon", TypeDouble, dLon)
	m.SetAttr(vLon, "units", "degrees_east")
	m.SetData(vLon, []float64{0, 45, 90, 135, 180, 225, 270, 315})

	vData := m.AddVar("t2m", TypeFloat, dTime, dLat, dLon)
	m.SetAttr(vData, "units", "K")
	m.SetAttr(vData, "long_name", "2 metre temperature")
	data := make([]float32, 3*4*8)
	for i := range data {
		data[i] = float32(i)
	}
	m.SetData(vData, data)
	return m
}

func TestScanBasic(t *testing.T) {
	c, err := Scan(basicDataset(), Config{})
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Vars) != 1 {
		t.Fatalf("expected 1 data variable, got %d", len(c.Vars))
	}
	dv := c.Vars[0]
	if dv.Name != "t2m" {
		t.Errorf("data variable name: got %q, want t2m", dv.Name)
	}

	if len(c.Grids) != 1 {
		t.Fatalf("expected 1 grid, got %d", len(c.Grids))
	}
	g := c.Grid(dv.GridID)
	if g == nil {
		t.Fatal("data variable grid not found")
	}
	if g.Kind != GridLonLat {
		t.Errorf("grid kind: got %v, want %v", g.Kind, GridLonLat)
	}
	if g.NX != 8 || g.NY != 4 {
		t.Errorf("grid size: got %d x %d, want 8 x 4", g.NX, g.NY)
	}

	za := c.VerticalAxis(dv.ZAxisID)
	if za == nil {
		t.Fatal("data variable vertical axis not found")
	}
	if za.Kind != VAxisSurface || za.N != 1 {
		t.Errorf("vertical axis: got %v with %d levels, want surface with 1", za.Kind, za.N)
	}

	if c.TimeAxis == nil {
		t.Fatal("no time axis")
	}
	if c.TimeAxis.N != 3 {
		t.Errorf("time steps: got %d, want 3", c.TimeAxis.N)
	}
	if c.TimeAxis.Type != TimeRelative {
		t.Errorf("time axis type: got %v, want %v", c.TimeAxis.Type, TimeRelative)
	}
	want := DateTime{Year: 2000, Month: 1, Day: 3}
	if c.TimeAxis.Steps[2] != want {
		t.Errorf("step 2: got %v, want %v", c.TimeAxis.Steps[2], want)
	}
}

func TestScanNoVariables(t *testing.T) {
	m := NewMemfile()
	m.AddDim("x", 10)
	if _, err := Scan(m, Config{}); err != ErrNoVariables {
		t.Errorf("got %v, want ErrNoVariables", err)
	}
}

func TestScanNoDataVariables(t *testing.T) {
	m := NewMemfile()
	d := m.AddDim("lat", 2)
	v := m.AddVar("lat", TypeDouble, d)
	m.SetAttr(v, "units", "degrees_north")
	m.SetData(v, []float64{-45, 45})
	if _, err := Scan(m, Config{}); err != ErrNoDataVariables {
		t.Errorf("got %v, want ErrNoDataVariables", err)
	}
}

func TestScanSubgroupWarning(t *testing.T) {
	m := basicDataset()
	m.SetSubgroupCount(2)

	var warnings []string
	_, err := Scan(m, Config{Warnings: func(msg string) { warnings = append(warnings, msg) }})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "sub-groups") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a sub-group warning, got %v", warnings)
	}
}

func TestWarnOnce(t *testing.T) {
	var msgs []string
	w := &warner{sink: func(m string) { msgs = append(msgs, m) }, seen: map[string]struct{}{}}
	w.warnf("problem with %s", "x")
	w.warnf("problem with %s", "x")
	w.warnf("problem with %s", "y")
	if len(msgs) != 2 {
		t.Errorf("expected 2 distinct warnings, got %d: %v", len(msgs), msgs)
	}
}

func TestQueryNames(t *testing.T) {
	m := basicDataset()
	d := m.AddDim("lev", 2)
	vLev := m.AddVar("lev", TypeDouble, d)
	m.SetAttr(vLev, "units", "Pa")
	m.SetData(vLev, []float64{100000, 85000})
	v2 := m.AddVar("q", TypeFloat, 0, d, 1, 2)
	m.SetData(v2, make([]float32, 3*2*4*8))

	c, err := Scan(m, Config{Query: &Query{Names: []string{"q"}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Vars) != 1 || c.Vars[0].Name != "q" {
		t.Fatalf("expected only q to be cataloged, got %v", c.Vars)
	}
	za := c.VerticalAxis(c.Vars[0].ZAxisID)
	if za == nil || za.Kind != VAxisPressure {
		t.Errorf("expected a pressure vertical axis, got %v", za)
	}
}
