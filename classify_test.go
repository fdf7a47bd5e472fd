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

// scanTables runs classification only and returns the scanner for
// inspection of the working tables.
func scanTables(t *testing.T, m *Memfile, cfg Config) *scanner {
	t.Helper()
	cfg = cfg.withDefaults()
	if cfg.Warnings == nil {
		cfg.Warnings = func(string) {}
	}
	s := &scanner{b: m, cfg: cfg, warn: newWarner(cfg)}
	var err error
	if s.dims, err = newDimTable(m.Dimensions()); err != nil {
		t.Fatal(err)
	}
	s.vars = newVarTable(m.Variables())
	s.classify()
	return s
}

func TestClassifyStructural(t *testing.T) {
	s := scanTables(t, basicDataset(), Config{})

	for _, name := range []string{"time", "lat", "lon"} {
		id, _ := s.vars.lookup(name)
		if got := s.vars.vars[id].status; got != statusCoordinate {
			t.Errorf("%s: got status %v, want coordinate", name, got)
		}
	}
	id, _ := s.vars.lookup("t2m")
	if got := s.vars.vars[id].status; got != statusData {
		t.Errorf("t2m: got status %v, want data", got)
	}
}

func TestClassifyAxisRoles(t *testing.T) {
	s := scanTables(t, basicDataset(), Config{})

	id, _ := s.vars.lookup("t2m")
	v := &s.vars.vars[id]
	want := []axisKind{axisT, axisY, axisX}
	for i, a := range v.axes {
		if a != want[i] {
			t.Errorf("axis %d: got %v, want %v", i, a, want[i])
		}
	}
}

func TestAxisGrammar(t *testing.T) {
	m := NewMemfile()
	d1 := m.AddDim("a", 2)
	d2 := m.AddDim("b", 3)
	d3 := m.AddDim("c", 4)
	v := m.AddVar("field", TypeFloat, d1, d2, d3)
	m.SetAttr(v, "axis", "tyx")
	m.SetData(v, make([]float32, 2*3*4))

	s := scanTables(t, m, Config{})
	got := s.vars.vars[v].axes
	want := []axisKind{axisT, axisY, axisX}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("axis %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// A malformed axis attribute is ignored entirely.
	m2 := NewMemfile()
	e1 := m2.AddDim("a", 2)
	e2 := m2.AddDim("b", 3)
	v2 := m2.AddVar("field", TypeFloat, e1, e2)
	m2.SetAttr(v2, "axis", "tq")
	m2.SetData(v2, make([]float32, 6))
	s2 := scanTables(t, m2, Config{})
	if s2.dims.dims[e1].axis != axisNone {
		t.Error("malformed axis attribute partially applied")
	}
}

func TestBoundsForcesData(t *testing.T) {
	// A variable with a bounds attribute is forced to data status, and
	// the referenced variable to coordinate status.
	m := NewMemfile()
	d := m.AddDim("x", 4)
	db := m.AddDim("bnds", 2)
	v := m.AddVar("odd", TypeDouble, d)
	m.SetAttr(v, "bounds", "odd_bnds")
	m.SetData(v, []float64{1, 2, 3, 4})
	vb := m.AddVar("odd_bnds", TypeDouble, d, db)
	m.SetData(vb, make([]float64, 8))

	s := scanTables(t, m, Config{})
	if got := s.vars.vars[v].status; got != statusData {
		t.Errorf("odd: got status %v, want data", got)
	}
	if got := s.vars.vars[vb].status; got != statusCoordinate {
		t.Errorf("odd_bnds: got status %v, want coordinate", got)
	}
}

func TestUnresolvedReferenceWarns(t *testing.T) {
	m := basicDataset()
	m.SetAttr(3, "coordinates", "nothere lat")

	var warnings []string
	s := scanTables(t, m, Config{Warnings: func(msg string) { warnings = append(warnings, msg) }})

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "nothere") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an unresolved-reference warning, got %v", warnings)
	}
	// The resolvable reference still took effect.
	latID, _ := s.vars.lookup("lat")
	v := &s.vars.vars[3]
	if len(v.coordVars) != 1 || v.coordVars[0] != latID {
		t.Errorf("coordVars: got %v, want [%d]", v.coordVars, latID)
	}
}

func TestCharDataDemoted(t *testing.T) {
	m := basicDataset()
	dStr := m.AddDim("str_len", 8)
	v := m.AddVar("station_name", TypeChar, 1, dStr)
	m.SetData(v, make([]byte, 4*8))

	var warnings []string
	s := scanTables(t, m, Config{Warnings: func(msg string) { warnings = append(warnings, msg) }})
	if got := s.vars.vars[v].status; got != statusCoordinate || !s.vars.vars[v].skip {
		t.Errorf("char variable: got status %v skip %v, want coordinate/skip",
			got, s.vars.vars[v].skip)
	}
	if len(warnings) == 0 {
		t.Error("expected a demotion warning")
	}
}

func TestRankLimitDemoted(t *testing.T) {
	m := NewMemfile()
	var dims []int
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		dims = append(dims, m.AddDim(n, 2))
	}
	v := m.AddVar("field", TypeFloat, dims...)
	m.SetData(v, make([]float32, 32))

	s := scanTables(t, m, Config{})
	if !s.vars.vars[v].skip {
		t.Error("rank-5 variable without a face dimension not demoted")
	}
}

func TestScaleAndMissing(t *testing.T) {
	m := basicDataset()
	m.SetAttr(3, "scale_factor", []float64{0.01})
	m.SetAttr(3, "add_offset", []float64{273.15})
	m.SetAttr(3, "_FillValue", []float32{-9999})

	s := scanTables(t, m, Config{})
	v := &s.vars.vars[3]
	if v.scale != 0.01 || v.offset != 273.15 {
		t.Errorf("scale/offset: got %v/%v", v.scale, v.offset)
	}
	if !v.hasMissing || v.missing != -9999 {
		t.Errorf("missing: got %v (has %v)", v.missing, v.hasMissing)
	}
}

func TestValidRangeToggle(t *testing.T) {
	m := basicDataset()
	m.SetAttr(3, "valid_range", []float64{0, 400})

	s := scanTables(t, m, Config{})
	if !s.vars.vars[3].hasMissing {
		t.Error("valid_range did not derive a missing value")
	}

	s = scanTables(t, basicDatasetWithValidRange(), Config{IgnoreValidRange: true})
	if s.vars.vars[3].hasMissing {
		t.Error("IgnoreValidRange not honored")
	}
}

func basicDatasetWithValidRange() *Memfile {
	m := basicDataset()
	m.SetAttr(3, "valid_range", []float64{0, 400})
	return m
}

func TestPositiveOnLevelCoordinate(t *testing.T) {
	m := NewMemfile()
	d := m.AddDim("lev", 3)
	v := m.AddVar("lev", TypeDouble, d)
	m.SetAttr(v, "units", "Pa")
	m.SetAttr(v, "positive", "down")
	m.SetData(v, []float64{100000, 50000, 10000})
	vT := m.AddVar("ta", TypeFloat, d)
	m.SetData(vT, make([]float32, 3))

	var warnings []string
	s := scanTables(t, m, Config{Warnings: func(msg string) { warnings = append(warnings, msg) }})
	// The positive marker forces data, then the pressure units force
	// coordinate again; the last write wins with a warning.
	if got := s.vars.vars[v].status; got != statusCoordinate {
		t.Errorf("lev: got status %v, want coordinate", got)
	}
	if !s.vars.vars[v].isZ {
		t.Error("lev not recognized as a z axis")
	}
	if len(warnings) == 0 {
		t.Error("expected an inconsistent-definition warning")
	}
}

func TestInconsistentStatusWarns(t *testing.T) {
	m := basicDataset()
	// lon is structurally a coordinate; a code attribute then forces
	// data, and the units table forces coordinate again.
	m.SetAttr(2, "code", []int32{130})

	var warnings []string
	s := scanTables(t, m, Config{Warnings: func(msg string) { warnings = append(warnings, msg) }})
	if len(warnings) == 0 {
		t.Fatal("expected an inconsistent-definition warning")
	}
	// Last write wins: the units table ran last.
	if got := s.vars.vars[2].status; got != statusCoordinate {
		t.Errorf("lon: got status %v, want coordinate", got)
	}
}
