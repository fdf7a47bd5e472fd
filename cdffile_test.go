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
	"io"
	"testing"

	"github.com/ctessum/cdf"
)

// memStore is an in-memory ReaderWriterAt for building NetCDF files
// without touching the filesystem.
type memStore struct {
	data []byte
}

func (s *memStore) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *memStore) WriteAt(p []byte, off int64) (int, error) {
	if need := off + int64(len(p)); need > int64(len(s.data)) {
		grown := make([]byte, need)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[off:], p)
	return len(p), nil
}

// writeTestCDF builds a classic-format file with a 2-record unlimited
// time dimension and a (time, lat, lon) field.
func writeTestCDF(t *testing.T) *memStore {
	t.Helper()
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, 2, 3})
	h.AddAttribute("", "institution", "Test Institute")

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "days since 2000-01-01")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("t2m", []string{"time", "lat", "lon"}, []float32{0})
	h.AddAttribute("t2m", "units", "K")
	h.Define()

	store := &memStore{}
	f, err := cdf.Create(store, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(name string, vals interface{}) {
		if _, err := f.Writer(name, nil, nil).Write(vals); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	write("lat", []float64{-30, 30})
	write("lon", []float64{0, 120, 240})
	write("time", []float64{0, 1})
	field := make([]float32, 2*2*3)
	for i := range field {
		field[i] = float32(i)
	}
	write("t2m", field)
	return store
}

func TestOpenCDF(t *testing.T) {
	store := writeTestCDF(t)
	b, err := OpenCDF(store, int64(len(store.data)))
	if err != nil {
		t.Fatal(err)
	}

	dims := b.Dimensions()
	if len(dims) != 3 {
		t.Fatalf("dimensions: got %d, want 3", len(dims))
	}
	if !dims[0].Unlimited || dims[0].Len != 2 {
		t.Errorf("record dimension: got len %d unlimited %v, want 2/true",
			dims[0].Len, dims[0].Unlimited)
	}

	vars := b.Variables()
	if len(vars) != 4 {
		t.Fatalf("variables: got %d, want 4", len(vars))
	}
	if vars[3].Name != "t2m" || vars[3].Type != TypeFloat {
		t.Errorf("t2m: got %s type %v", vars[3].Name, vars[3].Type)
	}

	// A full read of a record variable must stride across both records.
	raw, err := b.Read(3)
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := raw.([]float32)
	if !ok || len(vals) != 12 {
		t.Fatalf("t2m read: got %T len %d", raw, len(vals))
	}
	if vals[0] != 0 || vals[6] != 6 || vals[11] != 11 {
		t.Errorf("t2m values: got %v", vals)
	}
}

func TestCDFReadRange(t *testing.T) {
	store := writeTestCDF(t)
	b, err := OpenCDF(store, int64(len(store.data)))
	if err != nil {
		t.Fatal(err)
	}

	// Second record only: contiguous along the inner dimensions.
	raw, err := b.ReadRange(3, []int{1, 0, 0}, []int{2, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	vals := raw.([]float32)
	if len(vals) != 6 || vals[0] != 6 || vals[5] != 11 {
		t.Errorf("record slab: got %v", vals)
	}

	// One longitude column: falls back to full read plus extraction.
	raw, err = b.ReadRange(3, []int{0, 0, 1}, []int{2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	vals = raw.([]float32)
	want := []float32{1, 4, 7, 10}
	if len(vals) != 4 {
		t.Fatalf("column slab: got %v", vals)
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("column slab element %d: got %v, want %v", i, vals[i], want[i])
		}
	}
}

func TestScanCDF(t *testing.T) {
	store := writeTestCDF(t)
	b, err := OpenCDF(store, int64(len(store.data)))
	if err != nil {
		t.Fatal(err)
	}
	c, err := Scan(b, Config{})
	if err != nil {
		t.Fatal(err)
	}

	if c.Institution != "Test Institute" {
		t.Errorf("institution: got %q", c.Institution)
	}
	dv := c.Var("t2m")
	if dv == nil {
		t.Fatal("t2m not cataloged")
	}
	if dv.Units != "K" {
		t.Errorf("units: got %q", dv.Units)
	}
	g := c.Grid(dv.GridID)
	if g.Kind != GridLonLat || g.NX != 3 || g.NY != 2 {
		t.Errorf("grid: got %v %dx%d, want lonlat 3x2", g.Kind, g.NX, g.NY)
	}
	ta := c.TimeAxis
	if ta.Type != TimeRelative || ta.N != 2 {
		t.Fatalf("time axis: got %v with %d steps", ta.Type, ta.N)
	}
	want := DateTime{Year: 2000, Month: 1, Day: 2}
	if ta.Steps[1] != want {
		t.Errorf("step 1: got %v, want %v", ta.Steps[1], want)
	}
}
