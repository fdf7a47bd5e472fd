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
	"regexp"
	"strconv"
)

// DataVar is one cataloged data variable, bound to its grid, vertical
// axis and the dataset's time axis.
type DataVar struct {
	// VarID is the backend variable id, usable for data reads against
	// the still-open backend.
	VarID int

	Name  string
	Type  DataType
	Units string

	StdName, LongName string

	GridID  int
	ZAxisID int

	// Code/Table/Param identify the physical quantity in table-driven
	// dialects; Code and Table are -1 and Param empty when unknown.
	Code, Table int
	Param       string

	// Scale/Offset unpack stored values; Missing is the missing-value
	// sentinel when HasMissing is set.
	Scale, Offset float64
	Missing       float64
	HasMissing    bool

	// Attributes holds the attributes the scan did not interpret,
	// verbatim as the codec delivered them.
	Attributes map[string]interface{}

	// ChunkCacheBytes is the cache sizing applied to the backend for
	// this variable; 0 when the field fits in a single chunk or the
	// variable is contiguous.
	ChunkCacheBytes int64
}

// Catalog is the normalized grid model of one dataset. It is read-only
// once returned by Scan.
type Catalog struct {
	Vars []DataVar

	Grids         []*Grid
	VerticalAxes  []*VerticalAxis
	TimeAxis      *TimeAxis

	// GlobalAttrs holds the dataset's global attributes verbatim.
	GlobalAttrs map[string]interface{}

	Institution, Model string
}

// Grid returns the grid with the given id, or nil.
func (c *Catalog) Grid(id int) *Grid {
	if id < 0 || id >= len(c.Grids) {
		return nil
	}
	return c.Grids[id]
}

// VerticalAxis returns the vertical axis with the given id, or nil.
func (c *Catalog) VerticalAxis(id int) *VerticalAxis {
	if id < 0 || id >= len(c.VerticalAxes) {
		return nil
	}
	return c.VerticalAxes[id]
}

// Var returns the cataloged variable with the given name, or nil.
func (c *Catalog) Var(name string) *DataVar {
	for i := range c.Vars {
		if c.Vars[i].Name == name {
			return &c.Vars[i]
		}
	}
	return nil
}

// consumedAttrs are the attribute names the scan interprets itself;
// everything else is carried into the Catalog verbatim.
var consumedAttrs = map[string]bool{
	"units": true, "standard_name": true, "long_name": true,
	"axis": true, "calendar": true, "positive": true,
	"formula_terms": true,
	"scale_factor":  true, "add_offset": true,
	"_FillValue": true, "missing_value": true, "valid_range": true,
	"code": true, "table": true, "param": true,
	"bounds": true, "climatology": true,
	"coordinates": true, "associate": true, "auxiliary_variable": true,
	"grid_mapping": true, "cell_measures": true,
	"grid_type": true, "level_type": true, "trunc_type": true,
	"forecast_init_type": true,
	"realization":        true, "ensemble_members": true,
	"number_of_lines_per_equator": true, "reduced_points": true,
	"position": true, "truncation": true,
}

// Name patterns carrying an embedded parameter code.
var (
	varNNNRe   = regexp.MustCompile(`^var(\d+)$`)
	codeNNNNRe = regexp.MustCompile(`^code(\d+)$`)
	paramRe    = regexp.MustCompile(`^param(\d+)\.(\d+)\.(\d+)$`)
)

// deriveParam fills code/param identifiers from the variable name when
// the attributes did not carry them.
func deriveParam(v *variable) {
	if v.code >= 0 || v.param != "" {
		return
	}
	if m := varNNNRe.FindStringSubmatch(v.name); m != nil {
		v.code, _ = strconv.Atoi(m[1])
		return
	}
	if m := codeNNNNRe.FindStringSubmatch(v.name); m != nil {
		v.code, _ = strconv.Atoi(m[1])
		return
	}
	if m := paramRe.FindStringSubmatch(v.name); m != nil {
		v.param = m[1] + "." + m[2] + "." + m[3]
	}
}

// assemble produces the final Catalog from the scan's working tables.
func (s *scanner) assemble() (*Catalog, error) {
	c := &Catalog{
		Grids:        s.grids,
		VerticalAxes: s.zaxes,
		TimeAxis:     s.taxis,
		GlobalAttrs:  make(map[string]interface{}),
	}

	ga := newAttrReader(s.b, GlobalScope)
	for _, name := range ga.names() {
		if val, ok := s.b.Attribute(GlobalScope, name); ok {
			c.GlobalAttrs[name] = val
		}
	}
	c.Institution = s.globalText(ga, "institution", s.cfg.DefaultInstitution)
	c.Model = s.globalText(ga, "source", s.cfg.DefaultModel)

	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.status != statusData || v.skip || v.gridID < 0 {
			continue
		}
		if !s.cfg.Query.wantsVar(v.name) {
			continue
		}
		deriveParam(v)

		dv := DataVar{
			VarID:      id,
			Name:       v.name,
			Type:       v.dtype,
			Units:      v.units,
			StdName:    v.stdName,
			LongName:   v.longName,
			GridID:     v.gridID,
			ZAxisID:    v.zaxisID,
			Code:       v.code,
			Table:      v.table,
			Param:      v.param,
			Scale:      v.scale,
			Offset:     v.offset,
			Missing:    v.missing,
			HasMissing: v.hasMissing,
			Attributes: s.leftoverAttrs(id),
		}

		if v.isChunked {
			dv.ChunkCacheBytes = s.sizeChunkCache(id)
			if dv.ChunkCacheBytes > 0 {
				if err := s.b.SetChunkCache(id, dv.ChunkCacheBytes); err != nil {
					s.warn.warnf("variable %s: setting chunk cache: %v", v.name, err)
				}
			}
		}
		c.Vars = append(c.Vars, dv)
	}

	if len(c.Vars) == 0 {
		return nil, ErrNoDataVariables
	}
	return c, nil
}

func (s *scanner) globalText(ga attrReader, name, fallback string) string {
	if v, ok := ga.text(name); ok && v != "" {
		return v
	}
	return fallback
}

// leftoverAttrs copies the attributes the scan did not interpret.
func (s *scanner) leftoverAttrs(id int) map[string]interface{} {
	a := newAttrReader(s.b, id)
	var out map[string]interface{}
	for _, name := range a.names() {
		if consumedAttrs[name] {
			continue
		}
		if val, ok := s.b.Attribute(id, name); ok {
			if out == nil {
				out = make(map[string]interface{})
			}
			out[name] = val
		}
	}
	return out
}

// chunkSpan returns the read span one chunk implies along a dimension:
// the full extent when the chunk covers it, otherwise the chunk grown
// until it divides the extent evenly.
func chunkSpan(chunk, extent int) int {
	if chunk <= 0 || chunk >= extent {
		return extent
	}
	span := chunk
	for extent%span != 0 {
		span += chunk
		if span >= extent {
			return extent
		}
	}
	return span
}

// sizeChunkCache computes the chunk cache sizing for one chunked data
// variable: the bytes needed to hold the chunks touched by reading one
// horizontal field across a whole T-chunk of steps. A field stored as a
// single chunk needs no cache.
func (s *scanner) sizeChunkCache(id int) int64 {
	v := &s.vars.vars[id]
	if len(v.chunk) != len(v.dims) {
		return 0
	}

	single := true
	for i, d := range v.dims {
		if v.chunk[i] < s.dims.dims[d].len {
			single = false
			break
		}
	}
	if single {
		return 0
	}

	bytes := int64(v.dtype.Size())
	for i, d := range v.dims {
		extent := s.dims.dims[d].len
		if v.axes[i] == axisT {
			steps := v.chunk[i]
			if steps > extent {
				steps = extent
			}
			if steps < 1 {
				steps = 1
			}
			bytes *= int64(steps)
			continue
		}
		bytes *= int64(chunkSpan(v.chunk[i], extent))
	}
	if bytes > s.cfg.MaxChunkCacheBytes {
		bytes = s.cfg.MaxChunkCacheBytes
	}
	return bytes
}
