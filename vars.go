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

// varStatus is the classification state of a variable.
type varStatus int8

const (
	statusUnknown varStatus = iota
	statusCoordinate
	statusData
)

func (s varStatus) String() string {
	switch s {
	case statusCoordinate:
		return "coordinate"
	case statusData:
		return "data"
	}
	return "unknown"
}

// variable is one entry of the variable table. All cross-references
// (bounds, grid mapping, coordinate variables) are indices into the
// same table; -1 means unset.
type variable struct {
	name   string
	dtype  DataType
	dims   []int      // dimension ids, slowest varying first
	axes   []axisKind // per-dimension semantic role, len == len(dims)
	status varStatus

	// role flags
	isLon, isLat               bool
	isX, isY, isZ, isT         bool
	isClimatology              bool
	hasBounds, hasFormulaTerms bool
	isChunked                  bool
	skip                       bool // demoted: not cataloged, warn already emitted
	statusLocked               bool // status set explicitly at least once

	// scaling and missing values
	scale, offset float64
	hasScale      bool
	missing       float64
	hasMissing    bool

	// cross references
	boundsVar  int
	gridMapVar int
	coordVars  []int

	// frequently consulted attribute content, captured once
	units, stdName, longName string
	axisAttr                 string
	positive                 string
	formulaTerms             string
	calendar                 string
	code, table              int
	param                    string

	chunk       []int
	chunkFilter string

	// resolved bindings
	gridID, zaxisID int
}

func newVariable(bv BackendVar) variable {
	return variable{
		name:       bv.Name,
		dtype:      bv.Type,
		dims:       bv.Dims,
		axes:       make([]axisKind, len(bv.Dims)),
		scale:      1,
		boundsVar:  -1,
		gridMapVar: -1,
		code:       -1,
		table:      -1,
		gridID:     -1,
		zaxisID:    -1,
	}
}

func (v *variable) rank() int { return len(v.dims) }

// hasDim reports whether the variable spans dimension id d.
func (v *variable) hasDim(d int) bool {
	for _, vd := range v.dims {
		if vd == d {
			return true
		}
	}
	return false
}

// setAxisForDim records a semantic role for the variable's dimension id
// d in the per-dimension axis vector.
func (v *variable) setAxisForDim(d int, a axisKind) {
	for i, vd := range v.dims {
		if vd == d {
			v.axes[i] = a
		}
	}
}

// varTable is the flat index-addressed registry of variables.
type varTable struct {
	vars   []variable
	byName map[string]int
}

func newVarTable(bvars []BackendVar) *varTable {
	vt := &varTable{byName: make(map[string]int, len(bvars))}
	for _, bv := range bvars {
		vt.byName[bv.Name] = len(vt.vars)
		vt.vars = append(vt.vars, newVariable(bv))
	}
	return vt
}

func (vt *varTable) lookup(name string) (int, bool) {
	id, ok := vt.byName[name]
	return id, ok
}

// setStatus assigns coordinate/data status. A later conflicting
// assignment overwrites the earlier one and warns once; classification
// deliberately degrades instead of failing on contradictory metadata.
func (vt *varTable) setStatus(id int, s varStatus, w *warner) {
	v := &vt.vars[id]
	if v.statusLocked && v.status != s {
		w.warnf("variable %s: inconsistent definition (%v -> %v)", v.name, v.status, s)
	}
	v.status = s
	v.statusLocked = true
}
