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

import "math"

// axisKind is the semantic role of a dimension or of one dimension of
// a variable.
type axisKind int8

const (
	axisNone axisKind = iota
	axisX
	axisY
	axisZ
	axisT
	axisE // ensemble member
)

func (a axisKind) String() string {
	switch a {
	case axisX:
		return "X"
	case axisY:
		return "Y"
	case axisZ:
		return "Z"
	case axisT:
		return "T"
	case axisE:
		return "E"
	}
	return "-"
}

// dimension is one entry of the dimension table. coordVar is the id of
// the 1-D variable sharing the dimension's name, or -1.
type dimension struct {
	name      string
	len       int
	unlimited bool
	axis      axisKind
	coordVar  int
}

// dimTable is the flat index-addressed registry of dimensions. The
// index is the stable dimension id; every cross-reference elsewhere is
// an index into this table.
type dimTable struct {
	dims   []dimension
	byName map[string]int
}

func newDimTable(bdims []BackendDim) (*dimTable, error) {
	dt := &dimTable{byName: make(map[string]int, len(bdims))}
	for _, bd := range bdims {
		if bd.Len < 0 || int64(bd.Len) > math.MaxInt32 {
			return nil, ErrTooLarge
		}
		dt.byName[bd.Name] = len(dt.dims)
		dt.dims = append(dt.dims, dimension{
			name:      bd.Name,
			len:       bd.Len,
			unlimited: bd.Unlimited,
			coordVar:  -1,
		})
	}
	return dt, nil
}

func (dt *dimTable) lookup(name string) (int, bool) {
	id, ok := dt.byName[name]
	return id, ok
}

// setAxis assigns a semantic axis to a dimension. At most one axis type
// is held per dimension; a conflicting later assignment overwrites the
// earlier one (last write wins) and warns. The overwrite behavior is
// load-bearing: several downstream heuristics rely on the most specific
// metadata seen last.
func (dt *dimTable) setAxis(id int, a axisKind, w *warner) {
	d := &dt.dims[id]
	if d.axis != axisNone && d.axis != a {
		w.warnf("dimension %s: axis reassigned %v -> %v", d.name, d.axis, a)
	}
	d.axis = a
}

// setCoordVar links a dimension to its coordinate variable.
func (dt *dimTable) setCoordVar(id, varID int, w *warner) {
	d := &dt.dims[id]
	if d.coordVar >= 0 && d.coordVar != varID {
		w.warnf("dimension %s: coordinate variable redefined", d.name)
	}
	d.coordVar = varID
}
