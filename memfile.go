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

import "fmt"

// Memfile is an in-memory dataset built programmatically. It serves
// synthetic datasets in tests and callers that assemble metadata from
// sources other than a container file. Unlike the classic-format
// backend it can describe chunked storage and sub-groups.
type Memfile struct {
	dims []BackendDim
	vars []BackendVar

	attrs     []map[string]interface{} // per variable, parallel to vars
	global    map[string]interface{}
	data      []interface{}
	chunks    []ChunkInfo
	hasChunks []bool

	subgroups int
}

var _ Backend = (*Memfile)(nil)

// NewMemfile returns an empty in-memory dataset.
func NewMemfile() *Memfile {
	return &Memfile{global: make(map[string]interface{})}
}

// AddDim defines a dimension and returns its id. A zero length marks
// the dimension unlimited with no records yet.
func (m *Memfile) AddDim(name string, length int) int {
	m.dims = append(m.dims, BackendDim{Name: name, Len: length, Unlimited: length == 0})
	return len(m.dims) - 1
}

// SetDimLen resets a dimension's length (for growing an unlimited
// dimension as records are added).
func (m *Memfile) SetDimLen(id, length int) { m.dims[id].Len = length }

// AddVar defines a variable over the given dimension ids and returns
// its id.
func (m *Memfile) AddVar(name string, dtype DataType, dims ...int) int {
	m.vars = append(m.vars, BackendVar{Name: name, Type: dtype, Dims: dims})
	m.attrs = append(m.attrs, make(map[string]interface{}))
	m.data = append(m.data, nil)
	m.chunks = append(m.chunks, ChunkInfo{})
	m.hasChunks = append(m.hasChunks, false)
	return len(m.vars) - 1
}

// SetAttr sets an attribute on a variable, or a global attribute for
// GlobalScope. Text values go in as string, numbers as slices.
func (m *Memfile) SetAttr(varID int, name string, val interface{}) {
	if varID == GlobalScope {
		m.global[name] = val
		return
	}
	m.attrs[varID][name] = val
}

// SetData attaches the variable's flat data slice.
func (m *Memfile) SetData(varID int, data interface{}) { m.data[varID] = data }

// SetChunking marks the variable as chunked with the given chunk shape.
func (m *Memfile) SetChunking(varID int, shape []int, filter string) {
	m.chunks[varID] = ChunkInfo{Shape: shape, Filter: filter}
	m.hasChunks[varID] = true
}

// SetSubgroupCount declares hierarchical sub-groups below the root.
func (m *Memfile) SetSubgroupCount(n int) { m.subgroups = n }

func (m *Memfile) Dimensions() []BackendDim { return m.dims }
func (m *Memfile) Variables() []BackendVar  { return m.vars }

func (m *Memfile) Attributes(varID int) []string {
	src := m.global
	if varID != GlobalScope {
		src = m.attrs[varID]
	}
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	return names
}

func (m *Memfile) Attribute(varID int, name string) (interface{}, bool) {
	src := m.global
	if varID != GlobalScope {
		src = m.attrs[varID]
	}
	v, ok := src[name]
	return v, ok
}

func (m *Memfile) Read(varID int) (interface{}, error) {
	if m.data[varID] == nil {
		return nil, fmt.Errorf("gridcat: variable %s has no data", m.vars[varID].Name)
	}
	return m.data[varID], nil
}

func (m *Memfile) ReadRange(varID int, begin, end []int) (interface{}, error) {
	full, err := m.Read(varID)
	if err != nil {
		return nil, err
	}
	bv := &m.vars[varID]
	if len(begin) != len(bv.Dims) || len(end) != len(bv.Dims) {
		return nil, fmt.Errorf("gridcat: reading %s: range rank mismatch", bv.Name)
	}
	shape := make([]int, len(bv.Dims))
	for i, d := range bv.Dims {
		shape[i] = m.dims[d].Len
		if begin[i] < 0 || end[i] > shape[i] || end[i] <= begin[i] {
			return nil, fmt.Errorf("gridcat: reading %s: range out of bounds", bv.Name)
		}
	}
	return extractSlab(full, shape, begin, end), nil
}

func (m *Memfile) ChunkInfo(varID int) (ChunkInfo, bool) {
	return m.chunks[varID], m.hasChunks[varID]
}

func (m *Memfile) SetChunkCache(varID int, bytes int64) error {
	m.chunks[varID].CacheBytes = bytes
	return nil
}

func (m *Memfile) SubgroupCount() int { return m.subgroups }
