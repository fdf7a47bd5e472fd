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

// DataType identifies the storage type of a variable's elements.
type DataType int

// Storage datatypes. They mirror the types the container formats
// can hold; unsigned variants appear in newer containers only.
const (
	TypeUnknown DataType = iota
	TypeByte
	TypeChar
	TypeShort
	TypeInt
	TypeInt64
	TypeFloat
	TypeDouble
	TypeUByte
	TypeUShort
	TypeUInt
	TypeUInt64
	TypeString
)

// Size returns the width of one element in bytes.
func (d DataType) Size() int {
	switch d {
	case TypeByte, TypeChar, TypeUByte:
		return 1
	case TypeShort, TypeUShort:
		return 2
	case TypeInt, TypeUInt, TypeFloat:
		return 4
	case TypeInt64, TypeUInt64, TypeDouble:
		return 8
	}
	return 1
}

func (d DataType) String() string {
	switch d {
	case TypeByte:
		return "byte"
	case TypeChar:
		return "char"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeInt64:
		return "int64"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeUByte:
		return "ubyte"
	case TypeUShort:
		return "ushort"
	case TypeUInt:
		return "uint"
	case TypeUInt64:
		return "uint64"
	case TypeString:
		return "string"
	}
	return "unknown"
}

// Unsigned reports whether d is an unsigned integer type.
func (d DataType) Unsigned() bool {
	switch d {
	case TypeUByte, TypeUShort, TypeUInt, TypeUInt64:
		return true
	}
	return false
}

// BackendDim describes one dimension of an open dataset.
type BackendDim struct {
	Name      string
	Len       int
	Unlimited bool
}

// BackendVar describes one variable of an open dataset.
// Dims holds indices into the backend's dimension list, slowest-varying
// first.
type BackendVar struct {
	Name string
	Type DataType
	Dims []int
}

// ChunkInfo describes the storage layout of a chunked variable.
type ChunkInfo struct {
	Shape      []int  // chunk extent per dimension, same order as the variable's dims
	Filter     string // compression filter name, "" if none
	CacheBytes int64  // current chunk cache size
}

// GlobalScope is the pseudo variable id addressing a dataset's global
// attributes.
const GlobalScope = -1

// Backend is the capability the scan consumes from a container codec:
// enumeration of dimensions, variables and attributes, plus data reads.
// GridCat never touches bytes on disk itself; everything it knows about
// a dataset arrives through this interface.
//
// Implementations are not required to be safe for concurrent use; the
// scan is single threaded.
type Backend interface {
	// Dimensions returns the dataset's dimensions. The slice index is
	// the dimension id used everywhere else.
	Dimensions() []BackendDim

	// Variables returns the dataset's variables. The slice index is
	// the variable id used everywhere else.
	Variables() []BackendVar

	// Attributes returns the attribute names of the given variable,
	// or the global attribute names for GlobalScope.
	Attributes(varID int) []string

	// Attribute returns the raw value of the named attribute. Values
	// arrive as the codec stored them: string for text, a numeric
	// slice otherwise.
	Attribute(varID int, name string) (interface{}, bool)

	// Read reads a variable in full and returns a flat slice of its
	// element type ([]float64, []float32, []int32, ... or []byte for
	// char data).
	Read(varID int) (interface{}, error)

	// ReadRange reads the hyperslab [begin, end) of a variable,
	// indices per dimension in the variable's dimension order.
	ReadRange(varID int, begin, end []int) (interface{}, error)

	// ChunkInfo reports the chunk layout of a variable; ok is false
	// when the variable is stored contiguously (classic containers
	// always report false).
	ChunkInfo(varID int) (ci ChunkInfo, ok bool)

	// SetChunkCache asks the codec to size the variable's chunk cache.
	// Contiguous-layout backends may ignore the request.
	SetChunkCache(varID int, bytes int64) error

	// SubgroupCount reports how many hierarchical sub-groups the
	// dataset carries below the root. The scan only ever assembles
	// the root-level view.
	SubgroupCount() int
}

// Query narrows what a scan reads from the backend. A nil Query (or any
// nil field) selects everything. The scan honors a query by reading
// less, not by discarding after a full read.
type Query struct {
	// Names selects data variables by name. Variables outside the
	// selection still take part in classification (their attributes
	// may describe selected variables) but are not cataloged and
	// their field data is never read.
	Names []string

	// TimeSteps selects timestep indices to retain, in the order
	// given. Out-of-range indices are dropped with a warning.
	TimeSteps []int

	// CellBegin/CellEnd select a 1-D cell index range [begin, end)
	// on unstructured grids. Both zero means no selection.
	CellBegin, CellEnd int
}

func (q *Query) wantsVar(name string) bool {
	if q == nil || len(q.Names) == 0 {
		return true
	}
	for _, n := range q.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (q *Query) cellRange() (int, int, bool) {
	if q == nil || (q.CellBegin == 0 && q.CellEnd == 0) {
		return 0, 0, false
	}
	return q.CellBegin, q.CellEnd, true
}
