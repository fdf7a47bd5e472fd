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
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// CDFFile adapts a NetCDF classic-format file to the Backend interface.
// The classic format stores variables contiguously, so chunk queries
// always report an unchunked layout and cache sizing is a no-op.
type CDFFile struct {
	f *cdf.File

	dims   []BackendDim
	dimIDs map[string]int
	vars   []BackendVar
}

var _ Backend = (*CDFFile)(nil)

// OpenCDFPath opens the NetCDF classic file at path read-only.
func OpenCDFPath(path string) (*CDFFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	b, err := OpenCDF(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return b, nil
}

// OpenCDF wraps an already-open NetCDF classic storage. size is the
// total byte length of the storage; it determines the record count of
// the unlimited dimension.
func OpenCDF(rw cdf.ReaderWriterAt, size int64) (*CDFFile, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("gridcat: opening NetCDF file: %w", err)
	}

	b := &CDFFile{f: f, dimIDs: make(map[string]int)}
	numRecs := int(f.Header.NumRecs(size))

	names := f.Header.Dimensions("")
	lengths := f.Header.Lengths("")
	for i, name := range names {
		d := BackendDim{Name: name, Len: lengths[i]}
		// The record dimension is stored with length zero.
		if lengths[i] == 0 {
			d.Len = numRecs
			d.Unlimited = true
		}
		b.dimIDs[name] = i
		b.dims = append(b.dims, d)
	}

	for _, name := range f.Header.Variables() {
		bv := BackendVar{Name: name, Type: cdfType(f.Header.ZeroValue(name, 0))}
		for _, dn := range f.Header.Dimensions(name) {
			bv.Dims = append(bv.Dims, b.dimIDs[dn])
		}
		b.vars = append(b.vars, bv)
	}
	return b, nil
}

func cdfType(zero interface{}) DataType {
	switch zero.(type) {
	case []uint8:
		return TypeByte
	case string:
		return TypeChar
	case []int16:
		return TypeShort
	case []int32:
		return TypeInt
	case []float32:
		return TypeFloat
	case []float64:
		return TypeDouble
	}
	return TypeUnknown
}

func (b *CDFFile) Dimensions() []BackendDim { return b.dims }
func (b *CDFFile) Variables() []BackendVar  { return b.vars }

func (b *CDFFile) Attributes(varID int) []string {
	return b.f.Header.Attributes(b.scopeName(varID))
}

func (b *CDFFile) Attribute(varID int, name string) (interface{}, bool) {
	v := b.f.Header.GetAttribute(b.scopeName(varID), name)
	if v == nil {
		return nil, false
	}
	return v, true
}

func (b *CDFFile) scopeName(varID int) string {
	if varID == GlobalScope {
		return ""
	}
	return b.vars[varID].Name
}

// varLen returns the element count of a variable, substituting the
// record count for the unlimited dimension.
func (b *CDFFile) varLen(varID int) int {
	n := 1
	for _, d := range b.vars[varID].Dims {
		n *= b.dims[d].Len
	}
	return n
}

func (b *CDFFile) Read(varID int) (interface{}, error) {
	bv := &b.vars[varID]
	// Record variables need an explicit end corner; a nil end stops
	// the codec's strided reader at the first record.
	var begin, end []int
	if len(bv.Dims) > 0 {
		begin = make([]int, len(bv.Dims))
		end = make([]int, len(bv.Dims))
		for i, d := range bv.Dims {
			end[i] = b.dims[d].Len
		}
	}
	r := b.f.Reader(bv.Name, begin, end)
	if r == nil {
		return nil, fmt.Errorf("gridcat: no such variable %s", bv.Name)
	}
	buf := r.Zero(b.varLen(varID))
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("gridcat: reading %s: %w", bv.Name, err)
	}
	return buf, nil
}

// ReadRange reads the hyperslab [begin, end). The classic codec reads
// contiguous spans only, so ranges that are not full along the inner
// dimensions fall back to a full read plus an in-memory extraction.
func (b *CDFFile) ReadRange(varID int, begin, end []int) (interface{}, error) {
	bv := &b.vars[varID]
	if len(begin) != len(bv.Dims) || len(end) != len(bv.Dims) {
		return nil, fmt.Errorf("gridcat: reading %s: range rank mismatch", bv.Name)
	}

	n := 1
	contiguous := true
	for i, d := range bv.Dims {
		if end[i] <= begin[i] {
			return nil, fmt.Errorf("gridcat: reading %s: empty range", bv.Name)
		}
		n *= end[i] - begin[i]
		if i > 0 && (begin[i] != 0 || end[i] != b.dims[d].Len) {
			contiguous = false
		}
	}

	name := bv.Name
	if contiguous {
		r := b.f.Reader(name, begin, end)
		if r == nil {
			return nil, fmt.Errorf("gridcat: no such variable %s", name)
		}
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("gridcat: reading %s: %w", name, err)
		}
		return buf, nil
	}

	full, err := b.Read(varID)
	if err != nil {
		return nil, err
	}
	shape := make([]int, len(bv.Dims))
	for i, d := range bv.Dims {
		shape[i] = b.dims[d].Len
	}
	return extractSlab(full, shape, begin, end), nil
}

// extractSlab copies the hyperslab [begin, end) out of a fully read
// flat array with the given shape.
func extractSlab(full interface{}, shape, begin, end []int) interface{} {
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}

	idx := make([]int, len(shape))
	copy(idx, begin)
	var flat []int
	for {
		off := 0
		for i, x := range idx {
			off += x * strides[i]
		}
		flat = append(flat, off)
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < end[i] {
				break
			}
			idx[i] = begin[i]
		}
		if i < 0 {
			break
		}
	}

	switch t := full.(type) {
	case []float64:
		out := make([]float64, len(flat))
		for i, off := range flat {
			out[i] = t[off]
		}
		return out
	case []float32:
		out := make([]float32, len(flat))
		for i, off := range flat {
			out[i] = t[off]
		}
		return out
	case []int32:
		out := make([]int32, len(flat))
		for i, off := range flat {
			out[i] = t[off]
		}
		return out
	case []int16:
		out := make([]int16, len(flat))
		for i, off := range flat {
			out[i] = t[off]
		}
		return out
	case []uint8:
		out := make([]uint8, len(flat))
		for i, off := range flat {
			out[i] = t[off]
		}
		return out
	}
	return full
}

func (b *CDFFile) ChunkInfo(varID int) (ChunkInfo, bool) {
	return ChunkInfo{}, false
}

func (b *CDFFile) SetChunkCache(varID int, bytes int64) error { return nil }

func (b *CDFFile) SubgroupCount() int { return 0 }
