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

	"github.com/spf13/cast"
)

// attrReader provides typed access to one variable's attributes (or the
// global scope for varID == GlobalScope), independent of how the codec
// stored them. Codecs hand attribute values over as string for text and
// as numeric slices otherwise; the accessors here absorb both plus the
// scalar-vs-slice ambiguity some writers produce.
type attrReader struct {
	b     Backend
	varID int
}

func newAttrReader(b Backend, varID int) attrReader {
	return attrReader{b: b, varID: varID}
}

// names returns the attribute names in storage order.
func (a attrReader) names() []string {
	return a.b.Attributes(a.varID)
}

func (a attrReader) has(name string) bool {
	_, ok := a.b.Attribute(a.varID, name)
	return ok
}

// text returns a text attribute, trimmed of trailing NULs some writers
// include in fixed-width storage.
func (a attrReader) text(name string) (string, bool) {
	v, ok := a.b.Attribute(a.varID, name)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimRight(t, "\x00 "), true
	case []byte:
		return strings.TrimRight(string(t), "\x00 "), true
	}
	return "", false
}

// float returns the first element of a numeric attribute as float64.
func (a attrReader) float(name string) (float64, bool) {
	vals, ok := a.floats(name)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// integer returns the first element of a numeric attribute as int.
func (a attrReader) integer(name string) (int, bool) {
	v, ok := a.int64(name)
	return int(v), ok
}

// int64 returns the first element of a numeric attribute as int64.
func (a attrReader) int64(name string) (int64, bool) {
	v, ok := a.b.Attribute(a.varID, name)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case []int64:
		if len(t) > 0 {
			return t[0], true
		}
	case []int32:
		if len(t) > 0 {
			return int64(t[0]), true
		}
	case []int16:
		if len(t) > 0 {
			return int64(t[0]), true
		}
	case []int8:
		if len(t) > 0 {
			return int64(t[0]), true
		}
	case []float64:
		if len(t) > 0 {
			return int64(t[0]), true
		}
	case []float32:
		if len(t) > 0 {
			return int64(t[0]), true
		}
	}
	// Some writers store numeric codes as text.
	if n, err := cast.ToInt64E(v); err == nil {
		return n, true
	}
	return 0, false
}

// floats returns a numeric attribute as a float64 slice regardless of
// its stored element type.
func (a attrReader) floats(name string) ([]float64, bool) {
	v, ok := a.b.Attribute(a.varID, name)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []float64:
		return t, true
	case []float32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, true
	case []int64:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, true
	case []int32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, true
	case []int16:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, true
	case []int8:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, true
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return []float64{f}, true
	}
	return nil, false
}

// isNumeric reports whether the named attribute holds numbers rather
// than text.
func (a attrReader) isNumeric(name string) bool {
	v, ok := a.b.Attribute(a.varID, name)
	if !ok {
		return false
	}
	switch v.(type) {
	case string, []byte:
		return false
	}
	return true
}
