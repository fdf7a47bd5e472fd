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

import "strings"

// Units tables for axis inference. Matching is exact after lowercasing,
// following the conventions files actually use rather than a full
// udunits grammar.
var lonUnits = map[string]bool{
	"degrees_east": true, "degree_east": true, "degrees_e": true,
	"degree_e": true, "degreese": true, "degreee": true,
}

var latUnits = map[string]bool{
	"degrees_north": true, "degree_north": true, "degrees_n": true,
	"degree_n": true, "degreesn": true, "degreen": true,
}

var pressureUnits = map[string]bool{
	"pa": true, "hpa": true, "mb": true, "millibar": true, "millibars": true,
}

var heightUnits = map[string]bool{
	"m": true, "meter": true, "meters": true, "metre": true, "metres": true,
	"cm": true, "dm": true, "km": true,
}

// attributes whose presence marks the carrier as a data variable.
var dataMarkerTextAttrs = []string{
	"grid_type", "level_type", "trunc_type", "positive",
	"forecast_init_type",
}

var dataMarkerNumAttrs = []string{
	"code", "table", "param", "realization", "ensemble_members",
}

// referenceAttr describes an attribute naming other variables. The
// referenced variables become coordinates; when forceData is set the
// referencing variable additionally becomes a data variable.
type referenceAttr struct {
	name      string
	forceData bool
}

var referenceAttrs = []referenceAttr{
	{"bounds", true},
	{"climatology", true},
	{"coordinates", true},
	{"associate", true},
	{"auxiliary_variable", true},
	{"grid_mapping", false},
	{"cell_measures", false},
}

// classify walks the variable table twice and assigns a terminal
// Coordinate/Data status plus per-dimension axis roles to every
// variable, then verifies the result. Conflicting metadata is resolved
// last-write-wins with a warning; nothing here aborts the scan.
func (s *scanner) classify() {
	s.classifyStructural()
	s.classifyAttributes()
	s.classifyFallback()
	s.verifyDataVars()
}

// classifyStructural is the first pass: a variable whose name equals a
// dimension's name is that dimension's coordinate variable.
func (s *scanner) classifyStructural() {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		dimID, ok := s.dims.lookup(v.name)
		if !ok {
			continue
		}
		if v.rank() == 1 && v.dims[0] == dimID {
			s.dims.setCoordVar(dimID, id, s.warn)
			s.vars.setStatus(id, statusCoordinate, s.warn)
		} else if v.rank() == 0 {
			// Scalar coordinate sharing a dimension name.
			s.vars.setStatus(id, statusCoordinate, s.warn)
		}
	}
}

// classifyAttributes is the second pass: attribute content drives the
// state machine Unknown -> {Coordinate, Data}.
func (s *scanner) classifyAttributes() {
	for id := range s.vars.vars {
		s.scanVarAttributes(id)
	}
	// Axis inference runs after all cross-references are resolved so
	// that forced statuses are already in place when units/axis
	// grammar re-forces a coordinate role (last write wins).
	for id := range s.vars.vars {
		s.inferAxes(id)
	}
}

// scanVarAttributes captures attribute content into the variable table
// and applies the forcing rules.
func (s *scanner) scanVarAttributes(id int) {
	v := &s.vars.vars[id]
	a := newAttrReader(s.b, id)

	v.units, _ = a.text("units")
	v.stdName, _ = a.text("standard_name")
	v.longName, _ = a.text("long_name")
	v.axisAttr, _ = a.text("axis")
	v.calendar, _ = a.text("calendar")
	v.positive, _ = a.text("positive")
	if ft, ok := a.text("formula_terms"); ok {
		v.formulaTerms = ft
		v.hasFormulaTerms = true
		// Coefficient variables named by the formula are axis
		// descriptors. Multi-dimensional terms (surface pressure)
		// stay field data.
		for _, name := range formulaTerms(ft) {
			if ref, ok := s.vars.lookup(name); ok && s.vars.vars[ref].rank() <= 1 {
				s.vars.setStatus(ref, statusCoordinate, s.warn)
			}
		}
	}

	if sc, ok := a.float("scale_factor"); ok {
		v.scale = sc
		v.hasScale = true
	}
	if off, ok := a.float("add_offset"); ok {
		v.offset = off
		v.hasScale = true
	}
	if mv, ok := a.float("_FillValue"); ok {
		v.missing = mv
		v.hasMissing = true
	} else if mv, ok := a.float("missing_value"); ok {
		v.missing = mv
		v.hasMissing = true
	} else if !s.cfg.IgnoreValidRange {
		if vr, ok := a.floats("valid_range"); ok && len(vr) == 2 {
			// Outside the valid range everything is missing; the
			// conventional sentinel is just below/above the range.
			v.missing = vr[0] - 1
			v.hasMissing = true
		}
	}

	if code, ok := a.integer("code"); ok && a.isNumeric("code") {
		v.code = code
	}
	if tab, ok := a.integer("table"); ok && a.isNumeric("table") {
		v.table = tab
	}
	if p, ok := a.text("param"); ok {
		v.param = p
	}

	// Numeric marker attributes force data status.
	for _, name := range dataMarkerNumAttrs {
		if a.has(name) && a.isNumeric(name) {
			s.vars.setStatus(id, statusData, s.warn)
			break
		}
	}
	// Text marker attributes force data status.
	for _, name := range dataMarkerTextAttrs {
		if a.has(name) && !a.isNumeric(name) {
			s.vars.setStatus(id, statusData, s.warn)
			break
		}
	}

	// Reference attributes: the referenced variables become
	// coordinates; most also force the referencing variable to data.
	for _, ra := range referenceAttrs {
		if s.cfg.IgnoreCoordinates && (ra.name == "coordinates" || ra.name == "associate") {
			continue
		}
		val, ok := a.text(ra.name)
		if !ok || val == "" {
			continue
		}
		refs := s.resolveReferences(id, ra.name, val)
		switch ra.name {
		case "bounds":
			if len(refs) > 0 {
				v.boundsVar = refs[0]
				v.hasBounds = true
			}
		case "climatology":
			if len(refs) > 0 {
				v.boundsVar = refs[0]
				v.hasBounds = true
				v.isClimatology = true
			}
		case "grid_mapping":
			if len(refs) > 0 {
				v.gridMapVar = refs[0]
			}
		case "coordinates", "associate", "auxiliary_variable":
			v.coordVars = append(v.coordVars, refs...)
		}
		for _, ref := range refs {
			s.vars.setStatus(ref, statusCoordinate, s.warn)
		}
		if ra.forceData && len(refs) > 0 {
			s.vars.setStatus(id, statusData, s.warn)
		}
	}
}

// resolveReferences resolves a whitespace-separated variable name list.
// Unresolved names degrade with a warning; cell_measures entries carry
// a "measure:" prefix that is stripped first.
func (s *scanner) resolveReferences(fromID int, attr, val string) []int {
	var refs []int
	for _, name := range strings.Fields(val) {
		if strings.HasSuffix(name, ":") {
			continue // cell_measures measure tag, e.g. "area:"
		}
		ref, ok := s.vars.lookup(name)
		if !ok {
			s.warn.warnf("variable %s: %s references undefined variable %s",
				s.vars.vars[fromID].name, attr, name)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// inferAxes applies the units table, the axis attribute grammar and
// standard names to set per-dimension axis roles, forcing coordinate
// status where the convention demands it.
func (s *scanner) inferAxes(id int) {
	v := &s.vars.vars[id]
	units := strings.ToLower(v.units)

	switch {
	case lonUnits[units]:
		v.isLon = true
		s.markAxisVar(id, axisX)
	case latUnits[units]:
		v.isLat = true
		s.markAxisVar(id, axisY)
	case pressureUnits[units] && v.rank() <= 1:
		// Multi-dimensional pressure fields (surface pressure and the
		// like) stay data; only axis-shaped variables become Z.
		v.isZ = true
		s.markAxisVar(id, axisZ)
	case strings.Contains(units, " since "):
		v.isT = true
		s.markAxisVar(id, axisT)
	}

	switch strings.ToLower(v.stdName) {
	case "longitude":
		v.isLon = true
		s.markAxisVar(id, axisX)
	case "latitude":
		v.isLat = true
		s.markAxisVar(id, axisY)
	case "time", "forecast_reference_time":
		v.isT = true
		s.markAxisVar(id, axisT)
	case "realization":
		s.markAxisVar(id, axisE)
	case "forecast_period":
		// Lead times describe the time axis; they are not field data.
		s.vars.setStatus(id, statusCoordinate, s.warn)
	case "air_pressure", "depth", "height", "altitude",
		"atmosphere_hybrid_sigma_pressure_coordinate",
		"atmosphere_sigma_coordinate":
		if v.rank() <= 1 {
			v.isZ = true
			s.markAxisVar(id, axisZ)
		}
	}

	if ax := v.axisAttr; ax != "" {
		s.applyAxisGrammar(id, ax)
	}
}

// markAxisVar records axis role a for a variable that was recognized as
// an axis descriptor. A 1-D variable over the matched dimension is
// forced to coordinate status, and the dimension inherits the role.
func (s *scanner) markAxisVar(id int, a axisKind) {
	v := &s.vars.vars[id]
	switch a {
	case axisX:
		v.isX = true
	case axisY:
		v.isY = true
	case axisZ:
		v.isZ = true
	case axisT:
		v.isT = true
	}
	if v.rank() == 1 {
		s.dims.setAxis(v.dims[0], a, s.warn)
		s.dims.setCoordVar(v.dims[0], id, s.warn)
		v.axes[0] = a
		s.vars.setStatus(id, statusCoordinate, s.warn)
	} else if v.rank() == 0 {
		s.vars.setStatus(id, statusCoordinate, s.warn)
	} else {
		// Multi-dimensional axis descriptor (curvilinear coordinate):
		// the role applies to the variable, not to a single dimension.
		s.vars.setStatus(id, statusCoordinate, s.warn)
	}
}

// axisFromChar maps one axis grammar character; ok is false for
// anything outside [-tTzZyYxX].
func axisFromChar(c byte) (axisKind, bool) {
	switch c {
	case 'x', 'X':
		return axisX, true
	case 'y', 'Y':
		return axisY, true
	case 'z', 'Z':
		return axisZ, true
	case 't', 'T':
		return axisT, true
	case '-':
		return axisNone, true
	}
	return axisNone, false
}

// applyAxisGrammar interprets an axis attribute matching
// [-tTzZyYxX]{ndims}: one character per dimension, slowest varying
// first, dash meaning unclassified. Attributes that do not match the
// grammar are ignored.
func (s *scanner) applyAxisGrammar(id int, ax string) {
	v := &s.vars.vars[id]
	if v.rank() == 0 && len(ax) == 1 {
		if _, ok := axisFromChar(ax[0]); ok {
			s.vars.setStatus(id, statusCoordinate, s.warn)
		}
		return
	}
	if len(ax) != v.rank() {
		return
	}
	for i := 0; i < len(ax); i++ {
		if _, ok := axisFromChar(ax[i]); !ok {
			return
		}
	}
	for i := 0; i < len(ax); i++ {
		a, _ := axisFromChar(ax[i])
		if a == axisNone {
			continue
		}
		v.axes[i] = a
		s.dims.setAxis(v.dims[i], a, s.warn)
		if v.rank() == 1 {
			// The matched dimension is the variable's only dimension:
			// this is an axis descriptor, not field data.
			s.vars.setStatus(id, statusCoordinate, s.warn)
		}
	}
}

// classifyFallback resolves every variable still unknown after the
// attribute pass: zero-rank variables are coordinates unless they are
// the file's only variable; anything with positive rank carries data.
func (s *scanner) classifyFallback() {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.status != statusUnknown {
			continue
		}
		if v.rank() == 0 {
			if len(s.vars.vars) == 1 {
				v.status = statusData
			} else {
				v.status = statusCoordinate
			}
		} else {
			v.status = statusData
		}
	}
}

// verifyDataVars is the post-condition check: a data variable must have
// exactly one recognized axis role per dimension. Violations demote to
// coordinate status with a warning, never a silent mismatch.
func (s *scanner) verifyDataVars() {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.status != statusData || v.skip {
			continue
		}
		if v.dtype == TypeChar || v.dtype == TypeString {
			s.warn.warnf("variable %s: text data variables are not supported", v.name)
			v.status = statusCoordinate
			v.skip = true
			continue
		}
		maxRank := 4
		if s.faceDim(v) >= 0 {
			maxRank = 5
		}
		if v.rank() > maxRank {
			s.warn.warnf("variable %s: rank %d is not supported", v.name, v.rank())
			v.status = statusCoordinate
			v.skip = true
			continue
		}
		// Fill unassigned roles from the dimension table, then assign
		// dimensions that no convention claimed generically: fastest
		// varying becomes X, the next Y, then Z, then T. This is how
		// files without any coordinate metadata end up on a Generic
		// grid instead of being rejected.
		for i, d := range v.dims {
			if v.axes[i] == axisNone {
				v.axes[i] = s.dims.dims[d].axis
			}
		}
		fd := s.faceDim(v)
		generic := []axisKind{axisX, axisY, axisZ, axisT}
		next := 0
		for i := v.rank() - 1; i >= 0; i-- {
			if v.axes[i] != axisNone || v.dims[i] == fd {
				continue
			}
			for next < len(generic) && v.hasAxis(generic[next]) {
				next++
			}
			if next < len(generic) {
				v.axes[i] = generic[next]
				next++
			}
		}
		// Post-condition: one recognized role per dimension, no
		// duplicates. A duplicated role (for example two time
		// dimensions, the signature of a time-varying 2-D grid) is a
		// structural mismatch and demotes. A cubed-sphere face
		// dimension is recognized structurally.
		recognized := 0
		var seen [6]int
		dup := false
		for i, a := range v.axes {
			if v.dims[i] == fd && fd >= 0 && a == axisNone {
				recognized++
				continue
			}
			if a != axisNone {
				recognized++
				seen[a]++
				if seen[a] > 1 {
					dup = true
				}
			}
		}
		if recognized != v.rank() || dup {
			s.warn.warnf("variable %s: %d recognized axis roles for rank %d; demoting to coordinate",
				v.name, recognized, v.rank())
			v.status = statusCoordinate
			v.skip = true
		}
	}
}

// hasAxis reports whether any dimension of v already carries role a.
func (v *variable) hasAxis(a axisKind) bool {
	for _, x := range v.axes {
		if x == a {
			return true
		}
	}
	return false
}

// faceDim returns the dimension id of a cubed-sphere face dimension
// spanned by v, or -1. A face dimension is a small extra dimension
// (conventionally named) next to 2-D horizontal coordinates.
func (s *scanner) faceDim(v *variable) int {
	for _, d := range v.dims {
		switch s.dims.dims[d].name {
		case "nf", "face", "faces", "tile":
			return d
		}
	}
	return -1
}
