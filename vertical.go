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

	"gonum.org/v1/gonum/floats"
)

// VAxisKind is the level type of a vertical axis.
type VAxisKind int

const (
	VAxisSurface VAxisKind = iota
	VAxisGeneric
	VAxisPressure
	VAxisHeight
	VAxisDepthBelowLand
	VAxisDepthBelowSea
	VAxisHybrid
	VAxisHybridHalf
	VAxisReference
	VAxisChar
)

func (k VAxisKind) String() string {
	switch k {
	case VAxisSurface:
		return "surface"
	case VAxisPressure:
		return "pressure"
	case VAxisHeight:
		return "height"
	case VAxisDepthBelowLand:
		return "depth_below_land"
	case VAxisDepthBelowSea:
		return "depth_below_sea"
	case VAxisHybrid:
		return "hybrid"
	case VAxisHybridHalf:
		return "hybrid_half"
	case VAxisReference:
		return "reference"
	case VAxisChar:
		return "char"
	}
	return "generic"
}

// VerticalAxis describes the vertical coordinate system of one or more
// data variables.
type VerticalAxis struct {
	ID   int
	Kind VAxisKind

	// N is the level count.
	N int

	// Levels holds the level values; a surface axis has the single
	// implicit level 0.
	Levels []float64

	// LBounds/UBounds hold per-level bounds when present.
	LBounds, UBounds []float64

	// VCT is the hybrid vertical coordinate table: the half-level a
	// coefficients followed by the half-level b coefficients.
	VCT []float64

	// PositiveDown is set when the positive attribute declares the
	// axis increasing downward.
	PositiveDown bool

	Units, Name string

	// dedup keys: the shared z dimension, or the scalar coordinate
	// variable for dimensionless axes.
	dimID, coordVar int
}

// buildVerticalAxes resolves (or reuses) a VerticalAxis for every
// selected data variable.
func (s *scanner) buildVerticalAxes() {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.status != statusData || v.skip || v.zaxisID >= 0 {
			continue
		}
		if !s.cfg.Query.wantsVar(v.name) {
			continue
		}
		v.zaxisID = s.resolveVerticalAxis(id).ID
	}
}

// resolveVerticalAxis finds the z coordinate governing variable id and
// returns a new or deduplicated axis.
func (s *scanner) resolveVerticalAxis(id int) *VerticalAxis {
	v := &s.vars.vars[id]

	zDim := s.axisDim(v, axisZ)
	zVar := -1
	if zDim >= 0 {
		zVar = s.dims.dims[zDim].coordVar
	} else {
		// Scalar z coordinate referenced through the coordinates
		// attribute.
		for _, cv := range v.coordVars {
			if s.vars.vars[cv].isZ && s.vars.vars[cv].rank() == 0 {
				zVar = cv
				break
			}
		}
	}

	for _, za := range s.zaxes {
		if zDim >= 0 && za.dimID == zDim {
			return za
		}
		if zDim < 0 && zVar >= 0 && za.coordVar == zVar {
			return za
		}
		if zDim < 0 && zVar < 0 && za.Kind == VAxisSurface {
			return za
		}
	}

	za := &VerticalAxis{ID: len(s.zaxes), dimID: zDim, coordVar: zVar}
	s.populateVerticalAxis(za, zDim, zVar)
	s.zaxes = append(s.zaxes, za)
	return za
}

// populateVerticalAxis classifies the axis and loads level values,
// bounds and (for hybrid axes) the coefficient table.
func (s *scanner) populateVerticalAxis(za *VerticalAxis, zDim, zVar int) {
	// No z dimension and no scalar coordinate: a surface axis with a
	// single implicit level.
	if zDim < 0 && zVar < 0 {
		za.Kind = VAxisSurface
		za.N = 1
		za.Levels = []float64{0}
		return
	}

	za.N = 1
	if zDim >= 0 {
		za.N = s.dims.dims[zDim].len
	}

	if zVar < 0 {
		// Dimension without coordinate variable: generic levels
		// numbered from 1.
		za.Kind = VAxisGeneric
		za.Levels = make([]float64, za.N)
		if za.N >= 2 {
			floats.Span(za.Levels, 1, float64(za.N))
		} else {
			za.Levels[0] = 1
		}
		return
	}

	zc := &s.vars.vars[zVar]
	za.Name = zc.name
	za.Units = zc.units
	za.PositiveDown = strings.EqualFold(zc.positive, "down")

	if zc.dtype == TypeChar || zc.dtype == TypeString {
		za.Kind = VAxisChar
		return
	}

	levels, err := s.readFloats(zVar)
	if err != nil {
		s.warn.warnf("variable %s: reading levels: %v", zc.name, err)
		levels = make([]float64, za.N)
	}
	za.Levels = levels
	if zDim < 0 {
		za.N = len(levels)
	}

	za.Kind = s.classifyVerticalKind(zc)
	if za.Kind == VAxisHybrid || za.Kind == VAxisHybridHalf {
		s.buildVCT(za, zVar)
	}
	s.loadLevelBounds(za, zc)
}

// classifyVerticalKind decides the level type from standard name,
// units and long name, in that order of authority.
func (s *scanner) classifyVerticalKind(zc *variable) VAxisKind {
	std := strings.ToLower(zc.stdName)
	long := strings.ToLower(zc.longName)
	units := strings.ToLower(zc.units)

	switch {
	case strings.Contains(std, "hybrid_sigma_pressure"):
		if strings.Contains(long, "half") || strings.Contains(long, "interface") ||
			strings.Contains(std, "half") {
			return VAxisHybridHalf
		}
		return VAxisHybrid
	case strings.Contains(std, "reference_pressure") || strings.Contains(std, "reference"):
		return VAxisReference
	case pressureUnits[units] || std == "air_pressure":
		return VAxisPressure
	case heightUnits[units] || std == "height" || std == "altitude":
		switch {
		case strings.Contains(std, "depth") && strings.Contains(long, "land"),
			strings.Contains(long, "soil"), strings.Contains(long, "below land"):
			return VAxisDepthBelowLand
		case std == "depth" || strings.Contains(long, "depth below sea") ||
			strings.Contains(long, "sea floor"):
			return VAxisDepthBelowSea
		case heightUnits[units] && (std == "height" || std == "altitude" ||
			strings.Contains(long, "height") || strings.Contains(long, "altitude")):
			return VAxisHeight
		case heightUnits[units] && strings.Contains(long, "depth"):
			return VAxisDepthBelowSea
		}
		return VAxisHeight
	case std == "depth":
		return VAxisDepthBelowSea
	case zc.hasFormulaTerms:
		return VAxisHybrid
	}
	return VAxisGeneric
}

// formulaTerms parses a formula_terms attribute with grammar
// "(tag: varname)+" into a tag-to-name map. Unrecognized tags are kept;
// the caller decides which ones it needs.
func formulaTerms(ft string) map[string]string {
	out := make(map[string]string)
	fields := strings.Fields(ft)
	for i := 0; i+1 < len(fields); i++ {
		if strings.HasSuffix(fields[i], ":") {
			out[strings.TrimSuffix(fields[i], ":")] = fields[i+1]
			i++
		}
	}
	return out
}

// buildVCT assembles the hybrid vertical coordinate table. When the
// coordinate variable carries bounds with their own formula terms, the
// half-level a/b pair is read from there; otherwise the full-level
// coefficients are used directly. A p0 reference pressure different
// from 1 scales the a part.
func (s *scanner) buildVCT(za *VerticalAxis, zVar int) {
	zc := &s.vars.vars[zVar]
	terms := formulaTerms(zc.formulaTerms)

	// Prefer the half-level coefficients from the bounds variable.
	if zc.boundsVar >= 0 {
		ba := newAttrReader(s.b, zc.boundsVar)
		if bft, ok := ba.text("formula_terms"); ok {
			terms = formulaTerms(bft)
		}
	}

	aName, ok := terms["ap"]
	if !ok {
		aName = terms["a"]
	}
	bName := terms["b"]
	if aName == "" || bName == "" {
		s.warn.warnf("variable %s: incomplete formula_terms %q", zc.name, zc.formulaTerms)
		return
	}

	readTerm := func(name string) []float64 {
		tv, ok := s.vars.lookup(name)
		if !ok {
			s.warn.warnf("variable %s: formula_terms references undefined variable %s", zc.name, name)
			return nil
		}
		vals, err := s.readFloats(tv)
		if err != nil {
			s.warn.warnf("variable %s: reading formula term %s: %v", zc.name, name, err)
			return nil
		}
		return vals
	}

	avals := readTerm(aName)
	bvals := readTerm(bName)
	if avals == nil || bvals == nil || len(avals) != len(bvals) {
		return
	}

	// Scale the a part by a reference pressure p0 different from 1.
	if p0Name, ok := terms["p0"]; ok {
		if p0 := readTerm(p0Name); len(p0) > 0 && p0[0] != 1 {
			floats.Scale(p0[0], avals)
		}
	}

	vct := make([]float64, 0, 2*len(avals))
	vct = append(vct, avals...)
	vct = append(vct, bvals...)
	za.VCT = vct
}

// loadLevelBounds attaches per-level bounds stored in the coordinate
// variable's bounds variable as an (n, 2) array.
func (s *scanner) loadLevelBounds(za *VerticalAxis, zc *variable) {
	if zc.boundsVar < 0 {
		return
	}
	vals, err := s.readFloats(zc.boundsVar)
	if err != nil {
		s.warn.warnf("variable %s: reading level bounds: %v", zc.name, err)
		return
	}
	if len(vals) != 2*za.N {
		s.warn.warnf("variable %s: level bounds size %d does not match %d levels",
			zc.name, len(vals), za.N)
		return
	}
	za.LBounds = make([]float64, za.N)
	za.UBounds = make([]float64, za.N)
	for i := 0; i < za.N; i++ {
		za.LBounds[i] = vals[2*i]
		za.UBounds[i] = vals[2*i+1]
	}
}
