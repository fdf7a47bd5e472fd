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
	"strings"

	"github.com/ctessum/sparse"
)

// GridKind is the horizontal topology of a grid.
type GridKind int

const (
	GridGeneric GridKind = iota
	GridLonLat
	GridGaussian
	GridGaussianReduced
	GridCurvilinear
	GridUnstructured
	GridProjection
	GridSpectral
	GridFourier
	GridTrajectory
	GridHEALPix
	GridCharXY
)

func (k GridKind) String() string {
	switch k {
	case GridLonLat:
		return "lonlat"
	case GridGaussian:
		return "gaussian"
	case GridGaussianReduced:
		return "gaussian_reduced"
	case GridCurvilinear:
		return "curvilinear"
	case GridUnstructured:
		return "unstructured"
	case GridProjection:
		return "projection"
	case GridSpectral:
		return "spectral"
	case GridFourier:
		return "fourier"
	case GridTrajectory:
		return "trajectory"
	case GridHEALPix:
		return "healpix"
	case GridCharXY:
		return "char"
	}
	return "generic"
}

// chunkKind classifies a variable's storage chunking relative to its
// grid. The grid-relative kind is computed once per grid; every
// variable records its own chunk shape for cache sizing.
type chunkKind int8

const (
	chunkUnknown chunkKind = iota
	chunkContiguous
	chunkGrid  // one chunk spans the whole horizontal grid
	chunkLines // chunks span single y lines
	chunkOther
)

// pendingLoad defers an array read behind a marker carrying the
// backend handle and read range. It is resolved synchronously on first
// dereference; this is a caching strategy, not background I/O.
type pendingLoad struct {
	b          Backend
	varID      int
	shape      []int
	begin, end []int // nil for a full read
}

func (p *pendingLoad) resolve() (*sparse.DenseArray, error) {
	var raw interface{}
	var err error
	if p.begin != nil {
		raw, err = p.b.ReadRange(p.varID, p.begin, p.end)
	} else {
		raw, err = p.b.Read(p.varID)
	}
	if err != nil {
		return nil, err
	}
	vals, err := toFloats(raw)
	if err != nil {
		return nil, err
	}
	a := sparse.ZerosDense(p.shape...)
	copy(a.Elements, vals)
	return a, nil
}

// Grid describes the horizontal topology shared by one or more data
// variables. Coordinate values are owned by the grid; bounds and cell
// areas may be held behind a pending-load marker until first access.
type Grid struct {
	ID   int
	Kind GridKind

	NX, NY int

	// 1-D coordinate values (lonlat, gaussian, unstructured, generic).
	X, Y []float64

	// 2-D coordinate values (curvilinear, cubed-sphere).
	XC, YC *sparse.DenseArray

	// RowCounts holds the per-latitude point counts of a reduced
	// Gaussian grid.
	RowCounts []int

	// Trunc is the spectral truncation for spectral/Fourier grids.
	Trunc int

	// FaceDim is the dimension id of a cubed-sphere face dimension,
	// or -1.
	FaceDim int

	// Mapping is the grid_mapping_name of the associated projection
	// variable, "" if none.
	Mapping string

	xBounds, yBounds, area             *sparse.DenseArray
	pendXBounds, pendYBounds, pendArea *pendingLoad
	pendXC, pendYC                     *pendingLoad

	// dedup key: structural identity of the coordinate variables plus
	// the reference position, not value comparison.
	xVar, yVar, refPos int

	chunk chunkKind
}

// XBounds returns the x (longitude) cell bounds, resolving a deferred
// load if necessary. It returns nil when the grid has no bounds.
func (g *Grid) XBounds() (*sparse.DenseArray, error) {
	if g.xBounds == nil && g.pendXBounds != nil {
		var err error
		if g.xBounds, err = g.pendXBounds.resolve(); err != nil {
			return nil, err
		}
		g.pendXBounds = nil
	}
	return g.xBounds, nil
}

// YBounds returns the y (latitude) cell bounds, resolving a deferred
// load if necessary.
func (g *Grid) YBounds() (*sparse.DenseArray, error) {
	if g.yBounds == nil && g.pendYBounds != nil {
		var err error
		if g.yBounds, err = g.pendYBounds.resolve(); err != nil {
			return nil, err
		}
		g.pendYBounds = nil
	}
	return g.yBounds, nil
}

// CellAreas returns the per-cell area array, resolving a deferred load
// if necessary.
func (g *Grid) CellAreas() (*sparse.DenseArray, error) {
	if g.area == nil && g.pendArea != nil {
		var err error
		if g.area, err = g.pendArea.resolve(); err != nil {
			return nil, err
		}
		g.pendArea = nil
	}
	return g.area, nil
}

// XCoords returns the 2-D x coordinate array, resolving a deferred
// load if necessary.
func (g *Grid) XCoords() (*sparse.DenseArray, error) {
	if g.XC == nil && g.pendXC != nil {
		var err error
		if g.XC, err = g.pendXC.resolve(); err != nil {
			return nil, err
		}
		g.pendXC = nil
	}
	return g.XC, nil
}

// YCoords returns the 2-D y coordinate array, resolving a deferred
// load if necessary.
func (g *Grid) YCoords() (*sparse.DenseArray, error) {
	if g.YC == nil && g.pendYC != nil {
		var err error
		if g.YC, err = g.pendYC.resolve(); err != nil {
			return nil, err
		}
		g.pendYC = nil
	}
	return g.YC, nil
}

// Size returns the number of horizontal grid points.
func (g *Grid) Size() int {
	if g.NY > 0 {
		return g.NX * g.NY
	}
	return g.NX
}

// buildGrids resolves (or reuses) a Grid for every data variable the
// query selects. Failures demote the affected variable and continue.
func (s *scanner) buildGrids() error {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.status != statusData || v.skip || v.gridID >= 0 {
			continue
		}
		if !s.cfg.Query.wantsVar(v.name) {
			continue
		}
		g, err := s.resolveGrid(id)
		if err != nil {
			return err
		}
		if g == nil {
			// demoted inside resolveGrid
			continue
		}
		v.gridID = g.ID
	}
	return nil
}

// resolveGrid decides the topology for variable id and returns a new
// or deduplicated Grid. A nil, nil return means the variable was
// demoted.
func (s *scanner) resolveGrid(id int) (*Grid, error) {
	v := &s.vars.vars[id]
	a := newAttrReader(s.b, id)

	xVar, yVar := s.horizontalCoords(v)
	refPos, _ := a.integer("position")

	// Structural dedup before any data is read. A variable joining an
	// existing grid reuses the grid-relative chunk kind but still
	// records its own storage chunking for cache sizing.
	for _, g := range s.grids {
		if g.xVar == xVar && g.yVar == yVar && g.refPos == refPos &&
			(xVar >= 0 || yVar >= 0) {
			s.captureChunkInfo(id)
			return g, nil
		}
	}

	g := &Grid{ID: len(s.grids), FaceDim: -1, xVar: xVar, yVar: yVar, refPos: refPos}

	switch {
	case s.resolveSpectral(id, g):
	case s.resolveCubedSphere(id, xVar, yVar, g):
	case s.resolveHEALPix(id, g):
	default:
		ok, err := s.resolveHorizontal(id, xVar, yVar, g)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	if !s.checkGridSizes(id, g) {
		return nil, nil
	}
	s.attachBoundsAndArea(id, xVar, yVar, g)
	s.classifyChunking(id, g)
	s.grids = append(s.grids, g)
	return g, nil
}

// horizontalCoords finds the x and y coordinate variable ids for v:
// first among the variables its coordinates attribute references, then
// through the axis roles of its own dimensions. -1 when absent.
func (s *scanner) horizontalCoords(v *variable) (xVar, yVar int) {
	xVar, yVar = -1, -1
	for _, cv := range v.coordVars {
		c := &s.vars.vars[cv]
		if (c.isLon || c.isX) && xVar < 0 {
			xVar = cv
		}
		if (c.isLat || c.isY) && yVar < 0 {
			yVar = cv
		}
	}
	for i, d := range v.dims {
		cv := s.dims.dims[d].coordVar
		if cv < 0 {
			continue
		}
		switch v.axes[i] {
		case axisX:
			if xVar < 0 {
				xVar = cv
			}
		case axisY:
			if yVar < 0 {
				yVar = cv
			}
		}
	}
	return xVar, yVar
}

// resolveSpectral recognizes spectral and Fourier coefficient layouts:
// an explicit truncation attribute, or the conventional coefficient
// dimension names.
func (s *scanner) resolveSpectral(id int, g *Grid) bool {
	v := &s.vars.vars[id]
	a := newAttrReader(s.b, id)
	trunc, hasTrunc := a.integer("truncation")
	if !hasTrunc {
		trunc, hasTrunc = newAttrReader(s.b, GlobalScope).integer("truncation")
	}
	for _, d := range v.dims {
		switch s.dims.dims[d].name {
		case "nsp", "spc":
			if hasTrunc {
				g.Trunc = trunc
			}
			g.Kind = GridSpectral
			g.NX = s.dims.dims[d].len
			return true
		case "nfc":
			if hasTrunc {
				g.Trunc = trunc
			}
			g.Kind = GridFourier
			g.NX = s.dims.dims[d].len
			return true
		}
	}
	return false
}

// resolveCubedSphere recognizes rank-3 lon/lat coordinate variables
// sharing a face dimension together with a grid-mapping variable: an
// unstructured grid with an extra face dimension.
func (s *scanner) resolveCubedSphere(id, xVar, yVar int, g *Grid) bool {
	v := &s.vars.vars[id]
	if v.gridMapVar < 0 || xVar < 0 || yVar < 0 {
		return false
	}
	xc, yc := &s.vars.vars[xVar], &s.vars.vars[yVar]
	if xc.rank() != 3 || yc.rank() != 3 {
		return false
	}
	fd := s.faceDim(xc)
	if fd < 0 || s.faceDim(yc) != fd {
		return false
	}
	g.Kind = GridUnstructured
	g.FaceDim = fd
	// (face, y, x) coordinate layout
	g.NY = s.dims.dims[xc.dims[1]].len
	g.NX = s.dims.dims[xc.dims[2]].len
	g.Mapping = s.mappingName(v.gridMapVar)
	s.loadCoords2D(xVar, yVar, g)
	return true
}

// resolveHEALPix recognizes a grid-mapping variable with mapping name
// "healpix" and a refinement_level attribute.
func (s *scanner) resolveHEALPix(id int, g *Grid) bool {
	v := &s.vars.vars[id]
	if v.gridMapVar < 0 {
		return false
	}
	ma := newAttrReader(s.b, v.gridMapVar)
	if s.mappingName(v.gridMapVar) != "healpix" {
		return false
	}
	if !ma.has("refinement_level") {
		return false
	}
	g.Kind = GridHEALPix
	g.Mapping = "healpix"
	// The cell dimension is the fastest-varying dimension.
	if v.rank() > 0 {
		g.NX = s.dims.dims[v.dims[v.rank()-1]].len
	}
	return true
}

// resolveHorizontal is the common-case decision over 1-D and 2-D x/y
// coordinates, evaluated in the documented order.
func (s *scanner) resolveHorizontal(id, xVar, yVar int, g *Grid) (bool, error) {
	v := &s.vars.vars[id]

	// Reduced Gaussian: lines-per-equator attribute plus a 1-D
	// reduced-points coordinate variable.
	if ok := s.resolveReducedGaussian(id, g); ok {
		return true, nil
	}

	// Char-typed x coordinate.
	if xVar >= 0 && s.vars.vars[xVar].dtype == TypeChar {
		g.Kind = GridCharXY
		if d := s.axisDim(v, axisX); d >= 0 {
			g.NX = s.dims.dims[d].len
		}
		return true, nil
	}

	// A single flat dimension carrying both x and y roles is an
	// unstructured (cell list) grid.
	if xVar >= 0 && yVar >= 0 {
		xc, yc := &s.vars.vars[xVar], &s.vars.vars[yVar]
		// Both roles on a single flat dimension: a cell list.
		if xc.rank() == 1 && yc.rank() == 1 && xc.dims[0] == yc.dims[0] {
			return s.resolveUnstructured(xVar, yVar, g)
		}
		if xc.rank() == 2 && yc.rank() == 2 {
			g.Kind = GridCurvilinear
			g.NY = s.dims.dims[xc.dims[0]].len
			g.NX = s.dims.dims[xc.dims[1]].len
			s.loadCoords2D(xVar, yVar, g)
			if v.gridMapVar >= 0 {
				g.Mapping = s.mappingName(v.gridMapVar)
			}
			return true, nil
		}
	}

	// 1-D coordinates.
	if yVar >= 0 {
		y, err := s.readFloats(yVar)
		if err != nil {
			return false, err
		}
		g.Y = y
		g.NY = len(y)
	} else if d := s.axisDim(v, axisY); d >= 0 {
		g.NY = s.dims.dims[d].len
	}
	if xVar >= 0 {
		x, err := s.readFloats(xVar)
		if err != nil {
			return false, err
		}
		g.X = x
		g.NX = len(x)
	} else if d := s.axisDim(v, axisX); d >= 0 {
		g.NX = s.dims.dims[d].len
	}

	projected := v.gridMapVar >= 0 && s.isProjected(xVar, yVar)

	switch {
	case projected && g.NX > 0:
		g.Kind = GridProjection
		g.Mapping = s.mappingName(v.gridMapVar)
	case yVar >= 0 && len(g.Y) > 0 && len(g.Y) < 10000 && isGaussianLatitudes(g.Y):
		g.Kind = GridGaussian
	case g.NX > 0 && g.NY > 0:
		g.Kind = GridLonLat
	case g.NX > 0:
		g.Kind = GridLonLat // 1-D case: x only
	default:
		g.Kind = GridGeneric
		// A generic grid takes its extents from the variable's
		// unclassified horizontal dimensions.
		if d := s.axisDim(v, axisX); d >= 0 {
			g.NX = s.dims.dims[d].len
		}
		if d := s.axisDim(v, axisY); d >= 0 {
			g.NY = s.dims.dims[d].len
		}
	}
	return true, nil
}

// resolveReducedGaussian checks for the reduced Gaussian layout: a
// number-of-lines-per-equator attribute plus a 1-D reduced-points
// variable holding per-latitude point counts instead of per-point
// longitudes.
func (s *scanner) resolveReducedGaussian(id int, g *Grid) bool {
	a := newAttrReader(s.b, id)
	nLines, ok := a.integer("number_of_lines_per_equator")
	if !ok {
		nLines, ok = newAttrReader(s.b, GlobalScope).integer("number_of_lines_per_equator")
	}
	if !ok {
		return false
	}
	rpName, ok := a.text("reduced_points")
	if !ok {
		rpName = "reduced_points"
	}
	rpVar, ok := s.vars.lookup(rpName)
	if !ok || s.vars.vars[rpVar].rank() != 1 {
		return false
	}
	counts, err := s.readInts(rpVar)
	if err != nil {
		s.warn.warnf("variable %s: reading reduced points: %v", s.vars.vars[id].name, err)
		return false
	}
	g.Kind = GridGaussianReduced
	g.RowCounts = counts
	g.NY = len(counts)
	g.Trunc = nLines
	total := 0
	for _, c := range counts {
		total += c
	}
	g.NX = total
	return true
}

// resolveUnstructured builds a flat cell-list grid, honoring a 1-D
// cell range query by reading only the selected slice.
func (s *scanner) resolveUnstructured(xVar, yVar int, g *Grid) (bool, error) {
	g.Kind = GridUnstructured
	dim := s.vars.vars[xVar].dims[0]
	n := s.dims.dims[dim].len
	begin, end, narrowed := s.cfg.Query.cellRange()
	if narrowed {
		if begin < 0 || end > n || begin >= end {
			s.warn.warnf("cell range [%d,%d) outside grid size %d; ignoring", begin, end, n)
			narrowed = false
		}
	}
	if !narrowed {
		begin, end = 0, n
	}
	x, err := s.readFloatRange(xVar, []int{begin}, []int{end})
	if err != nil {
		return false, err
	}
	y, err := s.readFloatRange(yVar, []int{begin}, []int{end})
	if err != nil {
		return false, err
	}
	g.X, g.Y = x, y
	g.NX = end - begin
	g.NY = 0
	return true, nil
}

// loadCoords2D attaches 2-D coordinate arrays, eagerly or behind a
// pending-load marker depending on configuration.
func (s *scanner) loadCoords2D(xVar, yVar int, g *Grid) {
	if s.cfg.LazyCoordinates {
		g.pendXC = &pendingLoad{b: s.b, varID: xVar, shape: s.varShape(xVar)}
		g.pendYC = &pendingLoad{b: s.b, varID: yVar, shape: s.varShape(yVar)}
		return
	}
	if a, err := s.readDense(xVar); err == nil {
		g.XC = a
	} else {
		s.warn.warnf("reading 2-D x coordinate: %v", err)
	}
	if a, err := s.readDense(yVar); err == nil {
		g.YC = a
	} else {
		s.warn.warnf("reading 2-D y coordinate: %v", err)
	}
}

// checkGridSizes verifies that coordinate dimensions agree with the
// data variable's declared dimensions; inconsistency demotes the
// variable with a warning, never fatally.
func (s *scanner) checkGridSizes(id int, g *Grid) bool {
	v := &s.vars.vars[id]
	check := func(a axisKind, want int) bool {
		d := s.axisDim(v, a)
		if d < 0 || want <= 0 {
			return true
		}
		if s.dims.dims[d].len != want {
			s.warn.warnf("variable %s: declared %v size %d does not match coordinate size %d; skipping",
				v.name, a, s.dims.dims[d].len, want)
			return false
		}
		return true
	}
	okX := true
	if g.Kind == GridLonLat || g.Kind == GridGaussian {
		okX = check(axisX, g.NX) && check(axisY, g.NY)
	}
	if !okX {
		v.status = statusCoordinate
		v.skip = true
		return false
	}
	return true
}

// attachBoundsAndArea wires cell bounds and the cell-measures area
// array into the grid, eagerly or lazily per configuration.
func (s *scanner) attachBoundsAndArea(id, xVar, yVar int, g *Grid) {
	attach := func(coordVar int) *pendingLoad {
		if coordVar < 0 {
			return nil
		}
		bv := s.vars.vars[coordVar].boundsVar
		if bv < 0 {
			return nil
		}
		return &pendingLoad{b: s.b, varID: bv, shape: s.varShape(bv)}
	}
	if p := attach(xVar); p != nil {
		if s.cfg.LazyCoordinates {
			g.pendXBounds = p
		} else if a, err := p.resolve(); err == nil {
			g.xBounds = a
		} else {
			s.warn.warnf("reading x bounds: %v", err)
		}
	}
	if p := attach(yVar); p != nil {
		if s.cfg.LazyCoordinates {
			g.pendYBounds = p
		} else if a, err := p.resolve(); err == nil {
			g.yBounds = a
		} else {
			s.warn.warnf("reading y bounds: %v", err)
		}
	}

	// cell_measures: "area: <var>"
	a := newAttrReader(s.b, id)
	if cm, ok := a.text("cell_measures"); ok {
		if av, ok := parseCellMeasures(cm, "area"); ok {
			if areaVar, ok := s.vars.lookup(av); ok {
				p := &pendingLoad{b: s.b, varID: areaVar, shape: s.varShape(areaVar)}
				if s.cfg.LazyCoordinates {
					g.pendArea = p
				} else if arr, err := p.resolve(); err == nil {
					g.area = arr
				} else {
					s.warn.warnf("reading cell areas: %v", err)
				}
			}
		}
	}
}

// captureChunkInfo records the variable's storage chunk shape and
// filter for cache sizing during assembly.
func (s *scanner) captureChunkInfo(id int) (ChunkInfo, bool) {
	v := &s.vars.vars[id]
	ci, ok := s.b.ChunkInfo(id)
	if !ok {
		return ci, false
	}
	v.isChunked = true
	v.chunk = ci.Shape
	v.chunkFilter = ci.Filter
	return ci, true
}

// classifyChunking computes the chunk classification of the first
// variable on a new grid relative to the grid's horizontal extent;
// variables deduplicated onto the grid later reuse the kind.
func (s *scanner) classifyChunking(id int, g *Grid) {
	v := &s.vars.vars[id]
	ci, ok := s.captureChunkInfo(id)
	if !ok {
		g.chunk = chunkContiguous
		return
	}
	if len(ci.Shape) != v.rank() {
		g.chunk = chunkOther
		return
	}
	xi, yi := -1, -1
	for i, a := range v.axes {
		switch a {
		case axisX:
			xi = i
		case axisY:
			yi = i
		}
	}
	switch {
	case xi >= 0 && yi >= 0 &&
		ci.Shape[xi] == s.dims.dims[v.dims[xi]].len &&
		ci.Shape[yi] == s.dims.dims[v.dims[yi]].len:
		g.chunk = chunkGrid
	case xi >= 0 && ci.Shape[xi] == s.dims.dims[v.dims[xi]].len &&
		(yi < 0 || ci.Shape[yi] == 1):
		g.chunk = chunkLines
	default:
		g.chunk = chunkOther
	}
}

// mappingName returns the grid_mapping_name attribute of a grid
// mapping variable, falling back to the variable's own name.
func (s *scanner) mappingName(mapVar int) string {
	if name, ok := newAttrReader(s.b, mapVar).text("grid_mapping_name"); ok {
		return name
	}
	return s.vars.vars[mapVar].name
}

// isProjected reports whether 1-D x/y coordinates are in projection
// space rather than geographic degrees.
func (s *scanner) isProjected(xVar, yVar int) bool {
	if xVar < 0 && yVar < 0 {
		return false
	}
	for _, cv := range []int{xVar, yVar} {
		if cv < 0 {
			continue
		}
		c := &s.vars.vars[cv]
		if c.stdName == "projection_x_coordinate" || c.stdName == "projection_y_coordinate" {
			return true
		}
		if c.isLon || c.isLat {
			return false
		}
	}
	return true
}

// axisDim returns the dimension id of v carrying role a, or -1.
func (s *scanner) axisDim(v *variable, a axisKind) int {
	for i, d := range v.dims {
		if v.axes[i] == a {
			return d
		}
	}
	return -1
}

// parseCellMeasures extracts the variable name tagged with the given
// measure from a cell_measures attribute ("area: cell_area ...").
func parseCellMeasures(cm, measure string) (string, bool) {
	fields := strings.Fields(cm)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == measure+":" {
			return fields[i+1], true
		}
	}
	return "", false
}

// varShape returns the dimension lengths of a variable.
func (s *scanner) varShape(id int) []int {
	v := &s.vars.vars[id]
	shape := make([]int, v.rank())
	for i, d := range v.dims {
		shape[i] = s.dims.dims[d].len
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	return shape
}

// readDense reads a variable in full into a DenseArray shaped like the
// variable.
func (s *scanner) readDense(id int) (*sparse.DenseArray, error) {
	p := pendingLoad{b: s.b, varID: id, shape: s.varShape(id)}
	return p.resolve()
}

// readFloats reads a variable in full as float64.
func (s *scanner) readFloats(id int) ([]float64, error) {
	raw, err := s.b.Read(id)
	if err != nil {
		return nil, err
	}
	return toFloats(raw)
}

// readFloatRange reads a hyperslab of a variable as float64.
func (s *scanner) readFloatRange(id int, begin, end []int) ([]float64, error) {
	raw, err := s.b.ReadRange(id, begin, end)
	if err != nil {
		return nil, err
	}
	return toFloats(raw)
}

// readInts reads a variable in full as int.
func (s *scanner) readInts(id int) ([]int, error) {
	vals, err := s.readFloats(id)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out, nil
}

// toFloats converts a raw backend read result to float64.
func toFloats(raw interface{}) ([]float64, error) {
	switch t := raw.(type) {
	case []float64:
		return t, nil
	case []float32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int64:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int8:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []uint8:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	}
	return nil, fmt.Errorf("gridcat: unsupported datatype %T", raw)
}
