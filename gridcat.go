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

// Package gridcat reconstructs the semantic grid model of a
// self-describing gridded scientific dataset. Given the flat lists of
// dimensions, variables and free-form attributes a container codec
// exposes, it decides which variables are coordinate axes and which
// carry field data, resolves the horizontal grid topology, vertical
// coordinate system and time axis governing each field, and returns a
// normalized Catalog that downstream numerical operators can consume
// uniformly, independent of which metadata dialect the source file
// used.
//
// The classification is heuristic and multi-pass, reconciling
// overlapping conventions (standard names, units tables, explicit axis
// attributes, grid-mapping variables, hybrid vertical formulas, legacy
// model layouts). Anomalies degrade per variable with a warning; only a
// handful of conditions abort a scan.
package gridcat

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Version gives the version number of this version of GridCat.
const Version = "1.0.0"

// Fatal scan errors. Everything else degrades per variable.
var (
	// ErrNoVariables is returned when the dataset defines no variables.
	ErrNoVariables = errors.New("gridcat: dataset has no variables")
	// ErrNoDataVariables is returned when classification leaves no
	// data variables to catalog.
	ErrNoDataVariables = errors.New("gridcat: dataset has no data variables")
	// ErrTooLarge is returned when a dimension length or timestep
	// count exceeds the representable limit.
	ErrTooLarge = errors.New("gridcat: dimension or timestep count too large")
)

// Config carries the scan's feature toggles and collaborators. The zero
// value is usable; defaults are filled in by Scan. One Config value is
// threaded through every component so that no behavior depends on
// process-wide state.
type Config struct {
	// Log receives warnings when Warnings is nil and informational
	// messages otherwise. Defaults to logrus.StandardLogger().
	Log logrus.FieldLogger

	// Warnings, when non-nil, receives every recoverable-anomaly
	// warning exactly once per distinct message text. Test harnesses
	// set this to capture warnings without parsing log output.
	Warnings func(msg string)

	// MaxChunkCacheBytes caps the per-variable chunk cache sizing
	// computed during catalog assembly. Defaults to 64 MiB.
	MaxChunkCacheBytes int64

	// LazyCoordinates defers coordinate bounds and cell-area reads
	// behind a pending-load marker resolved synchronously on first
	// access, instead of reading the arrays during the scan.
	LazyCoordinates bool

	// IgnoreValidRange suppresses deriving a missing value from a
	// valid_range attribute.
	IgnoreValidRange bool

	// IgnoreCoordinates suppresses interpretation of the coordinates
	// (and associate) attribute.
	IgnoreCoordinates bool

	// DefaultInstitution and DefaultModel are used when the dataset
	// carries no institution/source attributes.
	DefaultInstitution, DefaultModel string

	// Query narrows what the scan reads. Nil selects everything.
	Query *Query
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	if c.MaxChunkCacheBytes <= 0 {
		c.MaxChunkCacheBytes = 64 << 20
	}
	return c
}

// warner deduplicates warnings by message text and owns no state beyond
// the scan it belongs to. The dedup set is discarded with the scan.
type warner struct {
	sink func(string)
	seen map[string]struct{}
}

func newWarner(cfg Config) *warner {
	sink := cfg.Warnings
	if sink == nil {
		log := cfg.Log
		sink = func(msg string) { log.Warn(msg) }
	}
	return &warner{sink: sink, seen: make(map[string]struct{})}
}

func (w *warner) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if _, ok := w.seen[msg]; ok {
		return
	}
	w.seen[msg] = struct{}{}
	w.sink(msg)
}

// scanner holds the working tables of one scan. It owns exclusive
// access to them for the duration of the scan, so no locking happens
// here; a Catalog is only shared once construction is complete.
type scanner struct {
	b    Backend
	cfg  Config
	warn *warner

	dims *dimTable
	vars *varTable

	grids []*Grid
	zaxes []*VerticalAxis
	taxis *TimeAxis
}

// Scan reads the structure of the open dataset behind b and assembles
// its Catalog in a single synchronous pass. The backend handle must
// stay open for as long as lazily loaded coordinate data may still be
// dereferenced.
func Scan(b Backend, cfg Config) (*Catalog, error) {
	cfg = cfg.withDefaults()
	s := &scanner{
		b:    b,
		cfg:  cfg,
		warn: newWarner(cfg),
	}

	bvars := b.Variables()
	if len(bvars) == 0 {
		return nil, ErrNoVariables
	}
	var err error
	s.dims, err = newDimTable(b.Dimensions())
	if err != nil {
		return nil, err
	}
	s.vars = newVarTable(bvars)

	if n := b.SubgroupCount(); n > 0 {
		s.warn.warnf("dataset has %d sub-groups; only the root group is scanned", n)
	}

	s.classify()
	if err := s.buildGrids(); err != nil {
		return nil, err
	}
	s.buildVerticalAxes()
	if err := s.buildTimeAxis(); err != nil {
		return nil, err
	}
	return s.assemble()
}
