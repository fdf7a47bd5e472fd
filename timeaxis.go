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
	"math"
	"strconv"
	"strings"
)

// TAxisType is the reference-frame type of the time axis.
type TAxisType int

const (
	// TimeAbsolute axes store encoded calendar dates directly.
	TimeAbsolute TAxisType = iota
	// TimeRelative axes store offsets from a reference date-time.
	TimeRelative
	// TimeForecast is a relative axis with per-step lead times.
	TimeForecast
)

func (t TAxisType) String() string {
	switch t {
	case TimeRelative:
		return "relative"
	case TimeForecast:
		return "forecast"
	}
	return "absolute"
}

// timeUnit is the step unit of a time coordinate.
type timeUnit int

const (
	unitNone timeUnit = iota
	unitSecond
	unitMinute
	unitHour
	unitDay
	unitMonth
	unitYear
)

var timeUnitSeconds = map[timeUnit]float64{
	unitSecond: 1,
	unitMinute: 60,
	unitHour:   3600,
	unitDay:    86400,
}

func parseTimeUnit(s string) timeUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "second", "seconds", "sec", "secs", "s":
		return unitSecond
	case "minute", "minutes", "min", "mins":
		return unitMinute
	case "hour", "hours", "hr", "hrs", "h":
		return unitHour
	case "day", "days", "d":
		return unitDay
	case "month", "months", "mon":
		return unitMonth
	case "year", "years", "yr", "yrs":
		return unitYear
	}
	return unitNone
}

// fillValueDouble is the double-precision default fill sentinel. Stored
// time values at or beyond it are clamped to zero before calendar
// arithmetic.
const fillValueDouble = 9.9692099683868690e36

// TimeAxis is the dataset-wide time axis.
type TimeAxis struct {
	Type     TAxisType
	Calendar Calendar

	// Unit and RefTime describe the storage encoding of a relative
	// axis ("days since 2000-01-01").
	Unit    string
	RefTime DateTime

	// N is the retained step count; Steps holds one decoded timestamp
	// per retained step.
	N     int
	Steps []DateTime

	// Values holds the retained stored values before decoding.
	Values []float64

	// LBounds/UBounds hold decoded per-step bounds when present;
	// Climatology marks them as climatological bounds.
	LBounds, UBounds []DateTime
	Climatology      bool

	// LeadTimes holds per-step forecast periods on a Forecast axis.
	LeadTimes []float64

	unit timeUnit
}

// buildTimeAxis produces the single TimeAxis, or leaves it nil when the
// dataset has no time dimension and no time coordinate.
func (s *scanner) buildTimeAxis() error {
	tDim, tVar := s.findTimeCoordinate()
	if tDim < 0 && tVar < 0 {
		return nil
	}

	nsteps := 0
	if tDim >= 0 {
		nsteps = s.dims.dims[tDim].len
	}
	// A defined but empty (unlimited) time dimension with time-varying
	// variables still yields one implicit step.
	if nsteps == 0 {
		nsteps = 1
	}

	ta := &TimeAxis{Type: TimeAbsolute, N: nsteps}

	if tVar >= 0 {
		tc := &s.vars.vars[tVar]
		if tc.dtype == TypeChar || tc.dtype == TypeString {
			if err := s.decodeCharTimes(ta, tVar, nsteps); err != nil {
				return err
			}
			s.taxis = ta
			return nil
		}

		cal, known := parseCalendar(tc.calendar)
		if !known {
			s.warn.warnf("variable %s: unsupported calendar %q, using standard", tc.name, tc.calendar)
		}
		ta.Calendar = cal

		unit, ref, relative, ok := parseTimeUnits(tc.units)
		if !ok {
			s.warn.warnf("variable %s: unsupported time units %q, assuming absolute", tc.name, tc.units)
		}
		ta.unit = unit
		ta.Unit = tc.units
		if relative {
			ta.Type = TimeRelative
			ta.RefTime = ref
		}

		vals, err := s.readTimeValues(tVar, nsteps)
		if err != nil {
			return err
		}
		ta.N = len(vals)
		ta.Values = vals
		ta.Steps = make([]DateTime, len(vals))
		for i, v := range vals {
			ta.Steps[i] = ta.decode(v)
		}

		if err := s.loadTimeBounds(ta, tc); err != nil {
			return err
		}
		ta.Climatology = tc.isClimatology
	} else {
		// Time dimension without a coordinate variable: steps
		// numbered from 0 on an absolute axis.
		ta.Steps = make([]DateTime, nsteps)
		ta.Values = make([]float64, nsteps)
	}

	s.attachLeadTimes(ta)
	s.taxis = ta
	return nil
}

// findTimeCoordinate locates the time dimension and its coordinate
// variable, either of which may be absent.
func (s *scanner) findTimeCoordinate() (dim, coord int) {
	dim, coord = -1, -1
	for id := range s.dims.dims {
		if s.dims.dims[id].axis == axisT {
			dim = id
			coord = s.dims.dims[id].coordVar
			break
		}
	}
	if dim >= 0 && coord < 0 {
		// Legacy layout: a 2-D text variable over the time dimension
		// holding one date-time string per step.
		for id := range s.vars.vars {
			v := &s.vars.vars[id]
			if (v.dtype == TypeChar || v.dtype == TypeString) &&
				v.rank() == 2 && v.dims[0] == dim {
				return dim, id
			}
		}
	}
	if dim >= 0 {
		return dim, coord
	}
	// Scalar time coordinate only.
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.isT && v.rank() == 0 {
			return -1, id
		}
	}
	return dim, coord
}

// readTimeValues reads the stored time values for the retained steps,
// honoring a timestep-index selection by reading only the selected
// indices. Fill-sentinel values are clamped to zero.
func (s *scanner) readTimeValues(tVar, nsteps int) ([]float64, error) {
	tc := &s.vars.vars[tVar]
	var vals []float64

	sel := s.cfg.Query.timeSteps()
	if len(sel) > 0 && tc.rank() == 1 {
		for _, idx := range sel {
			if idx < 0 || idx >= nsteps {
				s.warn.warnf("timestep %d out of range [0,%d), dropped", idx, nsteps)
				continue
			}
			v, err := s.readFloatRange(tVar, []int{idx}, []int{idx + 1})
			if err != nil {
				return nil, err
			}
			vals = append(vals, v...)
		}
	} else {
		var err error
		if tc.rank() == 0 {
			vals, err = s.readFloats(tVar)
		} else {
			vals, err = s.readFloatRange(tVar, []int{0}, []int{nsteps})
		}
		if err != nil {
			return nil, err
		}
	}
	if len(vals) == 0 {
		vals = make([]float64, 1)
	}
	for i, v := range vals {
		if math.Abs(v) >= fillValueDouble {
			vals[i] = 0
		}
	}
	return vals, nil
}

func (q *Query) timeSteps() []int {
	if q == nil {
		return nil
	}
	return q.TimeSteps
}

// decode converts one stored value to a timestamp under the axis's
// encoding.
func (ta *TimeAxis) decode(v float64) DateTime {
	if ta.Type == TimeAbsolute {
		return decodeAbsolute(v, ta.unit, ta.Calendar)
	}
	switch ta.unit {
	case unitMonth:
		return ta.Calendar.AddMonths(ta.RefTime, v)
	case unitYear:
		return ta.Calendar.AddYears(ta.RefTime, v)
	}
	sec, ok := timeUnitSeconds[ta.unit]
	if !ok {
		sec = 86400
	}
	return ta.Calendar.AddSeconds(ta.RefTime, v*sec)
}

// decodeAbsolute unpacks an encoded-date value: YYYYMMDD.fraction for
// day units, YYYYMM.fraction for months, YYYY.fraction for years.
func decodeAbsolute(v float64, unit timeUnit, cal Calendar) DateTime {
	neg := v < 0
	av := math.Abs(v)
	date := math.Floor(av)
	frac := av - date
	if neg {
		date = -date
	}
	n := int(date)

	var dt DateTime
	switch unit {
	case unitMonth:
		dt = DateTime{Year: n / 100, Month: n % 100, Day: 1}
		if dt.Month < 1 || dt.Month > 12 {
			dt.Month = 1
		}
		return cal.AddSeconds(dt, frac*float64(cal.daysInMonth(dt.Year, dt.Month))*86400)
	case unitYear:
		dt = DateTime{Year: n, Month: 1, Day: 1}
		return cal.AddSeconds(dt, frac*float64(cal.daysInYear(dt.Year))*86400)
	}
	dt = DateTime{Year: n / 10000, Month: (n / 100) % 100, Day: n % 100}
	if dt.Month < 1 || dt.Month > 12 {
		dt.Month = 1
	}
	if dt.Day < 1 {
		dt.Day = 1
	}
	return cal.AddSeconds(dt, frac*86400)
}

// parseTimeUnits parses the units grammar "<unit> since <date>[ <time>]"
// or a bare unit implying an absolute encoded-date layout.
func parseTimeUnits(units string) (unit timeUnit, ref DateTime, relative, ok bool) {
	fields := strings.Fields(units)
	if len(fields) == 0 {
		return unitDay, DateTime{}, false, false
	}
	unit = parseTimeUnit(fields[0])
	if unit == unitNone {
		return unitDay, DateTime{}, false, false
	}
	if len(fields) == 1 {
		return unit, DateTime{}, false, true
	}
	if !strings.EqualFold(fields[1], "since") || len(fields) < 3 {
		return unit, DateTime{}, false, false
	}
	ref, ok = parseDate(fields[2])
	if !ok {
		return unit, DateTime{}, false, false
	}
	if len(fields) >= 4 {
		if h, m, sec, tok := parseClock(fields[3]); tok {
			ref.Hour, ref.Minute, ref.Second = h, m, sec
		}
	}
	return unit, ref, true, true
}

// parseDate parses YYYY-MM-DD, tolerating a leading sign on the year.
func parseDate(s string) (DateTime, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return DateTime{}, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 {
		return DateTime{}, false
	}
	if neg {
		y = -y
	}
	return DateTime{Year: y, Month: m, Day: d}, true
}

// parseClock parses HH:MM[:SS[.frac]].
func parseClock(s string) (h, m int, sec float64, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, 0, false
	}
	if len(parts) >= 3 {
		var err error
		sec, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, 0, 0, false
		}
	}
	return h, m, sec, true
}

// decodeCharTimes decodes the legacy 2-D text time layout: one
// fixed-width "YYYY-MM-DD_HH:MM:SS" string per step (string width 19,
// or 64 with trailing padding). The resulting axis is absolute and
// carries no calendar.
func (s *scanner) decodeCharTimes(ta *TimeAxis, tVar, nsteps int) error {
	tc := &s.vars.vars[tVar]
	if tc.rank() != 2 {
		s.warn.warnf("variable %s: unsupported text time layout (rank %d)", tc.name, tc.rank())
		ta.Steps = make([]DateTime, nsteps)
		ta.Values = make([]float64, nsteps)
		return nil
	}
	width := s.dims.dims[tc.dims[1]].len
	if width != 19 && width != 64 {
		s.warn.warnf("variable %s: unsupported text time width %d", tc.name, width)
		ta.Steps = make([]DateTime, nsteps)
		ta.Values = make([]float64, nsteps)
		return nil
	}

	raw, err := s.b.Read(tVar)
	if err != nil {
		return err
	}
	buf, ok := raw.([]byte)
	if !ok {
		s.warn.warnf("variable %s: unexpected text time storage", tc.name)
		ta.Steps = make([]DateTime, nsteps)
		ta.Values = make([]float64, nsteps)
		return nil
	}

	n := len(buf) / width
	if n > nsteps {
		n = nsteps
	}
	ta.N = n
	ta.Steps = make([]DateTime, n)
	ta.Values = make([]float64, n)
	for i := 0; i < n; i++ {
		text := strings.TrimRight(string(buf[i*width:(i+1)*width]), "\x00 ")
		dt, ok := parseTextTime(text)
		if !ok {
			s.warn.warnf("variable %s: unparseable time string %q", tc.name, text)
		}
		ta.Steps[i] = dt
		ta.Values[i] = dt.Encoded()
	}
	return nil
}

// parseTextTime split-parses "YYYY-MM-DD_HH:MM:SS".
func parseTextTime(s string) (DateTime, bool) {
	halves := strings.SplitN(s, "_", 2)
	dt, ok := parseDate(halves[0])
	if !ok {
		return DateTime{}, false
	}
	if len(halves) == 2 {
		h, m, sec, ok := parseClock(halves[1])
		if !ok {
			return dt, false
		}
		dt.Hour, dt.Minute, dt.Second = h, m, sec
	}
	return dt, true
}

// loadTimeBounds attaches decoded per-step bounds from the time
// coordinate's (steps, 2) bounds variable.
func (s *scanner) loadTimeBounds(ta *TimeAxis, tc *variable) error {
	if tc.boundsVar < 0 {
		return nil
	}
	bv := &s.vars.vars[tc.boundsVar]
	if bv.rank() != 2 || s.dims.dims[bv.dims[1]].len != 2 {
		s.warn.warnf("variable %s: time bounds %s is not a (steps, 2) array", tc.name, bv.name)
		return nil
	}
	vals, err := s.readFloats(tc.boundsVar)
	if err != nil {
		return err
	}
	n := len(vals) / 2
	if n > ta.N && len(s.cfg.Query.timeSteps()) == 0 {
		n = ta.N
	}
	ta.LBounds = make([]DateTime, 0, ta.N)
	ta.UBounds = make([]DateTime, 0, ta.N)
	appendBound := func(lo, hi float64) {
		if math.Abs(lo) >= fillValueDouble {
			lo = 0
		}
		if math.Abs(hi) >= fillValueDouble {
			hi = 0
		}
		ta.LBounds = append(ta.LBounds, ta.decode(lo))
		ta.UBounds = append(ta.UBounds, ta.decode(hi))
	}
	if sel := s.cfg.Query.timeSteps(); len(sel) > 0 {
		for _, idx := range sel {
			if idx < 0 || idx >= n {
				continue
			}
			appendBound(vals[2*idx], vals[2*idx+1])
		}
	} else {
		for i := 0; i < n; i++ {
			appendBound(vals[2*i], vals[2*i+1])
		}
	}
	return nil
}

// attachLeadTimes looks for a forecast_period coordinate and, when
// found, attaches its values and upgrades a relative axis to a
// forecast axis.
func (s *scanner) attachLeadTimes(ta *TimeAxis) {
	for id := range s.vars.vars {
		v := &s.vars.vars[id]
		if v.stdName != "forecast_period" {
			continue
		}
		vals, err := s.readFloats(id)
		if err != nil {
			s.warn.warnf("variable %s: reading forecast periods: %v", v.name, err)
			return
		}
		ta.LeadTimes = vals
		if ta.Type == TimeRelative {
			ta.Type = TimeForecast
		}
		return
	}
}
