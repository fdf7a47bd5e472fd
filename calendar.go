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
	"math"
	"strings"
)

// Calendar identifies the calendar system of a time axis. Model
// calendars include dates (Feb 30, year 0) the standard library's time
// package refuses to represent, so date arithmetic happens on DateTime
// values instead of time.Time.
type Calendar int

const (
	// CalendarStandard is the proleptic Gregorian calendar. Datasets
	// predating the Gregorian reform are rare enough that the
	// Julian/Gregorian transition is not modeled.
	CalendarStandard Calendar = iota
	Calendar360Day
	Calendar365Day
	Calendar366Day
)

func (c Calendar) String() string {
	switch c {
	case Calendar360Day:
		return "360_day"
	case Calendar365Day:
		return "365_day"
	case Calendar366Day:
		return "366_day"
	}
	return "standard"
}

// parseCalendar maps a calendar attribute value to a Calendar. Unknown
// values fall back to the standard calendar; the caller warns.
func parseCalendar(s string) (Calendar, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "gregorian", "proleptic_gregorian":
		return CalendarStandard, true
	case "360_day", "uniform30day":
		return Calendar360Day, true
	case "365_day", "noleap", "365day":
		return Calendar365Day, true
	case "366_day", "all_leap", "366day":
		return Calendar366Day, true
	}
	return CalendarStandard, false
}

// DateTime is a calendar-agnostic broken-down timestamp. Fields are not
// normalized automatically; arithmetic goes through Calendar methods.
type DateTime struct {
	Year                     int
	Month, Day, Hour, Minute int
	Second                   float64
}

func (d DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, int(d.Second))
}

// Encoded returns the timestamp as the packed numeric form
// YYYYMMDD.daysfraction used on absolute time axes.
func (d DateTime) Encoded() float64 {
	date := float64(d.Year*10000 + d.Month*100 + d.Day)
	frac := (float64(d.Hour)*3600 + float64(d.Minute)*60 + d.Second) / 86400
	if date < 0 {
		return date - frac
	}
	return date + frac
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// daysInMonth returns the length of month m (1-based) of year y under
// calendar c.
func (c Calendar) daysInMonth(y, m int) int {
	switch c {
	case Calendar360Day:
		return 30
	case Calendar365Day:
		return monthDays[m-1]
	case Calendar366Day:
		if m == 2 {
			return 29
		}
		return monthDays[m-1]
	}
	if m == 2 && isLeapYear(y) {
		return 29
	}
	return monthDays[m-1]
}

func (c Calendar) daysInYear(y int) int {
	switch c {
	case Calendar360Day:
		return 360
	case Calendar365Day:
		return 365
	case Calendar366Day:
		return 366
	}
	if isLeapYear(y) {
		return 366
	}
	return 365
}

// dayNumber returns the day count from the calendar's internal zero
// point (0001-01-01 is day 0) to the given date.
func (c Calendar) dayNumber(d DateTime) int64 {
	y := int64(d.Year)
	var days int64
	switch c {
	case Calendar360Day:
		days = (y - 1) * 360
	case Calendar365Day:
		days = (y - 1) * 365
	case Calendar366Day:
		days = (y - 1) * 366
	default:
		// Whole proleptic Gregorian years before d.Year, counted from
		// year 1. Negative years fall out of the same formula.
		yy := y - 1
		days = yy*365 + floorDiv(yy, 4) - floorDiv(yy, 100) + floorDiv(yy, 400)
	}
	for m := 1; m < d.Month; m++ {
		days += int64(c.daysInMonth(d.Year, m))
	}
	return days + int64(d.Day-1)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// dateFromDayNumber is the inverse of dayNumber.
func (c Calendar) dateFromDayNumber(days int64) DateTime {
	var y int64
	switch c {
	case Calendar360Day:
		y = floorDiv(days, 360) + 1
		days -= (y - 1) * 360
	case Calendar365Day:
		y = floorDiv(days, 365) + 1
		days -= (y - 1) * 365
	case Calendar366Day:
		y = floorDiv(days, 366) + 1
		days -= (y - 1) * 366
	default:
		// 400 Gregorian years hold a fixed 146097 days; narrow down
		// from there.
		y = floorDiv(days, 146097)*400 + 1
		days -= c.dayNumber(DateTime{Year: int(y), Month: 1, Day: 1})
		for days >= int64(c.daysInYear(int(y))) {
			days -= int64(c.daysInYear(int(y)))
			y++
		}
	}
	d := DateTime{Year: int(y), Month: 1, Day: 1}
	for days >= int64(c.daysInMonth(d.Year, d.Month)) {
		days -= int64(c.daysInMonth(d.Year, d.Month))
		d.Month++
	}
	d.Day += int(days)
	return d
}

// AddSeconds returns the timestamp sec seconds after d under calendar c.
// Negative offsets step backward.
func (c Calendar) AddSeconds(d DateTime, sec float64) DateTime {
	total := float64(c.dayNumber(d))*86400 +
		float64(d.Hour)*3600 + float64(d.Minute)*60 + d.Second + sec
	dayNum := math.Floor(total / 86400)
	rem := total - dayNum*86400

	out := c.dateFromDayNumber(int64(dayNum))
	h := int(rem / 3600)
	rem -= float64(h) * 3600
	m := int(rem / 60)
	rem -= float64(m) * 60
	out.Hour, out.Minute, out.Second = h, m, rem
	// Guard against float rounding pushing seconds to 60.
	if out.Second > 59.9999999 {
		out.Second = 0
		out = c.AddSeconds(out, 60)
	}
	return out
}

// AddMonths advances d by a possibly fractional month count. The whole
// part moves through the calendar month by month; the fractional part
// is scaled by the length of the month it lands in.
func (c Calendar) AddMonths(d DateTime, months float64) DateTime {
	whole := int(math.Floor(months))
	frac := months - float64(whole)

	total := d.Year*12 + (d.Month - 1) + whole
	out := d
	out.Year = total / 12
	out.Month = total%12 + 1
	if total < 0 && total%12 != 0 {
		out.Year--
		out.Month = total%12 + 12 + 1
	}
	if dim := c.daysInMonth(out.Year, out.Month); out.Day > dim {
		out.Day = dim
	}
	if frac != 0 {
		out = c.AddSeconds(out, frac*float64(c.daysInMonth(out.Year, out.Month))*86400)
	}
	return out
}

// AddYears advances d by a possibly fractional year count.
func (c Calendar) AddYears(d DateTime, years float64) DateTime {
	whole := int(math.Floor(years))
	frac := years - float64(whole)

	out := d
	out.Year += whole
	if dim := c.daysInMonth(out.Year, out.Month); out.Day > dim {
		out.Day = dim
	}
	if frac != 0 {
		out = c.AddSeconds(out, frac*float64(c.daysInYear(out.Year))*86400)
	}
	return out
}
