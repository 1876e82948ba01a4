// Package fiscal holds the calendar arithmetic for filing periods: the
// half-open instant range a period covers in the business timezone, and
// the statutory filing deadline that follows it. Everything here is a
// pure function of its inputs.
package fiscal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a period specification is malformed
// (month outside 1-12 or quarter outside 1-4).
var ErrInvalidPeriod = errors.New("invalid filing period")

// PeriodKind discriminates the two supported filing granularities.
type PeriodKind string

const (
	KindMonthly   PeriodKind = "monthly"
	KindQuarterly PeriodKind = "quarterly"
)

// FilingPeriod is an immutable month-of-year or quarter-of-year value.
// Construct it via Monthly or Quarterly; the zero value is not valid.
type FilingPeriod struct {
	Kind    PeriodKind
	Year    int
	Month   time.Month // set when Kind == KindMonthly
	Quarter int        // set when Kind == KindQuarterly
}

// Monthly builds a monthly filing period, validating the month.
func Monthly(year int, month int) (FilingPeriod, error) {
	if month < 1 || month > 12 {
		return FilingPeriod{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return FilingPeriod{Kind: KindMonthly, Year: year, Month: time.Month(month)}, nil
}

// Quarterly builds a quarterly filing period, validating the quarter.
func Quarterly(year int, quarter int) (FilingPeriod, error) {
	if quarter < 1 || quarter > 4 {
		return FilingPeriod{}, fmt.Errorf("%w: quarter %d", ErrInvalidPeriod, quarter)
	}
	return FilingPeriod{Kind: KindQuarterly, Year: year, Quarter: quarter}, nil
}

// Range returns the half-open interval [start, end) the period covers
// in the given location. time.Date normalizes month overflow, so the
// December boundary rolls into January of the following year.
func (p FilingPeriod) Range(loc *time.Location) (start, end time.Time) {
	switch p.Kind {
	case KindQuarterly:
		startMonth := time.Month((p.Quarter-1)*3 + 1)
		start = time.Date(p.Year, startMonth, 1, 0, 0, 0, 0, loc)
		end = time.Date(p.Year, startMonth+3, 1, 0, 0, 0, 0, loc)
	default:
		start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
		end = time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, loc)
	}
	return start, end
}

// lastMonth is the final calendar month the period covers.
func (p FilingPeriod) lastMonth() time.Month {
	if p.Kind == KindQuarterly {
		return time.Month(p.Quarter * 3)
	}
	return p.Month
}

// Deadline is the statutory due date for the return: midnight on the
// 15th of the month after the period's last month, rolling into the
// next year when the period ends in December.
func (p FilingPeriod) Deadline(loc *time.Location) time.Time {
	return time.Date(p.Year, p.lastMonth()+1, 15, 0, 0, 0, 0, loc)
}

// Label renders a human-readable period name for documents,
// e.g. "February 2026" or "Q4 2025".
func (p FilingPeriod) Label() string {
	if p.Kind == KindQuarterly {
		return fmt.Sprintf("Q%d %d", p.Quarter, p.Year)
	}
	return fmt.Sprintf("%s %d", p.Month.String(), p.Year)
}

// String returns a compact machine form, e.g. "2026-02" or "2025-Q4".
func (p FilingPeriod) String() string {
	if p.Kind == KindQuarterly {
		return fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
	}
	return fmt.Sprintf("%d-%02d", p.Year, int(p.Month))
}

// Zone parses a fixed UTC offset of the form "+09:00", "-03:30" or
// "+09" into a time.Location. The business timezone is a fixed offset
// with no daylight-saving transitions, so a FixedZone is sufficient.
func Zone(offset string) (*time.Location, error) {
	if offset == "" || offset == "Z" || offset == "+00:00" {
		return time.UTC, nil
	}

	sign := 1
	switch offset[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, fmt.Errorf("parsing UTC offset %q: missing sign", offset)
	}

	hh, mm := offset[1:], "0"
	if i := strings.IndexByte(offset, ':'); i >= 0 {
		hh, mm = offset[1:i], offset[i+1:]
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours > 14 {
		return nil, fmt.Errorf("parsing UTC offset %q: bad hours", offset)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes > 59 {
		return nil, fmt.Errorf("parsing UTC offset %q: bad minutes", offset)
	}

	seconds := sign * (hours*3600 + minutes*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hours, minutes)
	return time.FixedZone(name, seconds), nil
}
