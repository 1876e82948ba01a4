package fiscal

import (
	"errors"
	"testing"
	"time"
)

func TestMonthly_Validation(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		if _, err := Monthly(2026, month); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("Monthly(2026, %d): want ErrInvalidPeriod, got %v", month, err)
		}
	}
	if _, err := Monthly(2026, 12); err != nil {
		t.Errorf("Monthly(2026, 12): unexpected error %v", err)
	}
}

func TestQuarterly_Validation(t *testing.T) {
	for _, q := range []int{0, 5} {
		if _, err := Quarterly(2026, q); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("Quarterly(2026, %d): want ErrInvalidPeriod, got %v", q, err)
		}
	}
	if _, err := Quarterly(2026, 4); err != nil {
		t.Errorf("Quarterly(2026, 4): unexpected error %v", err)
	}
}

func TestRange_Monthly(t *testing.T) {
	loc := time.FixedZone("UTC+09:00", 9*3600)

	tests := []struct {
		year, month int
		wantStart   time.Time
		wantEnd     time.Time
	}{
		{2026, 2, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), time.Date(2026, 3, 1, 0, 0, 0, 0, loc)},
		{2025, 12, time.Date(2025, 12, 1, 0, 0, 0, 0, loc), time.Date(2026, 1, 1, 0, 0, 0, 0, loc)},
		{2024, 2, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), time.Date(2024, 3, 1, 0, 0, 0, 0, loc)}, // leap February
	}

	for _, tt := range tests {
		p, err := Monthly(tt.year, tt.month)
		if err != nil {
			t.Fatalf("Monthly(%d, %d): %v", tt.year, tt.month, err)
		}
		start, end := p.Range(loc)
		if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
			t.Errorf("%s: got [%s, %s), want [%s, %s)", p, start, end, tt.wantStart, tt.wantEnd)
		}
		if !end.After(start) {
			t.Errorf("%s: end not after start", p)
		}
	}
}

func TestRange_Quarterly(t *testing.T) {
	loc := time.FixedZone("UTC+09:00", 9*3600)

	p, err := Quarterly(2025, 4)
	if err != nil {
		t.Fatal(err)
	}
	start, end := p.Range(loc)
	if want := time.Date(2025, 10, 1, 0, 0, 0, 0, loc); !start.Equal(want) {
		t.Errorf("Q4 2025 start: got %s, want %s", start, want)
	}
	if want := time.Date(2026, 1, 1, 0, 0, 0, 0, loc); !end.Equal(want) {
		t.Errorf("Q4 2025 end: got %s, want %s", end, want)
	}
}

// Twelve consecutive monthly ranges must tile the year exactly: each
// month's end is the next month's start, with no gap or overlap, and
// together they span January 1 to January 1.
func TestRange_MonthsTileYear(t *testing.T) {
	loc := time.FixedZone("UTC-03:30", -(3*3600 + 30*60))

	var prevEnd time.Time
	for month := 1; month <= 12; month++ {
		p, err := Monthly(2026, month)
		if err != nil {
			t.Fatal(err)
		}
		start, end := p.Range(loc)
		if month == 1 {
			if want := time.Date(2026, 1, 1, 0, 0, 0, 0, loc); !start.Equal(want) {
				t.Fatalf("January start: got %s, want %s", start, want)
			}
		} else if !start.Equal(prevEnd) {
			t.Errorf("month %d: start %s != previous end %s", month, start, prevEnd)
		}
		prevEnd = end
	}
	if want := time.Date(2027, 1, 1, 0, 0, 0, 0, loc); !prevEnd.Equal(want) {
		t.Errorf("December end: got %s, want %s", prevEnd, want)
	}
}

// The four quarters must likewise tile onto the same yearly range.
func TestRange_QuartersTileYear(t *testing.T) {
	loc := time.UTC

	var prevEnd time.Time
	for q := 1; q <= 4; q++ {
		p, err := Quarterly(2026, q)
		if err != nil {
			t.Fatal(err)
		}
		start, end := p.Range(loc)
		if q > 1 && !start.Equal(prevEnd) {
			t.Errorf("Q%d: start %s != previous end %s", q, start, prevEnd)
		}
		prevEnd = end
	}
	if want := time.Date(2027, 1, 1, 0, 0, 0, 0, loc); !prevEnd.Equal(want) {
		t.Errorf("Q4 end: got %s, want %s", prevEnd, want)
	}
}

func TestDeadline(t *testing.T) {
	loc := time.FixedZone("UTC+09:00", 9*3600)

	tests := []struct {
		name   string
		period func() (FilingPeriod, error)
		want   time.Time
	}{
		{"monthly mid-year", func() (FilingPeriod, error) { return Monthly(2026, 2) }, time.Date(2026, 3, 15, 0, 0, 0, 0, loc)},
		{"monthly December rolls year", func() (FilingPeriod, error) { return Monthly(2025, 12) }, time.Date(2026, 1, 15, 0, 0, 0, 0, loc)},
		{"quarterly Q2", func() (FilingPeriod, error) { return Quarterly(2026, 2) }, time.Date(2026, 7, 15, 0, 0, 0, 0, loc)},
		{"quarterly Q4 rolls year", func() (FilingPeriod, error) { return Quarterly(2025, 4) }, time.Date(2026, 1, 15, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.period()
			if err != nil {
				t.Fatal(err)
			}
			if got := p.Deadline(loc); !got.Equal(tt.want) {
				t.Errorf("deadline: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLabelAndString(t *testing.T) {
	m, _ := Monthly(2026, 2)
	if got := m.Label(); got != "February 2026" {
		t.Errorf("Label: got %q", got)
	}
	if got := m.String(); got != "2026-02" {
		t.Errorf("String: got %q", got)
	}

	q, _ := Quarterly(2025, 4)
	if got := q.Label(); got != "Q4 2025" {
		t.Errorf("Label: got %q", got)
	}
	if got := q.String(); got != "2025-Q4" {
		t.Errorf("String: got %q", got)
	}
}

func TestZone(t *testing.T) {
	tests := []struct {
		offset      string
		wantSeconds int
		wantErr     bool
	}{
		{"+09:00", 9 * 3600, false},
		{"-03:30", -(3*3600 + 30*60), false},
		{"+09", 9 * 3600, false},
		{"", 0, false},
		{"09:00", 0, true},
		{"+25:00", 0, true},
	}

	for _, tt := range tests {
		loc, err := Zone(tt.offset)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Zone(%q): want error", tt.offset)
			}
			continue
		}
		if err != nil {
			t.Errorf("Zone(%q): %v", tt.offset, err)
			continue
		}
		_, gotSeconds := time.Now().In(loc).Zone()
		if gotSeconds != tt.wantSeconds {
			t.Errorf("Zone(%q): got offset %d, want %d", tt.offset, gotSeconds, tt.wantSeconds)
		}
	}
}
