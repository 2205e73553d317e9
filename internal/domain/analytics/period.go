package analytics

import (
	"strings"
	"time"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

const (
	weekDays     = 7
	monthDays    = 30
	yearMonths   = 12
	DefaultDays  = 30
	MaxTrendDays = 365
)

// ParsePeriod falls back to month for empty or unknown input.
func ParsePeriod(value string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(value))) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodYear:
		return PeriodYear
	default:
		return PeriodMonth
	}
}

// Window is a half-open range [Start, End) split into Buckets slots of Granularity.
type Window struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	Buckets     int
}

// Window returns the dense bucket window for the period ending in the bucket that contains now.
func (p Period) Window(now time.Time) Window {
	switch p {
	case PeriodWeek:
		return DailyWindow(now, weekDays)
	case PeriodYear:
		return MonthlyWindow(now, yearMonths)
	default:
		return DailyWindow(now, monthDays)
	}
}

// DailyWindow covers days calendar days, today included.
func DailyWindow(now time.Time, days int) Window {
	if days <= 0 {
		days = 1
	}
	today := Truncate(now, GranularityDay)
	return Window{
		Start:       today.AddDate(0, 0, -(days - 1)),
		End:         today.AddDate(0, 0, 1),
		Granularity: GranularityDay,
		Buckets:     days,
	}
}

// MonthlyWindow covers months calendar months, the current one included.
func MonthlyWindow(now time.Time, months int) Window {
	if months <= 0 {
		months = 1
	}
	current := Truncate(now, GranularityMonth)
	return Window{
		Start:       current.AddDate(0, -(months - 1), 0),
		End:         current.AddDate(0, 1, 0),
		Granularity: GranularityMonth,
		Buckets:     months,
	}
}

func Truncate(t time.Time, granularity Granularity) time.Time {
	t = t.UTC()
	if granularity == GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (w Window) step(t time.Time, n int) time.Time {
	if w.Granularity == GranularityMonth {
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// BucketStarts lists the start of every bucket in order.
func (w Window) BucketStarts() []time.Time {
	starts := make([]time.Time, 0, w.Buckets)
	for i := 0; i < w.Buckets; i++ {
		starts = append(starts, w.step(w.Start, i))
	}
	return starts
}

func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) label(t time.Time) string {
	if w.Granularity == GranularityMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

// Densify expands sparse bucket counts into one point per bucket, zero-filled.
// Counts outside the window are dropped.
func (w Window) Densify(counts []BucketCount) []Point {
	byStart := make(map[int64]int64, len(counts))
	for _, c := range counts {
		byStart[Truncate(c.Start, w.Granularity).Unix()] += c.Count
	}
	points := make([]Point, 0, w.Buckets)
	for _, start := range w.BucketStarts() {
		points = append(points, Point{Date: w.label(start), Count: byStart[start.Unix()]})
	}
	return points
}

// Zero returns a dense all-zero series for the window.
func (w Window) Zero() []Point {
	return w.Densify(nil)
}
