package analytics

import (
	"testing"
	"time"
)

func TestPeriodWindowBucketCounts(t *testing.T) {
	now := time.Date(2026, time.March, 3, 15, 4, 5, 0, time.UTC)
	cases := []struct {
		period      Period
		buckets     int
		granularity Granularity
		start       time.Time
	}{
		{PeriodWeek, 7, GranularityDay, time.Date(2026, time.February, 25, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, 30, GranularityDay, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, 12, GranularityMonth, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		w := tc.period.Window(now)
		if w.Buckets != tc.buckets {
			t.Fatalf("%s: expected %d buckets, got %d", tc.period, tc.buckets, w.Buckets)
		}
		if w.Granularity != tc.granularity {
			t.Fatalf("%s: expected %s granularity, got %s", tc.period, tc.granularity, w.Granularity)
		}
		if !w.Start.Equal(tc.start) {
			t.Fatalf("%s: expected start %s, got %s", tc.period, tc.start, w.Start)
		}
		if got := len(w.Zero()); got != tc.buckets {
			t.Fatalf("%s: expected %d zero points, got %d", tc.period, tc.buckets, got)
		}
		if !w.Contains(now) {
			t.Fatalf("%s: expected window to contain now", tc.period)
		}
	}
}

func TestParsePeriodDefaultsToMonth(t *testing.T) {
	for _, value := range []string{"", "decade", "MONTH"} {
		if got := ParsePeriod(value); got != PeriodMonth {
			t.Fatalf("expected month for %q, got %s", value, got)
		}
	}
	if got := ParsePeriod(" Week "); got != PeriodWeek {
		t.Fatalf("expected week, got %s", got)
	}
	if got := ParsePeriod("year"); got != PeriodYear {
		t.Fatalf("expected year, got %s", got)
	}
}

func TestDensifyZeroFillsAndDropsOutside(t *testing.T) {
	now := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	w := PeriodWeek.Window(now)
	counts := []BucketCount{
		{Start: time.Date(2026, time.March, 3, 8, 30, 0, 0, time.UTC), Count: 2},
		{Start: time.Date(2026, time.February, 25, 0, 0, 0, 0, time.UTC), Count: 1},
		{Start: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), Count: 40},
	}
	points := w.Densify(counts)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	if points[0].Date != "2026-02-25" || points[0].Count != 1 {
		t.Fatalf("unexpected first point %+v", points[0])
	}
	if points[6].Date != "2026-03-03" || points[6].Count != 2 {
		t.Fatalf("unexpected last point %+v", points[6])
	}
	var total int64
	for _, p := range points {
		total += p.Count
	}
	if total != 3 {
		t.Fatalf("expected out-of-window count to be dropped, total %d", total)
	}
}

func TestYearWindowLabelsMonths(t *testing.T) {
	now := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	points := PeriodYear.Window(now).Densify([]BucketCount{{Start: time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC), Count: 4}})
	if points[0].Date != "2025-02" || points[0].Count != 4 {
		t.Fatalf("unexpected first month %+v", points[0])
	}
	if points[11].Date != "2026-01" {
		t.Fatalf("expected last bucket to be current month, got %s", points[11].Date)
	}
}
