package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"jobboard/internal/common"
)

// Collector keeps process-local counters and renders them in the Prometheus text format.
type Collector struct {
	requests        atomic.Int64
	inFlight        atomic.Int64
	durationMicros  atomic.Int64
	recomputeRuns   atomic.Int64
	recomputeErrors atomic.Int64
	employersOK     atomic.Int64
	employersFailed atomic.Int64
	lastRecompute   atomic.Int64

	mu       sync.Mutex
	errors   map[common.Code]int64
	statuses map[int]int64
}

func NewCollector() *Collector {
	return &Collector{errors: make(map[common.Code]int64), statuses: make(map[int]int64)}
}

func (c *Collector) RequestStarted() {
	c.inFlight.Add(1)
}

func (c *Collector) RequestFinished(status int, elapsed time.Duration) {
	c.inFlight.Add(-1)
	c.requests.Add(1)
	c.durationMicros.Add(elapsed.Microseconds())
	c.mu.Lock()
	c.statuses[status]++
	c.mu.Unlock()
}

func (c *Collector) IncError(code common.Code) {
	c.mu.Lock()
	c.errors[code]++
	c.mu.Unlock()
}

// RecordRecompute stores the outcome of one employer metric batch. runErr is the
// batch-level error; per-employer failures are counted through failed.
func (c *Collector) RecordRecompute(processed, failed int, runErr error, finishedAt time.Time) {
	c.recomputeRuns.Add(1)
	if runErr != nil {
		c.recomputeErrors.Add(1)
	}
	c.employersOK.Add(int64(processed))
	c.employersFailed.Add(int64(failed))
	c.lastRecompute.Store(finishedAt.Unix())
}

func (c *Collector) WritePrometheus(w io.Writer) error {
	c.mu.Lock()
	codes := make([]string, 0, len(c.errors))
	for code := range c.errors {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	statuses := make([]int, 0, len(c.statuses))
	for status := range c.statuses {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	errorCounts := make(map[string]int64, len(codes))
	for code, n := range c.errors {
		errorCounts[string(code)] = n
	}
	statusCounts := make(map[int]int64, len(statuses))
	for status, n := range c.statuses {
		statusCounts[status] = n
	}
	c.mu.Unlock()

	lines := []string{
		"# TYPE http_requests_total counter",
		fmt.Sprintf("http_requests_total %d", c.requests.Load()),
		"# TYPE http_requests_in_flight gauge",
		fmt.Sprintf("http_requests_in_flight %d", c.inFlight.Load()),
		"# TYPE http_request_duration_seconds_sum counter",
		fmt.Sprintf("http_request_duration_seconds_sum %.6f", float64(c.durationMicros.Load())/1e6),
		"# TYPE http_responses_total counter",
	}
	for _, status := range statuses {
		lines = append(lines, fmt.Sprintf("http_responses_total{status=\"%d\"} %d", status, statusCounts[status]))
	}
	lines = append(lines, "# TYPE http_errors_total counter")
	for _, code := range codes {
		lines = append(lines, fmt.Sprintf("http_errors_total{code=%q} %d", code, errorCounts[code]))
	}
	lines = append(lines,
		"# TYPE employer_metrics_recompute_runs_total counter",
		fmt.Sprintf("employer_metrics_recompute_runs_total %d", c.recomputeRuns.Load()),
		"# TYPE employer_metrics_recompute_errors_total counter",
		fmt.Sprintf("employer_metrics_recompute_errors_total %d", c.recomputeErrors.Load()),
		"# TYPE employer_metrics_recomputed_total counter",
		fmt.Sprintf("employer_metrics_recomputed_total{result=\"ok\"} %d", c.employersOK.Load()),
		fmt.Sprintf("employer_metrics_recomputed_total{result=\"failed\"} %d", c.employersFailed.Load()),
		"# TYPE employer_metrics_last_recompute_timestamp_seconds gauge",
		fmt.Sprintf("employer_metrics_last_recompute_timestamp_seconds %d", c.lastRecompute.Load()),
	)
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
