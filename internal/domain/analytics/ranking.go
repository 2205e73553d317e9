package analytics

import "sort"

// RankPopularJobs orders by view count desc, application count desc, job id asc
// and keeps at most limit entries.
func RankPopularJobs(items []PopularJob, limit int) []PopularJob {
	ranked := make([]PopularJob, 0, len(items))
	ranked = append(ranked, items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if a.ApplicationCount != b.ApplicationCount {
			return a.ApplicationCount > b.ApplicationCount
		}
		return a.JobID < b.JobID
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
