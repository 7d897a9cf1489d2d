// Package metrics provides the append-only request telemetry log and its
// streaming aggregation.
package metrics

import (
	"math"
	"sort"
	"sync"

	"github.com/expensed-ai/expensed/internal/model"
)

// DefaultRecentLimit is the window size Recent uses when the caller passes a
// non-positive n.
const DefaultRecentLimit = 50

// Store is an append-only log of request outcomes. Rows are never reordered
// or mutated after insertion; reads only window or partition them.
type Store struct {
	metrics []model.RequestMetric
	mu      sync.RWMutex
}

// NewStore creates an empty metrics store.
func NewStore() *Store {
	return &Store{}
}

// Append records one request outcome. O(1), safe for concurrent use.
func (s *Store) Append(metric model.RequestMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, metric)
}

// Recent returns the most recent n entries in insertion order. A
// non-positive n uses DefaultRecentLimit.
func (s *Store) Recent(n int) []model.RequestMetric {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.metrics) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.RequestMetric, len(s.metrics)-start)
	copy(out, s.metrics[start:])
	return out
}

// Len returns the number of recorded rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metrics)
}

// Aggregate partitions all rows by backend and computes per-backend stats.
// Partitions appear in order of each backend's first recorded row. The p95
// is nearest-rank: latencies sorted ascending, indexed at floor(count*0.95)
// and clamped to the last element. Empty partitions cannot occur; a backend
// with no rows simply has no entry.
func (s *Store) Aggregate() []model.ProviderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProvider := make(map[string][]model.RequestMetric)
	var order []string
	for _, m := range s.metrics {
		if _, seen := byProvider[m.Provider]; !seen {
			order = append(order, m.Provider)
		}
		byProvider[m.Provider] = append(byProvider[m.Provider], m)
	}

	stats := make([]model.ProviderStats, 0, len(order))
	for _, name := range order {
		rows := byProvider[name]

		latencies := make([]int64, len(rows))
		var latencySum, successes int64
		var costSum float64
		for i, m := range rows {
			latencies[i] = m.LatencyMs
			latencySum += m.LatencyMs
			costSum += m.CostUSD
			if m.Success {
				successes++
			}
		}
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		stats = append(stats, model.ProviderStats{
			Provider:      name,
			TotalRequests: len(rows),
			AvgLatencyMs:  float64(latencySum) / float64(len(rows)),
			AvgCostUSD:    costSum / float64(len(rows)),
			SuccessRate:   float64(successes) / float64(len(rows)),
			P95LatencyMs:  nearestRankP95(latencies),
		})
	}
	return stats
}

// nearestRankP95 indexes sorted latencies at floor(count*0.95), clamped to
// the last element. Do not substitute an interpolated percentile; the index
// formula is part of the metric's contract.
func nearestRankP95(sorted []int64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * 0.95))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
