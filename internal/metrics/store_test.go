package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensed-ai/expensed/internal/model"
)

func metric(provider string, latencyMs int64, cost float64, success bool) model.RequestMetric {
	return model.RequestMetric{
		ID:        fmt.Sprintf("m-%s-%d", provider, latencyMs),
		Timestamp: time.Now(),
		Provider:  provider,
		TaskType:  model.TaskSimpleExtraction,
		LatencyMs: latencyMs,
		CostUSD:   cost,
		Success:   success,
	}
}

func TestRecent(t *testing.T) {
	s := NewStore()
	for i := 1; i <= 5; i++ {
		s.Append(metric("groq", int64(i), 0, true))
	}

	t.Run("window smaller than log", func(t *testing.T) {
		got := s.Recent(3)
		require.Len(t, got, 3)
		assert.Equal(t, int64(3), got[0].LatencyMs)
		assert.Equal(t, int64(5), got[2].LatencyMs)
	})

	t.Run("window larger than log", func(t *testing.T) {
		assert.Len(t, s.Recent(100), 5)
	})

	t.Run("non-positive n uses the default window", func(t *testing.T) {
		assert.Len(t, s.Recent(0), 5)
		assert.Len(t, s.Recent(-1), 5)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		got := s.Recent(1)
		got[0].LatencyMs = 999
		assert.Equal(t, int64(5), s.Recent(1)[0].LatencyMs)
	})
}

func TestRecent_DefaultWindowCaps(t *testing.T) {
	s := NewStore()
	for i := 0; i < DefaultRecentLimit+10; i++ {
		s.Append(metric("groq", int64(i), 0, true))
	}
	got := s.Recent(0)
	require.Len(t, got, DefaultRecentLimit)
	assert.Equal(t, int64(10), got[0].LatencyMs)
}

func TestAggregate(t *testing.T) {
	s := NewStore()
	s.Append(metric("groq", 100, 0.001, true))
	s.Append(metric("anthropic", 800, 0.01, true))
	s.Append(metric("groq", 200, 0.003, false))
	s.Append(metric("groq", 300, 0.002, true))

	stats := s.Aggregate()
	require.Len(t, stats, 2)

	// Partitions appear in first-seen order.
	groq := stats[0]
	assert.Equal(t, "groq", groq.Provider)
	assert.Equal(t, 3, groq.TotalRequests)
	assert.InDelta(t, 200, groq.AvgLatencyMs, 0.0001)
	assert.InDelta(t, 0.002, groq.AvgCostUSD, 0.0000001)
	assert.InDelta(t, 2.0/3.0, groq.SuccessRate, 0.0001)

	anthropic := stats[1]
	assert.Equal(t, "anthropic", anthropic.Provider)
	assert.Equal(t, 1, anthropic.TotalRequests)
	assert.InDelta(t, 1.0, anthropic.SuccessRate, 0.0001)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, NewStore().Aggregate())
}

func TestNearestRankP95(t *testing.T) {
	tests := []struct {
		name   string
		sorted []int64
		want   int64
	}{
		{"empty", nil, 0},
		{"single element", []int64{42}, 42},
		// floor(5 * 0.95) = 4, the last element.
		{"five elements picks the max", []int64{10, 20, 30, 40, 100}, 100},
		// floor(20 * 0.95) = 19, still the last element.
		{"twenty elements", seq(20), 20},
		// floor(21 * 0.95) = 19, second to last.
		{"twenty-one elements", seq(21), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nearestRankP95(tt.sorted))
		})
	}
}

func seq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestP95_UnsortedInputViaAggregate(t *testing.T) {
	s := NewStore()
	for _, l := range []int64{100, 10, 40, 20, 30} {
		s.Append(metric("groq", l, 0, true))
	}
	stats := s.Aggregate()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(100), stats[0].P95LatencyMs)
}
