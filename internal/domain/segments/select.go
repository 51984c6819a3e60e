package segments

import (
	"sort"
	"time"

	"github.com/clipkit/clipkit/internal/types"
)

// Select keeps the n best-scoring segments that run at least minDur,
// returned in transcript order. Equal scores keep their transcript
// order too, so the same transcript always yields the same clips.
func Select(scored []types.ScoredSegment, n int, minDur time.Duration) []types.SelectedSegment {
	if n <= 0 || len(scored) == 0 {
		return nil
	}

	eligible := make([]types.ScoredSegment, 0, len(scored))
	for _, s := range scored {
		if s.Duration() >= minDur {
			eligible = append(eligible, s)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Score > eligible[j].Score })
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Start < eligible[j].Start })

	out := make([]types.SelectedSegment, 0, len(eligible))
	for _, s := range eligible {
		out = append(out, types.SelectedSegment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out
}
