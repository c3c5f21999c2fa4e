package services

import (
	"math"
	"math/rand"
	"time"

	"github.com/glimpse-social/glimpse-backend/internal/types"
)

// discoveryDecayHours is the weight half-life for unranked discovery pools.
// Deliberately faster than the fusion recency decay: discovery surfaces lean
// harder on freshness.
const discoveryDecayHours = 24.0

type WeightedMoment struct {
	Moment *types.Moment
	Weight float64
}

// RecencyWeight is the default discovery weight for a moment: exponential
// decay of age, always positive.
func RecencyWeight(createdAt time.Time, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Exp(-ageHours / discoveryDecayHours)
}

// WeightedShuffle returns a full permutation of items drawn without
// replacement, each draw proportional to remaining weight (roulette wheel).
// Every item appears exactly once; higher weights tend to land earlier; the
// order intentionally differs between calls. Callers paginate by slicing one
// generated order, never by re-sampling per page.
//
// O(n^2) over the pool; fine for the feed-sized pools this serves. A
// Fenwick-tree sampler is the drop-in upgrade if pools grow past a few
// thousand.
func WeightedShuffle(items []WeightedMoment) []*types.Moment {
	return weightedShuffleWithRand(items, rand.Float64)
}

func weightedShuffleWithRand(items []WeightedMoment, randFloat func() float64) []*types.Moment {
	n := len(items)
	out := make([]*types.Moment, 0, n)
	if n == 0 {
		return out
	}

	remaining := make([]WeightedMoment, n)
	copy(remaining, items)

	total := 0.0
	for i := range remaining {
		if remaining[i].Weight <= 0 || math.IsNaN(remaining[i].Weight) || math.IsInf(remaining[i].Weight, 0) {
			// Zero or broken weights still must appear in the permutation;
			// give them a tiny positive chance instead of dropping them.
			remaining[i].Weight = 1e-9
		}
		total += remaining[i].Weight
	}

	for len(remaining) > 0 {
		target := randFloat() * total
		idx := len(remaining) - 1
		acc := 0.0
		for i := range remaining {
			acc += remaining[i].Weight
			if target < acc {
				idx = i
				break
			}
		}
		picked := remaining[idx]
		out = append(out, picked.Moment)
		total -= picked.Weight
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}

// PageSlice returns the [offset, offset+limit) window of an ordering,
// clamped to its bounds.
func PageSlice(moments []*types.Moment, offset, limit int) []*types.Moment {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(moments) {
		return []*types.Moment{}
	}
	end := len(moments)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return moments[offset:end]
}
