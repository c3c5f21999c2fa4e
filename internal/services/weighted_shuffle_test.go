package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/types"
)

func makeMoments(n int) []*types.Moment {
	now := time.Now().UTC()
	out := make([]*types.Moment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &types.Moment{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Caption:   "caption",
			MediaType: types.MomentTypeImage,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestWeightedShuffleIsPermutation(t *testing.T) {
	moments := makeMoments(50)
	items := make([]WeightedMoment, 0, len(moments))
	for i, m := range moments {
		items = append(items, WeightedMoment{Moment: m, Weight: float64(i + 1)})
	}

	for run := 0; run < 20; run++ {
		out := WeightedShuffle(items)
		if len(out) != len(moments) {
			t.Fatalf("run %d: got %d items, want %d", run, len(out), len(moments))
		}
		seen := map[uuid.UUID]bool{}
		for _, m := range out {
			if seen[m.ID] {
				t.Fatalf("run %d: moment %s appeared twice", run, m.ID)
			}
			seen[m.ID] = true
		}
	}
}

func TestWeightedShuffleHandlesDegenerateWeights(t *testing.T) {
	moments := makeMoments(3)
	items := []WeightedMoment{
		{Moment: moments[0], Weight: 0},
		{Moment: moments[1], Weight: -1},
		{Moment: moments[2], Weight: 1},
	}
	out := WeightedShuffle(items)
	if len(out) != 3 {
		t.Fatalf("got %d items, want 3", len(out))
	}
}

func TestWeightedShuffleBiasesTowardHeavyItems(t *testing.T) {
	moments := makeMoments(10)
	items := make([]WeightedMoment, 0, len(moments))
	for i, m := range moments {
		weight := 1.0
		if i == 0 {
			weight = 100.0
		}
		items = append(items, WeightedMoment{Moment: m, Weight: weight})
	}

	const runs = 500
	heavyPositions := 0
	for run := 0; run < runs; run++ {
		out := WeightedShuffle(items)
		for pos, m := range out {
			if m.ID == moments[0].ID {
				heavyPositions += pos
				break
			}
		}
	}
	avg := float64(heavyPositions) / runs
	// Uniform shuffling over 10 items averages position 4.5; a 100x weight
	// should pull the heavy item far toward the front.
	if avg > 2.0 {
		t.Fatalf("heavy item average position %.2f, expected well under 2.0", avg)
	}
}

func TestWeightedShuffleDeterministicDraw(t *testing.T) {
	moments := makeMoments(3)
	items := []WeightedMoment{
		{Moment: moments[0], Weight: 1},
		{Moment: moments[1], Weight: 1},
		{Moment: moments[2], Weight: 1},
	}
	// Always drawing at the start of the wheel picks items in input order.
	out := weightedShuffleWithRand(items, func() float64 { return 0 })
	for i, m := range out {
		if m.ID != moments[i].ID {
			t.Fatalf("position %d: got %s, want %s", i, m.ID, moments[i].ID)
		}
	}
}

func TestPageSlice(t *testing.T) {
	moments := makeMoments(5)

	cases := []struct {
		name   string
		offset int
		limit  int
		want   int
	}{
		{name: "first_page", offset: 0, limit: 2, want: 2},
		{name: "middle_page", offset: 2, limit: 2, want: 2},
		{name: "partial_last_page", offset: 4, limit: 2, want: 1},
		{name: "past_end", offset: 10, limit: 2, want: 0},
		{name: "negative_offset", offset: -1, limit: 3, want: 3},
		{name: "zero_limit_returns_rest", offset: 1, limit: 0, want: 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PageSlice(moments, tc.offset, tc.limit)
			if len(got) != tc.want {
				t.Fatalf("PageSlice(offset=%d, limit=%d) len=%d, want %d", tc.offset, tc.limit, len(got), tc.want)
			}
		})
	}
}

func TestPageSlicesCoverOrderExactlyOnce(t *testing.T) {
	moments := makeMoments(7)
	items := make([]WeightedMoment, 0, len(moments))
	for _, m := range moments {
		items = append(items, WeightedMoment{Moment: m, Weight: RecencyWeight(m.CreatedAt, time.Now().UTC())})
	}
	ordered := WeightedShuffle(items)

	seen := map[uuid.UUID]int{}
	for offset := 0; offset < len(ordered); offset += 3 {
		for _, m := range PageSlice(ordered, offset, 3) {
			seen[m.ID]++
		}
	}
	if len(seen) != len(moments) {
		t.Fatalf("paging covered %d distinct moments, want %d", len(seen), len(moments))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("moment %s served %d times across pages", id, count)
		}
	}
}

func TestRecencyWeightDecreasesWithAge(t *testing.T) {
	now := time.Now().UTC()
	fresh := RecencyWeight(now.Add(-1*time.Hour), now)
	stale := RecencyWeight(now.Add(-48*time.Hour), now)
	if fresh <= stale {
		t.Fatalf("fresh weight %f should exceed stale weight %f", fresh, stale)
	}
	if future := RecencyWeight(now.Add(time.Hour), now); future != 1 {
		t.Fatalf("future timestamps clamp to weight 1, got %f", future)
	}
}
