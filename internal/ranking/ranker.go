package ranking

import (
	"sort"

	"telemarketing/internal/model"
)

// DefaultTopN is used when callers pass a non-positive limit.
const DefaultTopN = 10

// FeatureScore is a feature's batch-wide importance: the mean of |impact|
// over every driver entry carrying that feature.
type FeatureScore struct {
	Feature string
	Score   float64
	Count   int
}

// Importance aggregates drivers across the whole batch and returns every
// feature ordered by descending score. Ties keep first-seen order, walking
// customers in batch order and drivers in list order.
func Importance(batch []model.CustomerRecord) []FeatureScore {
	var (
		order []string
		sums  = make(map[string]float64)
		count = make(map[string]int)
	)

	for _, c := range batch {
		for _, d := range c.Drivers {
			if !d.Usable() {
				continue
			}
			if _, seen := count[d.Feature]; !seen {
				order = append(order, d.Feature)
			}
			sums[d.Feature] += d.Magnitude()
			count[d.Feature]++
		}
	}

	scores := make([]FeatureScore, 0, len(order))
	for _, f := range order {
		scores = append(scores, FeatureScore{
			Feature: f,
			Score:   sums[f] / float64(count[f]),
			Count:   count[f],
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Rank returns the topN most influential feature identifiers for the batch.
// An empty batch yields an empty list; a limit above the number of distinct
// features returns all of them.
func Rank(batch []model.CustomerRecord, topN int) []string {
	if topN < 1 {
		topN = DefaultTopN
	}

	scores := Importance(batch)
	if len(scores) > topN {
		scores = scores[:topN]
	}

	ranked := make([]string, len(scores))
	for i, s := range scores {
		ranked[i] = s.Feature
	}
	return ranked
}
