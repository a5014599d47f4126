package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
)

// authorRepeatShare is the fraction of the result set one author may occupy
// before the repeat penalty kicks in. A heuristic knob, not a fairness bound.
const authorRepeatShare = 0.3

// Diversify applies a single-pass multiplicative penalty to candidates that
// over-represent an already-seen author or topic, then re-sorts by score.
// The input must already be sorted score-descending; factor 0 is a no-op.
// Order sensitivity is intentional: one O(N) pass plus an O(N log N) re-sort
// approximates rather than guarantees global diversity.
func Diversify(items []*domain.ScoredPost, factor float64) []*domain.ScoredPost {
	if factor <= 0 || len(items) < 2 {
		return items
	}
	if factor > 1 {
		factor = 1
	}

	repeatCap := int(authorRepeatShare * float64(len(items)))
	if repeatCap < 1 {
		repeatCap = 1
	}

	authorSeen := make(map[uuid.UUID]int)
	topicSeen := make(map[string]int)

	for _, item := range items {
		topics := item.Post.TopicList()

		if authorSeen[item.Post.AuthorID] >= repeatCap {
			item.Score *= 1 - factor
		}
		if len(topics) > 0 {
			overlap := 0
			for _, t := range topics {
				if topicSeen[t] > 0 {
					overlap++
				}
			}
			if overlap > 0 {
				item.Score *= 1 - factor*float64(overlap)/float64(len(topics))
			}
		}

		authorSeen[item.Post.AuthorID]++
		for _, t := range topics {
			topicSeen[t]++
		}
	}

	sortByScoreDesc(items)
	return items
}

func sortByScoreDesc(items []*domain.ScoredPost) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}
