// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package reranking

import (
	"sort"

	"github.com/tomtom215/reelmatch/internal/recommend/algorithms"
)

// Merge concatenates candidate lists and removes duplicate media. The first
// occurrence keeps its position; the copy with the highest relevance supplies
// the score, type and reason.
func Merge(lists ...[]algorithms.Candidate) []algorithms.Candidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	out := make([]algorithms.Candidate, 0, total)
	index := make(map[int64]int, total)
	for _, l := range lists {
		for i := range l {
			c := l[i]
			if pos, ok := index[c.Media.ID]; ok {
				if c.Relevance > out[pos].Relevance {
					out[pos] = c
				}
				continue
			}
			index[c.Media.ID] = len(out)
			out = append(out, c)
		}
	}
	return out
}

// Diversify caps how many candidates may share a genre, then sorts by
// relevance descending and truncates to limit.
//
// Candidates are visited in their current order. A candidate is skipped when
// any of its genres has already reached maxPerGenre; otherwise it is kept and
// every one of its genres is counted. Candidates without genres are always
// kept. A non-positive maxPerGenre disables the cap and a non-positive limit
// disables truncation.
func Diversify(candidates []algorithms.Candidate, maxPerGenre, limit int) []algorithms.Candidate {
	kept := make([]algorithms.Candidate, 0, len(candidates))
	counts := make(map[string]int)

	for i := range candidates {
		c := candidates[i]
		if maxPerGenre > 0 && saturated(counts, c.Media.Genres, maxPerGenre) {
			continue
		}
		for _, g := range c.Media.Genres {
			counts[g]++
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Relevance > kept[j].Relevance
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func saturated(counts map[string]int, genres []string, maxPerGenre int) bool {
	for _, g := range genres {
		if counts[g] >= maxPerGenre {
			return true
		}
	}
	return false
}

// Tier is one strategy's ranked output together with the number of slots it
// may claim. A non-positive Quota lets the tier claim every slot still open.
type Tier struct {
	Candidates []algorithms.Candidate
	Quota      int
}

// Blend fills up to limit slots tier by tier. Each tier contributes its
// candidates in order until its quota or the open slots run out, so a later
// tier only takes what the earlier ones left. The genre cap applies across
// all tiers.
//
// A media item offered by several tiers is kept once, by the first tier that
// selects it, and carries the highest relevance any tier gave it. The result
// is sorted by relevance descending. A non-positive limit yields nothing.
func Blend(tiers []Tier, maxPerGenre, limit int) []algorithms.Candidate {
	best := make(map[int64]float64)
	for _, t := range tiers {
		for i := range t.Candidates {
			c := &t.Candidates[i]
			if r, ok := best[c.Media.ID]; !ok || c.Relevance > r {
				best[c.Media.ID] = c.Relevance
			}
		}
	}

	out := make([]algorithms.Candidate, 0, limit)
	taken := make(map[int64]struct{}, limit)
	counts := make(map[string]int)

	for _, t := range tiers {
		claimed := 0
		for i := range t.Candidates {
			if len(out) >= limit || (t.Quota > 0 && claimed >= t.Quota) {
				break
			}
			c := t.Candidates[i]
			if _, dup := taken[c.Media.ID]; dup {
				continue
			}
			if maxPerGenre > 0 && saturated(counts, c.Media.Genres, maxPerGenre) {
				continue
			}
			for _, g := range c.Media.Genres {
				counts[g]++
			}
			c.Relevance = best[c.Media.ID]
			taken[c.Media.ID] = struct{}{}
			out = append(out, c)
			claimed++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}
