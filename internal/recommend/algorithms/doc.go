// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package algorithms implements the candidate generation strategies used by
// the recommendation engine.
//
// Each strategy implements Strategy and turns an Input (the user, their profile
// and the media ids to exclude) into scored Candidates:
//
//   - Personal: catalog items in the user's strongest genres, scored by
//     CalculateContentRelevanceScore.
//   - ContentBased: items sharing a genre or the media type with a seed item.
//   - Collaborative: items rated highly by the user's most compatible peers,
//     weighted by compatibility.
//   - Trending: items with the most recommendation volume in the trending
//     window, filled from catalog popularity on a cold start.
//
// Strategies never return media in Input.Exclude and never return more than
// Input.Limit candidates. They hold no per-request state and are safe for
// concurrent use.
//
// # Relevance
//
// CalculateContentRelevanceScore blends four alignment terms with normalized
// weights:
//
//	relevance = w_g*genre + w_p*platform + w_e*era + w_r*(1 - |mediaRating - userAvgRating|/10)
//
// where genre is the mean preference over the item's genres, platform the best
// preference over its platforms and era the preference for its release decade.
package algorithms
