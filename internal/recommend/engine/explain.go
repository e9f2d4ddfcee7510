// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package engine

import (
	"fmt"
	"strconv"

	"github.com/tomtom215/reelmatch/internal/models"
)

type template func(subject string) string

var templates = map[models.ReasonCode]template{
	models.ReasonGenreMatch: func(genre string) string {
		if genre == "" {
			return "Matches your favorite genres"
		}
		return fmt.Sprintf("Because you enjoy %s", genre)
	},
	models.ReasonSimilarContent: func(title string) string {
		if title == "" {
			return "Similar to something you watched"
		}
		return fmt.Sprintf("Because you watched %s", title)
	},
	models.ReasonSimilarUsers: func(peers string) string {
		switch n, _ := strconv.Atoi(peers); {
		case n == 1:
			return "Rated highly by a user with similar taste"
		case n > 1:
			return fmt.Sprintf("Rated highly by %d users with similar taste", n)
		default:
			return "Popular with users who share your taste"
		}
	},
	models.ReasonTrending: func(string) string {
		return "Trending now"
	},
	models.ReasonCompatibleMembers: func(members string) string {
		switch n, _ := strconv.Atoi(members); {
		case n == 1:
			return "A member of this group shares your taste"
		case n > 1:
			return fmt.Sprintf("%d members of this group share your taste", n)
		default:
			return "Members of this group share your taste"
		}
	},
}

// Explain renders the explanation for a reason code. Unknown codes get a
// generic explanation.
func Explain(reason models.ReasonCode, subject string) string {
	if t, ok := templates[reason]; ok {
		return t(subject)
	}
	return "Recommended for you"
}
