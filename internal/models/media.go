// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "strconv"

// MediaType classifies a catalog item.
type MediaType string

const (
	MediaTypeMovie       MediaType = "MOVIE"
	MediaTypeSeries      MediaType = "SERIES"
	MediaTypeDocumentary MediaType = "DOCUMENTARY"
	MediaTypeAnime       MediaType = "ANIME"
)

// UnknownEra labels media without a release year.
const UnknownEra = "unknown"

// Media is a catalog item that can be recommended.
type Media struct {
	// ID is the catalog identifier.
	ID int64 `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Type is the catalog classification.
	Type MediaType `json:"type"`

	// Genres are the genre labels attached to the item.
	Genres []string `json:"genres"`

	// Platforms are the streaming platforms carrying the item.
	Platforms []string `json:"platforms"`

	// ReleaseYear is the original release year, 0 when unknown.
	ReleaseYear int `json:"release_year"`

	// AverageRating is the community rating on a 0-10 scale.
	AverageRating float64 `json:"average_rating"`

	// PopularityScore is a catalog-provided popularity signal (higher is more popular).
	PopularityScore float64 `json:"popularity_score"`
}

// Era returns the release decade label for the item, e.g. "1990s".
func (m *Media) Era() string {
	return DecadeLabel(m.ReleaseYear)
}

// HasGenre reports whether the item carries the given genre label.
func (m *Media) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// SharesGenre reports whether the two items have at least one genre in common.
func (m *Media) SharesGenre(other *Media) bool {
	for _, g := range other.Genres {
		if m.HasGenre(g) {
			return true
		}
	}
	return false
}

// DecadeLabel converts a year to its decade label ("1990s"). Non-positive
// years map to UnknownEra.
func DecadeLabel(year int) string {
	if year <= 0 {
		return UnknownEra
	}
	return strconv.Itoa(year/10*10) + "s"
}
