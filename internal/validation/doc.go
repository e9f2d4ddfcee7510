// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package validation wraps go-playground/validator v10 in a process-wide
// singleton used by the HTTP request structs.
//
// Field names in messages come from json tags. One custom tag is
// registered:
//
//	feedback_target  CONTENT or GROUP
//
// Example:
//
//	type FeedbackRequest struct {
//	    Rating  int    `json:"rating" validate:"min=1,max=5"`
//	    Comment string `json:"comment" validate:"max=2000"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error(): "rating must be at most 5"
//	    // errors.Is(verr, recommend.ErrInvalidInput) == true
//	}
package validation
