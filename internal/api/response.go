// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeAuthentication     = "AUTHENTICATION_ERROR"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// respondJSON writes response as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a 200 envelope around data. start is when handling
// began and feeds query_time_ms; count is set for list payloads.
func respondSuccess(w http.ResponseWriter, data interface{}, start time.Time, count int) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       count,
		},
	})
}

// respondErrorCode writes an error envelope with an explicit code.
func respondErrorCode(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondError maps err onto the status and code table and writes it.
// Server-side failures are logged with the request context and reported
// with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	var details map[string]interface{}
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		details = verr.Details()
	}

	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = "an internal error occurred"
	case status == http.StatusServiceUnavailable:
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Data store unavailable")
		message = "the data store is temporarily unavailable"
	}

	respondErrorCode(w, status, code, message, details)
}

// classify maps an error onto an HTTP status and envelope code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, recommend.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, recommend.ErrForbidden), errors.Is(err, authz.ErrInsufficientPermissions):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, recommend.ErrBatchInProgress):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, auth.ErrNoCredentials),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrExpiredCredentials),
		errors.Is(err, authz.ErrNoSubject):
		return http.StatusUnauthorized, ErrCodeAuthentication
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// WriteAuthError renders auth and authz middleware failures in the API
// envelope. It satisfies auth.ErrorWriter.
func WriteAuthError(w http.ResponseWriter, r *http.Request, status int, err error) {
	switch status {
	case http.StatusUnauthorized:
		respondErrorCode(w, status, ErrCodeAuthentication, err.Error(), nil)
	case http.StatusForbidden:
		respondErrorCode(w, status, ErrCodeForbidden, err.Error(), nil)
	default:
		respondError(w, r, err)
	}
}
