// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "net/http"

// Machine-readable error codes carried in ErrorResponse.Code so the
// presentation layer can distinguish failures that share an HTTP status.
const (
	CodeValidation        = "validation_error"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeUnauthorized      = "unauthorized"
	CodeInvalidTransition = "invalid_transition"
	CodeInvalidToken      = "invalid_token"
	CodeTypeMismatch      = "type_mismatch"
	CodeDuplicateVote     = "duplicate_vote"
	CodeInvalidChoice     = "invalid_choice"
	CodeGenerationFailure = "generation_failure"
)

// StatusForCode maps an error code to its HTTP status.
func StatusForCode(code string) int {
	switch code {
	case CodeValidation, CodeInvalidChoice:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized, CodeInvalidToken:
		return http.StatusUnauthorized
	case CodeInvalidTransition, CodeTypeMismatch, CodeDuplicateVote:
		return http.StatusConflict
	case CodeGenerationFailure:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
