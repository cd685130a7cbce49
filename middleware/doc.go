// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

# Logging

WithLogging wraps a handler with structured request/completion logging:

	mux.HandleFunc("POST /polls", middleware.WithLogging(h.CreatePoll))

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, payload)
	middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "subject is required")
	middleware.CodedError(w, models.CodeDuplicateVote, "already voted in this poll")
	err := middleware.ParseJSONBody(r, &req)

Error responses carry a machine-readable code alongside the HTTP status so
the presentation layer can distinguish, say, a duplicate vote from a poll
type mismatch (both 409).

# CORS

CORS wraps the whole mux and answers preflight requests.

# Client IP

GetClientIP prefers X-Forwarded-For, then X-Real-IP, then RemoteAddr; used
for request logging only — ballotbox stores no addresses.
*/
package middleware
