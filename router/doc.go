// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines all HTTP routes for the ballotbox API.

# Routes

NewRouter wires handlers to paths using Go 1.22+ method routing:

	mux := router.NewRouter(db, cfg)

Poll management (HTTP Basic organizer auth):

	POST /polls            Create a poll with its choices
	POST /polls/{id}/state Request a lifecycle transition

Public:

	GET  /polls               List polls
	GET  /polls/{id}          Poll with choices
	POST /polls/{id}/ballots  Cast a ballot with a one-time token
	GET  /polls/{id}/results  Tally (shape depends on poll type)

Voter registry (organizer auth):

	POST /voters             Create a voter
	GET  /voters             List voters
	PUT  /voters/{id}        Update name/weight
	POST /voters/{id}/tokens Issue a token batch
	GET  /voters/{id}/tokens Printable latest batch

Liveness:

	GET /health
	GET /

All routes are wrapped with request logging middleware.
*/
package router
