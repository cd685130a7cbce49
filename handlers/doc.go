// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotbox API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - PollHandler: Poll lifecycle (create, list, get, transition)
  - VotingHandler: Ballot casting with one-time tokens
  - ResultsHandler: On-demand tallying per poll type
  - VoterHandler: Voter registry with weights
  - TokenHandler: Token batch issuance and printable batches

Handlers are created via constructor functions that accept *sql.DB and Config:

	pollHandler := handlers.NewPollHandler(db, cfg)

Organizer operations resolve the acting user explicitly via
auth.Authenticate(db, r); nothing is carried in request context.

# Poll Lifecycle

Polls progress through the state machine in models:

	prepared → open | deleted
	open     → closed | deleted
	closed   → deleted

	POST /polls            → CreatePoll
	POST /polls/{id}/state → TransitionPoll

Only an open poll accepts ballots.

# Voting Flow

Voters receive printed one-time token keys out of band:

	POST /voters/{id}/tokens → IssueTokens (expires the previous batch)
	POST /polls/{id}/ballots → CastBallot (burns the token)

Casting validates token, poll type compatibility, prior participation and
choice membership, then records the ballot and expires the token in one
transaction. Failed checks accumulate and the last one wins, mirroring the
behavior the organization has relied on since the first version of the tool.

# Tallying

	GET /polls/{id}/results → GetTally

Simple and secret polls count ballots, named polls list voter names,
weighted polls sum voter weights. Every choice appears even with zero
ballots.

# Weight Curve

The student-population weight curve is implemented in weight.go:

	weight := handlers.WeightForStudents(students)
*/
package handlers
