// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: subject, choices, type
  - TransitionPollRequest: state
  - CreateVoterRequest: name, students or weight
  - UpdateVoterRequest: name, weight
  - IssueTokensRequest: count
  - CastBallotRequest: token, choice_id

# Response Types

Types for JSON responses:

  - TransitionPollResponse: poll_id, state
  - CastBallotResponse: ballot_id, message
  - IssueTokensResponse: voter_id, created_at, keys
  - TokenBatchResponse: voter, created_at, created_ago, tokens
  - ErrorResponse: error, code, message

# Domain Types

Internal data structures:

  - User: organizer account (password hash never serialized)
  - Poll: subject, author, lifecycle state and type
  - Choice: selectable option
  - Voter: voting entity with weight; Anonymous() when name is empty
  - Token: single-use credential with batch timestamp and expired flag
  - Ballot: immutable vote record
  - ChoiceCount / ChoiceVoters / ChoiceWeight: tally rows per poll type

# State Machine

The poll lifecycle table lives here:

	prepared → open | deleted
	open     → closed | deleted
	closed   → deleted
	deleted  → (terminal)

	if !models.CanTransition(poll.State, requested) { ... }

# Constants

States:

	StatePrepared = "prepared"
	StateOpen     = "open"
	StateClosed   = "closed"
	StateDeleted  = "deleted"

Poll types:

	TypeSimple   = "simple"
	TypeNamed    = "named"
	TypeWeighted = "weighted"
	TypeSecret   = "secret"

Error codes (codes.go) map to HTTP statuses via StatusForCode.
*/
package models
