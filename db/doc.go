// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL sticks to the dialect both PostgreSQL and SQLite accept, so the same
schema backs production (lib/pq) and the test suite (modernc.org/sqlite).

# Tables

The schema includes:

  - users: Organizer accounts (CLI-created, bcrypt password hash)
  - polls: Poll subject, author, lifecycle state and type
  - choices: Selectable options per poll
  - voters: Voting entities with weight (anonymous = weight 1)
  - tokens: Single-use voting credentials, issued in batches
  - ballots: One immutable vote record per voter per poll

# Relationships

	users  1──* polls
	polls  1──* choices
	voters 1──* tokens
	polls  1──* ballots
	choices 1──* ballots
	voters  1──* ballots

Choices and tokens cascade with their poll/voter. Ballots reference both
their choice and their poll directly; UNIQUE(poll_id, voter_id) is the
database-level guard for one ballot per voter per poll under concurrent
casts.

# Indexes

Performance indexes on:

  - users.username (unique)
  - polls.state
  - choices.poll_id
  - tokens.voter_id
  - ballots.choice_id
  - ballots.voter_id
  - ballots poll_id+voter_id (unique)

Token keys are the primary key of tokens and remain after expiry, which is
what makes issued keys globally unique for the lifetime of the system.
*/
package db
