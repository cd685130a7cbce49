// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The SQL is restricted to the dialect shared by PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Organizer accounts (created via CLI maintenance command)
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Polls
CREATE TABLE IF NOT EXISTS polls (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    author_id TEXT NOT NULL REFERENCES users(id),
    state TEXT NOT NULL DEFAULT 'prepared' CHECK (state IN ('prepared', 'open', 'closed', 'deleted')),
    type TEXT NOT NULL CHECK (type IN ('simple', 'named', 'weighted', 'secret')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_polls_state ON polls(state);

-- Choices
CREATE TABLE IF NOT EXISTS choices (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    name TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_choices_poll_id ON choices(poll_id);

-- Voters (name '' = anonymous, weight fixed at 1)
CREATE TABLE IF NOT EXISTS voters (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    weight INTEGER NOT NULL CHECK (weight >= 1),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Voting tokens. Keys stay in the table after expiry, so the primary key
-- keeps every key that was ever issued globally unique.
CREATE TABLE IF NOT EXISTS tokens (
    key TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voters(id) ON DELETE CASCADE,
    batch_created_at TIMESTAMP NOT NULL,
    expired BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_tokens_voter_id ON tokens(voter_id);

-- Ballots (immutable). The UNIQUE constraint is the authoritative guard for
-- one ballot per voter per poll: the casting transaction's duplicate check
-- reads under READ COMMITTED on postgres, so two concurrent casts can both
-- pass it, and the second insert must fail here instead.
CREATE TABLE IF NOT EXISTS ballots (
    id TEXT PRIMARY KEY,
    poll_id TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    choice_id TEXT NOT NULL REFERENCES choices(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voters(id),
    is_weighted BOOLEAN NOT NULL DEFAULT FALSE,
    cast_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_ballots_choice_id ON ballots(choice_id);
CREATE INDEX IF NOT EXISTS idx_ballots_voter_id ON ballots(voter_id);
`
