// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbox API server.

Ballotbox is a small internal voting service: organizers create polls with
multiple choices, register voters with weighted voting power, issue one-time
voting tokens per voter, and tally ballots per poll type (simple, named,
weighted, secret).

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3330 -d "postgres://..."

SQLite works for small single-host deployments:

	go run main.go -t sqlite -d "file:ballotbox.db"

# Creating Organizer Accounts

Organizer accounts are created from the command line, never over HTTP:

	BALLOTBOX_PASSWORD=... go run main.go -d "..." -create-user alice

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string

Optional settings:

  - PORT (-p): Server port (default: 3330)
  - DATABASE_TYPE (-t): "postgres" or "sqlite" (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, results, voters, tokens)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types, poll state machine table
  - auth: Organizer credentials and voting-token key generation
  - db: Schema creation
  - cliparse: Configuration parsing
  - maintenance: CLI user creation

See package documentation for each component.
*/
package main
