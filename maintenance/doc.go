// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package maintenance implements administrative commands that never go over
// HTTP.
//
// # User Creation
//
// Organizer accounts are created from the server binary:
//
//	BALLOTBOX_PASSWORD=... ballotbox -d "..." -create-user alice
//
// main reads the password from the environment (or prompts on stdin) and calls:
//
//	err := maintenance.CreateUser(db, username, password)
//
// Usernames are lowercased and must match [a-z0-9]+. Passwords may contain
// letters, digits and the characters */:_-!?+ and are stored as bcrypt hashes.
// Duplicate usernames return ErrUserExists.
package maintenance
