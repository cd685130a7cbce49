// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package maintenance

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/auth"
)

var (
	ErrUsernameRequired = errors.New("username can't be empty")
	ErrUsernameCharset  = errors.New("username can only contain lowercase ascii letters and digits")
	ErrPasswordRequired = errors.New("password can't be empty")
	ErrPasswordCharset  = errors.New("password can only contain letters, digits and */:_-!?+")
	ErrUserExists       = errors.New("user already exists")
)

// passwordSpecials are the punctuation characters allowed in passwords.
const passwordSpecials = "*/:_-!?+"

// CreateUser creates an organizer account. Usernames are lowercased and
// restricted to ascii letters and digits; duplicates are rejected.
func CreateUser(db *sql.DB, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	if username == "" {
		return ErrUsernameRequired
	}
	for _, c := range username {
		if !isLowerAlnum(c) {
			return ErrUsernameCharset
		}
	}

	if password == "" {
		return ErrPasswordRequired
	}
	for _, c := range password {
		if !isPasswordChar(c) {
			return ErrPasswordCharset
		}
	}

	var exists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), username, hash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func isLowerAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isPasswordChar(c rune) bool {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	return strings.ContainsRune(passwordSpecials, c)
}
