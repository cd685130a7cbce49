// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/models"
)

var (
	ErrNoCredentials      = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// TokenKeyLength is the length of a voting token key.
const TokenKeyLength = 6

// tokenAlphabet is the 36-symbol key alphabet: uppercase letters and digits.
// 36^6 ≈ 2.2 billion combinations.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateTokenKey creates a random 6-character voting token key from the
// uppercase+digit alphabet using a cryptographically secure source.
func GenerateTokenKey() (string, error) {
	key := make([]byte, TokenKeyLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token key: %w", err)
		}
		key[i] = tokenAlphabet[n.Int64()]
	}
	return string(key), nil
}

// HashPassword hashes an organizer password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash against a candidate password.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Authenticate resolves the acting organizer from HTTP Basic credentials.
// The user is returned explicitly; nothing is stashed in request context.
func Authenticate(db *sql.DB, r *http.Request) (*models.User, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrNoCredentials
	}
	username = strings.ToLower(strings.TrimSpace(username))

	var user models.User
	err := db.QueryRow(`
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return &user, nil
}
