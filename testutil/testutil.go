// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	dbschema "github.com/danielhkuo/ballotbox/db"
)

// Default credentials for the organizer account every test database starts with
const (
	TestUsername = "organizer"
	TestPassword = "test-password"
)

// SetupTestDB creates a fresh in-memory database with the full schema and one
// organizer account (TestUsername/TestPassword). The connection pool is
// limited to a single connection, which sqlite requires for writes.
func SetupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := dbschema.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	userID := CreateTestUser(t, db, TestUsername, TestPassword)
	return db, userID
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3330,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
	}
}

// CreateTestUser inserts an organizer account and returns its ID
func CreateTestUser(t *testing.T, db *sql.DB, username, password string) string {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	userID := uuid.NewString()
	_, err = db.Exec(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, username, hash, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestPoll creates a poll owned by authorID and returns its ID
// state should be "prepared", "open", "closed" or "deleted"
func CreateTestPoll(t *testing.T, db *sql.DB, authorID, state, pollType string) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO polls (id, subject, author_id, state, type, created_at)
		VALUES ($1, 'Which option should the committee adopt?', $2, $3, $4, $5)
	`, pollID, authorID, state, pollType, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestChoice adds a choice to a poll and returns the choice ID
func AddTestChoice(t *testing.T, db *sql.DB, pollID, name string) string {
	t.Helper()

	choiceID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO choices (id, poll_id, name)
		VALUES ($1, $2, $3)
	`, choiceID, pollID, name)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return choiceID
}

// CreateTestVoter creates a voter and returns its ID. An empty name makes the
// voter anonymous; anonymous voters must use weight 1.
func CreateTestVoter(t *testing.T, db *sql.DB, name string, weight int) string {
	t.Helper()

	voterID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO voters (id, name, weight, created_at)
		VALUES ($1, $2, $3, $4)
	`, voterID, name, weight, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// IssueTestToken creates a single token for a voter and returns the key
func IssueTestToken(t *testing.T, db *sql.DB, voterID string, expired bool) string {
	t.Helper()

	key, err := auth.GenerateTokenKey()
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO tokens (key, voter_id, batch_created_at, expired)
		VALUES ($1, $2, $3, $4)
	`, key, voterID, time.Now(), expired)
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	return key
}

// CastTestBallot records a ballot directly and returns its ID. The poll is
// resolved from the choice.
func CastTestBallot(t *testing.T, db *sql.DB, choiceID, voterID string, isWeighted bool) string {
	t.Helper()

	var pollID string
	if err := db.QueryRow("SELECT poll_id FROM choices WHERE id = $1", choiceID).Scan(&pollID); err != nil {
		t.Fatalf("Failed to resolve poll for choice: %v", err)
	}

	ballotID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO ballots (id, poll_id, choice_id, voter_id, is_weighted, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ballotID, pollID, choiceID, voterID, isWeighted, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return ballotID
}

// MakeRequest creates an HTTP test request. When asOrganizer is true the
// default organizer credentials are attached as HTTP Basic auth.
func MakeRequest(method, path string, body interface{}, asOrganizer bool) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if asOrganizer {
		req.SetBasicAuth(TestUsername, TestPassword)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
