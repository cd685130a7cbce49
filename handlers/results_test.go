// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
)

// tallyResponse mirrors the envelope GetTally writes; the results field is
// decoded per poll type
type tallyResponse struct {
	PollID  string          `json:"poll_id"`
	Type    string          `json:"type"`
	Results json.RawMessage `json:"results"`
}

func getTally(t *testing.T, handler *ResultsHandler, pollID string) tallyResponse {
	t.Helper()

	req := httptest.NewRequest("GET", "/polls/"+pollID+"/results", nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetTally(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp tallyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestGetTallySimple(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	pollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeSimple)
	choiceX := addTestChoice(t, db, pollID, "Option X")
	addTestChoice(t, db, pollID, "Option Y")
	addTestChoice(t, db, pollID, "Option Z")

	voterID := createTestVoter(t, db, "School A", 4)
	castTestBallot(t, db, choiceX, voterID, false)

	resp := getTally(t, handler, pollID)
	if resp.Type != models.TypeSimple {
		t.Errorf("Expected type 'simple', got '%s'", resp.Type)
	}

	var results []models.ChoiceCount
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}

	// Every choice appears, including the two nobody voted for
	if len(results) != 3 {
		t.Fatalf("Expected 3 result rows, got %d", len(results))
	}

	counts := map[string]int{}
	for _, row := range results {
		counts[row.Name] = row.Count
	}
	if counts["Option X"] != 1 {
		t.Errorf("Expected 1 ballot for Option X, got %d", counts["Option X"])
	}
	if counts["Option Y"] != 0 || counts["Option Z"] != 0 {
		t.Errorf("Expected 0 ballots for Option Y and Z, got %d and %d", counts["Option Y"], counts["Option Z"])
	}
}

func TestGetTallyNamed(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	pollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeNamed)
	choiceX := addTestChoice(t, db, pollID, "Option X")
	addTestChoice(t, db, pollID, "Option Y")

	voterA := createTestVoter(t, db, "School A", 4)
	voterB := createTestVoter(t, db, "School B", 4)
	castTestBallot(t, db, choiceX, voterA, false)
	castTestBallot(t, db, choiceX, voterB, false)

	resp := getTally(t, handler, pollID)

	var results []models.ChoiceVoters
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 result rows, got %d", len(results))
	}

	voters := map[string][]string{}
	for _, row := range results {
		if row.Voters == nil {
			t.Errorf("Expected empty list for '%s', got null", row.Name)
		}
		voters[row.Name] = row.Voters
	}
	if len(voters["Option X"]) != 2 {
		t.Errorf("Expected 2 voters for Option X, got %v", voters["Option X"])
	}
	if len(voters["Option Y"]) != 0 {
		t.Errorf("Expected no voters for Option Y, got %v", voters["Option Y"])
	}
}

func TestGetTallyWeighted(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	pollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeWeighted)
	choiceX := addTestChoice(t, db, pollID, "Option X")
	addTestChoice(t, db, pollID, "Option Y")

	// Weights 4 and 3 on the same choice sum to 7
	voterA := createTestVoter(t, db, "School A", 4)
	voterB := createTestVoter(t, db, "School B", 3)
	castTestBallot(t, db, choiceX, voterA, true)
	castTestBallot(t, db, choiceX, voterB, true)

	resp := getTally(t, handler, pollID)

	var results []models.ChoiceWeight
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 result rows, got %d", len(results))
	}

	weights := map[string]int{}
	for _, row := range results {
		weights[row.Name] = row.Weight
	}
	if weights["Option X"] != 7 {
		t.Errorf("Expected weight 7 for Option X, got %d", weights["Option X"])
	}
	if weights["Option Y"] != 0 {
		t.Errorf("Expected weight 0 for Option Y, got %d", weights["Option Y"])
	}
}

func TestGetTallySecret(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	pollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeSecret)
	choiceX := addTestChoice(t, db, pollID, "Option X")
	addTestChoice(t, db, pollID, "Option Y")

	anonVoter := createTestVoter(t, db, "", 1)
	castTestBallot(t, db, choiceX, anonVoter, false)

	resp := getTally(t, handler, pollID)

	// Secret polls tally like simple polls: counts only, no identities
	var results []models.ChoiceCount
	if err := json.Unmarshal(resp.Results, &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 result rows, got %d", len(results))
	}
}

func TestGetTallyStates(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	// The tally is served in every lifecycle state
	for _, state := range []string{models.StatePrepared, models.StateOpen, models.StateClosed, models.StateDeleted} {
		pollID := createTestPoll(t, db, userID, state, models.TypeSimple)
		addTestChoice(t, db, pollID, "Option X")

		resp := getTally(t, handler, pollID)
		if resp.PollID != pollID {
			t.Errorf("state %s: expected poll_id '%s', got '%s'", state, pollID, resp.PollID)
		}
	}
}

func TestGetTallyPollNotFound(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewResultsHandler(db, cfg)

	req := httptest.NewRequest("GET", "/polls/nonexistent/results", nil)
	req.SetPathValue("id", "nonexistent")
	w := httptest.NewRecorder()

	handler.GetTally(w, req)

	assertErrorCode(t, w, http.StatusNotFound, models.CodeNotFound)
}
