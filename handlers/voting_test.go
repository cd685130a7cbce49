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

func TestCastBallot(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewVotingHandler(db, cfg)

	pollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeSimple)
	choiceX := addTestChoice(t, db, pollID, "Option X")
	addTestChoice(t, db, pollID, "Option Y")

	otherPollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeSimple)
	foreignChoice := addTestChoice(t, db, otherPollID, "Foreign option")

	voterID := createTestVoter(t, db, "School A", 4)

	t.Run("valid ballot", func(t *testing.T) {
		token := issueTestToken(t, db, voterID, false)

		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()

		handler.CastBallot(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
		}

		var resp models.CastBallotResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.BallotID == "" {
			t.Error("Expected non-empty ballot_id")
		}

		// The ballot is recorded with its poll and the token is burned in
		// the same commit
		var ballotPollID string
		if err := db.QueryRow("SELECT poll_id FROM ballots WHERE id = $1", resp.BallotID).Scan(&ballotPollID); err != nil {
			t.Fatalf("Failed to query ballot: %v", err)
		}
		if ballotPollID != pollID {
			t.Errorf("Expected ballot poll '%s', got '%s'", pollID, ballotPollID)
		}

		var expired bool
		if err := db.QueryRow("SELECT expired FROM tokens WHERE key = $1", token).Scan(&expired); err != nil {
			t.Fatalf("Failed to query token: %v", err)
		}
		if !expired {
			t.Error("Expected token to be expired after casting")
		}
	})

	t.Run("token reuse", func(t *testing.T) {
		// Burn a token with a successful cast, then present it again
		otherVoter := createTestVoter(t, db, "School B", 4)
		token := issueTestToken(t, db, otherVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201 on first cast, got %d. Body: %s", w.Code, w.Body.String())
		}

		req = jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w = httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusUnauthorized, models.CodeInvalidToken)
	})

	t.Run("second token same voter", func(t *testing.T) {
		// A fresh token does not allow a second ballot in the same poll
		otherVoter := createTestVoter(t, db, "School C", 4)
		first := issueTestToken(t, db, otherVoter, false)
		second := issueTestToken(t, db, otherVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: first, ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201 on first cast, got %d. Body: %s", w.Code, w.Body.String())
		}

		req = jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: second, ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w = httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusConflict, models.CodeDuplicateVote)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: "NOSUCH", ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		// Unknown keys are indistinguishable from expired ones
		assertErrorCode(t, w, http.StatusUnauthorized, models.CodeInvalidToken)
	})

	t.Run("empty token", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: "", ChoiceID: choiceX})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusUnauthorized, models.CodeInvalidToken)
	})

	t.Run("choice from another poll", func(t *testing.T) {
		otherVoter := createTestVoter(t, db, "School D", 4)
		token := issueTestToken(t, db, otherVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: foreignChoice})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusBadRequest, models.CodeInvalidChoice)
	})

	t.Run("poll not open", func(t *testing.T) {
		closedPollID := createTestPoll(t, db, userID, models.StateClosed, models.TypeSimple)
		closedChoice := addTestChoice(t, db, closedPollID, "Option X")
		otherVoter := createTestVoter(t, db, "School E", 4)
		token := issueTestToken(t, db, otherVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+closedPollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: closedChoice})
		req.SetPathValue("id", closedPollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusForbidden, models.CodeForbidden)

		// The token survives a rejected cast
		var expired bool
		if err := db.QueryRow("SELECT expired FROM tokens WHERE key = $1", token).Scan(&expired); err != nil {
			t.Fatalf("Failed to query token: %v", err)
		}
		if expired {
			t.Error("Expected token to stay valid after rejected cast")
		}
	})

	t.Run("poll not found", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/polls/nonexistent/ballots",
			models.CastBallotRequest{Token: "ABCDEF", ChoiceID: choiceX})
		req.SetPathValue("id", "nonexistent")
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusNotFound, models.CodeNotFound)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := jsonRequest(t, "POST", "/polls/"+pollID+"/ballots", "not json")
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusBadRequest, models.CodeValidation)
	})
}

func TestCastBallotTypeMismatch(t *testing.T) {
	db, userID := setupTestDB(t)
	defer db.Close()

	cfg := getTestConfig()
	handler := NewVotingHandler(db, cfg)

	secretPollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeSecret)
	secretChoice := addTestChoice(t, db, secretPollID, "Option X")

	namedPollID := createTestPoll(t, db, userID, models.StateOpen, models.TypeNamed)
	namedChoice := addTestChoice(t, db, namedPollID, "Option X")

	namedVoter := createTestVoter(t, db, "School A", 4)
	anonVoter := createTestVoter(t, db, "", 1)

	t.Run("named token on secret poll", func(t *testing.T) {
		token := issueTestToken(t, db, namedVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+secretPollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: secretChoice})
		req.SetPathValue("id", secretPollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusConflict, models.CodeTypeMismatch)
	})

	t.Run("anonymous token on named poll", func(t *testing.T) {
		token := issueTestToken(t, db, anonVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+namedPollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: namedChoice})
		req.SetPathValue("id", namedPollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		assertErrorCode(t, w, http.StatusConflict, models.CodeTypeMismatch)
	})

	t.Run("anonymous token on secret poll", func(t *testing.T) {
		token := issueTestToken(t, db, anonVoter, false)

		req := jsonRequest(t, "POST", "/polls/"+secretPollID+"/ballots",
			models.CastBallotRequest{Token: token, ChoiceID: secretChoice})
		req.SetPathValue("id", secretPollID)
		w := httptest.NewRecorder()
		handler.CastBallot(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
		}
	})
}

// assertErrorCode checks both the HTTP status and the machine-readable code
// of an error response
func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if w.Code != status {
		t.Errorf("Expected status %d, got %d. Body: %s", status, w.Code, w.Body.String())
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Code != code {
		t.Errorf("Expected code '%s', got '%s' (%s)", code, errResp.Code, errResp.Message)
	}
}
