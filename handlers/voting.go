// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// CastBallot handles POST /polls/{id}/ballots
//
// The casting protocol: the poll must exist and be open; the token must
// resolve to a voter whose identity matches the poll type (secret polls take
// anonymous tokens only, all others take named tokens only); the token must
// be unexpired; the voter must not have voted in this poll yet; the choice
// must belong to the poll. Checks after the open-state gate accumulate, and
// the last failing check decides the reported error. On success the ballot
// insert and the token expiry commit together - the whole read-validate-write
// sequence runs inside one transaction.
//
// The validation reads are not the correctness boundary: the token burn is a
// conditional update (claimed rows checked) and ballots carry a
// UNIQUE(poll_id, voter_id) constraint, so two racing casts cannot both spend
// one token or both record a ballot for one voter, whatever the isolation
// level.
func (h *VotingHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.CodedError(w, models.CodeValidation, "poll_id is required")
		return
	}

	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer tx.Rollback()

	var pollState, pollType string
	err = tx.QueryRow("SELECT state, type FROM polls WHERE id = $1", pollID).
		Scan(&pollState, &pollType)
	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	if pollState != models.StateOpen {
		middleware.CodedError(w, models.CodeForbidden, "Poll is not open for voting")
		return
	}

	var code, msg string
	fail := func(c, m string) { code, msg = c, m }

	if req.Token == "" {
		fail(models.CodeValidation, "token is required")
	}

	// Resolve the token to its voter. An unknown key is treated like an
	// expired one so callers cannot probe for valid keys.
	var (
		tokenExpired = true
		voterID      string
		voterName    string
	)
	err = tx.QueryRow(`
		SELECT t.expired, v.id, v.name
		FROM tokens t
		JOIN voters v ON t.voter_id = v.id
		WHERE t.key = $1
	`, req.Token).Scan(&tokenExpired, &voterID, &voterName)

	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	if err == nil {
		if pollType == models.TypeSecret && voterName != "" {
			fail(models.CodeTypeMismatch, "secret polls accept tokens from anonymous batches only")
		}
		if pollType != models.TypeSecret && voterName == "" {
			fail(models.CodeTypeMismatch, "this poll accepts tokens from named batches only")
		}

		// One ballot per voter per poll. This read decides the reported
		// error; the UNIQUE constraint on ballots enforces the invariant
		// when a concurrent cast slips past it.
		var alreadyVoted bool
		err = tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM ballots WHERE poll_id = $1 AND voter_id = $2)
		`, pollID, voterID).Scan(&alreadyVoted)
		if err != nil {
			slog.Error("failed to query prior ballots", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
			return
		}
		if alreadyVoted {
			fail(models.CodeDuplicateVote, "you have already voted in this poll")
		}
	}

	if tokenExpired {
		fail(models.CodeInvalidToken, "token is invalid or has already been used")
	}

	var choiceValid bool
	err = tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM choices WHERE id = $1 AND poll_id = $2)
	`, req.ChoiceID, pollID).Scan(&choiceValid)
	if err != nil {
		slog.Error("failed to query choice", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	if !choiceValid {
		fail(models.CodeInvalidChoice, "only the poll's own choices can be voted for")
	}

	if code != "" {
		middleware.CodedError(w, code, msg)
		return
	}

	// Burn the token as an atomic claim. Under READ COMMITTED two concurrent
	// casts can both read expired = FALSE above; the conditional update lets
	// only one of them claim the key, and the loser sees zero rows here.
	res, err := tx.Exec("UPDATE tokens SET expired = TRUE WHERE key = $1 AND expired = FALSE", req.Token)
	if err != nil {
		slog.Error("failed to expire token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to cast ballot")
		return
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read claim result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to cast ballot")
		return
	}
	if claimed == 0 {
		middleware.CodedError(w, models.CodeInvalidToken, "token is invalid or has already been used")
		return
	}

	ballotID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO ballots (id, poll_id, choice_id, voter_id, is_weighted, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, ballotID, pollID, req.ChoiceID, voterID, pollType == models.TypeWeighted, time.Now())
	if err != nil {
		// A concurrent cast by the same voter with a different token commits
		// first: the duplicate check above missed it, the constraint doesn't.
		if db.IsUniqueViolation(err) {
			middleware.CodedError(w, models.CodeDuplicateVote, "you have already voted in this poll")
			return
		}
		slog.Error("failed to insert ballot", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to cast ballot")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to cast ballot")
		return
	}

	slog.Info("ballot cast", "poll_id", pollID, "ballot_id", ballotID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastBallotResponse{
		BallotID: ballotID,
		Message:  "Ballot cast successfully",
	})
}
