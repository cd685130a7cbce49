// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// maxKeyCollisions bounds consecutive key collisions during batch issuance.
// With 36^6 possible keys a run of collisions this long signals a broken
// random source, not bad luck.
const maxKeyCollisions = 20

type TokenHandler struct {
	db  *sql.DB
	cfg cliparse.Config

	// genKey produces candidate token keys; tests substitute it to force
	// collisions.
	genKey func() (string, error)
}

func NewTokenHandler(db *sql.DB, cfg cliparse.Config) *TokenHandler {
	return &TokenHandler{db: db, cfg: cfg, genKey: auth.GenerateTokenKey}
}

// IssueTokens handles POST /voters/{id}/tokens
//
// Issues a fresh batch of 10-50 single-use tokens for the voter. Every
// previously unexpired token of that voter is expired in the same
// transaction, so a voter has at most one live batch at a time. Key
// uniqueness is checked against all keys ever issued, expired ones included.
func (h *TokenHandler) IssueTokens(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.CodedError(w, models.CodeValidation, "voter_id is required")
		return
	}

	var req models.IssueTokensRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	if req.Count < models.TokenBatchMin || req.Count > models.TokenBatchMax {
		middleware.CodedError(w, models.CodeValidation,
			fmt.Sprintf("count must be between %d and %d", models.TokenBatchMin, models.TokenBatchMax))
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer tx.Rollback()

	// Touching the voter row takes its lock on postgres, so two simultaneous
	// issuances for the same voter serialize and cannot leave two live
	// batches. Doubles as the existence check.
	res, err := tx.Exec("UPDATE voters SET weight = weight WHERE id = $1", voterID)
	if err != nil {
		slog.Error("failed to lock voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	locked, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read lock result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	if locked == 0 {
		middleware.CodedError(w, models.CodeNotFound, "Voter not found")
		return
	}

	// Retire the previous batch before the new one becomes visible
	_, err = tx.Exec(`
		UPDATE tokens SET expired = TRUE WHERE voter_id = $1 AND expired = FALSE
	`, voterID)
	if err != nil {
		slog.Error("failed to expire previous batch", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to issue tokens")
		return
	}

	batchCreatedAt := time.Now()
	keys := make([]string, 0, req.Count)
	inBatch := make(map[string]bool, req.Count)
	collisions := 0

	for len(keys) < req.Count {
		key, err := h.genKey()
		if err != nil {
			slog.Error("failed to generate token key", "error", err)
			middleware.CodedError(w, models.CodeGenerationFailure, "Failed to generate tokens")
			return
		}

		taken := inBatch[key]
		if !taken {
			err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM tokens WHERE key = $1)", key).Scan(&taken)
			if err != nil {
				slog.Error("failed to check token key", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to issue tokens")
				return
			}
		}

		if taken {
			collisions++
			if collisions > maxKeyCollisions {
				slog.Error("token generation aborted", "collisions", collisions, "voter_id", voterID)
				middleware.CodedError(w, models.CodeGenerationFailure,
					"token generation failed after too many key collisions")
				return
			}
			continue
		}
		collisions = 0

		_, err = tx.Exec(`
			INSERT INTO tokens (key, voter_id, batch_created_at, expired)
			VALUES ($1, $2, $3, FALSE)
		`, key, voterID, batchCreatedAt)
		if err != nil {
			slog.Error("failed to insert token", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to issue tokens")
			return
		}

		inBatch[key] = true
		keys = append(keys, key)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to issue tokens")
		return
	}

	slog.Info("token batch issued", "voter_id", voterID, "count", len(keys))

	middleware.JSONResponse(w, http.StatusCreated, models.IssueTokensResponse{
		VoterID:   voterID,
		CreatedAt: batchCreatedAt,
		Keys:      keys,
	})
}

// GetLatestBatch handles GET /voters/{id}/tokens
// Returns the voter's most recent token batch for printing, including which
// keys are already spent.
func (h *TokenHandler) GetLatestBatch(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.CodedError(w, models.CodeValidation, "voter_id is required")
		return
	}

	var voter models.Voter
	err := h.db.QueryRow(`
		SELECT id, name, weight, created_at FROM voters WHERE id = $1
	`, voterID).Scan(&voter.ID, &voter.Name, &voter.Weight, &voter.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	var batchCreatedAt time.Time
	err = h.db.QueryRow(`
		SELECT batch_created_at FROM tokens
		WHERE voter_id = $1
		ORDER BY batch_created_at DESC
		LIMIT 1
	`, voterID).Scan(&batchCreatedAt)

	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Voter has no token batch")
		return
	}
	if err != nil {
		slog.Error("failed to query latest batch", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT key, voter_id, batch_created_at, expired
		FROM tokens
		WHERE voter_id = $1 AND batch_created_at = $2
		ORDER BY key
	`, voterID, batchCreatedAt)
	if err != nil {
		slog.Error("failed to query tokens", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		var token models.Token
		if err := rows.Scan(&token.Key, &token.VoterID, &token.BatchCreatedAt, &token.Expired); err != nil {
			slog.Error("failed to scan token", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
			return
		}
		tokens = append(tokens, token)
	}

	middleware.JSONResponse(w, http.StatusOK, models.TokenBatchResponse{
		Voter:      voter,
		CreatedAt:  batchCreatedAt,
		CreatedAgo: humanize.Time(batchCreatedAt),
		Tokens:     tokens,
	})
}
