// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetTally handles GET /polls/{id}/results
//
// The tally is computed on demand from the committed ballots, never cached.
// Every choice of the poll appears in the result, including choices nobody
// voted for. The row shape depends on the poll type:
//
//   - simple, secret: ballot count per choice
//   - named: the names of the voters who chose it
//   - weighted: the summed weight of the voters who chose it
func (h *ResultsHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.CodedError(w, models.CodeValidation, "poll_id is required")
		return
	}

	var pollType string
	err := h.db.QueryRow("SELECT type FROM polls WHERE id = $1", pollID).Scan(&pollType)
	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	var results interface{}
	switch pollType {
	case models.TypeNamed:
		results, err = tallyNamed(h.db, pollID)
	case models.TypeWeighted:
		results, err = tallyWeighted(h.db, pollID)
	default:
		results, err = tallyCounts(h.db, pollID)
	}
	if err != nil {
		slog.Error("failed to tally poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"poll_id": pollID,
		"type":    pollType,
		"results": results,
	})
}

// tallyCounts counts ballots per choice (simple and secret polls).
func tallyCounts(db *sql.DB, pollID string) ([]models.ChoiceCount, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, COUNT(b.id)
		FROM choices c
		LEFT JOIN ballots b ON b.choice_id = c.id
		WHERE c.poll_id = $1
		GROUP BY c.id, c.name
		ORDER BY c.id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.ChoiceCount{}
	for rows.Next() {
		var row models.ChoiceCount
		if err := rows.Scan(&row.ChoiceID, &row.Name, &row.Count); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// tallyNamed lists voter names per choice (named polls). Choices without
// ballots get an empty list.
func tallyNamed(db *sql.DB, pollID string) ([]models.ChoiceVoters, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, v.name
		FROM choices c
		LEFT JOIN ballots b ON b.choice_id = c.id
		LEFT JOIN voters v ON v.id = b.voter_id
		WHERE c.poll_id = $1
		ORDER BY c.id, b.cast_at
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.ChoiceVoters{}
	index := map[string]int{}
	for rows.Next() {
		var choiceID, choiceName string
		var voterName sql.NullString
		if err := rows.Scan(&choiceID, &choiceName, &voterName); err != nil {
			return nil, err
		}

		i, seen := index[choiceID]
		if !seen {
			i = len(results)
			index[choiceID] = i
			results = append(results, models.ChoiceVoters{
				ChoiceID: choiceID,
				Name:     choiceName,
				Voters:   []string{},
			})
		}

		// NULL voter name means the choice had no ballot at all
		if voterName.Valid {
			results[i].Voters = append(results[i].Voters, voterName.String)
		}
	}

	return results, rows.Err()
}

// tallyWeighted sums voter weights per choice (weighted polls).
func tallyWeighted(db *sql.DB, pollID string) ([]models.ChoiceWeight, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, COALESCE(SUM(v.weight), 0)
		FROM choices c
		LEFT JOIN ballots b ON b.choice_id = c.id
		LEFT JOIN voters v ON v.id = b.voter_id
		WHERE c.poll_id = $1
		GROUP BY c.id, c.name
		ORDER BY c.id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.ChoiceWeight{}
	for rows.Next() {
		var row models.ChoiceWeight
		if err := rows.Scan(&row.ChoiceID, &row.Name, &row.Weight); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
