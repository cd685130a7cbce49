// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// CreatePoll handles POST /polls
// Validation accumulates; the last failing check decides the reported error.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, err := auth.Authenticate(h.db, r)
	if err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	subject := strings.TrimSpace(req.Subject)
	choices := make([]string, 0, len(req.Choices))
	for _, choice := range req.Choices {
		if c := strings.TrimSpace(choice); c != "" {
			choices = append(choices, c)
		}
	}

	var code, msg string
	fail := func(c, m string) { code, msg = c, m }

	if subject == "" {
		fail(models.CodeValidation, "subject is required")
	}
	if utf8.RuneCountInString(subject) < models.SubjectMinLength {
		fail(models.CodeValidation, fmt.Sprintf("subject must be at least %d characters", models.SubjectMinLength))
	}
	if utf8.RuneCountInString(subject) > models.SubjectMaxLength {
		fail(models.CodeValidation, fmt.Sprintf("subject must be at most %d characters", models.SubjectMaxLength))
	}
	if len(choices) < models.ChoicesMinCount {
		fail(models.CodeValidation, fmt.Sprintf("at least %d choices are required", models.ChoicesMinCount))
	}
	for _, choice := range choices {
		if utf8.RuneCountInString(choice) > models.ChoiceMaxLength {
			fail(models.CodeValidation, fmt.Sprintf("choices must be at most %d characters", models.ChoiceMaxLength))
		}
	}
	if !models.ValidType(req.Type) {
		fail(models.CodeValidation, "type must be one of: simple, named, weighted, secret")
	}

	if code != "" {
		middleware.CodedError(w, code, msg)
		return
	}

	poll := models.Poll{
		ID:        uuid.NewString(),
		Subject:   subject,
		AuthorID:  user.ID,
		Author:    user.Username,
		State:     models.StatePrepared,
		Type:      req.Type,
		CreatedAt: time.Now(),
	}

	// Poll and its choices are created in one transaction
	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO polls (id, subject, author_id, state, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, poll.ID, poll.Subject, poll.AuthorID, poll.State, poll.Type, poll.CreatedAt)

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to create poll")
		return
	}

	created := make([]models.Choice, 0, len(choices))
	for _, name := range choices {
		choice := models.Choice{
			ID:     uuid.NewString(),
			PollID: poll.ID,
			Name:   name,
		}
		_, err = tx.Exec(`
			INSERT INTO choices (id, poll_id, name)
			VALUES ($1, $2, $3)
		`, choice.ID, choice.PollID, choice.Name)
		if err != nil {
			slog.Error("failed to insert choice", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to create poll")
			return
		}
		created = append(created, choice)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "author", user.Username, "type", poll.Type)

	middleware.JSONResponse(w, http.StatusCreated, models.PollWithChoices{
		Poll:    poll,
		Choices: created,
	})
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT p.id, p.subject, p.author_id, u.username, p.state, p.type, p.created_at
		FROM polls p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(&poll.ID, &poll.Subject, &poll.AuthorID, &poll.Author,
			&poll.State, &poll.Type, &poll.CreatedAt); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
			return
		}
		polls = append(polls, poll)
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.CodedError(w, models.CodeValidation, "poll_id is required")
		return
	}

	var poll models.Poll
	err := h.db.QueryRow(`
		SELECT p.id, p.subject, p.author_id, u.username, p.state, p.type, p.created_at
		FROM polls p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1
	`, pollID).Scan(&poll.ID, &poll.Subject, &poll.AuthorID, &poll.Author,
		&poll.State, &poll.Type, &poll.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	choices, err := pollChoices(h.db, poll.ID)
	if err != nil {
		slog.Error("failed to query choices", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollWithChoices{
		Poll:    poll,
		Choices: choices,
	})
}

// TransitionPoll handles POST /polls/{id}/state
// Any authenticated organizer may transition a poll; the state machine
// rejects everything outside the lifecycle table and leaves the poll
// untouched.
func (h *PollHandler) TransitionPoll(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.CodedError(w, models.CodeValidation, "poll_id is required")
		return
	}

	var req models.TransitionPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	var current string
	err := h.db.QueryRow("SELECT state FROM polls WHERE id = $1", pollID).Scan(&current)
	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	var code, msg string
	fail := func(c, m string) { code, msg = c, m }

	if req.State == "" {
		fail(models.CodeValidation, "state is required")
	}
	if !models.ValidState(req.State) {
		fail(models.CodeValidation, "state must be one of: prepared, open, closed, deleted")
	}
	if !models.CanTransition(current, req.State) {
		fail(models.CodeInvalidTransition,
			fmt.Sprintf("transition from %s to %s is not possible", current, req.State))
	}

	if code != "" {
		middleware.CodedError(w, code, msg)
		return
	}

	_, err = h.db.Exec("UPDATE polls SET state = $1 WHERE id = $2", req.State, pollID)
	if err != nil {
		slog.Error("failed to update poll state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to update poll")
		return
	}

	slog.Info("poll transitioned", "poll_id", pollID, "from", current, "to", req.State)

	middleware.JSONResponse(w, http.StatusOK, models.TransitionPollResponse{
		PollID: pollID,
		State:  req.State,
	})
}

// pollChoices loads the choice set of a poll in a stable order.
func pollChoices(db *sql.DB, pollID string) ([]models.Choice, error) {
	rows, err := db.Query(`
		SELECT id, poll_id, name
		FROM choices
		WHERE poll_id = $1
		ORDER BY id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var choice models.Choice
		if err := rows.Scan(&choice.ID, &choice.PollID, &choice.Name); err != nil {
			return nil, err
		}
		choices = append(choices, choice)
	}

	return choices, rows.Err()
}
