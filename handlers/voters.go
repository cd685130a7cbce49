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

type VoterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoterHandler(db *sql.DB, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{db: db, cfg: cfg}
}

// CreateVoter handles POST /voters
//
// Named voters give either a student population (weight derived from the
// curve in weight.go) or a direct weight between 1 and 20. Anonymous voters
// (empty name) give neither; their weight is always 1.
func (h *VoterHandler) CreateVoter(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	var req models.CreateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)

	var code, msg string
	fail := func(c, m string) { code, msg = c, m }

	if utf8.RuneCountInString(name) > models.VoterNameMaxLen {
		fail(models.CodeValidation, fmt.Sprintf("name must be at most %d characters", models.VoterNameMaxLen))
	}

	weight := 1
	if name == "" {
		if req.Students != nil {
			fail(models.CodeValidation, "anonymous voters cannot represent students")
		}
		if req.Weight != nil && *req.Weight != 1 {
			fail(models.CodeValidation, "anonymous voters always have weight 1")
		}
	} else {
		switch {
		case req.Students != nil && req.Weight != nil:
			fail(models.CodeValidation, "give either students or weight, not both")
		case req.Students == nil && req.Weight == nil:
			fail(models.CodeValidation, "students or weight is required for named voters")
		case req.Students != nil:
			if *req.Students < 1 {
				fail(models.CodeValidation, "students must be at least 1")
			} else {
				weight = WeightForStudents(*req.Students)
			}
		default:
			if *req.Weight < models.WeightMin || *req.Weight > models.WeightMax {
				fail(models.CodeValidation, fmt.Sprintf("weight must be between %d and %d", models.WeightMin, models.WeightMax))
			} else {
				weight = *req.Weight
			}
		}
	}

	if code != "" {
		middleware.CodedError(w, code, msg)
		return
	}

	voter := models.Voter{
		ID:        uuid.NewString(),
		Name:      name,
		Weight:    weight,
		CreatedAt: time.Now(),
	}

	_, err := h.db.Exec(`
		INSERT INTO voters (id, name, weight, created_at)
		VALUES ($1, $2, $3, $4)
	`, voter.ID, voter.Name, voter.Weight, voter.CreatedAt)
	if err != nil {
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to create voter")
		return
	}

	slog.Info("voter created", "voter_id", voter.ID, "anonymous", voter.Anonymous(), "weight", voter.Weight)

	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// UpdateVoter handles PUT /voters/{id}
// A voter's anonymity is fixed at creation: a named voter cannot become
// anonymous and vice versa.
func (h *VoterHandler) UpdateVoter(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	voterID := r.PathValue("id")
	if voterID == "" {
		middleware.CodedError(w, models.CodeValidation, "voter_id is required")
		return
	}

	var req models.UpdateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.CodedError(w, models.CodeValidation, "Invalid JSON")
		return
	}

	var existing models.Voter
	err := h.db.QueryRow(`
		SELECT id, name, weight, created_at FROM voters WHERE id = $1
	`, voterID).Scan(&existing.ID, &existing.Name, &existing.Weight, &existing.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.CodedError(w, models.CodeNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}

	name := strings.TrimSpace(req.Name)

	var code, msg string
	fail := func(c, m string) { code, msg = c, m }

	if utf8.RuneCountInString(name) > models.VoterNameMaxLen {
		fail(models.CodeValidation, fmt.Sprintf("name must be at most %d characters", models.VoterNameMaxLen))
	}
	if existing.Anonymous() != (name == "") {
		fail(models.CodeValidation, "anonymity cannot be changed after creation")
	}
	if name == "" {
		if req.Weight != 1 {
			fail(models.CodeValidation, "anonymous voters always have weight 1")
		}
	} else if req.Weight < models.WeightMin || req.Weight > models.WeightMax {
		fail(models.CodeValidation, fmt.Sprintf("weight must be between %d and %d", models.WeightMin, models.WeightMax))
	}

	if code != "" {
		middleware.CodedError(w, code, msg)
		return
	}

	_, err = h.db.Exec(`
		UPDATE voters SET name = $1, weight = $2 WHERE id = $3
	`, name, req.Weight, voterID)
	if err != nil {
		slog.Error("failed to update voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Failed to update voter")
		return
	}

	existing.Name = name
	existing.Weight = req.Weight

	middleware.JSONResponse(w, http.StatusOK, existing)
}

// ListVoters handles GET /voters
func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.Authenticate(h.db, r); err != nil {
		middleware.CodedError(w, models.CodeUnauthorized, "organizer credentials required")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, name, weight, created_at FROM voters ORDER BY name, id
	`)
	if err != nil {
		slog.Error("failed to query voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
		return
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var voter models.Voter
		if err := rows.Scan(&voter.ID, &voter.Name, &voter.Weight, &voter.CreatedAt); err != nil {
			slog.Error("failed to scan voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "", "Database error")
			return
		}
		voters = append(voters, voter)
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}
