// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	voterHandler := handlers.NewVoterHandler(db, cfg)
	tokenHandler := handlers.NewTokenHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll management (organizer operations)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/state", middleware.WithLogging(pollHandler.TransitionPoll))

	// Voting and results (public)
	mux.HandleFunc("POST /polls/{id}/ballots", middleware.WithLogging(votingHandler.CastBallot))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetTally))

	// Voter registry and token issuance (organizer operations)
	mux.HandleFunc("POST /voters", middleware.WithLogging(voterHandler.CreateVoter))
	mux.HandleFunc("GET /voters", middleware.WithLogging(voterHandler.ListVoters))
	mux.HandleFunc("PUT /voters/{id}", middleware.WithLogging(voterHandler.UpdateVoter))
	mux.HandleFunc("POST /voters/{id}/tokens", middleware.WithLogging(tokenHandler.IssueTokens))
	mux.HandleFunc("GET /voters/{id}/tokens", middleware.WithLogging(tokenHandler.GetLatestBatch))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
