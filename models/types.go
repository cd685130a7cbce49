package models

import "time"

// Poll state constants
const (
	StatePrepared = "prepared"
	StateOpen     = "open"
	StateClosed   = "closed"
	StateDeleted  = "deleted"
)

// Poll type constants
const (
	TypeSimple   = "simple"
	TypeNamed    = "named"
	TypeWeighted = "weighted"
	TypeSecret   = "secret"
)

// Validation limits
const (
	SubjectMinLength = 20
	SubjectMaxLength = 250
	ChoicesMinCount  = 3
	ChoiceMaxLength  = 50
	VoterNameMaxLen  = 250
	WeightMin        = 1
	WeightMax        = 20
	TokenBatchMin    = 10
	TokenBatchMax    = 50
)

// Request types

type CreatePollRequest struct {
	Subject string   `json:"subject"`
	Choices []string `json:"choices"`
	Type    string   `json:"type"`
}

type TransitionPollRequest struct {
	State string `json:"state"`
}

// Exactly one of Students / Weight is given for named voters; anonymous
// voters (empty name) take neither and are fixed at weight 1.
type CreateVoterRequest struct {
	Name     string `json:"name"`
	Students *int   `json:"students,omitempty"`
	Weight   *int   `json:"weight,omitempty"`
}

type UpdateVoterRequest struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

type IssueTokensRequest struct {
	Count int `json:"count"`
}

type CastBallotRequest struct {
	Token    string `json:"token"`
	ChoiceID string `json:"choice_id"`
}

// Response types

type TransitionPollResponse struct {
	PollID string `json:"poll_id"`
	State  string `json:"state"`
}

type CastBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type IssueTokensResponse struct {
	VoterID   string    `json:"voter_id"`
	CreatedAt time.Time `json:"created_at"`
	Keys      []string  `json:"keys"`
}

type TokenBatchResponse struct {
	Voter      Voter     `json:"voter"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedAgo string    `json:"created_ago"`
	Tokens     []Token   `json:"tokens"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type Poll struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	State     string    `json:"state"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Choice struct {
	ID     string `json:"id"`
	PollID string `json:"poll_id"`
	Name   string `json:"name"`
}

type PollWithChoices struct {
	Poll    Poll     `json:"poll"`
	Choices []Choice `json:"choices"`
}

type Voter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Weight    int       `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
}

// Anonymous reports whether the voter is anonymous (empty name).
// Anonymous voters always carry weight 1.
func (v Voter) Anonymous() bool {
	return v.Name == ""
}

type Token struct {
	Key            string    `json:"key"`
	VoterID        string    `json:"voter_id"`
	BatchCreatedAt time.Time `json:"batch_created_at"`
	Expired        bool      `json:"expired"`
}

type Ballot struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	ChoiceID   string    `json:"choice_id"`
	VoterID    string    `json:"-"` // Never expose in JSON
	IsWeighted bool      `json:"is_weighted"`
	CastAt     time.Time `json:"cast_at"`
}

// Tally result rows. The row shape depends on the poll type; every choice of
// the poll appears exactly once even with zero ballots.

type ChoiceCount struct {
	ChoiceID string `json:"choice_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type ChoiceVoters struct {
	ChoiceID string   `json:"choice_id"`
	Name     string   `json:"name"`
	Voters   []string `json:"voters"`
}

type ChoiceWeight struct {
	ChoiceID string `json:"choice_id"`
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
