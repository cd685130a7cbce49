package models

import "testing"

func TestCanTransition_FullMatrix(t *testing.T) {
	states := []string{StatePrepared, StateOpen, StateClosed, StateDeleted}

	allowed := map[[2]string]bool{
		{StatePrepared, StateOpen}:    true,
		{StatePrepared, StateDeleted}: true,
		{StateOpen, StateClosed}:      true,
		{StateOpen, StateDeleted}:     true,
		{StateClosed, StateDeleted}:   true,
	}

	for _, from := range states {
		for _, to := range states {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCanTransition_UnknownStates(t *testing.T) {
	if CanTransition("bogus", StateOpen) {
		t.Error("unknown source state should not transition")
	}
	if CanTransition(StatePrepared, "bogus") {
		t.Error("unknown target state should not transition")
	}
}

func TestValidState(t *testing.T) {
	for _, s := range []string{StatePrepared, StateOpen, StateClosed, StateDeleted} {
		if !ValidState(s) {
			t.Errorf("expected %s to be a valid state", s)
		}
	}
	if ValidState("draft") {
		t.Error("draft is not a ballotbox state")
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []string{TypeSimple, TypeNamed, TypeWeighted, TypeSecret} {
		if !ValidType(typ) {
			t.Errorf("expected %s to be a valid type", typ)
		}
	}
	if ValidType("ranked") {
		t.Error("ranked is not a ballotbox poll type")
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeValidation, 400},
		{CodeInvalidChoice, 400},
		{CodeNotFound, 404},
		{CodeForbidden, 403},
		{CodeUnauthorized, 401},
		{CodeInvalidToken, 401},
		{CodeInvalidTransition, 409},
		{CodeTypeMismatch, 409},
		{CodeDuplicateVote, 409},
		{CodeGenerationFailure, 500},
		{"something-else", 500},
	}

	for _, tt := range tests {
		if got := StatusForCode(tt.code); got != tt.status {
			t.Errorf("StatusForCode(%s) = %d, want %d", tt.code, got, tt.status)
		}
	}
}
