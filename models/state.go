// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// allowedTransitions is the poll lifecycle table. Transitions are monotonic
// and one-directional; deleted is terminal.
var allowedTransitions = map[string][]string{
	StatePrepared: {StateOpen, StateDeleted},
	StateOpen:     {StateClosed, StateDeleted},
	StateClosed:   {StateDeleted},
	StateDeleted:  {},
}

// ValidState reports whether s is a known poll state.
func ValidState(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// ValidType reports whether t is a known poll type.
func ValidType(t string) bool {
	switch t {
	case TypeSimple, TypeNamed, TypeWeighted, TypeSecret:
		return true
	}
	return false
}

// CanTransition reports whether a poll may move from one state to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
