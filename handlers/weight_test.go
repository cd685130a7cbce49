// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import "testing"

func TestWeightForStudents(t *testing.T) {
	tests := []struct {
		students int
		expected int
	}{
		{1, 4},
		{500, 4},
		{999, 4},
		{1000, 5},
		{1499, 5},
		{1500, 6},
		{2000, 7},
		{5000, 13},
		{5999, 13},
		{6000, 14},
		{7000, 15},
		{10000, 18},
		{20000, 18},
	}

	for _, tt := range tests {
		if got := WeightForStudents(tt.students); got != tt.expected {
			t.Errorf("WeightForStudents(%d) = %d, expected %d", tt.students, got, tt.expected)
		}
	}
}

func TestWeightForStudentsMonotonic(t *testing.T) {
	prev := 0
	for s := 1; s <= 12000; s++ {
		w := WeightForStudents(s)
		if w < prev {
			t.Fatalf("weight decreased at %d students: %d -> %d", s, prev, w)
		}
		prev = w
	}
}
