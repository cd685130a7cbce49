// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

// WeightForStudents maps a represented student population to a voting
// weight. The curve is a monotonically non-decreasing step function:
//
//   - base weight 4
//   - from 1000 students, one extra vote per started 500 (capped at 5000)
//   - from 6000 students, one extra vote per started 1000 (capped at 10000)
//
// Beyond 10000 students the weight stays flat at 18. Anonymous voters never
// pass through this function; they are fixed at weight 1.
func WeightForStudents(students int) int {
	weight := 4

	if students >= 1000 {
		n := min(students, 5000) - 999
		weight += ceilDiv(n, 500)
	}

	if students >= 6000 {
		n := min(students, 10000) - 5999
		weight += ceilDiv(n, 1000)
	}

	return weight
}

// ceilDiv returns ceil(a/b) for positive a and b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
