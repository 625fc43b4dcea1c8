package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, sub := range permutations(n - 1) {
		for pos := 0; pos <= len(sub); pos++ {
			perm := make([]int, 0, n)
			perm = append(perm, sub[:pos]...)
			perm = append(perm, n-1)
			perm = append(perm, sub[pos:]...)
			out = append(out, perm)
		}
	}
	return out
}

func bruteForceCost(a [][]float64) float64 {
	best := 0.0
	first := true
	for _, perm := range permutations(len(a)) {
		total := 0.0
		for i, j := range perm {
			total += a[i][j]
		}
		if first || total < best {
			best = total
			first = false
		}
	}
	return best
}

func assignmentCost(a [][]float64, assign []int) float64 {
	total := 0.0
	for i, j := range assign {
		total += a[i][j]
	}
	return total
}

func TestSolveAssignmentMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name string
		a    [][]float64
	}{
		{
			name: "two by two",
			a:    [][]float64{{4, 1}, {2, 3}},
		},
		{
			name: "three by three",
			a:    [][]float64{{7, 5, 11}, {5, 4, 1}, {9, 3, 2}},
		},
		{
			name: "negative costs",
			a:    [][]float64{{-5, 0, -3}, {0, -4, 0}, {-1, 0, -6}},
		},
		{
			name: "ties",
			a:    [][]float64{{1, 1, 2}, {1, 1, 2}, {2, 2, 1}},
		},
		{
			name: "four by four",
			a: [][]float64{
				{13, 4, 7, 6},
				{1, 11, 5, 4},
				{6, 7, 2, 8},
				{1, 3, 5, 9},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assign := solveAssignment(tt.a)
			require.Len(t, assign, len(tt.a))

			// Every column used exactly once.
			seen := make(map[int]bool)
			for _, j := range assign {
				assert.False(t, seen[j])
				seen[j] = true
			}

			assert.InDelta(t, bruteForceCost(tt.a), assignmentCost(tt.a, assign), 1e-9)
		})
	}
}

func TestSolveAssignmentDeterministic(t *testing.T) {
	a := [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	first := solveAssignment(a)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, solveAssignment(a))
	}
}

func TestSolveAssignmentEmpty(t *testing.T) {
	assert.Nil(t, solveAssignment(nil))
}
