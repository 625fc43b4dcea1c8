// Package align implements minimum-cost sequence alignment between token
// streams. It backs both word error rate computation and the verbose
// transcript diff.
package align

// Pair is one step of an alignment. A gap on either side is filled with
// the epsilon symbol passed to Align.
type Pair struct {
	Ref string
	Hyp string
}

// Alignment costs. Sclite weighting penalizes substitutions harder than
// gaps, which biases the traceback toward gap pairs and reads better in
// diffs.
const (
	unitSub = 1
	unitGap = 1

	scliteSub = 4
	scliteGap = 3
)

// Align returns a minimum-cost global alignment of ref against hyp.
// Matching tokens cost nothing. With sclite false, substitutions and
// gaps cost 1 each; with sclite true, substitutions cost 4 and gaps 3.
// Gap positions carry eps on the short side.
func Align(ref, hyp []string, eps string, sclite bool) []Pair {
	sub, gap := unitSub, unitGap
	if sclite {
		sub, gap = scliteSub, scliteGap
	}

	n, m := len(ref), len(hyp)
	width := m + 1

	// One byte per cell records the step taken into it.
	const (
		stepDiag = byte(iota)
		stepUp   // gap in hyp (deletion)
		stepLeft // gap in ref (insertion)
	)
	back := make([]byte, (n+1)*width)

	prev := make([]int, width)
	cur := make([]int, width)
	for j := 1; j <= m; j++ {
		prev[j] = j * gap
		back[j] = stepLeft
	}
	for i := 1; i <= n; i++ {
		cur[0] = i * gap
		back[i*width] = stepUp
		for j := 1; j <= m; j++ {
			diag := prev[j-1]
			if ref[i-1] != hyp[j-1] {
				diag += sub
			}
			up := prev[j] + gap
			left := cur[j-1] + gap

			best, step := diag, stepDiag
			if up < best {
				best, step = up, stepUp
			}
			if left < best {
				best, step = left, stepLeft
			}
			cur[j] = best
			back[i*width+j] = step
		}
		prev, cur = cur, prev
	}

	// Traceback from (n, m).
	var rev []Pair
	for i, j := n, m; i > 0 || j > 0; {
		switch back[i*width+j] {
		case stepDiag:
			rev = append(rev, Pair{Ref: ref[i-1], Hyp: hyp[j-1]})
			i--
			j--
		case stepUp:
			rev = append(rev, Pair{Ref: ref[i-1], Hyp: eps})
			i--
		default:
			rev = append(rev, Pair{Ref: eps, Hyp: hyp[j-1]})
			j--
		}
	}
	out := make([]Pair, len(rev))
	for k := range rev {
		out[k] = rev[len(rev)-1-k]
	}
	return out
}

// Distance returns the Levenshtein edit distance between the two token
// sequences with unit costs. Only two rows are kept, so arbitrarily long
// streams are fine.
func Distance(ref, hyp []string) int {
	n, m := len(ref), len(hyp)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			diag := prev[j-1]
			if ref[i-1] != hyp[j-1] {
				diag++
			}
			cur[j] = min(diag, min(prev[j], cur[j-1])+1)
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// Stats summarizes an alignment.
type Stats struct {
	Hits          int
	Substitutions int
	Deletions     int
	Insertions    int
}

// Score tallies an alignment produced with the given epsilon symbol.
func Score(pairs []Pair, eps string) Stats {
	var s Stats
	for _, p := range pairs {
		switch {
		case p.Ref == eps:
			s.Insertions++
		case p.Hyp == eps:
			s.Deletions++
		case p.Ref == p.Hyp:
			s.Hits++
		default:
			s.Substitutions++
		}
	}
	return s
}
