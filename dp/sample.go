package dp

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// NewRand builds a deterministic PRNG from a user-supplied seed
// string, so the same seed reproduces the same draws across runs.
func NewRand(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Sampleback draws one alignment from the posterior defined by the
// forward table. Starting from a final state drawn with the terminal
// corrections as prior, it repeatedly draws the previous state from
// the categorical distribution proportional to
// exp(forward[prev] + trans(prev, cur)) until it reaches (0,0). The
// returned Weight is the log-probability of the drawn alignment, the
// sum of the logs of every categorical draw.
func (f *ForwardTable) Sampleback(rng *rand.Rand) *Alignment {
	in := f.in
	g := in.Params.GapLen
	w := in.w
	na, nd := f.tab.na, f.tab.nd

	logWeight := 0.0
	s, lp := drawState(rng,
		f.tab.get(StateM, na-1, nd-1)+w.termM,
		f.tab.get(StateD, na-1, nd-1)+w.termD,
		f.tab.get(StateI, na-1, nd-1)+w.termI)
	logWeight += lp

	ii, jj := na-1, nd-1
	var anc, des []string
	for ii != 0 || jj != 0 {
		var prev State
		switch s {
		case StateM:
			anc = append(anc, in.AncSeq[(ii-1)*g:ii*g])
			des = append(des, in.DesSeq[(jj-1)*g:jj*g])
			ii, jj = ii-1, jj-1
			prev, lp = drawState(rng,
				f.tab.get(StateM, ii, jj)+w.mm,
				f.tab.get(StateD, ii, jj)+w.dm,
				f.tab.get(StateI, ii, jj)+w.im)
		case StateD:
			anc = append(anc, in.AncSeq[(ii-1)*g:ii*g])
			des = append(des, strings.Repeat("-", g))
			ii--
			prev, lp = drawState(rng,
				f.tab.get(StateM, ii, jj)+w.md,
				f.tab.get(StateD, ii, jj)+w.dd,
				f.tab.get(StateI, ii, jj)+w.id)
		case StateI:
			anc = append(anc, strings.Repeat("-", g))
			des = append(des, in.DesSeq[(jj-1)*g:jj*g])
			jj--
			prev, lp = drawState(rng,
				f.tab.get(StateM, ii, jj)+w.mi,
				negInf,
				f.tab.get(StateI, ii, jj)+w.ii)
		}
		logWeight += lp
		s = prev
	}
	reverse(anc)
	reverse(des)
	return &Alignment{
		Anc:    strings.Join(anc, ""),
		Des:    strings.Join(des, ""),
		Weight: logWeight,
	}
}

// drawState samples one of (M, D, I) with probabilities proportional
// to exp of the given log-weights, returning the drawn state and the
// log of its normalized probability.
func drawState(rng *rand.Rand, m, d, i float64) (State, float64) {
	z := logSumExp3(m, d, i)
	pm := math.Exp(m - z)
	pd := math.Exp(d - z)
	u := rng.Float64()
	switch {
	case u < pm:
		return StateM, m - z
	case u < pm+pd:
		return StateD, d - z
	case i > negInf:
		return StateI, i - z
	case d > negInf:
		// Rounding pushed u past the reachable mass; fall back to the
		// best reachable state.
		return StateD, d - z
	default:
		return StateM, m - z
	}
}
