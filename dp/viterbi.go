package dp

import (
	"strings"

	"github.com/reedacartwright/coati/errs"
)

// Alignment is the result of a traceback or sampleback: two gapped
// strings of equal length and the log-weight of the path that produced
// them.
type Alignment struct {
	Anc    string
	Des    string
	Weight float64
}

// ViterbiMem runs the max-sum DP with a rolling two-row score buffer
// and a full back-pointer arena, then tracebacks the optimal path.
// This is the O(L_d)-score-memory variant used by the align operation.
func ViterbiMem(in *Input) (*Alignment, error) {
	na, nd := in.dims()
	arena, err := newPtrArena(na, nd)
	if err != nil {
		return nil, err
	}
	// Two rows per state plane.
	rows := make([][]float64, 2*nStates)
	for i := range rows {
		rows[i], err = safeAllocFloat(nd)
		if err != nil {
			return nil, err
		}
	}
	cur := func(s State) []float64 { return rows[s] }
	prev := func(s State) []float64 { return rows[nStates+int(s)] }
	swap := func() {
		for s := 0; s < nStates; s++ {
			rows[s], rows[nStates+s] = rows[nStates+s], rows[s]
		}
	}

	g := in.Params.GapLen
	w := in.w
	for ii := 0; ii < na; ii++ {
		m, d, i := cur(StateM), cur(StateD), cur(StateI)
		pm, pd, pi := prev(StateM), prev(StateD), prev(StateI)
		for jj := 0; jj < nd; jj++ {
			m[jj], d[jj], i[jj] = negInf, negInf, negInf
			if ii == 0 && jj == 0 {
				m[jj] = 0
				continue
			}
			if ii > 0 && jj > 0 {
				em := emitM(in.Anc, in.Des, (ii-1)*g, (jj-1)*g, g, &in.Model.M, in.Params.Amb)
				best, from := argmax3(pm[jj-1]+w.mm, pd[jj-1]+w.dm, pi[jj-1]+w.im)
				m[jj] = best + em
				arena.set(StateM, ii, jj, from)
			}
			if ii > 0 {
				best, from := argmax3(pm[jj]+w.md, pd[jj]+w.dd, pi[jj]+w.id)
				d[jj] = best
				arena.set(StateD, ii, jj, from)
			}
			if jj > 0 {
				best, from := argmax3(m[jj-1]+w.mi, negInf, i[jj-1]+w.ii)
				i[jj] = best
				arena.set(StateI, ii, jj, from)
			}
		}
		swap()
	}
	// After the final swap the last row lives in the prev slots.
	weight, last := argmax3(
		prev(StateM)[nd-1]+w.termM,
		prev(StateD)[nd-1]+w.termD,
		prev(StateI)[nd-1]+w.termI)
	aln, err := traceback(in, arena, last)
	if err != nil {
		return nil, err
	}
	aln.Weight = weight
	return aln, nil
}

// work is the full three-plane score table shared by Viterbi (max-sum)
// and Forward (log-sum-exp).
type work struct {
	na, nd int
	planes [nStates][]float64
}

func newWork(na, nd int) (*work, error) {
	t := &work{na: na, nd: nd}
	for s := 0; s < nStates; s++ {
		buf, err := safeAllocFloat(na * nd)
		if err != nil {
			return nil, err
		}
		for i := range buf {
			buf[i] = negInf
		}
		t.planes[s] = buf
	}
	return t, nil
}

func (t *work) get(s State, ii, jj int) float64 {
	return t.planes[s][ii*t.nd+jj]
}

func (t *work) set(s State, ii, jj int, v float64) {
	t.planes[s][ii*t.nd+jj] = v
}

// Viterbi runs the max-sum DP over a full table and tracebacks the
// optimal path. It produces the same alignment and weight as
// ViterbiMem while materializing every cell.
func Viterbi(in *Input) (*Alignment, error) {
	na, nd := in.dims()
	tab, err := newWork(na, nd)
	if err != nil {
		return nil, err
	}
	arena, err := newPtrArena(na, nd)
	if err != nil {
		return nil, err
	}

	g := in.Params.GapLen
	w := in.w
	tab.set(StateM, 0, 0, 0)
	for ii := 0; ii < na; ii++ {
		for jj := 0; jj < nd; jj++ {
			if ii == 0 && jj == 0 {
				continue
			}
			if ii > 0 && jj > 0 {
				em := emitM(in.Anc, in.Des, (ii-1)*g, (jj-1)*g, g, &in.Model.M, in.Params.Amb)
				best, from := argmax3(
					tab.get(StateM, ii-1, jj-1)+w.mm,
					tab.get(StateD, ii-1, jj-1)+w.dm,
					tab.get(StateI, ii-1, jj-1)+w.im)
				tab.set(StateM, ii, jj, best+em)
				arena.set(StateM, ii, jj, from)
			}
			if ii > 0 {
				best, from := argmax3(
					tab.get(StateM, ii-1, jj)+w.md,
					tab.get(StateD, ii-1, jj)+w.dd,
					tab.get(StateI, ii-1, jj)+w.id)
				tab.set(StateD, ii, jj, best)
				arena.set(StateD, ii, jj, from)
			}
			if jj > 0 {
				best, from := argmax3(
					tab.get(StateM, ii, jj-1)+w.mi,
					negInf,
					tab.get(StateI, ii, jj-1)+w.ii)
				tab.set(StateI, ii, jj, best)
				arena.set(StateI, ii, jj, from)
			}
		}
	}
	weight, last := argmax3(
		tab.get(StateM, na-1, nd-1)+w.termM,
		tab.get(StateD, na-1, nd-1)+w.termD,
		tab.get(StateI, na-1, nd-1)+w.termI)
	aln, err := traceback(in, arena, last)
	if err != nil {
		return nil, err
	}
	aln.Weight = weight
	return aln, nil
}

// traceback walks the back-pointer arena from the final cell to (0,0),
// emitting aligned blocks of the gap unit in reverse.
func traceback(in *Input, arena *ptrArena, last State) (*Alignment, error) {
	g := in.Params.GapLen
	ii, jj := arena.na-1, arena.nd-1
	var anc, des []string
	s := last
	for ii != 0 || jj != 0 {
		pred, ok := arena.get(s, ii, jj)
		if !ok {
			return nil, errs.Newf(errs.ResourceExhausted, "traceback reached an unreachable cell (%d,%d) in state %v", ii, jj, s)
		}
		switch s {
		case StateM:
			anc = append(anc, in.AncSeq[(ii-1)*g:ii*g])
			des = append(des, in.DesSeq[(jj-1)*g:jj*g])
			ii, jj = ii-1, jj-1
		case StateD:
			anc = append(anc, in.AncSeq[(ii-1)*g:ii*g])
			des = append(des, strings.Repeat("-", g))
			ii--
		case StateI:
			anc = append(anc, strings.Repeat("-", g))
			des = append(des, in.DesSeq[(jj-1)*g:jj*g])
			jj--
		}
		s = pred
	}
	reverse(anc)
	reverse(des)
	return &Alignment{Anc: strings.Join(anc, ""), Des: strings.Join(des, "")}, nil
}

func reverse(xs []string) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
