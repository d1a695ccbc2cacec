package dp

import "math"

// ForwardTable is the full log-sum-exp DP table, kept whole so
// sampleback can revisit any cell.
type ForwardTable struct {
	in  *Input
	tab *work
}

// Forward runs the sum-product recursion in log space over the full
// lattice. The recurrences mirror Viterbi with log-sum-exp in place of
// max.
func Forward(in *Input) (*ForwardTable, error) {
	na, nd := in.dims()
	tab, err := newWork(na, nd)
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
				tab.set(StateM, ii, jj, em+logSumExp3(
					tab.get(StateM, ii-1, jj-1)+w.mm,
					tab.get(StateD, ii-1, jj-1)+w.dm,
					tab.get(StateI, ii-1, jj-1)+w.im))
			}
			if ii > 0 {
				tab.set(StateD, ii, jj, logSumExp3(
					tab.get(StateM, ii-1, jj)+w.md,
					tab.get(StateD, ii-1, jj)+w.dd,
					tab.get(StateI, ii-1, jj)+w.id))
			}
			if jj > 0 {
				tab.set(StateI, ii, jj, logSumExp3(
					tab.get(StateM, ii, jj-1)+w.mi,
					negInf,
					tab.get(StateI, ii, jj-1)+w.ii))
			}
		}
	}
	return &ForwardTable{in: in, tab: tab}, nil
}

// Total returns the log of the summed probability of all alignments,
// terminal corrections included.
func (f *ForwardTable) Total() float64 {
	na, nd := f.tab.na, f.tab.nd
	w := f.in.w
	return logSumExp3(
		f.tab.get(StateM, na-1, nd-1)+w.termM,
		f.tab.get(StateD, na-1, nd-1)+w.termD,
		f.tab.get(StateI, na-1, nd-1)+w.termI)
}

// logSumExp3 combines three log-space values with the max-subtracted
// formula; arguments at the sentinel floor are treated as zero mass.
func logSumExp3(a, b, c float64) float64 {
	max := a
	if b > max {
		max = b
	}
	if c > max {
		max = c
	}
	if max <= negInf {
		return negInf
	}
	sum := 0.0
	if a > negInf {
		sum += math.Exp(a - max)
	}
	if b > negInf {
		sum += math.Exp(b - max)
	}
	if c > negInf {
		sum += math.Exp(c - max)
	}
	return max + math.Log(sum)
}
