package dp

import (
	"math/bits"

	"github.com/reedacartwright/coati/codon"
)

// emitM returns the log-odds of emitting g aligned columns in state M,
// starting at ancestor position i and descendant position j. Each
// column is a marginal-table lookup M[codon, phase, base]; the table
// entries are already normalized against the background frequency of
// the observed base.
//
// Deletions and insertions carry no emission term: the consumed bases
// score at background frequency, which the same normalization cancels
// exactly, so states D and I contribute transition weights only.
func emitM(anc []AncEntry, des []DesEntry, i, j, g int, m *codon.Marginal, policy AmbPolicy) float64 {
	sum := 0.0
	for k := 0; k < g; k++ {
		a := anc[i+k]
		d := des[j+k]
		logs := &m[a.Codon][a.Phase]
		if !d.IsAmbiguous() {
			sum += logs[d.Base()]
		} else {
			sum += ambEmission(logs, d.Mask, policy)
		}
	}
	return sum
}

// ambEmission scores an ambiguous descendant base against a
// codon/phase row of the marginal table. AVG takes the arithmetic mean
// of the log-odds over the bases in the mask; BEST takes the maximum.
func ambEmission(logs *[4]float64, mask uint8, policy AmbPolicy) float64 {
	if policy == AmbBest {
		best := negInf
		for n := 0; n < 4; n++ {
			if mask&(1<<n) != 0 && logs[n] > best {
				best = logs[n]
			}
		}
		return best
	}
	sum := 0.0
	for n := 0; n < 4; n++ {
		if mask&(1<<n) != 0 {
			sum += logs[n]
		}
	}
	return sum / float64(bits.OnesCount8(mask))
}
