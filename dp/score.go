package dp

import (
	"strings"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/codon"
	"github.com/reedacartwright/coati/errs"
)

// Score replays a pre-aligned pair column by column, inferring the
// hidden state at each column from which string holds the gap (both
// non-gap is always M), and accumulates the same transition and
// emission weights the aligner would have used. An insertion
// immediately after a deletion is not representable in the model and
// fails with errs.Unmodeled.
func Score(ancAln, desAln string, model *codon.Model, p Params) (float64, error) {
	w, err := newWeights(p)
	if err != nil {
		return 0, err
	}
	if len(ancAln) != len(desAln) {
		return 0, errs.Newf(errs.LengthConstraint,
			"aligned sequences have different lengths (%d vs %d)", len(ancAln), len(desAln))
	}

	anc, err := EncodeAncestor(strings.ReplaceAll(ancAln, "-", ""), 1)
	if err != nil {
		return 0, err
	}

	weight := 0.0
	state := StateM
	ngap := 0
	for i := 0; i < len(ancAln); i++ {
		ancGap := bio.IsGap(ancAln[i])
		desGap := bio.IsGap(desAln[i])
		var next State
		switch {
		case ancGap && desGap:
			return 0, errs.Newf(errs.InvalidInput, "alignment column %d is all gaps", i)
		case ancGap:
			next = StateI
			ngap++
		case desGap:
			next = StateD
		default:
			next = StateM
		}
		if state == StateD && next == StateI {
			return 0, errs.New(errs.Unmodeled, "insertion after deletion is not modeled")
		}
		weight += w.trans(state, next)
		if next == StateM {
			a := anc[i-ngap]
			mask, err := bio.AmbiguityOf(desAln[i])
			if err != nil {
				return 0, err
			}
			e := DesEntry{Mask: mask}
			logs := &model.M[a.Codon][a.Phase]
			if !e.IsAmbiguous() {
				weight += logs[e.Base()]
			} else {
				weight += ambEmission(logs, e.Mask, p.Amb)
			}
		}
		state = next
	}
	weight += w.terminal(state)
	return weight, nil
}
