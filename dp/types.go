// Package dp implements the three-state affine-gap dynamic program
// that is the core of coati: Viterbi alignment, forward scoring and
// stochastic sampleback over the codon-phased marginal emission model.
package dp

import (
	"math"

	"github.com/reedacartwright/coati/errs"
)

// State names the three hidden states of the pair-HMM.
type State int

const (
	StateM State = iota
	StateD
	StateI

	nStates = 3
)

func (s State) String() string {
	switch s {
	case StateM:
		return "M"
	case StateD:
		return "D"
	case StateI:
		return "I"
	default:
		return "?"
	}
}

// AmbPolicy selects how an ambiguous descendant nucleotide is scored
// against the marginal table.
type AmbPolicy int

const (
	AmbAvg AmbPolicy = iota
	AmbBest
)

// negInf is the DP's unreachable-cell sentinel, shared with the
// codon package's marginal table sentinel so the two compose without
// overflow.
const negInf = -1e18

// Default affine-gap parameters.
const (
	DefaultGapOpen   = 0.001
	DefaultGapExtend = 1.0 - 1.0/6.0
	DefaultGapLen    = 1
)

// Params configures the affine-gap model.
type Params struct {
	GapOpen   float64 // per-site gap-opening probability, (0,1)
	GapExtend float64 // per-site gap-extension probability, (0,1)
	GapLen    int // 1 or 3
	Amb       AmbPolicy
}

func (p Params) validate() error {
	if p.GapOpen <= 0 || p.GapOpen >= 1 {
		return errs.Newf(errs.OutOfRange, "gap open probability %v must be in (0,1)", p.GapOpen)
	}
	if p.GapExtend <= 0 || p.GapExtend >= 1 {
		return errs.Newf(errs.OutOfRange, "gap extend probability %v must be in (0,1)", p.GapExtend)
	}
	if p.GapLen != 1 && p.GapLen != 3 {
		return errs.Newf(errs.InvalidInput, "gap unit length must be 1 or 3, got %d", p.GapLen)
	}
	return nil
}

// weights holds the log-space transition weights derived from Params,
// per the table in the DP aligner design.
type weights struct {
	// transition-only log weights (emission is added separately)
	mm, md, mi float64
	dm, dd     float64
	im, id, ii float64
	// terminal corrections added when leaving the last cell
	termM, termD, termI float64
}

func newWeights(p Params) (weights, error) {
	if err := p.validate(); err != nil {
		return weights{}, err
	}
	gbar := math.Log1p(-p.GapOpen)
	ebar := math.Log1p(-p.GapExtend)
	logOpen := math.Log(p.GapOpen)
	logExtend := math.Log(p.GapExtend)

	return weights{
		mm: 2 * gbar,
		md: gbar + logOpen,
		mi: logOpen,
		dm: ebar,
		dd: logExtend,
		im: ebar + gbar,
		id: ebar + logOpen,
		ii: logExtend,

		termM: gbar,
		termD: 0,
		termI: ebar,
	}, nil
}

// trans returns the transition-only log weight from `from` into `to`.
// D->I is forbidden and returns negInf.
func (w weights) trans(from, to State) float64 {
	switch from {
	case StateM:
		switch to {
		case StateM:
			return w.mm
		case StateD:
			return w.md
		case StateI:
			return w.mi
		}
	case StateD:
		switch to {
		case StateM:
			return w.dm
		case StateD:
			return w.dd
		case StateI:
			return negInf
		}
	case StateI:
		switch to {
		case StateM:
			return w.im
		case StateD:
			return w.id
		case StateI:
			return w.ii
		}
	}
	return negInf
}

func (w weights) terminal(s State) float64 {
	switch s {
	case StateM:
		return w.termM
	case StateD:
		return w.termD
	default:
		return w.termI
	}
}
