package dp

import (
	"github.com/reedacartwright/coati/codon"
	"github.com/reedacartwright/coati/errs"
)

// maxCells bounds how large a DP table this implementation will
// attempt to allocate, so a pathological input fails with
// errs.ResourceExhausted instead of an unrecoverable runtime OOM.
const maxCells = 1 << 28

// Input bundles a validated, encoded sequence pair with the model and
// gap parameters one DP run needs.
type Input struct {
	AncSeq string
	DesSeq string
	Anc    []AncEntry
	Des    []DesEntry
	Model  *codon.Model
	Params Params

	w weights
}

// NewInput validates the gap parameters and both sequences and encodes
// them for the lattice. The ancestor must be unambiguous with length a
// multiple of 3 and of the gap unit; the descendant length must be a
// multiple of the gap unit.
func NewInput(ancSeq, desSeq string, model *codon.Model, p Params) (*Input, error) {
	w, err := newWeights(p)
	if err != nil {
		return nil, err
	}
	anc, err := EncodeAncestor(ancSeq, p.GapLen)
	if err != nil {
		return nil, err
	}
	des, err := EncodeDescendant(desSeq, p.GapLen)
	if err != nil {
		return nil, err
	}
	return &Input{
		AncSeq: ancSeq,
		DesSeq: desSeq,
		Anc:    anc,
		Des:    des,
		Model:  model,
		Params: p,
		w:      w,
	}, nil
}

// dims returns the number of lattice steps along each axis
// (La/g+1, Ld/g+1).
func (in *Input) dims() (na, nd int) {
	g := in.Params.GapLen
	return len(in.Anc)/g + 1, len(in.Des)/g + 1
}

func safeAllocFloat(n int) (buf []float64, err error) {
	if n < 0 || n > maxCells {
		return nil, errs.Newf(errs.ResourceExhausted, "DP table of %d cells exceeds the configured limit", n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, errs.Newf(errs.ResourceExhausted, "failed to allocate DP table: %v", r)
		}
	}()
	return make([]float64, n), nil
}

func safeAllocByte(n int) (buf []byte, err error) {
	if n < 0 || n > maxCells {
		return nil, errs.Newf(errs.ResourceExhausted, "DP back-pointer arena of %d cells exceeds the configured limit", n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, errs.Newf(errs.ResourceExhausted, "failed to allocate back-pointer arena: %v", r)
		}
	}()
	return make([]byte, n), nil
}

// ptrArena is the back-pointer storage, kept separate from the score
// planes so it has the same shape whether the score planes are rolling
// or full.
type ptrArena struct {
	na, nd int
	bp     [nStates][]byte
}

// noPred marks a cell that was never reached.
const noPred byte = 255

func newPtrArena(na, nd int) (*ptrArena, error) {
	a := &ptrArena{na: na, nd: nd}
	for s := 0; s < nStates; s++ {
		buf, err := safeAllocByte(na * nd)
		if err != nil {
			return nil, err
		}
		for i := range buf {
			buf[i] = noPred
		}
		a.bp[s] = buf
	}
	return a, nil
}

func (a *ptrArena) idx(ii, jj int) int {
	return ii*a.nd + jj
}

func (a *ptrArena) set(s State, ii, jj int, pred State) {
	a.bp[s][a.idx(ii, jj)] = byte(pred)
}

func (a *ptrArena) get(s State, ii, jj int) (State, bool) {
	v := a.bp[s][a.idx(ii, jj)]
	if v == noPred {
		return 0, false
	}
	return State(v), true
}

// argmax3 returns the largest of the three candidates and which
// State produced it, breaking ties deterministically in (M, D, I)
// order.
func argmax3(m, d, i float64) (float64, State) {
	best, bestState := m, StateM
	if d > best {
		best, bestState = d, StateD
	}
	if i > best {
		best, bestState = i, StateI
	}
	return best, bestState
}
