package dp

import (
	"math/bits"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

// AncEntry is one ancestor nucleotide position: the codon that
// contains it and its phase (0,1,2) within that codon.
type AncEntry struct {
	Codon int
	Phase int
}

// Base returns the canonical base index this ancestor position holds.
func (e AncEntry) Base() int {
	b1, b2, b3 := bio.CodonBases(e.Codon)
	switch e.Phase {
	case 0:
		return b1
	case 1:
		return b2
	default:
		return b3
	}
}

// DesEntry is one descendant nucleotide position: a 4-bit mask of the
// canonical bases it is consistent with (a single bit for an
// unambiguous call).
type DesEntry struct {
	Mask uint8
}

// IsAmbiguous reports whether this position names more than one
// canonical base.
func (e DesEntry) IsAmbiguous() bool {
	return bits.OnesCount8(e.Mask) > 1
}

// Base returns the single canonical base this entry names. Only valid
// when !IsAmbiguous().
func (e DesEntry) Base() int {
	return bits.TrailingZeros8(e.Mask)
}

// EncodeAncestor validates and encodes the gap-free ancestor sequence.
// Its length must be a multiple of 3 and of the gap unit, and
// ambiguous ancestor codes are rejected.
func EncodeAncestor(seq string, gapLen int) ([]AncEntry, error) {
	la := len(seq)
	if la%3 != 0 {
		return nil, errs.Newf(errs.LengthConstraint, "ancestor length %d is not a multiple of 3", la)
	}
	if la%gapLen != 0 {
		return nil, errs.Newf(errs.LengthConstraint, "ancestor length %d is not a multiple of the gap unit %d", la, gapLen)
	}
	entries := make([]AncEntry, la)
	for start := 0; start < la; start += 3 {
		codon, err := bio.CodonOf(seq[start : start+3])
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, "ancestor contains an ambiguous or invalid codon", err)
		}
		for phase := 0; phase < 3; phase++ {
			entries[start+phase] = AncEntry{Codon: codon, Phase: phase}
		}
	}
	return entries, nil
}

// EncodeDescendant validates and encodes the descendant sequence,
// whose length must be a multiple of the gap unit.
func EncodeDescendant(seq string, gapLen int) ([]DesEntry, error) {
	ld := len(seq)
	if ld%gapLen != 0 {
		return nil, errs.Newf(errs.LengthConstraint, "descendant length %d is not a multiple of the gap unit %d", ld, gapLen)
	}
	entries := make([]DesEntry, ld)
	for i := 0; i < ld; i++ {
		mask, err := bio.AmbiguityOf(seq[i])
		if err != nil {
			return nil, err
		}
		entries[i] = DesEntry{Mask: mask}
	}
	return entries, nil
}
