// Package bio provides the nucleotide and codon coding tables the rest
// of coati is built on: canonical and IUPAC-ambiguous nucleotide codes,
// codon indices, amino-acid groups and codon distance.
package bio

import (
	"strings"

	"github.com/reedacartwright/coati/errs"
)

// Canonical base indices, in the order codon indices are packed
// (b1*16 + b2*4 + b3).
const (
	A = 0
	C = 1
	G = 2
	T = 3

	NBase  = 4
	NCodon = 64
)

var baseChar = [NBase]byte{'A', 'C', 'G', 'T'}

var baseIndex = map[byte]int{
	'A': A, 'C': C, 'G': G, 'T': T,
}

// ambiguityMask maps an IUPAC nucleotide code (including the four
// canonical bases) to a 4-bit mask of the canonical bases it can stand
// for, bit i set means baseChar[i] is a member.
var ambiguityMask = map[byte]uint8{
	'A': 1 << A,
	'C': 1 << C,
	'G': 1 << G,
	'T': 1 << T,
	'R': 1<<A | 1<<G,
	'Y': 1<<C | 1<<T,
	'S': 1<<C | 1<<G,
	'W': 1<<A | 1<<T,
	'K': 1<<G | 1<<T,
	'M': 1<<A | 1<<C,
	'B': 1<<C | 1<<G | 1<<T,
	'D': 1<<A | 1<<G | 1<<T,
	'H': 1<<A | 1<<C | 1<<T,
	'V': 1<<A | 1<<C | 1<<G,
	'N': 1<<A | 1<<C | 1<<G | 1<<T,
}

// NucOf returns the canonical base index (0..3) for an unambiguous
// nucleotide character, or fails with errs.InvalidInput for any other
// byte, including ambiguity codes. Use AmbiguityOf for those.
func NucOf(c byte) (int, error) {
	idx, ok := baseIndex[c]
	if !ok {
		return 0, errs.Newf(errs.InvalidInput, "not a canonical nucleotide: %q", c)
	}
	return idx, nil
}

// CharOf returns the canonical nucleotide character for a base index
// 0..3.
func CharOf(idx int) byte {
	return baseChar[idx]
}

// AmbiguityOf returns the 4-bit mask of canonical bases an IUPAC
// nucleotide code can represent. The mask is never zero for a valid
// code; an unrecognized byte fails with errs.InvalidInput.
func AmbiguityOf(c byte) (uint8, error) {
	mask, ok := ambiguityMask[c]
	if !ok {
		return 0, errs.Newf(errs.InvalidInput, "not a valid IUPAC nucleotide code: %q", c)
	}
	return mask, nil
}

// IsGap reports whether c is the alignment gap symbol.
func IsGap(c byte) bool {
	return c == '-'
}

// CodonOf packs a three-character unambiguous codon string into its
// 0..63 index.
func CodonOf(s string) (int, error) {
	if len(s) != 3 {
		return 0, errs.Newf(errs.InvalidInput, "codon must be 3 characters, got %q", s)
	}
	b1, err := NucOf(s[0])
	if err != nil {
		return 0, err
	}
	b2, err := NucOf(s[1])
	if err != nil {
		return 0, err
	}
	b3, err := NucOf(s[2])
	if err != nil {
		return 0, err
	}
	return b1*16 + b2*4 + b3, nil
}

// CodonBases unpacks a codon index 0..63 into its three base indices.
func CodonBases(c int) (b1, b2, b3 int) {
	b1 = (c >> 4) & 3
	b2 = (c >> 2) & 3
	b3 = c & 3
	return
}

// CodonString renders a codon index 0..63 as its three-letter string.
func CodonString(c int) string {
	b1, b2, b3 := CodonBases(c)
	return string([]byte{baseChar[b1], baseChar[b2], baseChar[b3]})
}

// CodonDistance returns the number of nucleotide positions at which
// codons a and b differ, 0..3.
func CodonDistance(a, b int) int {
	a1, a2, a3 := CodonBases(a)
	b1, b2, b3 := CodonBases(b)
	d := 0
	if a1 != b1 {
		d++
	}
	if a2 != b2 {
		d++
	}
	if a3 != b3 {
		d++
	}
	return d
}

// DiffPosition returns the 0-based position (0, 1 or 2) at which
// codons a and b differ, assuming CodonDistance(a, b) == 1. The second
// return value is false if the codons are identical or differ at more
// than one position.
func DiffPosition(a, b int) (int, bool) {
	a1, a2, a3 := CodonBases(a)
	b1, b2, b3 := CodonBases(b)
	pos, n := -1, 0
	if a1 != b1 {
		pos, n = 0, n+1
	}
	if a2 != b2 {
		pos, n = 1, n+1
	}
	if a3 != b3 {
		pos, n = 2, n+1
	}
	if n != 1 {
		return 0, false
	}
	return pos, true
}

// GeneticCode maps a codon string (capital letters) to its amino acid
// letter; stop codons map to '_'.
var GeneticCode = map[string]byte{
	"ATA": 'I', "ATC": 'I', "ATT": 'I', "ATG": 'M',
	"ACA": 'T', "ACC": 'T', "ACG": 'T', "ACT": 'T',
	"AAC": 'N', "AAT": 'N', "AAA": 'K', "AAG": 'K',
	"AGC": 'S', "AGT": 'S', "AGA": 'R', "AGG": 'R',
	"CTA": 'L', "CTC": 'L', "CTG": 'L', "CTT": 'L',
	"CCA": 'P', "CCC": 'P', "CCG": 'P', "CCT": 'P',
	"CAC": 'H', "CAT": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGA": 'R', "CGC": 'R', "CGG": 'R', "CGT": 'R',
	"GTA": 'V', "GTC": 'V', "GTG": 'V', "GTT": 'V',
	"GCA": 'A', "GCC": 'A', "GCG": 'A', "GCT": 'A',
	"GAC": 'D', "GAT": 'D', "GAA": 'E', "GAG": 'E',
	"GGA": 'G', "GGC": 'G', "GGG": 'G', "GGT": 'G',
	"TCA": 'S', "TCC": 'S', "TCG": 'S', "TCT": 'S',
	"TTC": 'F', "TTT": 'F', "TTA": 'L', "TTG": 'L',
	"TAC": 'Y', "TAT": 'Y', "TAA": '_', "TAG": '_',
	"TGC": 'C', "TGT": 'C', "TGA": '_', "TGG": 'W',
}

// aminoGroupLetters lists the 20 amino acids plus the stop group, fixing
// the 0..20 group tag for each.
var aminoGroupLetters = []byte("ACDEFGHIKLMNPQRSTVWY_")

var aminoGroupIndex = func() map[byte]int {
	m := make(map[byte]int, len(aminoGroupLetters))
	for i, letter := range aminoGroupLetters {
		m[letter] = i
	}
	return m
}()

// aminoGroupByCodon is precomputed at init time: codon index -> group
// tag 0..20.
var aminoGroupByCodon [NCodon]int

func init() {
	for c := 0; c < NCodon; c++ {
		letter := GeneticCode[CodonString(c)]
		aminoGroupByCodon[c] = aminoGroupIndex[letter]
	}
}

// AminoGroup returns the amino-acid group tag (0..20, 20 being stop)
// for a codon index 0..63.
func AminoGroup(c int) int {
	return aminoGroupByCodon[c]
}

// IsStopGroup reports whether group (as returned by AminoGroup) is the
// stop-codon group.
func IsStopGroup(group int) bool {
	return group == aminoGroupIndex['_']
}

// IsSynonymous reports whether two codons share an amino-acid group.
func IsSynonymous(a, b int) bool {
	return AminoGroup(a) == AminoGroup(b)
}

// Clean uppercases a sequence and strips whitespace, the normalization
// every file reader applies before validating nucleotide content.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			continue
		}
		b.WriteByte(c)
	}
	return strings.ToUpper(b.String())
}

// Sequence is a named, unaligned or aligned nucleotide sequence.
type Sequence struct {
	Name string
	Seq  string
}

// Sequences is an ordered collection of sequences, e.g. a FASTA file's
// contents or an alignment pair.
type Sequences []Sequence

// Names returns the names of all sequences, in order.
func (seqs Sequences) Names() []string {
	names := make([]string, len(seqs))
	for i, s := range seqs {
		names[i] = s.Name
	}
	return names
}

// ValidateNucleotides checks that every character in s is a canonical
// base or IUPAC ambiguity code (gap characters are rejected: this is
// meant for unaligned input).
func ValidateNucleotides(s string) error {
	for i := 0; i < len(s); i++ {
		if _, err := AmbiguityOf(s[i]); err != nil {
			return errs.Newf(errs.InvalidInput, "invalid nucleotide %q at position %d", s[i], i)
		}
	}
	return nil
}
