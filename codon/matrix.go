// Package codon builds the 64x64 codon substitution rate matrix and
// its matrix exponential under the MG94/GTR model, and projects the
// result onto the 192x4 marginal emission table the aligner consumes.
package codon

import (
	"math"

	"github.com/skelterjohn/go.matrix"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

// NCodon is the size of the codon state space, stop codons included.
const NCodon = bio.NCodon

// Yang1994 is the persisted fallback 4x4 nucleotide rate matrix (Yang
// 1994), row/column order A, C, G, T. Used whenever no GTR
// exchangeability parameters are supplied.
var Yang1994 = [4][4]float64{
	{-0.818, 0.132, 0.586, 0.100},
	{0.221, -1.349, 0.231, 0.897},
	{0.909, 0.215, -1.322, 0.198},
	{0.100, 0.537, 0.128, -0.765},
}

// DefaultPi is the default nucleotide frequency vector (A, C, G, T).
var DefaultPi = [4]float64{0.308, 0.185, 0.199, 0.308}

// DefaultOmega is the default nonsynonymous/synonymous ratio.
const DefaultOmega = 0.2

// DefaultBranchLength is the default branch length between ancestor
// and descendant.
const DefaultBranchLength = 0.0133

// piTolerance is the floating tolerance for frequency-sum and
// row-sum invariants.
const piTolerance = 1e-6

// GTR holds the six exchangeability parameters of a general
// time-reversible nucleotide model, each expected in [0,1]. A zero
// value (all six zero) signals "use the Yang1994 fallback".
type GTR struct {
	AC, AG, AT, CG, CT, GT float64
}

func (g GTR) allZero() bool {
	return g.AC == 0 && g.AG == 0 && g.AT == 0 && g.CG == 0 && g.CT == 0 && g.GT == 0
}

// validatePi checks that a frequency vector is nonnegative and sums to
// one within tolerance.
func validatePi(pi [4]float64) error {
	sum := 0.0
	for _, p := range pi {
		if p < 0 {
			return errs.New(errs.OutOfRange, "nucleotide frequency must be nonnegative")
		}
		sum += p
	}
	if math.Abs(sum-1) > piTolerance {
		return errs.Newf(errs.OutOfRange, "nucleotide frequencies sum to %v, want 1", sum)
	}
	return nil
}

func validateSigma(g GTR) error {
	for _, s := range []float64{g.AC, g.AG, g.AT, g.CG, g.CT, g.GT} {
		if s < 0 || s > 1 {
			return errs.Newf(errs.OutOfRange, "GTR exchangeability %v out of [0,1]", s)
		}
	}
	return nil
}

// BuildNucRateMatrix builds the 4x4 nucleotide instantaneous rate
// matrix: the GTR kernel gtr(i,j) = sigma_ij * pi_j (diagonal =
// -rowsum) when any exchangeability parameter is nonzero, otherwise
// the persisted Yang1994 matrix verbatim.
func BuildNucRateMatrix(g GTR, pi [4]float64) ([4][4]float64, error) {
	if err := validatePi(pi); err != nil {
		return [4][4]float64{}, err
	}
	if g.allZero() {
		return Yang1994, nil
	}
	if err := validateSigma(g); err != nil {
		return [4][4]float64{}, err
	}
	sigma := [4][4]float64{}
	sigma[bio.A][bio.C], sigma[bio.C][bio.A] = g.AC, g.AC
	sigma[bio.A][bio.G], sigma[bio.G][bio.A] = g.AG, g.AG
	sigma[bio.A][bio.T], sigma[bio.T][bio.A] = g.AT, g.AT
	sigma[bio.C][bio.G], sigma[bio.G][bio.C] = g.CG, g.CG
	sigma[bio.C][bio.T], sigma[bio.T][bio.C] = g.CT, g.CT
	sigma[bio.G][bio.T], sigma[bio.T][bio.G] = g.GT, g.GT

	var q [4][4]float64
	for i := 0; i < 4; i++ {
		rowSum := 0.0
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			q[i][j] = sigma[i][j] * pi[j]
			rowSum += q[i][j]
		}
		q[i][i] = -rowSum
	}
	return q, nil
}

// BuildCodonRateMatrix assembles the 64x64 codon instantaneous rate
// matrix from a 4x4 nucleotide rate matrix, following the MG94
// construction: single-nucleotide-distance transitions only, scaled by
// omega when the substitution is nonsynonymous. It
// returns Q and the stationary weight d = sum_i picod_i * (-Q(i,i)),
// the value Exp divides the branch length by.
func BuildCodonRateMatrix(nucQ [4][4]float64, pi [4]float64, omega float64) (q *matrix.DenseMatrix, scale float64) {
	q = matrix.Zeros(NCodon, NCodon)
	picod := codonFrequencies(pi)

	for i := 0; i < NCodon; i++ {
		for j := 0; j < NCodon; j++ {
			if i == j {
				continue
			}
			if bio.CodonDistance(i, j) != 1 {
				continue
			}
			pos, _ := bio.DiffPosition(i, j)
			bi, bj := codonBaseAt(i, pos), codonBaseAt(j, pos)
			rate := nucQ[bi][bj]
			if !bio.IsSynonymous(i, j) {
				rate *= omega
			}
			q.Set(i, j, rate)
		}
	}
	for i := 0; i < NCodon; i++ {
		rowSum := 0.0
		for j := 0; j < NCodon; j++ {
			if i != j {
				rowSum += q.Get(i, j)
			}
		}
		q.Set(i, i, -rowSum)
	}

	for i := 0; i < NCodon; i++ {
		scale += picod[i] * (-q.Get(i, i))
	}
	return q, scale
}

func codonBaseAt(c, pos int) int {
	b1, b2, b3 := bio.CodonBases(c)
	switch pos {
	case 0:
		return b1
	case 1:
		return b2
	default:
		return b3
	}
}

// codonFrequencies computes pi^cod_i = pi_b1 * pi_b2 * pi_b3 for every
// codon, the independent-positions frequency model.
func codonFrequencies(pi [4]float64) [NCodon]float64 {
	var out [NCodon]float64
	for c := 0; c < NCodon; c++ {
		b1, b2, b3 := bio.CodonBases(c)
		out[c] = pi[b1] * pi[b2] * pi[b3]
	}
	return out
}
