package codon

import (
	"math"

	"github.com/skelterjohn/go.matrix"

	"github.com/reedacartwright/coati/bio"
)

// negInf is the finite sentinel used in place of log(0). It is chosen
// far more negative than any realistic log-probability but small
// enough in magnitude that summing it across a long DP path (millions
// of emissions) cannot itself overflow back around to +/-Inf or NaN,
// unlike math.MaxFloat64/4 which a few additions already exceed.
const negInf = -1e18

// Marginal is the 192x4 (codon, phase, observed nucleotide) table of
// log( sum_{c': phase_p(c')=n} P(c,c') / pi_n ).
type Marginal [bio.NCodon][3][4]float64

// BuildMarginal projects a 64x64 codon transition matrix P onto its
// marginal table, for a given stationary frequency vector pi.
func BuildMarginal(p *matrix.DenseMatrix, pi [4]float64) Marginal {
	var m Marginal
	for c := 0; c < bio.NCodon; c++ {
		for phase := 0; phase < 3; phase++ {
			var sum [4]float64
			for cp := 0; cp < bio.NCodon; cp++ {
				n := codonBaseAt(cp, phase)
				sum[n] += p.Get(c, cp)
			}
			for n := 0; n < 4; n++ {
				m[c][phase][n] = logRatio(sum[n], pi[n])
			}
		}
	}
	return m
}

// logRatio returns log(num/den), clamped to negInf rather than
// producing -Inf or NaN for a zero numerator or denominator.
func logRatio(num, den float64) float64 {
	if num <= 0 || den <= 0 {
		return negInf
	}
	v := math.Log(num / den)
	if v < negInf {
		return negInf
	}
	return v
}
