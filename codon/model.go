package codon

import (
	"github.com/skelterjohn/go.matrix"

	"github.com/reedacartwright/coati/errs"
)

// Model bundles everything the aligner needs from the substitution
// model: the transition matrix, its marginal projection and the
// stationary frequencies it was built from.
type Model struct {
	P    *matrix.DenseMatrix
	M    Marginal
	Pi   [4]float64
	Name string
}

// Params configures BuildModel.
type Params struct {
	Name         string // mg94|marginal|m-coati|dna|ecm|m-ecm|coati
	BranchLength float64
	Omega        float64
	Pi           [4]float64
	GTR          GTR
}

// BuildModel constructs the substitution matrix and marginal table for
// one of the named models. All the named models share the same
// MG94-derived marginal aligner interface; the "dna"/"ecm"/"m-ecm"/"coati"
// variants use omega=1 (no codon-level selection term) in place of the
// full MG94 kernel.
func BuildModel(p Params) (*Model, error) {
	if p.BranchLength <= 0 {
		return nil, errs.Newf(errs.OutOfRange, "branch length must be positive, got %v", p.BranchLength)
	}
	omega := p.Omega
	switch p.Name {
	case "mg94", "marginal", "m-coati":
		// use omega as given
	case "dna", "ecm", "m-ecm", "coati":
		omega = 1
	default:
		return nil, errs.Newf(errs.InvalidInput, "unknown model %q", p.Name)
	}

	nucQ, err := BuildNucRateMatrix(p.GTR, p.Pi)
	if err != nil {
		return nil, err
	}
	q, scale := BuildCodonRateMatrix(nucQ, p.Pi, omega)
	em := NewEMatrix(q, scale)
	pm, err := em.Exp(p.BranchLength)
	if err != nil {
		return nil, err
	}
	return &Model{
		P:    pm,
		M:    BuildMarginal(pm, p.Pi),
		Pi:   p.Pi,
		Name: p.Name,
	}, nil
}

// BuildModelFromP builds a Model directly from a precomputed
// transition matrix.
func BuildModelFromP(p *matrix.DenseMatrix, pi [4]float64) *Model {
	return &Model{
		P:  p,
		M:  BuildMarginal(p, pi),
		Pi: pi,
	}
}

// BuildModelFromRates builds a Model from a user-supplied
// instantaneous rate matrix and the branch length that accompanied it,
// bypassing the MG94 construction entirely: P = exp(Q*t) with no
// stationary rescaling.
func BuildModelFromRates(q *matrix.DenseMatrix, brlen float64, pi [4]float64) (*Model, error) {
	p, err := NewEMatrix(q, 1).Exp(brlen)
	if err != nil {
		return nil, err
	}
	m := BuildModelFromP(p, pi)
	m.Name = "user"
	return m, nil
}
