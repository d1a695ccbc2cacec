package codon

import (
	"math"

	"github.com/skelterjohn/go.matrix"

	"github.com/reedacartwright/coati/errs"
)

// smallScale is a branch length below which P is treated as the
// identity matrix rather than risking numerical noise in the
// exponential.
const smallScale = 1e-30

// EMatrix stores a codon rate matrix together with its stationary
// scale, so that P = exp(Q*t/scale) can be computed for any branch
// length.
type EMatrix struct {
	Q     *matrix.DenseMatrix
	Scale float64
}

// NewEMatrix wraps a rate matrix and its stationary scale. A scale of
// 1 leaves Q unnormalized, which is what the rate-matrix CSV override
// path wants.
func NewEMatrix(q *matrix.DenseMatrix, scale float64) *EMatrix {
	return &EMatrix{Q: q, Scale: scale}
}

// Exp computes P = exp(Q*t/scale) for branch length t by scaling and
// squaring with a 6/6 Pade approximant. The Yang-1994 nucleotide
// kernel is not exactly reversible, so Q may have complex eigenvalues;
// Pade handles that where a real eigendecomposition would not.
func (m *EMatrix) Exp(t float64) (*matrix.DenseMatrix, error) {
	if t <= 0 {
		return nil, errs.Newf(errs.OutOfRange, "branch length must be positive, got %v", t)
	}
	if m.Scale <= 0 || t < smallScale {
		return identity(m.Q.Rows()), nil
	}

	n := m.Q.Rows()
	a := matrix.Zeros(n, n)
	norm := 0.0
	for i := 0; i < n; i++ {
		rowSum := 0.0
		for j := 0; j < n; j++ {
			v := m.Q.Get(i, j) * t / m.Scale
			a.Set(i, j, v)
			rowSum += math.Abs(v)
		}
		if rowSum > norm {
			norm = rowSum
		}
	}

	// Scale A down until its max-abs-row-sum norm is at most 1/2.
	squarings := 0
	for norm > 0.5 {
		norm /= 2
		squarings++
	}
	if squarings > 0 {
		factor := 1 / math.Pow(2, float64(squarings))
		arr := a.Array()
		for i := range arr {
			arr[i] *= factor
		}
	}

	// 6/6 Pade: N = sum c_k A^k, D = sum c_k (-A)^k, P = D^-1 N.
	coeff := [7]float64{
		1, 1.0 / 2, 5.0 / 44, 1.0 / 66, 1.0 / 792, 1.0 / 15840, 1.0 / 665280,
	}
	num := identity(n)
	den := identity(n)
	pow := identity(n)
	for k := 1; k <= 6; k++ {
		pow = matrix.Product(pow, a)
		sign := 1.0
		if k%2 == 1 {
			sign = -1
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				v := coeff[k] * pow.Get(i, j)
				num.Set(i, j, num.Get(i, j)+v)
				den.Set(i, j, den.Get(i, j)+sign*v)
			}
		}
	}
	inv, err := den.Inverse()
	if err != nil {
		return nil, errs.Wrap(errs.ResourceExhausted, "Pade denominator is not invertible", err)
	}
	p := matrix.Product(inv, num)
	for k := 0; k < squarings; k++ {
		p = matrix.Product(p, p)
	}

	// Round numerical noise back into [0,1].
	arr := p.Array()
	for i := range arr {
		if arr[i] < 0 {
			arr[i] = math.Abs(arr[i])
		}
	}
	return p, nil
}

func identity(size int) *matrix.DenseMatrix {
	m := matrix.Zeros(size, size)
	for i := 0; i < size; i++ {
		m.Set(i, i, 1)
	}
	return m
}
