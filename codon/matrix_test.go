package codon

import (
	"math"
	"testing"
)

func TestBuildModelRowsStochastic(t *testing.T) {
	m, err := BuildModel(Params{
		Name:         "mg94",
		BranchLength: DefaultBranchLength,
		Omega:        DefaultOmega,
		Pi:           DefaultPi,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < NCodon; i++ {
		sum := 0.0
		for j := 0; j < NCodon; j++ {
			v := m.P.Get(i, j)
			if v < 0 || v > 1+1e-6 {
				t.Fatalf("P(%d,%d)=%v out of [0,1]", i, j, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("row %d sums to %v, want 1", i, sum)
		}
	}
}

func TestMarginalInvariant(t *testing.T) {
	m, err := BuildModel(Params{
		Name:         "mg94",
		BranchLength: DefaultBranchLength,
		Omega:        DefaultOmega,
		Pi:           DefaultPi,
	})
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < NCodon; c++ {
		for phase := 0; phase < 3; phase++ {
			sum := 0.0
			for n := 0; n < 4; n++ {
				lp := m.M[c][phase][n]
				if lp <= negInf {
					continue
				}
				sum += m.Pi[n] * math.Exp(lp)
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("codon %d phase %d: sum_n pi_n*exp(M)=%v, want 1", c, phase, sum)
			}
		}
	}
}

func TestCodonDistanceMasksQ(t *testing.T) {
	nucQ, err := BuildNucRateMatrix(GTR{}, DefaultPi)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := BuildCodonRateMatrix(nucQ, DefaultPi, DefaultOmega)
	for i := 0; i < NCodon; i++ {
		for j := 0; j < NCodon; j++ {
			if i == j {
				continue
			}
			if distGT1(i, j) && q.Get(i, j) != 0 {
				t.Errorf("Q(%d,%d)=%v, want 0 for codon distance > 1", i, j, q.Get(i, j))
			}
		}
	}
}

func distGT1(a, b int) bool {
	d := 0
	for _, sh := range []int{4, 2, 0} {
		if (a>>sh)&3 != (b>>sh)&3 {
			d++
		}
	}
	return d > 1
}

func TestBuildNucRateMatrixGTR(t *testing.T) {
	g := GTR{
		AC: 0.009489730, AG: 0.039164824, AT: 0.004318182,
		CG: 0.015438693, CT: 0.038734091, GT: 0.008550000,
	}
	q, err := BuildNucRateMatrix(g, DefaultPi)
	if err != nil {
		t.Fatal(err)
	}
	want := [4][4]float64{
		{-0.010879400, 0.001755600, 0.00779380, 0.00133000},
		{0.002922837, -0.017925237, 0.00307230, 0.01193010},
		{0.012062766, 0.002856158, -0.01755232, 0.00263340},
		{0.001330000, 0.007165807, 0.00170145, -0.01019726},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(q[i][j]-want[i][j]) > 1e-7 {
				t.Errorf("gtr(%d,%d)=%v, want %v", i, j, q[i][j], want[i][j])
			}
		}
	}
}

func TestBuildModelRejectsBadBranchLength(t *testing.T) {
	if _, err := BuildModel(Params{Name: "mg94", BranchLength: 0, Omega: DefaultOmega, Pi: DefaultPi}); err == nil {
		t.Error("expected error for zero branch length")
	}
}

func TestBuildNucRateMatrixRejectsBadSigma(t *testing.T) {
	if _, err := BuildNucRateMatrix(GTR{AC: -0.01}, DefaultPi); err == nil {
		t.Error("expected error for negative sigma")
	}
}

func TestBuildNucRateMatrixRejectsBadPi(t *testing.T) {
	if _, err := BuildNucRateMatrix(GTR{}, [4]float64{0.5, 0.5, 0.5, 0.5}); err == nil {
		t.Error("expected error for pi not summing to 1")
	}
}
