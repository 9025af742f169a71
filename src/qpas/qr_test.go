package qpas

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestQRFactorSolveTransposed(t *testing.T) {
	k := mat.NewDense(2, 2, []float64{
		2, 1,
		0, 3,
	})
	f := factorQR(k)

	x := make([]float64, 2)
	if err := f.solve(x, []float64{5, 6}, false); err != nil {
		t.Fatalf("solve: %v", err)
	}
	assertVecClose(t, x, []float64{1.5, 2}, 1e-9, "K*x=b")

	xt := make([]float64, 2)
	if err := f.solve(xt, []float64{4, 7}, true); err != nil {
		t.Fatalf("solve transposed: %v", err)
	}
	var got mat.VecDense
	got.MulVec(k.T(), mat.NewVecDense(2, xt))
	assertVecClose(t, got.RawVector().Data, []float64{4, 7}, 1e-9, "Kᵗ*x=b")
}

func TestQRFactorSingular(t *testing.T) {
	k := mat.NewDense(2, 2, []float64{
		1, 2,
		2, 4,
	})
	f := factorQR(k)
	count, minDiag, argmin := f.singular(singularTol)
	if count == 0 {
		t.Fatalf("expected a near-zero diagonal entry, minDiag=%v", minDiag)
	}
	if argmin < 0 || argmin >= 2 {
		t.Fatalf("argmin out of range: %d", argmin)
	}
}

func TestQRNullspaceCombination(t *testing.T) {
	k := mat.NewDense(2, 2, []float64{
		1, 2,
		2, 4,
	})
	f := factorQR(k)
	v := f.nullspaceCombination(0)
	var got mat.VecDense
	got.MulVec(k, mat.NewVecDense(2, v))
	for i := 0; i < 2; i++ {
		if math.Abs(got.AtVec(i)) > 1e-8 {
			t.Fatalf("K*v should be ~0 for a nullspace vector, got %v at %d", got.AtVec(i), i)
		}
	}
}
