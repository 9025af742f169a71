package qpas

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Invariants 1-3: stationarity, primal feasibility and complementarity
// hold at the optimum returned for a constrained problem.
func TestOptimalityInvariants(t *testing.T) {
	p := &Problem{
		NX:  2,
		H:   diagCSC(2, 2),
		G:   []float64{-2, -4},
		A:   NewEmptyCSC(0, 2),
		LBX: infVec(2, true),
		UBX: []float64{0.5, 1},
	}
	res, err := NewSolver(testOptions()).Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	// Stationarity: H x + g + lam_x == 0 (no A rows here).
	grad := make([]float64, 2)
	p.H.MulVec(res.X, grad)
	for i := range grad {
		grad[i] += p.G[i] + res.LamX[i]
	}
	for i, v := range grad {
		if math.Abs(v) > 1e-6 {
			t.Fatalf("stationarity violated at %d: %v", i, v)
		}
	}

	// Primal feasibility.
	for i := range res.X {
		if res.X[i] < p.LBX[i]-1e-8 || res.X[i] > p.UBX[i]+1e-8 {
			t.Fatalf("x[%d]=%v out of bounds [%v,%v]", i, res.X[i], p.LBX[i], p.UBX[i])
		}
	}

	// Complementarity.
	for i := range res.LamX {
		switch {
		case res.LamX[i] > 0:
			assertClose(t, res.X[i], p.UBX[i], 1e-6, "complementarity ubx")
		case res.LamX[i] < 0:
			assertClose(t, res.X[i], p.LBX[i], 1e-6, "complementarity lbx")
		}
	}
}

// Invariant 6: re-solving from the returned solution is idempotent.
func TestIdempotence(t *testing.T) {
	p := &Problem{
		NX:  2,
		H:   diagCSC(2, 2),
		G:   []float64{-2, -4},
		A:   NewEmptyCSC(0, 2),
		LBX: infVec(2, true),
		UBX: []float64{0.5, 1},
	}
	solver := NewSolver(testOptions())
	first, err := solver.Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	p.X0, p.LamX0 = first.X, first.LamX
	second, err := solver.Solve(p)
	if err != nil {
		t.Fatalf("re-solve: %v", err)
	}
	assertVecClose(t, second.X, first.X, 1e-9, "idempotent x")
	assertVecClose(t, second.LamX, first.LamX, 1e-9, "idempotent lam_x")
	assertClose(t, second.F, first.F, 1e-9, "idempotent f")
}

// Invariant 7: A*z[:nx] == z[nx:] after recompute.
func TestTransposeCorrectness(t *testing.T) {
	a := NewCSC(1, 2, []int{0, 1, 2}, []int{0, 0}, []float64{2, -1})
	p := &Problem{
		NX:  2,
		NA:  1,
		H:   diagCSC(1, 1),
		G:   []float64{0, 0},
		A:   a,
		LBX: infVec(2, true),
		UBX: infVec(2, false),
		LBA: infVec(1, true),
		UBA: infVec(1, false),
		X0:  []float64{3, 5},
	}
	s := newSolveState(p, DefaultOptions().DuToPr)
	if err := s.setupBounds(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	s.recompute()
	want := 2.0*3 - 5
	assertClose(t, s.z[2], want, 1e-12, "A*x")
}

// Invariant 8: solving K*x=b and multiplying back reproduces b.
func TestQRRoundTrip(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	f := factorQR(k)
	b := []float64{1, 2, 3}
	x := make([]float64, 3)
	if err := f.solve(x, b, false); err != nil {
		t.Fatalf("solve: %v", err)
	}
	var got mat.VecDense
	got.MulVec(k, mat.NewVecDense(3, x))
	for i := 0; i < 3; i++ {
		if math.Abs(got.AtVec(i)-b[i]) > 1e-9*(1+math.Abs(b[i])) {
			t.Fatalf("round trip mismatch at %d: got %v want %v", i, got.AtVec(i), b[i])
		}
	}
}
