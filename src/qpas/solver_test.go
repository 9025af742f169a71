package qpas

import (
	"errors"
	"testing"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.PrintIter = false
	opts.PrintHeader = false
	return opts
}

// S1: unconstrained 2x2, closed-form optimum in one Newton step.
func TestUnconstrained2x2(t *testing.T) {
	p := &Problem{
		NX:  2,
		H:   diagCSC(2, 2),
		G:   []float64{-2, -4},
		A:   NewEmptyCSC(0, 2),
		LBX: infVec(2, true),
		UBX: infVec(2, false),
	}
	res, err := NewSolver(testOptions()).Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	assertVecClose(t, res.X, []float64{1, 2}, 1e-8, "x")
	assertClose(t, res.F, -5, 1e-8, "f")
	assertVecClose(t, res.LamX, []float64{0, 0}, 1e-9, "lam_x")
	if res.Iter != 1 {
		t.Fatalf("expected 1 iteration, got %d", res.Iter)
	}
}

// S2: box-constrained, both upper bounds active.
func TestBoxConstrained(t *testing.T) {
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
	assertVecClose(t, res.X, []float64{0.5, 1}, 1e-7, "x")
	assertClose(t, res.F, -4.375, 1e-6, "f")
	assertVecClose(t, res.LamX, []float64{1, 2}, 1e-6, "lam_x")
}

// Non-diagonal H with an active box: H couples x0 and x1, so the KKT
// row for an active bound (a unit row) only matches the residual
// directly if the Newton solve uses K itself, not Kᵗ.
func TestBoxConstrainedCoupledHessian(t *testing.T) {
	h := NewCSC(2, 2, []int{0, 2, 4}, []int{0, 1, 0, 1}, []float64{2, 1, 1, 2})
	p := &Problem{
		NX:  2,
		H:   h,
		G:   []float64{-2, -2},
		A:   NewEmptyCSC(0, 2),
		LBX: infVec(2, true),
		UBX: []float64{0.5, 0.5},
	}
	res, err := NewSolver(testOptions()).Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	assertVecClose(t, res.X, []float64{0.5, 0.5}, 1e-6, "x")
	assertVecClose(t, res.LamX, []float64{0.5, 0.5}, 1e-6, "lam_x")
	assertClose(t, res.F, -1.25, 1e-6, "f")
}

// S3: equality-constrained via lba==uba.
func TestEqualityConstrained(t *testing.T) {
	a := NewCSC(1, 2, []int{0, 1, 2}, []int{0, 0}, []float64{1, 1})
	p := &Problem{
		NX:  2,
		NA:  1,
		H:   diagCSC(1, 1),
		G:   []float64{0, 0},
		A:   a,
		LBX: infVec(2, true),
		UBX: infVec(2, false),
		LBA: []float64{1},
		UBA: []float64{1},
	}
	res, err := NewSolver(testOptions()).Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	assertVecClose(t, res.X, []float64{0.5, 0.5}, 1e-6, "x")
	assertVecClose(t, res.LamA, []float64{-0.5}, 1e-6, "lam_a")
	assertClose(t, res.F, 0.25, 1e-6, "f")
}

// S4: three redundant equality rows forcing a singular KKT at setup;
// the solver must flip a constraint to regain rank rather than hang.
func TestDegenerateActivation(t *testing.T) {
	rows := []int{0, 1, 2, 0, 1, 2, 0, 1, 2}
	vals := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
	colind := []int{0, 3, 6, 9}
	a := NewCSC(3, 3, colind, rows, vals)
	p := &Problem{
		NX:  3,
		NA:  3,
		H:   diagCSC(1, 1, 1),
		G:   []float64{0, 0, 0},
		A:   a,
		LBX: infVec(3, true),
		UBX: infVec(3, false),
		LBA: []float64{0, 0, 0},
		UBA: []float64{0, 0, 0},
	}
	opts := testOptions()
	opts.MaxIter = 200
	res, err := NewSolver(opts).Solve(p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	assertVecClose(t, res.X, []float64{0, 0, 0}, 1e-6, "x")
}

// S5: warm start from a previous solution converges immediately.
func TestWarmStart(t *testing.T) {
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
		t.Fatalf("first solve: %v", err)
	}

	p.X0 = first.X
	p.LamX0 = first.LamX
	second, err := solver.Solve(p)
	if err != nil {
		t.Fatalf("warm start solve: %v", err)
	}
	if second.Iter > 1 {
		t.Fatalf("expected warm start to converge in <=1 iteration, got %d", second.Iter)
	}
	assertVecClose(t, second.X, first.X, 1e-9, "warm start x")
}

// S6: infeasible bounds fail setup immediately.
func TestInfeasibleBounds(t *testing.T) {
	p := &Problem{
		NX:  1,
		H:   diagCSC(1),
		G:   []float64{0},
		A:   NewEmptyCSC(0, 1),
		LBX: []float64{1},
		UBX: []float64{0},
	}
	_, err := NewSolver(testOptions()).Solve(p)
	if !errors.Is(err, ErrInfeasibleBounds) {
		t.Fatalf("expected ErrInfeasibleBounds, got %v", err)
	}
}
