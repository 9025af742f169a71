package qpas

import (
	"errors"
	"math"
)

// Numerical thresholds are first-class constants, not tunable options.
const (
	linIndepTol  = 1e-12
	snapZeroTol  = 1e-14
	tauGuardTol  = 1e-16
	singularTol  = 1e-12
	dmin         = math.SmallestNonzeroFloat64
)

// Sentinel errors returned by Solve. Per spec, no panic ever crosses the
// solver boundary; every failure mode is reported through one of these.
var (
	ErrInfeasibleBounds = errors.New("qpas: infeasible bounds at setup")
	ErrMaxIter          = errors.New("qpas: maximum number of iterations reached")
	ErrStepFailed       = errors.New("qpas: failed to calculate search direction")
)

// Options configures a Solve call.
type Options struct {
	// MaxIter bounds the number of active-set iterations.
	MaxIter int
	// Tol is reserved for callers; unused in the inner loop.
	Tol float64
	// DuToPr weighs dual error against primal error when comparing the two.
	DuToPr float64
	// PrintIter logs one line per iteration through Logger.
	PrintIter bool
	// PrintHeader prints a banner before the first iteration.
	PrintHeader bool
	// Logger receives the iteration log. A nil Logger disables all output.
	Logger *Logger
}

// DefaultOptions returns the spec's default configuration.
func DefaultOptions() Options {
	return Options{
		MaxIter:     1000,
		Tol:         1e-8,
		DuToPr:      1000,
		PrintIter:   true,
		PrintHeader: true,
	}
}

// Problem holds the immutable QP data for a single solve:
//
//	minimize    (1/2) xᵗHx + gᵗx
//	subject to  lbx <= x <= ubx,  lba <= Ax <= uba
type Problem struct {
	NX int // number of primal variables
	NA int // number of linear constraints

	H *CSC // NX x NX, symmetric, both triangles stored
	G []float64
	A *CSC // NA x NX Jacobian

	LBX, UBX []float64
	LBA, UBA []float64

	// Initial guesses; nil entries default to zero.
	X0, LamX0, LamA0 []float64
}

// Result holds a solve's outputs.
type Result struct {
	X      []float64
	F      float64
	LamX   []float64
	LamA   []float64
	Iter   int
	Flag   int // 0 = success, 1 = iteration limit or step failure
}

func fillFloat(dst []float64, src []float64) {
	if src == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	copy(dst, src)
}
