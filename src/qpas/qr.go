package qpas

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// qrFactor wraps gonum's dense QR/SVD factorizations behind the interface
// the rest of the solver expects from the (externally supplied, per spec)
// sparse QR kernel: factor, solve, detect singularity, extract a nullspace
// combination. Symbolic-pattern reuse (sp_v/sp_r/prinv/pc) is dropped since
// gonum re-derives the numeric pattern on every Factorize call; see
// DESIGN.md for the rationale.
type qrFactor struct {
	n   int
	qr  mat.QR
	a   *mat.Dense // kept to build the SVD lazily, only needed when singular
	svd *mat.SVD
}

// factorQR factors the square n x n matrix a.
func factorQR(a *mat.Dense) *qrFactor {
	f := &qrFactor{n: a.RawMatrix().Rows, a: a}
	f.qr.Factorize(a)
	return f
}

// solve computes x in  a*x = b  (trans=false) or  aᵗ*x = b  (trans=true)
// using the cached factorization.
func (f *qrFactor) solve(x, b []float64, trans bool) error {
	dst := mat.NewVecDense(f.n, x)
	rhs := mat.NewVecDense(f.n, append([]float64(nil), b...))
	if err := f.qr.SolveVecTo(dst, trans, rhs); err != nil {
		return fmt.Errorf("qpas: qr solve: %w", err)
	}
	return nil
}

// singular scans the R diagonal and reports how many entries fall below the
// linear-independence tolerance, along with the smallest one.
func (f *qrFactor) singular(tol float64) (count int, minDiag float64, argmin int) {
	var r mat.Dense
	f.qr.RTo(&r)
	argmin = -1
	for i := 0; i < f.n; i++ {
		d := r.At(i, i)
		ad := d
		if ad < 0 {
			ad = -ad
		}
		if argmin == -1 || ad < minDiag {
			minDiag = ad
			argmin = i
		}
		if ad < tol {
			count++
		}
	}
	return count, minDiag, argmin
}

// nullspaceCombination returns the k-th smallest-singular-value right
// singular vector of the original matrix, i.e. a basis vector of its (near)
// nullspace, computed lazily via SVD the first time it's needed.
func (f *qrFactor) nullspaceCombination(k int) []float64 {
	if f.svd == nil {
		f.svd = new(mat.SVD)
		ok := f.svd.Factorize(f.a, mat.SVDFull)
		if !ok {
			// Degenerate fallback: unit vector, better than a crash; the
			// caller's linear-independence test will simply reject it.
			v := make([]float64, f.n)
			if f.n > 0 {
				v[0] = 1
			}
			return v
		}
	}
	var v mat.Dense
	f.svd.VTo(&v)
	col := f.n - 1 - k
	if col < 0 {
		col = 0
	}
	out := make([]float64, f.n)
	for i := 0; i < f.n; i++ {
		out[i] = v.At(i, col)
	}
	return out
}

// nullity returns how many singular values of the matrix fall below tol.
func (f *qrFactor) nullity(tol float64) int {
	if f.svd == nil {
		f.svd = new(mat.SVD)
		if !f.svd.Factorize(f.a, mat.SVDFull) {
			return 0
		}
	}
	vals := f.svd.Values(nil)
	n := 0
	for _, s := range vals {
		if s < tol {
			n++
		}
	}
	if n == 0 {
		n = 1 // the matrix was flagged singular by the caller; guarantee at least one candidate
	}
	return n
}
