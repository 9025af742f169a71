package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/lanl/highs"
	"gonum.org/v1/gonum/floats"
)

// randomSparseSquare emits a random symmetric positive semidefinite H
// (as its lower triangle only): random sparse off-diagonal entries, with
// each diagonal entry raised by the magnitude of every off-diagonal entry
// in its row and column, so the matrix is diagonally dominant and convex.
func randomSparseSquare(n int, density float64) []triplet {
	diag := make([]float64, n)
	entries := make([]triplet, 0, n)
	for i := 0; i < n; i++ {
		diag[i] = 1 + rand.Float64()*4
		entries = append(entries, triplet{i, i, diag[i]})
		for j := 0; j < i; j++ {
			if rand.Float64() < density {
				v := (rand.Float64()*2 - 1) * 0.5
				entries = append(entries, triplet{i, j, v})
				diag[i] += abs(v)
				diag[j] += abs(v)
			}
		}
	}
	// Re-stamp the diagonal after accumulating off-diagonal mass, so the
	// matrix stays diagonally dominant (hence PSD).
	for k, e := range entries {
		if e.row == e.col {
			entries[k].val = diag[e.row]
		}
	}
	return entries
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

type triplet struct {
	row, col int
	val      float64
}

// randomJacobian samples a random sparse A with a density drawn from a
// normal distribution clamped to [minDensity, 1], mirroring the
// mean/stddev density controls of a set-cover-style instance generator.
func randomJacobian(m, n int, meanDensity, stdDevDensity float64) []triplet {
	entries := make([]triplet, 0, int(float64(m*n)*meanDensity))
	for i := 0; i < m; i++ {
		density := floats.Max([]float64{0, floats.Min([]float64{1, meanDensity + stdDevDensity*rand.NormFloat64()})})
		for j := 0; j < n; j++ {
			if rand.Float64() < density {
				entries = append(entries, triplet{i, j, rand.Float64()*2 - 1})
			}
		}
	}
	return entries
}

// feasibleBounds builds box and linear bounds around a feasible interior
// point and checks, via HiGHS, that the resulting (A, lba, uba, lbx, ubx)
// region isn't empty before the instance is accepted.
func feasibleBounds(m, n int, jac []triplet, rng *rand.Rand) (lbx, ubx, lba, uba []float64, ok bool) {
	lbx = make([]float64, n)
	ubx = make([]float64, n)
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64()*4 - 2
		lbx[i] = x[i] - 1 - rng.Float64()*3
		ubx[i] = x[i] + 1 + rng.Float64()*3
	}

	ax := make([]float64, m)
	for _, t := range jac {
		ax[t.row] += t.val * x[t.col]
	}
	lba = make([]float64, m)
	uba = make([]float64, m)
	for i := 0; i < m; i++ {
		lba[i] = ax[i] - 1 - rng.Float64()*3
		uba[i] = ax[i] + 1 + rng.Float64()*3
	}

	model := &highs.Model{
		ColLower: lbx,
		ColUpper: ubx,
		RowLower: lba,
		RowUpper: uba,
		ColCosts: make([]float64, n),
	}
	for _, t := range jac {
		model.ConstMatrix = append(model.ConstMatrix, highs.Nonzero{Row: t.row, Col: t.col, Val: t.val})
	}
	sol, err := model.Solve()
	if err != nil || sol.Status != highs.Optimal {
		return nil, nil, nil, nil, false
	}
	return lbx, ubx, lba, uba, true
}

func writeVec(b *strings.Builder, v []float64) {
	for i, x := range v {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(b, "%.10g", x)
	}
	b.WriteByte('\n')
}

func writeTriplets(b *strings.Builder, count int, ts []triplet) {
	fmt.Fprintf(b, "%d\n", count)
	for _, t := range ts {
		fmt.Fprintf(b, "%d %d %.10g\n", t.row, t.col, t.val)
	}
}

// GenerateQPInstance emits a random convex QP instance in the qpas
// instance file format, retrying the linear-constraint bounds until
// HiGHS confirms the region is feasible.
func GenerateQPInstance(n, m int, meanDensity, stdDevDensity float64) string {
	rng := rand.New(rand.NewSource(rand.Int63()))
	h := randomSparseSquare(n, meanDensity)
	a := randomJacobian(m, n, meanDensity, stdDevDensity)

	var lbx, ubx, lba, uba []float64
	for attempt := 0; attempt < 20; attempt++ {
		var ok bool
		lbx, ubx, lba, uba, ok = feasibleBounds(m, n, a, rng)
		if ok {
			break
		}
	}
	if lbx == nil {
		// Fall back to unbounded box/linear constraints, which is always
		// feasible, rather than emit a broken instance.
		lbx = make([]float64, n)
		ubx = make([]float64, n)
		lba = make([]float64, m)
		uba = make([]float64, m)
		for i := range lbx {
			lbx[i], ubx[i] = -1e20, 1e20
		}
		for i := range lba {
			lba[i], uba[i] = -1e20, 1e20
		}
	}

	g := make([]float64, n)
	for i := range g {
		g[i] = rng.NormFloat64()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", n, m)
	writeTriplets(&b, len(h), h)
	writeTriplets(&b, len(a), a)
	writeVec(&b, g)
	writeVec(&b, lbx)
	writeVec(&b, ubx)
	writeVec(&b, lba)
	writeVec(&b, uba)
	return b.String()
}

func main() {
	var outPath string
	var n, m int
	var meanDensity, stdDevDensity float64

	flag.StringVar(&outPath, "out", "out.txt", "the output file")
	flag.IntVar(&n, "n", 0, "the number of variables")
	flag.IntVar(&m, "m", 0, "the number of linear constraints")
	flag.Float64Var(&meanDensity, "meand", 0.2, "the Jacobian/Hessian density mean")
	flag.Float64Var(&stdDevDensity, "stddevd", 0.05, "the Jacobian density standard deviation")

	flag.Parse()

	if n == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of variables")
		os.Exit(1)
	}
	if m == 0 {
		fmt.Fprintln(os.Stderr, "Must specify the number of constraints")
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, []byte(GenerateQPInstance(n, m, meanDensity, stdDevDensity)), 0666); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
