package qpas

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// triplet is one (row, col, val) entry of a sparse matrix read off disk,
// in whatever order the instance file lists them.
type triplet struct {
	row, col int
	val      float64
}

// cscFromTriplets assembles a CSC matrix out of unordered triplets via a
// counting-sort pass over columns, the same technique CSC.Transpose uses.
func cscFromTriplets(nrow, ncol int, entries []triplet) *CSC {
	m := &CSC{
		NRow:   nrow,
		NCol:   ncol,
		Colind: make([]int, ncol+1),
		Row:    make([]int, len(entries)),
		Data:   make([]float64, len(entries)),
	}
	for _, t := range entries {
		m.Colind[t.col+1]++
	}
	for c := 0; c < ncol; c++ {
		m.Colind[c+1] += m.Colind[c]
	}
	cursor := append([]int(nil), m.Colind...)
	for _, t := range entries {
		dst := cursor[t.col]
		m.Row[dst] = t.row
		m.Data[dst] = t.val
		cursor[t.col]++
	}
	return m
}

// instanceReader wraps a bufio.Scanner configured to split on any run of
// whitespace, including newlines, so the instance format's one-triplet-
// per-line convention is purely cosmetic.
type instanceReader struct {
	sc  *bufio.Scanner
	err error
}

func newInstanceReader(r io.Reader) *instanceReader {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &instanceReader{sc: sc}
}

func (r *instanceReader) int() int {
	if r.err != nil {
		return 0
	}
	if !r.sc.Scan() {
		r.err = fmt.Errorf("unexpected end of instance")
		return 0
	}
	v, err := strconv.Atoi(r.sc.Text())
	if err != nil {
		r.err = fmt.Errorf("parsing integer: %w", err)
	}
	return v
}

func (r *instanceReader) float() float64 {
	if r.err != nil {
		return 0
	}
	if !r.sc.Scan() {
		r.err = fmt.Errorf("unexpected end of instance")
		return 0
	}
	v, err := strconv.ParseFloat(r.sc.Text(), 64)
	if err != nil {
		r.err = fmt.Errorf("parsing float: %w", err)
	}
	return v
}

// floats reads n consecutive floats, or returns an all-zero slice without
// consuming input if the stream is already exhausted (the trailing
// initial-guess lines are optional).
func (r *instanceReader) floats(n int) []float64 {
	out := make([]float64, n)
	if r.err != nil {
		return out
	}
	for i := 0; i < n; i++ {
		if !r.sc.Scan() {
			return make([]float64, n)
		}
		v, err := strconv.ParseFloat(r.sc.Text(), 64)
		if err != nil {
			r.err = fmt.Errorf("parsing float: %w", err)
			return out
		}
		out[i] = v
	}
	return out
}

func (r *instanceReader) triplets(n int) []triplet {
	out := make([]triplet, n)
	for i := 0; i < n && r.err == nil; i++ {
		out[i] = triplet{row: r.int(), col: r.int(), val: r.float()}
	}
	return out
}

// LoadInstance parses a flat-text QP instance: dimensions, then H and A as
// sparse triplets, then the dense vectors g/lbx/ubx/lba/uba and the
// optional initial guess.
func LoadInstance(path string) (*Problem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return parseInstance(file)
}

func parseInstance(r io.Reader) (*Problem, error) {
	ir := newInstanceReader(r)

	n := ir.int()
	m := ir.int()
	nnzH := ir.int()
	hTriplets := ir.triplets(nnzH)
	nnzA := ir.int()
	aTriplets := ir.triplets(nnzA)

	p := &Problem{
		NX: n,
		NA: m,
		G:  ir.floats(n),
		LBX: ir.floats(n),
		UBX: ir.floats(n),
		LBA: ir.floats(m),
		UBA: ir.floats(m),
	}
	if ir.err != nil {
		return nil, fmt.Errorf("qpas: loading instance: %w", ir.err)
	}

	p.H = symmetrize(cscFromTriplets(n, n, hTriplets))
	p.A = cscFromTriplets(m, n, aTriplets)

	p.X0 = ir.floats(n)
	p.LamX0 = ir.floats(n)
	p.LamA0 = ir.floats(m)
	if ir.err != nil {
		return nil, fmt.Errorf("qpas: loading instance: %w", ir.err)
	}
	return p, nil
}

// symmetrize mirrors the strict lower triangle of a CSC matrix into its
// upper triangle, per the instance format's "lower triangle only" H
// convention.
func symmetrize(lower *CSC) *CSC {
	entries := make([]triplet, 0, 2*lower.Nnz())
	for c := 0; c < lower.NCol; c++ {
		lower.Col(c, func(row int, val float64) {
			entries = append(entries, triplet{row: row, col: c, val: val})
			if row != c {
				entries = append(entries, triplet{row: c, col: row, val: val})
			}
		})
	}
	return cscFromTriplets(lower.NRow, lower.NCol, entries)
}

// FormatResult renders a Result the way qpas_solve prints it: cost, then
// x, lam_x, lam_a one per line.
func FormatResult(res *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "f = %.10g\n", res.F)
	fmt.Fprintf(&b, "x = %v\n", res.X)
	fmt.Fprintf(&b, "lam_x = %v\n", res.LamX)
	fmt.Fprintf(&b, "lam_a = %v\n", res.LamA)
	return b.String()
}
