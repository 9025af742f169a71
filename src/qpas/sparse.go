package qpas

// CSC is a compressed-column sparse matrix triple (ncol, colind[], row[])
// plus the nonzero values, per the polymorphism-over-sparsity convention
// described for the problem data (H, A, Aᵗ).
type CSC struct {
	NRow, NCol int
	Colind     []int // length NCol+1
	Row        []int // length Colind[NCol]
	Data       []float64
}

// NewCSC builds a CSC matrix from column pointers, row indices and values.
// The slices are kept by reference, not copied.
func NewCSC(nrow, ncol int, colind, row []int, data []float64) *CSC {
	return &CSC{NRow: nrow, NCol: ncol, Colind: colind, Row: row, Data: data}
}

// NewEmptyCSC returns an nrow x ncol matrix with no nonzeros.
func NewEmptyCSC(nrow, ncol int) *CSC {
	return &CSC{NRow: nrow, NCol: ncol, Colind: make([]int, ncol+1)}
}

// Nnz reports the number of stored nonzeros.
func (m *CSC) Nnz() int {
	if m.NCol == 0 {
		return 0
	}
	return m.Colind[m.NCol]
}

// Col iterates over the nonzeros of column c via yield(row, value).
func (m *CSC) Col(c int, yield func(row int, val float64)) {
	for k := m.Colind[c]; k < m.Colind[c+1]; k++ {
		yield(m.Row[k], m.Data[k])
	}
}

// Transpose returns Aᵗ, built with a counting-sort pass over the columns of A.
func (m *CSC) Transpose() *CSC {
	nnz := m.Nnz()
	t := &CSC{
		NRow:   m.NCol,
		NCol:   m.NRow,
		Colind: make([]int, m.NRow+1),
		Row:    make([]int, nnz),
		Data:   make([]float64, nnz),
	}
	// Count entries per row of A == per column of Aᵗ.
	for _, r := range m.Row[:nnz] {
		t.Colind[r+1]++
	}
	for i := 0; i < m.NRow; i++ {
		t.Colind[i+1] += t.Colind[i]
	}
	// Scatter, using a cursor copy of colind as the insertion pointer.
	cursor := append([]int(nil), t.Colind...)
	for c := 0; c < m.NCol; c++ {
		for k := m.Colind[c]; k < m.Colind[c+1]; k++ {
			r := m.Row[k]
			dst := cursor[r]
			t.Row[dst] = c
			t.Data[dst] = m.Data[k]
			cursor[r]++
		}
	}
	return t
}

// MulVec computes y := A*x (x has NCol entries, y has NRow entries, y is zeroed first).
func (m *CSC) MulVec(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	for c := 0; c < m.NCol; c++ {
		xv := x[c]
		if xv == 0 {
			continue
		}
		m.Col(c, func(row int, val float64) {
			y[row] += val * xv
		})
	}
}

// AddMulVec computes y += A*x.
func (m *CSC) AddMulVec(x, y []float64) {
	for c := 0; c < m.NCol; c++ {
		xv := x[c]
		if xv == 0 {
			continue
		}
		m.Col(c, func(row int, val float64) {
			y[row] += val * xv
		})
	}
}

// AddMulVecTrans computes y += Aᵗ*x (x has NRow entries, y has NCol entries).
func (m *CSC) AddMulVecTrans(x, y []float64) {
	for c := 0; c < m.NCol; c++ {
		var sum float64
		m.Col(c, func(row int, val float64) {
			sum += val * x[row]
		})
		y[c] += sum
	}
}

// Bilinear computes xᵗ*A*y for a square matrix A.
func (m *CSC) Bilinear(x, y []float64) float64 {
	tmp := make([]float64, m.NRow)
	m.MulVec(y, tmp)
	sum := 0.0
	for i, v := range tmp {
		sum += x[i] * v
	}
	return sum
}
