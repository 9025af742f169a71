package qpas

import "testing"

func TestCSCMulVec(t *testing.T) {
	// [[2, 0], [1, 3]]
	m := NewCSC(2, 2, []int{0, 2, 3}, []int{0, 1, 1}, []float64{2, 1, 3})
	x := []float64{5, 7}
	y := make([]float64, 2)
	m.MulVec(x, y)
	assertVecClose(t, y, []float64{10, 26}, 1e-12, "mulvec")
}

func TestCSCTransposeRoundTrip(t *testing.T) {
	m := NewCSC(2, 3, []int{0, 2, 3, 4}, []int{0, 1, 1, 0}, []float64{1, 2, 3, 4})
	tr := m.Transpose()
	if tr.NRow != 3 || tr.NCol != 2 {
		t.Fatalf("transpose dims: got %dx%d", tr.NRow, tr.NCol)
	}
	if tr.Nnz() != m.Nnz() {
		t.Fatalf("transpose nnz mismatch: got %d want %d", tr.Nnz(), m.Nnz())
	}

	x := []float64{3, -1, 2}
	y := make([]float64, 2)
	m.MulVec(x, y)

	yt := make([]float64, 2)
	tr.AddMulVecTrans(x, yt)
	assertVecClose(t, yt, y, 1e-12, "A*x via AddMulVecTrans(Aᵗ)")
}

func TestCSCAddMulVecAccumulates(t *testing.T) {
	m := diagCSC(2, 3)
	y := []float64{10, 10}
	m.AddMulVec([]float64{1, 1}, y)
	assertVecClose(t, y, []float64{12, 13}, 1e-12, "accumulate")
}

func TestCSCBilinear(t *testing.T) {
	m := diagCSC(2, 3)
	got := m.Bilinear([]float64{1, 2}, []float64{1, 2})
	assertClose(t, got, 1*2*1+2*3*2, 1e-12, "bilinear")
}

func TestCSCAddMulVecTransEmpty(t *testing.T) {
	m := NewEmptyCSC(0, 3)
	y := []float64{1, 2, 3}
	m.AddMulVecTrans(nil, y)
	assertVecClose(t, y, []float64{1, 2, 3}, 1e-12, "no-op on empty matrix")
}
