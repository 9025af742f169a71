package qpas

import "gonum.org/v1/gonum/mat"

// buildKKT assembles the dense nz x nz KKT matrix for the current active
// set. Row i<nx is either the stationarity row for variable i (H row / A
// row, when the box is inactive) or a unit row pinning lam_x[i] (when
// active). Row i=nx+j is either the slack-definition row for constraint j
// (when inactive) or the row of A (when active). This mirrors
// casadi_qp_kkt's row-by-row fill exactly, materialized densely instead of
// through a precomputed sparsity pattern.
func (s *solveState) buildKKT() *mat.Dense {
	k := mat.NewDense(s.nz, s.nz, nil)
	row := make([]float64, s.nz)
	for i := 0; i < s.nz; i++ {
		for j := range row {
			row[j] = 0
		}
		s.kktColumn(row, i, s.lam[i] != 0)
		k.SetRow(i, row)
	}
	return k
}

// kktColumn fills dst (length nz, assumed pre-zeroed by the caller) with the
// contribution index i would make to the KKT matrix if lam[i]'s activity
// were active (instead of whatever it currently is). Used both to build the
// real KKT row-by-row and, with a hypothetical sign, by the flip/regularity
// checks (casadi_qp_kkt_column).
func (s *solveState) kktColumn(dst []float64, i int, active bool) {
	if i < s.nx {
		if !active {
			s.h.Col(i, func(row int, val float64) { dst[row] = val })
			s.a.Col(i, func(row int, val float64) { dst[s.nx+row] = val })
		} else {
			dst[i] = 1
		}
		return
	}
	j := i - s.nx
	if !active {
		dst[i] = -1
	} else {
		s.at.Col(j, func(row int, val float64) { dst[row] = val })
	}
}

// kktDot computes the scalar product of v against the same per-index
// contribution kktColumn would fill in, without materializing the vector
// (casadi_qp_kkt_dot).
func (s *solveState) kktDot(v []float64, i int, active bool) float64 {
	if i < s.nx {
		if !active {
			d := 0.0
			s.h.Col(i, func(row int, val float64) { d += v[row] * val })
			s.a.Col(i, func(row int, val float64) { d += v[s.nx+row] * val })
			return d
		}
		return v[i]
	}
	j := i - s.nx
	if !active {
		return -v[i]
	}
	d := 0.0
	s.at.Col(j, func(row int, val float64) { d += v[row] * val })
	return d
}
