package qpas

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// recompute refreshes every quantity that depends on z and lam: the
// objective, the constraint slacks, the Lagrangian gradient (infeas), and
// the primal/dual error summaries (casadi_qp_calc_dependent).
func (s *solveState) recompute() {
	x := s.z[:s.nx]

	// f = 1/2 xᵗHx + gᵗx
	s.f = s.h.Bilinear(x, x)/2 + dot(x, s.g)

	// z[nx:] = A*x
	s.a.MulVec(x, s.z[s.nx:])

	// infeas = g + H*x + Aᵗ*lam_a
	copy(s.infeas, s.g)
	s.h.AddMulVec(x, s.infeas)
	s.a.AddMulVecTrans(s.lam[s.nx:], s.infeas)

	// lam_x is driven to -infeas without changing sign, which also turns
	// infeas into the true Lagrangian gradient for the box multipliers.
	for i := 0; i < s.nx; i++ {
		switch {
		case s.lam[i] > 0:
			s.lam[i] = math.Max(-s.infeas[i], dmin)
		case s.lam[i] < 0:
			s.lam[i] = math.Min(-s.infeas[i], -dmin)
		}
		s.infeas[i] += s.lam[i]
	}

	s.computePrimalError()
	s.computeDualError()
}

// computePrimalError finds the most-violated bound, if any, by reducing
// each component to its worst-case violation and taking the argmax.
func (s *solveState) computePrimalError() {
	viol := make([]float64, s.nz)
	for i := 0; i < s.nz; i++ {
		viol[i] = math.Max(s.z[i]-s.ubz[i], s.lbz[i]-s.z[i])
	}
	i := floats.MaxIdx(viol)
	if viol[i] > 0 {
		s.pr, s.ipr = viol[i], i
	} else {
		s.pr, s.ipr = 0, -1
	}
}

// computeDualError finds the largest-magnitude Lagrangian-gradient
// residual among the box multipliers.
func (s *solveState) computeDualError() {
	if s.nx == 0 {
		s.du, s.idu = 0, -1
		return
	}
	absInfeas := make([]float64, s.nx)
	for i, v := range s.infeas[:s.nx] {
		absInfeas[i] = math.Abs(v)
	}
	i := floats.MaxIdx(absInfeas)
	if absInfeas[i] > 0 {
		s.du, s.idu = absInfeas[i], i
	} else {
		s.du, s.idu = 0, -1
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}
