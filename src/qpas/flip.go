package qpas

import (
	"fmt"
	"math"

	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

// duCheck reports the dual infeasibility that would result from driving
// lam[i] to zero, i.e. the worst |infeas[k]| over every row that i
// contributes to (casadi_qp_du_check).
func (s *solveState) duCheck(i int) float64 {
	if i < s.nx {
		return math.Abs(s.infeas[i] - s.lam[i])
	}
	j := i - s.nx
	worst := 0.0
	s.at.Col(j, func(row int, val float64) {
		if v := math.Abs(s.infeas[row] - val*s.lam[i]); v > worst {
			worst = v
		}
	})
	return worst
}

// prIndex proposes activating the most-violated bound, when it isn't
// already active (casadi_qp_pr_index).
func (s *solveState) prIndex() (index, sign int) {
	if s.lam[s.ipr] != 0 {
		return noHint, 0
	}
	sign = 1
	if s.z[s.ipr] < s.lbz[s.ipr] {
		sign = -1
	}
	s.note = fmt.Sprintf("Added %d to reduce |pr|", s.ipr)
	return s.ipr, sign
}

// duIndex looks for a multiplier whose removal would relieve the worst
// dual infeasibility without creating a new one (casadi_qp_du_index).
func (s *solveState) duIndex() (index, sign int) {
	w := make([]float64, s.nz)
	if s.infeas[s.idu] > 0 {
		w[s.idu] = -1
	} else {
		w[s.idu] = 1
	}
	s.a.AddMulVec(w[:s.nx], w[s.nx:])

	best, bestW := noHint, 0.0
	for i := 0; i < s.nz; i++ {
		if w[i] == 0 {
			continue
		}
		if w[i] > 0 {
			if s.lam[i] >= 0 {
				continue
			}
		} else if s.lam[i] <= 0 {
			continue
		}
		if s.duCheck(i) > s.du {
			continue
		}
		if math.Abs(w[i]) > bestW {
			bestW = math.Abs(w[i])
			best = i
		}
	}
	if best < 0 {
		return noHint, 0
	}
	s.note = fmt.Sprintf("Removed %d to reduce |du|", best)
	return best, 0
}

// flipCheck estimates whether setting index to the given sign (0 meaning
// inactive) would make the KKT matrix singular, and if so, looks for a
// second constraint
// to flip at the same time to preserve rank. Returns noHint if the new
// column is already independent of the current basis or no companion
// flip is needed/found (casadi_qp_flip_check).
func (s *solveState) flipCheck(index, sign int, e float64) (rIndex, rSign int) {
	addCol := make([]float64, s.nz)
	s.kktColumn(addCol, index, sign != 0)
	wz := make([]float64, s.nz)
	if err := s.qrf.solve(wz, addCol, true); err != nil {
		return noHint, 0
	}
	if math.Abs(wz[index]) >= linIndepTol {
		return noHint, 0
	}

	removeCol := make([]float64, s.nz)
	s.kktColumn(removeCol, index, sign == 0)

	candidates := priorityqueue.New[flipCandidate, float64](priorityqueue.MinHeap)
	for i := 0; i < s.nz; i++ {
		if i == index {
			continue
		}
		if s.lam[i] == 0 {
			if s.neverlower[i] && s.neverupper[i] {
				continue
			}
		} else if s.neverzero[i] {
			continue
		}
		if math.Abs(wz[i]) < linIndepTol {
			continue
		}
		if math.Abs(s.kktDot(removeCol, i, s.lam[i] == 0)) < linIndepTol {
			continue
		}
		var ns int
		var slack float64
		if s.lam[i] == 0 {
			if s.lbz[i]-s.z[i] >= s.z[i]-s.ubz[i] {
				ns = -1
			} else {
				ns = 1
			}
		} else {
			if s.duCheck(i) > e {
				continue
			}
			if s.lam[i] > 0 {
				slack = s.ubz[i] - s.z[i]
			} else {
				slack = s.z[i] - s.lbz[i]
			}
		}
		// Ranked by slack descending: the candidate that leaves the most
		// room before its own bound is preferred.
		candidates.Put(flipCandidate{Index: i, Sign: ns}, -slack)
	}
	if candidates.Len() == 0 {
		return noHint, 0
	}
	best := candidates.Get()
	return best.Value.Index, best.Value.Sign
}

// flipCandidate is the priority-queue key for flipCheck's companion search.
type flipCandidate struct {
	Index, Sign int
}

// signedDmin returns the smallest-magnitude multiplier consistent with
// sign: zero for sign==0, otherwise +-dmin.
func signedDmin(sign int) float64 {
	switch sign {
	case -1:
		return -dmin
	case 1:
		return dmin
	default:
		return 0
	}
}

// flip decides on, and applies, one active-set change per call: first it
// considers the regularity hint from the last step calculation, then (if
// the hint was empty) tries to improve whichever of primal/dual
// feasibility is worse. When the chosen change (activation or removal)
// risks singularity, it also looks for a companion constraint to flip.
// Returns flipPending when a change was applied, or noHint when the
// active set is already optimal (casadi_qp_flip).
func (s *solveState) flip(index, sign, rIndex, rSign int) (int, int) {
	e := math.Max(s.duToPr*s.pr, s.du)

	if rIndex >= 0 && (rSign != 0 || s.duCheck(rIndex) <= e) {
		index, sign = rIndex, rSign
		s.note = fmt.Sprintf("%d->%d for regularity", index, sign)
	}

	if index == noHint && s.tau > tauGuardTol && (s.ipr >= 0 || s.idu >= 0) {
		if s.duToPr*s.pr >= s.du {
			index, sign = s.prIndex()
		} else {
			index, sign = s.duIndex()
		}
	}

	if index >= 0 {
		if s.sing == 0 {
			if fIndex, fSign := s.flipCheck(index, sign, e); fIndex >= 0 {
				s.lam[fIndex] = signedDmin(fSign)
				s.note = fmt.Sprintf("%d->%d, %d->%d", index, sign, fIndex, fSign)
			}
		}
		s.lam[index] = signedDmin(sign)
		s.recompute()
		index = flipPending
	}
	return index, sign
}
