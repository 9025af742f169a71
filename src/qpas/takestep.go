package qpas

import "math"

// takeStep applies (dz, dlam) scaled by s.tau and restores sign discipline:
// lam never silently crosses zero except for indices flagged neverzero,
// whose sign is allowed to flip; every other lam snaps back to its
// pre-step sign, with a minimum nonzero magnitude of dmin
// (casadi_qp_take_step).
func (s *solveState) takeStep() {
	prevSign := make([]int, s.nz)
	for i := 0; i < s.nz; i++ {
		switch {
		case s.lam[i] > 0:
			prevSign[i] = 1
		case s.lam[i] < 0:
			prevSign[i] = -1
		default:
			prevSign[i] = 0
		}
	}

	axpy(s.nz, s.tau, s.dz, s.z)
	axpy(s.nz, s.tau, s.dlam, s.lam)

	for i := 0; i < s.nz; i++ {
		sign := prevSign[i]
		flipped := sign < 0 && s.lam[i] > 0 || sign >= 0 && s.lam[i] < 0
		if s.neverzero[i] && flipped {
			sign = -sign
		}
		switch sign {
		case -1:
			s.lam[i] = math.Min(s.lam[i], -dmin)
		case 1:
			s.lam[i] = math.Max(s.lam[i], dmin)
		case 0:
			s.lam[i] = 0
		}
	}
}
