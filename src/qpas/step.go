package qpas

import (
	"math"
)

// flipHint names a constraint the regularity-repair pass would like flipped
// (or dropped, sign==0) on the next active-set decision.
type flipHint struct {
	Index int
	Sign  int // -1: lower bound active, 0: inactive, +1: upper bound active
}

const noHint = -1

// flipPending marks an active-set index that has just been changed this
// iteration, distinct from noHint (-1), which the main loop reads as
// "no change, optimal". Any value other than -1 works; casadi uses -2.
const flipPending = -2

func noFlipHint() flipHint { return flipHint{Index: noHint} }

// kktResidual fills r (length nz) with the negative KKT residual used as
// the right-hand side of the Newton step (casadi_qp_kkt_residual).
func (s *solveState) kktResidual(r []float64) {
	for i := 0; i < s.nz; i++ {
		switch {
		case s.lam[i] > 0:
			r[i] = s.ubz[i] - s.z[i]
		case s.lam[i] < 0:
			r[i] = s.lbz[i] - s.z[i]
		case i < s.nx:
			r[i] = s.lam[i] - s.infeas[i]
		default:
			r[i] = s.lam[i]
		}
	}
}

// calcStep computes the Newton-like step (dz, dlam, tinfeas) and, when the
// KKT is singular, rescales it to a rank-restoring direction that does not
// worsen max(pr, du). Mirrors casadi_qp_calc_step + casadi_qp_scale_step.
func (s *solveState) calcStep() (flipHint, error) {
	if s.sing == 0 {
		r := make([]float64, s.nz)
		s.kktResidual(r)
		if err := s.qrf.solve(s.dz, r, false); err != nil {
			return noFlipHint(), err
		}
	} else {
		copy(s.dz, s.qrf.nullspaceCombination(0))
	}

	// dlam[:nx] = -(H*dz[:nx] + Aᵗ*dz[nx:]); dz[nx:] still holds the raw
	// solved dlam_a contribution at this point.
	for i := 0; i < s.nx; i++ {
		s.dlam[i] = 0
	}
	s.h.AddMulVec(s.dz[:s.nx], s.dlam[:s.nx])
	s.a.AddMulVecTrans(s.dz[s.nx:], s.dlam[:s.nx])
	for i := 0; i < s.nx; i++ {
		s.dlam[i] = -s.dlam[i]
		if s.lam[i] == 0 {
			s.dlam[i] = 0
		}
	}
	copy(s.dlam[s.nx:], s.dz[s.nx:])

	// dz[nx:] := A*dz[:nx], the true constraint-value step.
	for i := s.nx; i < s.nz; i++ {
		s.dz[i] = 0
	}
	s.a.MulVec(s.dz[:s.nx], s.dz[s.nx:])

	for i := 0; i < s.nz; i++ {
		if math.Abs(s.dz[i]) < snapZeroTol {
			s.dz[i] = 0
		}
	}

	for i := 0; i < s.nx; i++ {
		s.tinfeas[i] = 0
	}
	s.h.AddMulVec(s.dz[:s.nx], s.tinfeas)
	s.a.AddMulVecTrans(s.dlam[s.nx:], s.tinfeas)
	for i := 0; i < s.nx; i++ {
		s.tinfeas[i] += s.dlam[i]
	}

	return s.scaleStep()
}

// scaleStep implements the singular branch of the step calculator: find the
// scalar tau that both restores rank and does not increase max(pr, du),
// scaling (dz, dlam, tinfeas) so that tau=1 is a full step (casadi_qp_scale_step).
func (s *solveState) scaleStep() (flipHint, error) {
	if s.sing == 0 {
		return noFlipHint(), nil
	}

	tpr := 0.0
	if s.ipr >= 0 {
		if s.z[s.ipr] > s.ubz[s.ipr] {
			tpr = s.dz[s.ipr] / s.pr
		} else {
			tpr = -s.dz[s.ipr] / s.pr
		}
	}
	tdu := 0.0
	if s.idu >= 0 {
		tdu = s.tinfeas[s.idu] / s.infeas[s.idu]
	}

	posOK, negOK := true, true
	var terr float64
	switch {
	case s.pr > s.du:
		if tpr < 0 {
			negOK = false
		} else if tpr > 0 {
			posOK = false
		}
		terr = tpr
	case s.pr < s.du:
		if tdu < 0 {
			negOK = false
		} else if tdu > 0 {
			posOK = false
		}
		terr = tdu
	default:
		switch {
		case (tpr > 0 && tdu < 0) || (tpr < 0 && tdu > 0):
			posOK, negOK = false, false
			terr = 0
		case math.Min(tpr, tdu) < 0:
			negOK = false
			terr = math.Max(tpr, tdu)
		case math.Max(tpr, tdu) > 0:
			posOK = false
			terr = math.Min(tpr, tdu)
		default:
			terr = 0
		}
	}

	if s.duToPr*s.pr >= s.du && s.ipr >= 0 && s.lam[s.ipr] != 0 && math.Abs(s.dlam[s.ipr]) > linIndepTol {
		if (s.lam[s.ipr] > 0) == (s.dlam[s.ipr] > 0) {
			negOK = false
		} else {
			posOK = false
		}
	}

	qrfT := factorQR(s.kktDense)
	// The QR R-diagonal count (qrfT.singular) and the SVD-based nullity can
	// disagree near the tolerance boundary; nullspaceCombination draws its
	// vectors from the SVD, so the loop bound must come from nullity, not
	// from the R-diagonal count factorize uses for sing/mina/imina.
	nullity := qrfT.nullity(singularTol)

	tau := math.Inf(1)
	rIndex, rSign := noHint, 0

	for nulli := 0; nulli < nullity; nulli++ {
		w := qrfT.nullspaceCombination(nulli)
		for i := 0; i < s.nz; i++ {
			var step float64
			if i < s.nx {
				step = s.dz[i]
			} else {
				step = s.dlam[i]
			}
			if math.Abs(step) < linIndepTol {
				continue
			}
			if math.Abs(s.kktDot(w, i, false)-s.kktDot(w, i, true)) < linIndepTol {
				continue
			}
			if s.lam[i] == 0 {
				if math.Abs(s.dz[i]) < linIndepTol {
					continue
				}
				if !s.neverlower[i] {
					tryTau(s.lbz[i], s.z[i], s.dz[i], terr, &tau, &rIndex, &rSign, i, -1)
				}
				if !s.neverupper[i] {
					tryTau(s.ubz[i], s.z[i], s.dz[i], terr, &tau, &rIndex, &rSign, i, 1)
				}
			} else {
				if math.Abs(s.dlam[i]) < linIndepTol {
					continue
				}
				if s.neverzero[i] {
					continue
				}
				tauTest := -s.lam[i] / s.dlam[i]
				if (terr > 0 && tauTest > 0) || (terr < 0 && tauTest < 0) {
					continue
				}
				if (tauTest > 0 && !posOK) || (tauTest < 0 && !negOK) {
					continue
				}
				if math.Abs(tauTest) < math.Abs(tau) {
					tau = tauTest
					rIndex, rSign = i, 0
				}
			}
		}
	}

	if rIndex < 0 {
		return noFlipHint(), ErrStepFailed
	}

	for i := 0; i < s.nz; i++ {
		s.dz[i] *= tau
		s.dlam[i] *= tau
	}
	for i := 0; i < s.nx; i++ {
		s.tinfeas[i] *= tau
	}
	return flipHint{Index: rIndex, Sign: rSign}, nil
}

// tryTau checks whether driving z[i] to the given bound with step dz[i]
// yields a non-increasing max(pr, du) and, if so and it's the smallest
// |tau| found so far, records it.
func tryTau(bound, z, dzi, terr float64, tau *float64, rIndex, rSign *int, i, sign int) {
	if dzi == 0 {
		return
	}
	tauTest := (bound - z) / dzi
	if (terr > 0 && tauTest > 0) || (terr < 0 && tauTest < 0) {
		return
	}
	if math.Abs(tauTest) < tauGuardTol {
		return
	}
	if math.Abs(tauTest) < math.Abs(*tau) {
		*tau = tauTest
		*rIndex = i
		*rSign = sign
	}
}
