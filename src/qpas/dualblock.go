package qpas

import "math"

// dualBreakpoints enumerates the taus at which some lam[i] would cross
// zero before tau, in ascending order, with a sentinel -1 index at the end
// for the current tau itself (casadi_qp_dual_breakpoints).
func (s *solveState) dualBreakpoints(tau float64) (tauList []float64, indList []int) {
	tauList = []float64{tau}
	indList = []int{noHint}
	for i := 0; i < s.nz; i++ {
		if s.dlam[i] == 0 || s.lam[i] == 0 {
			continue
		}
		trialLam := s.lam[i] + tau*s.dlam[i]
		if s.lam[i] > 0 {
			if trialLam >= 0 {
				continue
			}
		} else if trialLam <= 0 {
			continue
		}
		newTau := -s.lam[i] / s.dlam[i]
		loc := 0
		for loc < len(tauList)-1 && newTau >= tauList[loc] {
			loc++
		}
		tauList = append(tauList, 0)
		indList = append(indList, 0)
		copy(tauList[loc+1:], tauList[loc:len(tauList)-1])
		copy(indList[loc+1:], indList[loc:len(indList)-1])
		tauList[loc] = newTau
		indList[loc] = i
	}
	return tauList, indList
}

// dualBlocking walks the dual-feasibility breakpoints and returns the index
// that first forces |infeas[k]| past e, or -1 if the full step is dual
// feasible (casadi_qp_dual_blocking). s.tau is clamped to the blocking
// point in place.
func (s *solveState) dualBlocking(e float64) int {
	tauList, indList := s.dualBreakpoints(s.tau)

	duIndex := noHint
	tauK := 0.0
	for j, tauJ := range tauList {
		dtau := tauJ - tauK
		for k := 0; k < s.nx; k++ {
			newInfeas := s.infeas[k] + dtau*s.tinfeas[k]
			if math.Abs(newInfeas) > e {
				target := e
				if newInfeas < 0 {
					target = -e
				}
				tau1 := math.Max(0, tauK+(target-s.infeas[k])/s.tinfeas[k])
				if tau1 < s.tau {
					s.tau = tau1
					duIndex = k
				}
			}
		}
		step := dtau
		if s.tau-tauK < step {
			step = s.tau - tauK
		}
		axpy(s.nx, step, s.tinfeas, s.infeas)

		if duIndex >= 0 {
			return duIndex
		}
		tauK = tauJ
		i := indList[j]
		if i < 0 {
			break
		}
		if s.neverzero[i] {
			continue
		}
		if i < s.nx {
			s.tinfeas[i] -= s.dlam[i]
		} else {
			constraint := i - s.nx
			s.at.Col(constraint, func(row int, val float64) {
				s.tinfeas[row] -= val * s.dlam[i]
			})
		}
	}
	return duIndex
}

func axpy(n int, alpha float64, x, y []float64) {
	for i := 0; i < n; i++ {
		y[i] += alpha * x[i]
	}
}
