package qpas

// factorize rebuilds the KKT matrix from the current active set and
// factors it, updating sing/mina/imina (casadi_qp_factorize).
func (s *solveState) factorize() {
	s.kktDense = s.buildKKT()
	s.qrf = factorQR(s.kktDense)
	s.sing, s.mina, s.imina = s.qrf.singular(singularTol)
}
