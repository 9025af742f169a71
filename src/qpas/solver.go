package qpas

import (
	"fmt"
	"math"
)

// Solver runs the primal-dual active-set method against a fixed set of
// Options. It holds no per-problem state; Solve is safe to call
// repeatedly, including concurrently, with different Problems.
type Solver struct {
	opts Options
}

// NewSolver returns a Solver configured with opts.
func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts}
}

// setupBounds determines, for every component of z, which sign(s) its
// multiplier is permitted to take, rejects problems where no sign is
// possible (an infeasible fixed bound with both sides unbounded is a
// contradiction in terms), and nudges the initial multiplier guess onto
// a permitted sign.
func (s *solveState) setupBounds() error {
	for i := 0; i < s.nz; i++ {
		if s.lbz[i] > s.ubz[i] {
			return fmt.Errorf("%w: lower bound exceeds upper bound at index %d", ErrInfeasibleBounds, i)
		}
		s.neverzero[i] = s.lbz[i] == s.ubz[i]
		s.neverupper[i] = math.IsInf(s.ubz[i], 1)
		s.neverlower[i] = math.IsInf(s.lbz[i], -1)
		if s.neverzero[i] && s.neverupper[i] && s.neverlower[i] {
			return fmt.Errorf("%w: no sign possible for index %d", ErrInfeasibleBounds, i)
		}
		switch {
		case s.neverzero[i] && s.lam[i] == 0:
			if s.neverupper[i] || s.z[i]-s.lbz[i] <= s.ubz[i]-s.z[i] {
				s.lam[i] = -dmin
			} else {
				s.lam[i] = dmin
			}
		case s.neverupper[i] && s.lam[i] > 0:
			if s.neverzero[i] {
				s.lam[i] = -dmin
			} else {
				s.lam[i] = 0
			}
		case s.neverlower[i] && s.lam[i] < 0:
			if s.neverzero[i] {
				s.lam[i] = dmin
			} else {
				s.lam[i] = 0
			}
		}
	}
	return nil
}

// linesearch takes the largest step along (dz, dlam) that stays within
// the acceptable primal and dual error bands, applies it, and reports
// the active-set change it wants to make next, if any
// (casadi_qp_linesearch).
func (s *solveState) linesearch() (index, sign int) {
	s.tau = 1
	index, sign = s.primalBlocking(math.Max(s.pr, s.du/s.duToPr))
	if s.dualBlocking(math.Max(s.pr*s.duToPr, s.du)) >= 0 {
		index, sign = noHint, 0
	}
	s.takeStep()
	return index, sign
}

// result snapshots the current iterate into a Result.
func (s *solveState) result(iter, flag int) *Result {
	return &Result{
		X:    append([]float64(nil), s.z[:s.nx]...),
		F:    s.f,
		LamX: append([]float64(nil), s.lam[:s.nx]...),
		LamA: append([]float64(nil), s.lam[s.nx:]...),
		Iter: iter,
		Flag: flag,
	}
}

// Solve runs the active-set method to convergence, returning the best
// iterate found and a non-nil error on failure (ErrInfeasibleBounds,
// ErrMaxIter or ErrStepFailed). Flag is 0 on success, 1 otherwise.
func (slv *Solver) Solve(p *Problem) (*Result, error) {
	s := newSolveState(p, slv.opts.DuToPr)
	if err := s.setupBounds(); err != nil {
		return nil, err
	}

	log := slv.opts.Logger
	if slv.opts.PrintHeader {
		log.banner(s.nx, s.na)
	}

	index, sign := flipPending, 0
	rIndex, rSign := flipPending, 0
	iter := 0

	for {
		s.recompute()
		index, sign = s.flip(index, sign, rIndex, rSign)

		s.factorize()

		if slv.opts.PrintIter {
			if iter%10 == 0 {
				log.header()
			}
			log.row(iter, s.sing, s.f, s.pr, s.ipr, s.du, s.idu, s.mina, s.imina, s.tau, s.note)
		}

		if index == noHint {
			return s.result(iter, 0), nil
		}
		if iter >= slv.opts.MaxIter {
			return s.result(iter, 1), ErrMaxIter
		}
		iter++
		s.note = ""

		hint, err := s.calcStep()
		if err != nil {
			return s.result(iter, 1), ErrStepFailed
		}
		rIndex, rSign = hint.Index, hint.Sign

		index, sign = s.linesearch()
	}
}
