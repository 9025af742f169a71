package qpas

import (
	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/mat"
)

// solveState is the mutable state of a single solve invocation. Per spec,
// it is owned exclusively by that invocation; nothing persists afterwards.
type solveState struct {
	nx, na, nz int

	h, a, at *CSC
	g        []float64

	z, lam         []float64
	lbz, ubz       []float64
	infeas, tinfeas []float64
	dz, dlam       []float64

	neverzero, neverupper, neverlower []bool

	f          float64
	pr, du     float64
	ipr, idu   int
	tau        float64
	sing       int
	mina       float64
	imina      int
	duToPr     float64

	kktDense *mat.Dense
	qrf      *qrFactor

	note string
}

func newSolveState(p *Problem, duToPr float64) *solveState {
	nx, na := p.NX, p.NA
	nz := nx + na
	s := &solveState{
		nx: nx, na: na, nz: nz,
		h: p.H, a: p.A, at: p.A.Transpose(),
		g:        append([]float64(nil), p.G...),
		z:        make([]float64, nz),
		lam:      make([]float64, nz),
		lbz:      make([]float64, nz),
		ubz:      make([]float64, nz),
		infeas:   make([]float64, nx),
		tinfeas:  make([]float64, nx),
		dz:       make([]float64, nz),
		dlam:     make([]float64, nz),
		neverzero:  make([]bool, nz),
		neverupper: make([]bool, nz),
		neverlower: make([]bool, nz),
		duToPr:   duToPr,
	}
	copy(s.lbz[:nx], p.LBX)
	copy(s.lbz[nx:], p.LBA)
	copy(s.ubz[:nx], p.UBX)
	copy(s.ubz[nx:], p.UBA)
	fillFloat(s.z[:nx], p.X0)
	fillFloat(s.lam[:nx], p.LamX0)
	fillFloat(s.lam[nx:], p.LamA0)
	return s
}

// activeSet reports the current active index set, i.e. {i : lam[i] != 0}.
// A diagnostic accessor; neither the core algorithm nor the iteration
// log's Note field uses it.
func (s *solveState) activeSet() mapset.Set[int] {
	active := mapset.NewThreadUnsafeSet[int]()
	for i := 0; i < s.nz; i++ {
		if s.lam[i] != 0 {
			active.Add(i)
		}
	}
	return active
}
