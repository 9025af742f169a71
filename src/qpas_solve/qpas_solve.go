package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lukpank/go-glpk/glpk"
	"qpactiveset/src/qpas"
)

func main() {
	var paths []string
	var maxIter int
	var duToPr float64
	var printIter, verifyLP bool

	flag.Func("inst", "a list of instance file paths, separated by a whitespace", func(s string) error {
		paths = strings.Fields(s)
		return nil
	})
	flag.IntVar(&maxIter, "maxiter", 1000, "maximum number of active-set iterations")
	flag.Float64Var(&duToPr, "du-to-pr", 1000, "weight of dual error relative to primal error")
	flag.BoolVar(&printIter, "print-iter", true, "print the per-iteration log")
	flag.BoolVar(&verifyLP, "verify-lp", false, "cross-check primal feasibility of the linear block with GLPK")

	flag.Parse()

	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Must specify at least a path")
		os.Exit(1)
	}

	opts := qpas.DefaultOptions()
	opts.MaxIter = maxIter
	opts.DuToPr = duToPr
	opts.PrintIter = printIter
	opts.Logger = &qpas.Logger{Level: qpas.LogIter, Out: os.Stdout}
	if !printIter {
		opts.Logger.Level = qpas.LogNoop
	}
	solver := qpas.NewSolver(opts)

	for _, p := range paths {
		fmt.Printf("Solving %v...\n", p)
		problem, err := qpas.LoadInstance(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error for instance %q: %v. Skipping...\n", p, err)
			continue
		}

		res, err := solver.Solve(problem)
		if err != nil {
			fmt.Fprintf(os.Stderr, "qpas: %v\n", err)
		}
		if res != nil {
			fmt.Print(qpas.FormatResult(res))
			if verifyLP {
				if err := verifyLinearFeasibility(problem, res); err != nil {
					fmt.Fprintf(os.Stderr, "verify-lp: %v\n", err)
				} else {
					fmt.Println("verify-lp: feasible")
				}
			}
		}
		fmt.Println()
	}
}

// verifyLinearFeasibility hands the trivial "min 0" LP over
// lbx <= x <= ubx, lba <= Ax <= uba to GLPK as an independent oracle and
// reports an error unless GLPK finds that region non-empty. The x in res
// is not checked: the LP's columns carry the problem's box bounds, not
// the solver's returned values.
func verifyLinearFeasibility(p *qpas.Problem, res *qpas.Result) error {
	prob := glpk.New()
	defer prob.Delete()
	prob.SetObjDir(glpk.MIN)

	prob.AddCols(p.NX)
	for j := 0; j < p.NX; j++ {
		prob.SetColBnds(j+1, glpk.DB, p.LBX[j], p.UBX[j])
		prob.SetColKind(j+1, glpk.CV)
		prob.SetObjCoef(j+1, 0)
	}

	prob.AddRows(p.NA)
	for i := 0; i < p.NA; i++ {
		prob.SetRowBnds(i+1, glpk.DB, p.LBA[i], p.UBA[i])
	}
	for j := 0; j < p.NX; j++ {
		ind := []int32{0}
		val := []float64{0}
		p.A.Col(j, func(row int, v float64) {
			ind = append(ind, int32(row+1))
			val = append(val, v)
		})
		prob.SetMatCol(j+1, ind, val)
	}

	smcp := glpk.NewSmcp()
	smcp.SetMsgLev(glpk.MSG_OFF)
	if err := prob.Simplex(smcp); err != nil {
		return err
	}
	if status := prob.Status(); status != glpk.OPT {
		return fmt.Errorf("linear block infeasible (status %v)", status)
	}
	return nil
}
