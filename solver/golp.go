package solver

import (
	"context"
	"fmt"

	lp "github.com/draffensperger/golp"
)

// LPSolveBackend invokes lp_solve (via the cgo binding github.com/draffensperger/golp)
// as the MILP engine. lp_solve's branch-and-bound handles the binary
// mutual-exclusion variables; everything else is a continuous LP column.
type LPSolveBackend struct{}

// NewLPSolveBackend returns the default Backend implementation.
func NewLPSolveBackend() *LPSolveBackend {
	return &LPSolveBackend{}
}

func (b *LPSolveBackend) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lpModel := lp.NewLP(0, m.NumVars)
	defer lpModel.Delete()

	// Suppress lp_solve's own progress output; the planner logs model size
	// before handing off, the backend stays quiet (§4.2).
	lpModel.SetVerbose(lp.NEUTRAL)
	lpModel.SetMinim()

	obj := make([]float64, m.NumVars)
	for j, c := range m.Objective {
		obj[j] = c
	}
	lpModel.SetObjFn(obj)

	for _, c := range m.Constraints {
		row := make([]float64, m.NumVars)
		for j, coeff := range c.Coeffs {
			row[j] = coeff
		}
		if err := lpModel.AddConstraint(row, lpSense(c.Sense), c.RHS); err != nil {
			return nil, fmt.Errorf("solver: add constraint %q: %w", c.Name, err)
		}
	}

	for j := 0; j < m.NumVars; j++ {
		col := j + 1 // lp_solve columns are 1-indexed
		lower, upper := m.LowerBound[j], m.UpperBound[j]
		lpModel.SetBounds(col, lower, upper)
		if m.IsBinary[j] {
			lpModel.SetInt(col, true)
			lpModel.SetBounds(col, 0, 1)
		}
	}

	status := lpModel.Solve()

	switch status {
	case lp.OPTIMAL, lp.SUBOPTIMAL:
		values := lpModel.Variables()
		out := make([]float64, m.NumVars)
		copy(out, values)
		st := StatusOptimal
		if status == lp.SUBOPTIMAL {
			st = StatusSuboptimal
		}
		return &Solution{Values: out, Objective: lpModel.Objective(), Status: st}, nil
	case lp.INFEASIBLE:
		return &Solution{Status: StatusInfeasible}, nil
	default:
		return &Solution{Status: StatusSolverFailure}, fmt.Errorf("solver: lp_solve returned status %v", status)
	}
}

func lpSense(s Sense) lp.ConstrType {
	switch s {
	case LE:
		return lp.LE
	case GE:
		return lp.GE
	default:
		return lp.EQ
	}
}
