package dispatch

import (
	"context"

	"github.com/devskill-org/dcdispatch/scenario"
)

// Sweep re-solves the model once per reliability target, in input order.
// The first InfeasibilityError (or SolverError) aborts the sweep; results
// gathered before the failing target are still returned alongside the
// error, so a caller can inspect how far the frontier reached.
func (p *Planner) Sweep(ctx context.Context, s *scenario.Scenario, targets []float64) ([]Result, error) {
	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		target := target
		res, err := p.solveWithTarget(ctx, s, &target)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// SweepTolerant is the "implementation option" named for a single
// infeasible target: instead of aborting, it records the failure on that
// point's Result.Err and continues to the remaining targets. Useful for a
// caller (e.g. the HTTP API) rendering a best-effort cost/reliability
// frontier.
func (p *Planner) SweepTolerant(ctx context.Context, s *scenario.Scenario, targets []float64) []Result {
	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		target := target
		res, err := p.solveWithTarget(ctx, s, &target)
		if err != nil {
			results = append(results, Result{ReliabilityTarget: &target, Err: err})
			continue
		}
		results = append(results, *res)
	}
	return results
}
