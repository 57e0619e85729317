// Package dispatch builds and solves the joint compute/BESS/generator/grid
// dispatch MILP: model construction, the solver driver, result aggregation,
// and the Pareto sweep over reliability targets.
package dispatch

import (
	"context"
	"fmt"
	"log"

	"github.com/devskill-org/dcdispatch/scenario"
	"github.com/devskill-org/dcdispatch/solver"
)

// Planner owns a solver Backend and a logger; each solve builds a fresh
// model and discards it after extraction. A Planner holds no state across
// solves and is safe to reuse or share.
type Planner struct {
	backend solver.Backend
	logger  *log.Logger
}

// NewPlanner creates a Planner with the given backend and logger.
func NewPlanner(backend solver.Backend, logger *log.Logger) *Planner {
	return &Planner{backend: backend, logger: logger}
}

// Solve builds and solves the MILP for the scenario's own ReliabilityTarget
// (nil if unset) and returns the aggregated Result.
func (p *Planner) Solve(ctx context.Context, s *scenario.Scenario) (*Result, error) {
	return p.solveWithTarget(ctx, s, s.ReliabilityTarget)
}

func (p *Planner) solveWithTarget(ctx context.Context, s *scenario.Scenario, target *float64) (*Result, error) {
	m, h, err := BuildModel(s, BuildOptions{ReliabilityTarget: target})
	if err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.Printf("dispatch: built model with %d variables, %d constraints", m.NumVars, len(m.Constraints))
	}

	sol, err := p.backend.Solve(ctx, m)
	if err != nil {
		return nil, &SolverError{Cause: err}
	}

	switch sol.Status {
	case solver.StatusOptimal, solver.StatusSuboptimal:
		result := aggregate(s, h, sol)
		result.ReliabilityTarget = target
		return result, nil
	case solver.StatusInfeasible:
		return nil, &InfeasibilityError{Reason: infeasibilityHint(s, target)}
	default:
		return nil, &SolverError{Cause: fmt.Errorf("backend returned an unrecognized status")}
	}
}

// infeasibilityHint names the most likely cause, to help a caller triage
// without re-solving. It does not change the solver's own diagnosis.
func infeasibilityHint(s *scenario.Scenario, target *float64) string {
	if !s.Workload.SoftSLA {
		return "hard SLA may be infeasible with the available compute envelope or throughput floor"
	}
	if target != nil && *target > 0 {
		return "reliability target may be unreachable with the available generation and BESS capacity"
	}
	return "workload or reliability constraints are unsatisfiable for this scenario"
}
