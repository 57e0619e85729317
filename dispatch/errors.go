package dispatch

import "fmt"

// InfeasibilityError means the solver proved no feasible solution exists.
// Because the power balance always has the unserved-energy slack z, this
// can only come from the workload constraints (hard SLA, throughput floor)
// or a reliability target tighter than the available resources can meet.
type InfeasibilityError struct {
	Reason string
}

func (e *InfeasibilityError) Error() string {
	if e.Reason == "" {
		return "dispatch: model is infeasible"
	}
	return fmt.Sprintf("dispatch: model is infeasible: %s", e.Reason)
}

// SolverError wraps a backend failure unrelated to infeasibility (license,
// numerical breakdown, timeout).
type SolverError struct {
	Cause error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("dispatch: solver failure: %v", e.Cause)
}

func (e *SolverError) Unwrap() error {
	return e.Cause
}
