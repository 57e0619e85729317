// Package solver defines the seam between the dispatch model builder and a
// MILP backend. Any backend supporting continuous and binary variables
// under linear constraints and a linear objective satisfies the contract;
// the shipped implementation (golp.go) wraps lp_solve via
// github.com/draffensperger/golp.
package solver

import "context"

// Sense is the relational operator of a linear constraint.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// Constraint is one row of the model: sum(Coeffs[j]*x[j]) Sense RHS.
// Coeffs is sparse, keyed by variable index.
type Constraint struct {
	Name   string
	Coeffs map[int]float64
	Sense  Sense
	RHS    float64
}

// Model is a solver-agnostic MILP: variables, constraints, and an objective
// to minimize. Variable bounds default to [0, +inf) unless overridden.
type Model struct {
	NumVars     int
	VarNames    []string
	IsBinary    []bool
	LowerBound  []float64
	UpperBound  []float64 // math.Inf(1) means unbounded above
	Constraints []Constraint
	Objective   map[int]float64 // sparse, keyed by variable index
}

// NewModel allocates a Model with n variables, all continuous, bounded
// [0, +inf) by default.
func NewModel(n int) *Model {
	m := &Model{
		NumVars:    n,
		VarNames:   make([]string, n),
		IsBinary:   make([]bool, n),
		LowerBound: make([]float64, n),
		UpperBound: make([]float64, n),
		Objective:  make(map[int]float64),
	}
	for i := range m.UpperBound {
		m.UpperBound[i] = posInf
	}
	return m
}

// AddConstraint appends a row to the model.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// Status reports how a solve terminated.
type Status int

const (
	// StatusOptimal means the solver proved optimality.
	StatusOptimal Status = iota
	// StatusSuboptimal means the solver returned a usable solution but did
	// not prove it optimal (e.g. it hit a branch-and-bound gap or time
	// limit). The contract in §4.2 treats this the same as StatusOptimal
	// for value extraction purposes.
	StatusSuboptimal
	// StatusInfeasible means no feasible solution exists.
	StatusInfeasible
	// StatusSolverFailure means the backend failed for a reason unrelated
	// to infeasibility (license, numerical breakdown, timeout).
	StatusSolverFailure
)

// Solution is the backend's answer: variable values and the achieved
// objective, plus the terminal Status.
type Solution struct {
	Values    []float64
	Objective float64
	Status    Status
}

// Backend invokes a MILP engine on a built Model.
type Backend interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
