package dispatch

import (
	"fmt"

	"github.com/devskill-org/dcdispatch/scenario"
	"github.com/devskill-org/dcdispatch/solver"
)

// BuildOptions parameterizes a single model build. A nil ReliabilityTarget
// means no reliability constraint is emitted. Any non-nil target emits
// EUE <= (1-target)*totalDemand, so target 0.0 (a non-nil pointer to zero)
// still caps EUE at the horizon's total base-load energy. Target 1.0 forces
// EUE to zero.
type BuildOptions struct {
	ReliabilityTarget *float64
}

// BuildModel validates the scenario and emits the MILP whose optimum is a
// minimum-expected-cost dispatch. It returns the model together with the
// Handles needed to read variable groups back out of a Solution.
func BuildModel(s *scenario.Scenario, opts BuildOptions) (*solver.Model, *Handles, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	h := &Handles{
		H: s.Horizon(),
		L: s.Workload.DeadlineHours,
		K: len(s.Workload.Piecewise),
		S: len(s.Cases),
		G: len(s.Generators),
	}

	a := &allocator{}
	allocateVars(h, a)

	m := solver.NewModel(len(a.names))
	copy(m.VarNames, a.names)

	setBounds(m, h, s)

	addWorkloadCouplingConstraints(m, h, s)
	addDeadlineQueueConstraints(m, h, s)
	addThroughputFloorConstraint(m, h, s)
	addSOCConstraints(m, h, s)
	addBESSMutexConstraints(m, h, s)
	addGridMutexConstraints(m, h, s)
	addPowerBalanceConstraints(m, h, s)
	if opts.ReliabilityTarget != nil {
		addReliabilityConstraint(m, h, s, *opts.ReliabilityTarget)
	}

	setObjective(m, h, s)

	return m, h, nil
}

// allocateVars hands out a variable index for every decision variable named
// in the data model and records it in h.
func allocateVars(h *Handles, a *allocator) {
	h.PBess = a.alloc("P_bess")
	h.EBess = a.alloc("E_bess")

	h.Lambda = make([][]int, h.H)
	h.PCompute = make([]int, h.H)
	h.X = make([]int, h.H)
	h.Q = make([][]int, h.H)
	h.Served = make([][]int, h.H)
	h.Unmet = make([]int, h.H)

	for t := 0; t < h.H; t++ {
		h.Lambda[t] = make([]int, h.K)
		for k := 0; k < h.K; k++ {
			h.Lambda[t][k] = a.alloc(fmt.Sprintf("lambda[%d,%d]", t, k))
		}
		h.PCompute[t] = a.alloc(fmt.Sprintf("p_compute[%d]", t))
		h.X[t] = a.alloc(fmt.Sprintf("x[%d]", t))

		h.Q[t] = make([]int, h.L+1)
		h.Served[t] = make([]int, h.L+1)
		for bucket := 0; bucket <= h.L; bucket++ {
			h.Q[t][bucket] = a.alloc(fmt.Sprintf("q[%d,%d]", t, bucket))
			h.Served[t][bucket] = a.alloc(fmt.Sprintf("served[%d,%d]", t, bucket))
		}
		h.Unmet[t] = a.alloc(fmt.Sprintf("unmet[%d]", t))
	}

	h.PCh = make([][]int, h.S)
	h.PDis = make([][]int, h.S)
	h.SOC = make([][]int, h.S)
	h.Imp = make([][]int, h.S)
	h.Exp = make([][]int, h.S)
	h.Z = make([][]int, h.S)
	h.ChargeBin = make([][]int, h.S)
	h.GridBin = make([][]int, h.S)

	for s := 0; s < h.S; s++ {
		h.PCh[s] = make([]int, h.H)
		h.PDis[s] = make([]int, h.H)
		h.SOC[s] = make([]int, h.H)
		h.Imp[s] = make([]int, h.H)
		h.Exp[s] = make([]int, h.H)
		h.Z[s] = make([]int, h.H)
		h.ChargeBin[s] = make([]int, h.H)
		h.GridBin[s] = make([]int, h.H)

		for t := 0; t < h.H; t++ {
			h.PCh[s][t] = a.alloc(fmt.Sprintf("p_ch[%d,%d]", s, t))
			h.PDis[s][t] = a.alloc(fmt.Sprintf("p_dis[%d,%d]", s, t))
			h.SOC[s][t] = a.alloc(fmt.Sprintf("soc[%d,%d]", s, t))
			h.Imp[s][t] = a.alloc(fmt.Sprintf("imp[%d,%d]", s, t))
			h.Exp[s][t] = a.alloc(fmt.Sprintf("exp[%d,%d]", s, t))
			h.Z[s][t] = a.alloc(fmt.Sprintf("z[%d,%d]", s, t))
			h.ChargeBin[s][t] = a.alloc(fmt.Sprintf("charge_bin[%d,%d]", s, t))
			h.GridBin[s][t] = a.alloc(fmt.Sprintf("grid_bin[%d,%d]", s, t))
		}
	}

	h.PGen = make([][][]int, h.G)
	for g := 0; g < h.G; g++ {
		h.PGen[g] = make([][]int, h.S)
		for s := 0; s < h.S; s++ {
			h.PGen[g][s] = make([]int, h.H)
			for t := 0; t < h.H; t++ {
				h.PGen[g][s][t] = a.alloc(fmt.Sprintf("p_gen[%d,%d,%d]", g, s, t))
			}
		}
	}
}

func setBounds(m *solver.Model, h *Handles, s *scenario.Scenario) {
	if s.BESS.OptimizeSizing {
		m.UpperBound[h.PBess] = s.BESS.PowerMaxMW
		m.UpperBound[h.EBess] = s.BESS.EnergyMaxMWh
	} else {
		m.LowerBound[h.PBess] = s.BESS.PowerMaxMW
		m.UpperBound[h.PBess] = s.BESS.PowerMaxMW
		m.LowerBound[h.EBess] = s.BESS.EnergyMaxMWh
		m.UpperBound[h.EBess] = s.BESS.EnergyMaxMWh
	}

	for t := 0; t < h.H; t++ {
		for k := 0; k < h.K; k++ {
			m.UpperBound[h.Lambda[t][k]] = 1
		}
		if !s.Workload.SoftSLA {
			m.UpperBound[h.Unmet[t]] = 0
		}
	}

	for s_ := 0; s_ < h.S; s_++ {
		for t := 0; t < h.H; t++ {
			m.UpperBound[h.Exp[s_][t]] = s.Grid.ExportMaxMW
			m.IsBinary[h.ChargeBin[s_][t]] = true
			m.UpperBound[h.ChargeBin[s_][t]] = 1
			m.IsBinary[h.GridBin[s_][t]] = true
			m.UpperBound[h.GridBin[s_][t]] = 1
		}
	}

	for g, gen := range s.Generators {
		for s_ := 0; s_ < h.S; s_++ {
			cap := gen.PMax * s.Cases[s_].GeneratorDerate
			for t := 0; t < h.H; t++ {
				m.UpperBound[h.PGen[g][s_][t]] = cap
			}
		}
	}
}

func eq(coeffs map[int]float64, rhs float64) solver.Constraint {
	return solver.Constraint{Coeffs: coeffs, Sense: solver.EQ, RHS: rhs}
}

func le(coeffs map[int]float64, rhs float64) solver.Constraint {
	return solver.Constraint{Coeffs: coeffs, Sense: solver.LE, RHS: rhs}
}

func ge(coeffs map[int]float64, rhs float64) solver.Constraint {
	return solver.Constraint{Coeffs: coeffs, Sense: solver.GE, RHS: rhs}
}

// addWorkloadCouplingConstraints picks a convex combination over the
// piecewise power/work breakpoints at every step.
func addWorkloadCouplingConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	for t := 0; t < h.H; t++ {
		sumLambda := map[int]float64{}
		power := map[int]float64{h.PCompute[t]: -1}
		work := map[int]float64{h.X[t]: -1}
		for k, pt := range s.Workload.Piecewise {
			sumLambda[h.Lambda[t][k]] = 1
			power[h.Lambda[t][k]] = pt.PowerMW
			work[h.Lambda[t][k]] = pt.WorkUnits
		}
		m.AddConstraint(eq(sumLambda, 1))
		m.AddConstraint(eq(power, 0))
		m.AddConstraint(eq(work, 0))
		m.AddConstraint(ge(map[int]float64{h.PCompute[t]: 1}, s.Workload.MinComputeMW))
	}
}

// addDeadlineQueueConstraints implements the aging/seeding contract: work
// enters at bucket L and ages down to the due bucket 0.
func addDeadlineQueueConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	L := h.L
	for t := 0; t < h.H; t++ {
		// seeding: the top bucket is reset to this step's arrivals every step
		m.AddConstraint(eq(map[int]float64{h.Q[t][L]: 1}, s.Workload.Arrivals[t]))

		for bucket := 0; bucket < L; bucket++ {
			if t == 0 {
				m.AddConstraint(eq(map[int]float64{h.Q[t][bucket]: 1}, 0))
			} else {
				m.AddConstraint(eq(map[int]float64{
					h.Q[t][bucket]:         1,
					h.Q[t-1][bucket+1]:     -1,
					h.Served[t-1][bucket+1]: 1,
				}, 0))
			}
		}

		serviceSum := map[int]float64{h.X[t]: -1}
		for bucket := 0; bucket <= L; bucket++ {
			serviceSum[h.Served[t][bucket]] = 1
			m.AddConstraint(le(map[int]float64{
				h.Served[t][bucket]: 1,
				h.Q[t][bucket]:      -1,
			}, 0))
		}
		m.AddConstraint(eq(serviceSum, 0))

		if s.Workload.SoftSLA {
			m.AddConstraint(eq(map[int]float64{
				h.Unmet[t]:     1,
				h.Q[t][0]:      -1,
				h.Served[t][0]: 1,
			}, 0))
		} else {
			m.AddConstraint(eq(map[int]float64{
				h.Served[t][0]: 1,
				h.Q[t][0]:      -1,
			}, 0))
		}
	}
}

func addThroughputFloorConstraint(m *solver.Model, h *Handles, s *scenario.Scenario) {
	totalArrivals := 0.0
	coeffs := map[int]float64{}
	for t := 0; t < h.H; t++ {
		totalArrivals += s.Workload.Arrivals[t]
		coeffs[h.X[t]] = 1
	}
	m.AddConstraint(ge(coeffs, (1-s.Workload.CurtailmentCap)*totalArrivals))
}

// addSOCConstraints implements the SOC recursion per scenario, starting
// empty at t=0 with no end-of-horizon tie-back.
func addSOCConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	dt := s.TimeStepHours
	etac := s.BESS.EfficiencyCharge
	etad := s.BESS.EfficiencyDischarge

	for sc := 0; sc < h.S; sc++ {
		for t := 0; t < h.H; t++ {
			coeffs := map[int]float64{
				h.SOC[sc][t]: 1,
				h.PCh[sc][t]: -etac * dt,
				h.PDis[sc][t]: dt / etad,
			}
			if t > 0 {
				coeffs[h.SOC[sc][t-1]] = -1
			}
			m.AddConstraint(eq(coeffs, 0))

			// 0 <= soc <= E_bess; the lower bound is the variable's
			// default, the upper bound must be a constraint since
			// E_bess may itself be a decision variable.
			m.AddConstraint(le(map[int]float64{
				h.SOC[sc][t]: 1,
				h.EBess:      -1,
			}, 0))
		}
	}
}

// addBESSMutexConstraints enforces charge/discharge mutual exclusion. The
// disjunction's big-M is the scenario's configured power cap (the same
// value used as P_bess's own upper bound), not the P_bess variable itself —
// using the variable directly would make the constraint bilinear.
func addBESSMutexConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	bigM := s.BESS.PowerMaxMW
	for sc := 0; sc < h.S; sc++ {
		for t := 0; t < h.H; t++ {
			m.AddConstraint(le(map[int]float64{
				h.PCh[sc][t]: 1,
				h.PBess:      -1,
			}, 0))
			m.AddConstraint(le(map[int]float64{
				h.PDis[sc][t]: 1,
				h.PBess:       -1,
			}, 0))
			m.AddConstraint(le(map[int]float64{
				h.PCh[sc][t]:        1,
				h.ChargeBin[sc][t]: -bigM,
			}, 0))
			m.AddConstraint(le(map[int]float64{
				h.PDis[sc][t]:       1,
				h.ChargeBin[sc][t]: bigM,
			}, bigM))
		}
	}
}

func addGridMutexConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	for sc, c := range s.Cases {
		for t := 0; t < h.H; t++ {
			m.AddConstraint(le(map[int]float64{
				h.Imp[sc][t]:     1,
				h.GridBin[sc][t]: -c.GridImportCap,
			}, 0))
			m.AddConstraint(le(map[int]float64{
				h.Exp[sc][t]:     1,
				h.GridBin[sc][t]: s.Grid.ExportMaxMW,
			}, s.Grid.ExportMaxMW))
		}
	}
}

func addPowerBalanceConstraints(m *solver.Model, h *Handles, s *scenario.Scenario) {
	for sc := 0; sc < h.S; sc++ {
		for t := 0; t < h.H; t++ {
			coeffs := map[int]float64{
				h.PDis[sc][t]:     1,
				h.PCh[sc][t]:      -1,
				h.Imp[sc][t]:      1,
				h.Exp[sc][t]:      -1,
				h.Z[sc][t]:        1,
				h.PCompute[t]:     -1,
			}
			for g := 0; g < h.G; g++ {
				coeffs[h.PGen[g][sc][t]] = 1
			}
			m.AddConstraint(eq(coeffs, s.BaseLoadMW[t]))
		}
	}
}

func addReliabilityConstraint(m *solver.Model, h *Handles, s *scenario.Scenario, target float64) {
	dt := s.TimeStepHours
	totalDemand := 0.0
	for _, v := range s.BaseLoadMW {
		totalDemand += v * dt
	}

	coeffs := map[int]float64{}
	for sc, c := range s.Cases {
		for t := 0; t < h.H; t++ {
			coeffs[h.Z[sc][t]] = c.Probability * dt
		}
	}
	m.AddConstraint(le(coeffs, (1-target)*totalDemand))
}

func setObjective(m *solver.Model, h *Handles, s *scenario.Scenario) {
	dt := s.TimeStepHours

	m.Objective[h.PBess] += s.BESS.CapexPower
	m.Objective[h.EBess] += s.BESS.CapexEnergy

	for sc, c := range s.Cases {
		for t := 0; t < h.H; t++ {
			price := s.Price[t] * c.Probability * dt
			m.Objective[h.Imp[sc][t]] += price
			m.Objective[h.Exp[sc][t]] -= price

			m.Objective[h.PCh[sc][t]] += s.BESS.DegradationCost * c.Probability * dt
			m.Objective[h.PDis[sc][t]] += s.BESS.DegradationCost * c.Probability * dt
		}
		for g, gen := range s.Generators {
			for t := 0; t < h.H; t++ {
				m.Objective[h.PGen[g][sc][t]] += gen.MarginalCost * c.Probability * dt
			}
		}
	}

	for t := 0; t < h.H; t++ {
		m.Objective[h.Unmet[t]] += s.Workload.PenaltyDeadline
	}
}
