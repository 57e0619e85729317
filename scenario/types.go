// Package scenario defines the validated input data model consumed by the
// dispatch planner: horizon-aligned time series, workload parameters, BESS
// parameters, generators, and the set of stochastic operating scenarios.
package scenario

// PiecewisePoint is one breakpoint of the workload's power/work performance
// curve: drawing PowerMW of compute power for one step delivers WorkUnits of
// work. Interior points are reached by convex combination of the curve's
// breakpoints.
type PiecewisePoint struct {
	PowerMW   float64 `json:"power_mw" yaml:"power_mw"`
	WorkUnits float64 `json:"work_units" yaml:"work_units"`
}

// Workload describes the deadline-constrained compute queue.
type Workload struct {
	// Arrivals[t] is work (in WorkUnits) arriving at step t.
	Arrivals []float64 `json:"arrivals" yaml:"arrivals"`
	// DeadlineHours is the number of steps a work unit may wait before it is due.
	DeadlineHours int `json:"deadline_hours" yaml:"deadline_hours"`
	// SoftSLA, when true, allows work to miss its deadline at PenaltyDeadline
	// cost per unit; when false the due bucket must be fully served.
	SoftSLA bool `json:"soft_sla" yaml:"soft_sla"`
	// PenaltyDeadline is the $ cost per work unit that misses its deadline
	// (only meaningful when SoftSLA is true).
	PenaltyDeadline float64 `json:"penalty_deadline" yaml:"penalty_deadline"`
	// CurtailmentCap is the maximum fraction of total arrivals that may go
	// unserved over the horizon, in [0,1].
	CurtailmentCap float64 `json:"curtailment_cap" yaml:"curtailment_cap"`
	// Piecewise is the convex power/work performance curve, at least two points.
	Piecewise []PiecewisePoint `json:"piecewise" yaml:"piecewise"`
	// MinComputeMW is the minimum compute power draw at every step.
	MinComputeMW float64 `json:"min_compute_mw" yaml:"min_compute_mw"`
}

// BESS describes the battery energy storage system.
type BESS struct {
	PowerMaxMW     float64 `json:"power_max_mw" yaml:"power_max_mw"`
	EnergyMaxMWh   float64 `json:"energy_max_mwh" yaml:"energy_max_mwh"`
	OptimizeSizing bool    `json:"optimize_sizing" yaml:"optimize_sizing"`
	CapexPower     float64 `json:"capex_power" yaml:"capex_power"`
	CapexEnergy    float64 `json:"capex_energy" yaml:"capex_energy"`
	// EfficiencyCharge (ηc) and EfficiencyDischarge (ηd) are one-way
	// efficiencies in (0,1].
	EfficiencyCharge    float64 `json:"efficiency_charge" yaml:"efficiency_charge"`
	EfficiencyDischarge float64 `json:"efficiency_discharge" yaml:"efficiency_discharge"`
	DegradationCost     float64 `json:"degradation_cost" yaml:"degradation_cost"`
}

// Grid describes the site's grid interconnect.
type Grid struct {
	ExportMaxMW float64 `json:"export_max_mw" yaml:"export_max_mw"`
}

// Generator is one on-site generator.
type Generator struct {
	PMax          float64 `json:"p_max" yaml:"p_max"`
	MarginalCost  float64 `json:"marginal_cost" yaml:"marginal_cost"`
}

// Case is one stochastic operating scenario: a probability-weighted set of
// per-step resource availability conditions shared by all generators and
// the grid interconnect.
type Case struct {
	Probability     float64 `json:"probability" yaml:"probability"`
	GridImportCap   float64 `json:"grid_import_cap" yaml:"grid_import_cap"`
	GeneratorDerate float64 `json:"generator_derate" yaml:"generator_derate"`
}

// Scenario is the full, validated input to the dispatch planner.
type Scenario struct {
	TimeStepHours float64     `json:"time_step_hours" yaml:"time_step_hours"`
	BaseLoadMW    []float64   `json:"base_load_mw" yaml:"base_load_mw"`
	Price         []float64   `json:"price" yaml:"price"`
	Workload      Workload    `json:"workload" yaml:"workload"`
	BESS          BESS        `json:"bess" yaml:"bess"`
	Grid          Grid        `json:"grid" yaml:"grid"`
	Generators    []Generator `json:"generators" yaml:"generators"`
	Cases         []Case      `json:"scenarios" yaml:"scenarios"`

	// ReliabilityTarget, when non-nil, is the single reliability constraint
	// applied to a direct Solve (as opposed to a Sweep over many targets).
	ReliabilityTarget *float64 `json:"reliability_target,omitempty" yaml:"reliability_target,omitempty"`
	// ReliabilitySweep, when non-empty, is the list of targets a Sweep runs.
	ReliabilitySweep []float64 `json:"reliability_sweep,omitempty" yaml:"reliability_sweep,omitempty"`
}

// Horizon returns H, the number of time steps, derived from BaseLoadMW.
func (s *Scenario) Horizon() int {
	return len(s.BaseLoadMW)
}
