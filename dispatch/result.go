package dispatch

// Dispatch holds the per-step expected trajectories, every sequence of
// length H, collapsing the scenario axis into a probability-weighted
// expectation for the per-scenario variable groups.
type Dispatch struct {
	Time         []float64 `json:"time"`
	GridImport   []float64 `json:"gridImport"`
	GridExport   []float64 `json:"gridExport"`
	ComputePower []float64 `json:"computePower"`
	BaseLoad     []float64 `json:"baseLoad"`
	SOC          []float64 `json:"soc"`
	Queue        []float64 `json:"queue"` // expected q[t,0], the due bucket
	Unserved     []float64 `json:"unserved"`
	Charge       []float64 `json:"charge"`
	Discharge    []float64 `json:"discharge"`
	Unmet        []float64 `json:"unmet"`

	// Generation is per-generator, per-step expected output; an addition
	// beyond the named dispatch keys, not a replacement for any of them.
	Generation [][]float64 `json:"generation,omitempty"`
}

// Result is the planner's output for one solve: a scalar summary plus the
// full dispatch trajectory.
type Result struct {
	Objective   float64  `json:"objective"`
	Cost        float64  `json:"cost"`
	Reliability float64  `json:"reliability"`
	EUE         float64  `json:"eue"`
	LOLE        int      `json:"lole"`
	Dispatch    Dispatch `json:"dispatch"`

	// SizingMW/SizingMWh report the resolved P_bess/E_bess; meaningful
	// whenever BESS.OptimizeSizing is true, otherwise equal to the input.
	SizingMW  float64 `json:"sizingMW"`
	SizingMWh float64 `json:"sizingMWh"`

	// ReliabilityTarget records which target produced this point, used by
	// the Pareto sweep; nil for a plain Solve with no target.
	ReliabilityTarget *float64 `json:"reliabilityTarget,omitempty"`

	// Err is set only by SweepTolerant, when a target in the sweep could
	// not be solved and the caller chose to continue past it.
	Err error `json:"-"`
}
