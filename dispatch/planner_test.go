package dispatch

import (
	"context"
	"math"
	"testing"

	"github.com/devskill-org/dcdispatch/scenario"
	"github.com/devskill-org/dcdispatch/solver"
)

const testEpsilon = 1e-5

func ptr(f float64) *float64 { return &f }

func noWorkload(h int) scenario.Workload {
	arrivals := make([]float64, h)
	return scenario.Workload{
		Arrivals:       arrivals,
		DeadlineHours:  0,
		SoftSLA:        true,
		CurtailmentCap: 1,
		Piecewise:      []scenario.PiecewisePoint{{PowerMW: 0, WorkUnits: 0}, {PowerMW: 1, WorkUnits: 1}},
	}
}

func noBESS() scenario.BESS {
	return scenario.BESS{
		PowerMaxMW:          0,
		EnergyMaxMWh:        0,
		OptimizeSizing:      false,
		EfficiencyCharge:    1,
		EfficiencyDischarge: 1,
	}
}

// toyBaseline builds the "toy baseline" scenario: 4 steps, constant base
// load and price, no workload, no BESS, no generators, single scenario,
// full reliability (so grid import actually has to serve the load instead
// of being absorbed for free by the unserved-energy slack).
func toyBaseline() *scenario.Scenario {
	return &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{5, 5, 5, 5},
		Price:         []float64{10, 10, 10, 10},
		Workload:      noWorkload(4),
		BESS:          noBESS(),
		Grid:          scenario.Grid{ExportMaxMW: 20},
		Generators:    nil,
		Cases: []scenario.Case{
			{Probability: 1, GridImportCap: 20, GeneratorDerate: 1},
		},
		ReliabilityTarget: ptr(1.0),
	}
}

func newTestPlanner() *Planner {
	return NewPlanner(solver.NewLPSolveBackend(), nil)
}

func TestSolveToyBaseline(t *testing.T) {
	s := toyBaseline()
	p := newTestPlanner()

	res, err := p.Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	if math.Abs(res.Cost-200.0) > testEpsilon {
		t.Errorf("expected cost 200.0, got %v", res.Cost)
	}
	for t_, imp := range res.Dispatch.GridImport {
		if math.Abs(imp-5) > testEpsilon {
			t.Errorf("step %d: expected grid import 5, got %v", t_, imp)
		}
	}
}

func TestSOCRecursionInvariant(t *testing.T) {
	s := toyBaseline()
	s.BESS = scenario.BESS{
		PowerMaxMW:          2,
		EnergyMaxMWh:        2,
		OptimizeSizing:      false,
		EfficiencyCharge:    0.95,
		EfficiencyDischarge: 0.95,
	}
	p := newTestPlanner()

	res, err := p.Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	dt := s.TimeStepHours
	etac := s.BESS.EfficiencyCharge
	etad := s.BESS.EfficiencyDischarge
	prevSOC := 0.0
	for t_ := range res.Dispatch.SOC {
		want := prevSOC + etac*res.Dispatch.Charge[t_]*dt - res.Dispatch.Discharge[t_]*dt/etad
		got := res.Dispatch.SOC[t_]
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("step %d: soc recursion violated: want %v got %v", t_, want, got)
		}
		prevSOC = got
	}
}

func TestMutualExclusionPerScenario(t *testing.T) {
	s := toyBaseline()
	s.BESS = scenario.BESS{
		PowerMaxMW:          3,
		EnergyMaxMWh:        5,
		OptimizeSizing:      false,
		EfficiencyCharge:    0.9,
		EfficiencyDischarge: 0.9,
	}
	s.Price = []float64{-5, 20, -5, 20} // alternating sign encourages charge/discharge cycling
	s.ReliabilityTarget = ptr(0.5)

	m, h, err := BuildModel(s, BuildOptions{ReliabilityTarget: s.ReliabilityTarget})
	if err != nil {
		t.Fatalf("BuildModel returned error: %v", err)
	}
	sol, err := solver.NewLPSolveBackend().Solve(context.Background(), m)
	if err != nil {
		t.Fatalf("solve returned error: %v", err)
	}
	if sol.Status == solver.StatusInfeasible {
		t.Fatalf("expected a feasible solution")
	}

	const eps = 1e-6
	for sc := 0; sc < h.S; sc++ {
		for t_ := 0; t_ < h.H; t_++ {
			imp := sol.Values[h.Imp[sc][t_]]
			exp := sol.Values[h.Exp[sc][t_]]
			ch := sol.Values[h.PCh[sc][t_]]
			dis := sol.Values[h.PDis[sc][t_]]
			if imp > eps && exp > eps {
				t.Errorf("scenario %d step %d: simultaneous import (%v) and export (%v)", sc, t_, imp, exp)
			}
			if ch > eps && dis > eps {
				t.Errorf("scenario %d step %d: simultaneous charge (%v) and discharge (%v)", sc, t_, ch, dis)
			}
		}
	}
}

func TestHardSLAFeasibility(t *testing.T) {
	s := &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{0, 0, 0, 0},
		Price:         []float64{1, 1, 1, 1},
		Workload: scenario.Workload{
			Arrivals:      []float64{2, 2, 2, 2},
			DeadlineHours: 2,
			SoftSLA:       false,
			Piecewise:     []scenario.PiecewisePoint{{PowerMW: 0, WorkUnits: 0}, {PowerMW: 5, WorkUnits: 5}},
		},
		BESS:       noBESS(),
		Grid:       scenario.Grid{ExportMaxMW: 0},
		Generators: nil,
		Cases: []scenario.Case{
			{Probability: 1, GridImportCap: 100, GeneratorDerate: 1},
		},
	}

	p := newTestPlanner()
	res, err := p.Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("expected feasible solve, got error: %v", err)
	}
	for t_, unmet := range res.Dispatch.Unmet {
		if unmet > 1e-6 {
			t.Errorf("step %d: hard SLA violated, unmet=%v", t_, unmet)
		}
	}
}

func TestScenarioAggregationEUE(t *testing.T) {
	s := &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{10, 10},
		Price:         []float64{5, 5},
		Workload:      noWorkload(2),
		BESS:          noBESS(),
		Grid:          scenario.Grid{ExportMaxMW: 0},
		Cases: []scenario.Case{
			{Probability: 0.7, GridImportCap: 20, GeneratorDerate: 1},
			{Probability: 0.3, GridImportCap: 0, GeneratorDerate: 0},
		},
		ReliabilityTarget: ptr(0.0),
	}

	p := newTestPlanner()
	res, err := p.Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	recomputed := 0.0
	for t_, z := range res.Dispatch.Unserved {
		_ = t_
		recomputed += z * s.TimeStepHours
	}
	if math.Abs(recomputed-res.EUE) > 1e-5*math.Max(1, math.Abs(res.EUE)) {
		t.Errorf("eue mismatch: dispatch-derived %v vs reported %v", recomputed, res.EUE)
	}
}

func TestParetoMonotonicity(t *testing.T) {
	s := &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{10, 10},
		Price:         []float64{5, 5},
		Workload:      noWorkload(2),
		BESS:          noBESS(),
		Grid:          scenario.Grid{ExportMaxMW: 0},
		Generators: []scenario.Generator{
			{PMax: 10, MarginalCost: 50},
		},
		Cases: []scenario.Case{
			{Probability: 0.5, GridImportCap: 20, GeneratorDerate: 1},
			{Probability: 0.5, GridImportCap: 0, GeneratorDerate: 1},
		},
	}

	p := newTestPlanner()
	results, err := p.Sweep(context.Background(), s, []float64{0.5, 0.8, 1.0})
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Cost < results[i-1].Cost-1e-6 {
			t.Errorf("cost not monotone non-decreasing: target[%d]=%v cost=%v < target[%d]=%v cost=%v",
				i, results[i].ReliabilityTarget, results[i].Cost, i-1, results[i-1].ReliabilityTarget, results[i-1].Cost)
		}
	}
}

// TestZeroProbabilityScenarioContributesNothing is a supplemented edge
// case, not present in the original's test_solver.py (its only
// multi-scenario test uses 0.7/0.3 weights) — added directly from spec.md
// §3's Σ scenarios[s].probability = 1 invariant: a zero-weight case must
// be accepted and must not move the probability-weighted aggregation.
func TestZeroProbabilityScenarioContributesNothing(t *testing.T) {
	single := &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{5, 5},
		Price:         []float64{10, 10},
		Workload:      noWorkload(2),
		BESS:          noBESS(),
		Grid:          scenario.Grid{ExportMaxMW: 20},
		Cases: []scenario.Case{
			{Probability: 1, GridImportCap: 20, GeneratorDerate: 1},
		},
		ReliabilityTarget: ptr(1.0),
	}
	withZeroWeight := &scenario.Scenario{
		TimeStepHours: 1,
		BaseLoadMW:    []float64{5, 5},
		Price:         []float64{10, 10},
		Workload:      noWorkload(2),
		BESS:          noBESS(),
		Grid:          scenario.Grid{ExportMaxMW: 20},
		Cases: []scenario.Case{
			{Probability: 1, GridImportCap: 20, GeneratorDerate: 1},
			{Probability: 0, GridImportCap: 0, GeneratorDerate: 0},
		},
		ReliabilityTarget: ptr(1.0),
	}

	p := newTestPlanner()
	want, err := p.Solve(context.Background(), single)
	if err != nil {
		t.Fatalf("Solve(single) returned error: %v", err)
	}
	got, err := p.Solve(context.Background(), withZeroWeight)
	if err != nil {
		t.Fatalf("Solve(withZeroWeight) returned error: %v", err)
	}

	if math.Abs(got.Cost-want.Cost) > testEpsilon {
		t.Errorf("zero-weight scenario changed cost: got %v want %v", got.Cost, want.Cost)
	}
	for t_ := range got.Dispatch.GridImport {
		if math.Abs(got.Dispatch.GridImport[t_]-want.Dispatch.GridImport[t_]) > testEpsilon {
			t.Errorf("step %d: zero-weight scenario changed expected grid import: got %v want %v",
				t_, got.Dispatch.GridImport[t_], want.Dispatch.GridImport[t_])
		}
	}
}

func TestGeneratorOfflineZeroPMax(t *testing.T) {
	// Supplemented edge case from the original implementation's test suite:
	// an unavailable generator is simply modeled with pMax=0.
	s := toyBaseline()
	s.Generators = []scenario.Generator{{PMax: 0, MarginalCost: 999}}

	p := newTestPlanner()
	res, err := p.Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	for g, series := range res.Dispatch.Generation {
		for t_, val := range series {
			if val > 1e-9 {
				t.Errorf("generator %d step %d: expected zero output, got %v", g, t_, val)
			}
		}
	}
}
