package scenario

import "math"

const probabilitySumEpsilon = 1e-6

// Validate checks every invariant from the data model before a Scenario may
// be handed to the model builder. The builder calls this again itself
// regardless of whether the loader already has (see Load/LoadFromReader);
// Validate must never be skipped just because a caller trusts its source.
func (s *Scenario) Validate() error {
	if s.TimeStepHours <= 0 {
		return validationErrorf("time_step_hours", "must be > 0, got %g", s.TimeStepHours)
	}

	h := s.Horizon()
	if h == 0 {
		return validationErrorf("base_load_mw", "must have at least one time step")
	}
	if len(s.Price) != h {
		return validationErrorf("price", "length %d must equal horizon %d", len(s.Price), h)
	}
	if len(s.Workload.Arrivals) != h {
		return validationErrorf("workload.arrivals", "length %d must equal horizon %d", len(s.Workload.Arrivals), h)
	}
	for t, v := range s.BaseLoadMW {
		if v < 0 {
			return validationErrorf("base_load_mw", "step %d is negative: %g", t, v)
		}
	}
	for t, v := range s.Workload.Arrivals {
		if v < 0 {
			return validationErrorf("workload.arrivals", "step %d is negative: %g", t, v)
		}
	}

	if err := s.Workload.validate(); err != nil {
		return err
	}
	if err := s.BESS.validate(); err != nil {
		return err
	}
	if s.Grid.ExportMaxMW < 0 {
		return validationErrorf("grid.export_max_mw", "must be non-negative, got %g", s.Grid.ExportMaxMW)
	}
	for i, g := range s.Generators {
		if g.PMax < 0 {
			return validationErrorf("generators", "generator %d: p_max must be non-negative, got %g", i, g.PMax)
		}
		if g.MarginalCost < 0 {
			return validationErrorf("generators", "generator %d: marginal_cost must be non-negative, got %g", i, g.MarginalCost)
		}
	}

	if len(s.Cases) == 0 {
		return validationErrorf("scenarios", "must list at least one scenario")
	}
	probSum := 0.0
	for i, c := range s.Cases {
		if c.Probability < 0 {
			return validationErrorf("scenarios", "scenario %d: probability must be non-negative, got %g", i, c.Probability)
		}
		if c.GridImportCap < 0 {
			return validationErrorf("scenarios", "scenario %d: grid_import_cap must be non-negative, got %g", i, c.GridImportCap)
		}
		if c.GeneratorDerate < 0 || c.GeneratorDerate > 1 {
			return validationErrorf("scenarios", "scenario %d: generator_derate must be in [0,1], got %g", i, c.GeneratorDerate)
		}
		probSum += c.Probability
	}
	if math.Abs(probSum-1.0) > probabilitySumEpsilon {
		return validationErrorf("scenarios", "probabilities must sum to 1, got %g", probSum)
	}

	if s.ReliabilityTarget != nil {
		if *s.ReliabilityTarget < 0 || *s.ReliabilityTarget > 1 {
			return validationErrorf("reliability_target", "must be in [0,1], got %g", *s.ReliabilityTarget)
		}
	}
	for i, target := range s.ReliabilitySweep {
		if target < 0 || target > 1 {
			return validationErrorf("reliability_sweep", "target %d must be in [0,1], got %g", i, target)
		}
	}

	return nil
}

func (w *Workload) validate() error {
	if w.DeadlineHours < 0 {
		return validationErrorf("workload.deadline_hours", "must be non-negative, got %d", w.DeadlineHours)
	}
	if w.PenaltyDeadline < 0 {
		return validationErrorf("workload.penalty_deadline", "must be non-negative, got %g", w.PenaltyDeadline)
	}
	if w.CurtailmentCap < 0 || w.CurtailmentCap > 1 {
		return validationErrorf("workload.curtailment_cap", "must be in [0,1], got %g", w.CurtailmentCap)
	}
	if w.MinComputeMW < 0 {
		return validationErrorf("workload.min_compute_mw", "must be non-negative, got %g", w.MinComputeMW)
	}
	if len(w.Piecewise) < 2 {
		return validationErrorf("workload.piecewise", "must contain at least two breakpoints, got %d", len(w.Piecewise))
	}
	for i, p := range w.Piecewise {
		if p.PowerMW < 0 {
			return validationErrorf("workload.piecewise", "breakpoint %d: power_mw must be non-negative, got %g", i, p.PowerMW)
		}
		if p.WorkUnits < 0 {
			return validationErrorf("workload.piecewise", "breakpoint %d: work_units must be non-negative, got %g", i, p.WorkUnits)
		}
	}
	return nil
}

func (b *BESS) validate() error {
	if b.PowerMaxMW < 0 {
		return validationErrorf("bess.power_max_mw", "must be non-negative, got %g", b.PowerMaxMW)
	}
	if b.EnergyMaxMWh < 0 {
		return validationErrorf("bess.energy_max_mwh", "must be non-negative, got %g", b.EnergyMaxMWh)
	}
	if b.EfficiencyCharge <= 0 || b.EfficiencyCharge > 1 {
		return validationErrorf("bess.efficiency_charge", "must be in (0,1], got %g", b.EfficiencyCharge)
	}
	if b.EfficiencyDischarge <= 0 || b.EfficiencyDischarge > 1 {
		return validationErrorf("bess.efficiency_discharge", "must be in (0,1], got %g", b.EfficiencyDischarge)
	}
	if b.DegradationCost < 0 {
		return validationErrorf("bess.degradation_cost", "must be non-negative, got %g", b.DegradationCost)
	}
	if b.CapexPower < 0 {
		return validationErrorf("bess.capex_power", "must be non-negative, got %g", b.CapexPower)
	}
	if b.CapexEnergy < 0 {
		return validationErrorf("bess.capex_energy", "must be non-negative, got %g", b.CapexEnergy)
	}
	return nil
}
