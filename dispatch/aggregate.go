package dispatch

import (
	"github.com/devskill-org/dcdispatch/scenario"
	"github.com/devskill-org/dcdispatch/solver"
)

// loleThreshold is the expected-unserved-energy-per-step level above which
// a step counts toward LOLE (§4.3).
const loleThreshold = 1e-3

// aggregate collapses the per-scenario trajectories of a Solution into
// probability-weighted expected trajectories and computes the reliability
// summary metrics.
func aggregate(s *scenario.Scenario, h *Handles, sol *solver.Solution) *Result {
	H := h.H
	dt := s.TimeStepHours
	v := sol.Values

	d := Dispatch{
		Time:         make([]float64, H),
		GridImport:   make([]float64, H),
		GridExport:   make([]float64, H),
		ComputePower: make([]float64, H),
		BaseLoad:     make([]float64, H),
		SOC:          make([]float64, H),
		Queue:        make([]float64, H),
		Unserved:     make([]float64, H),
		Charge:       make([]float64, H),
		Discharge:    make([]float64, H),
		Unmet:        make([]float64, H),
		Generation:   make([][]float64, h.G),
	}
	for g := range d.Generation {
		d.Generation[g] = make([]float64, H)
	}

	for t := 0; t < H; t++ {
		d.Time[t] = float64(t) * dt
		d.BaseLoad[t] = s.BaseLoadMW[t]
		d.ComputePower[t] = v[h.PCompute[t]]
		d.Queue[t] = v[h.Q[t][0]]
		d.Unmet[t] = v[h.Unmet[t]]

		for sc, c := range s.Cases {
			d.GridImport[t] += c.Probability * v[h.Imp[sc][t]]
			d.GridExport[t] += c.Probability * v[h.Exp[sc][t]]
			d.SOC[t] += c.Probability * v[h.SOC[sc][t]]
			d.Unserved[t] += c.Probability * v[h.Z[sc][t]]
			d.Charge[t] += c.Probability * v[h.PCh[sc][t]]
			d.Discharge[t] += c.Probability * v[h.PDis[sc][t]]
			for g := 0; g < h.G; g++ {
				d.Generation[g][t] += c.Probability * v[h.PGen[g][sc][t]]
			}
		}
	}

	eue := 0.0
	totalDemand := 0.0
	lole := 0
	for t := 0; t < H; t++ {
		eue += d.Unserved[t] * dt
		totalDemand += d.BaseLoad[t] * dt
		if d.Unserved[t] > loleThreshold {
			lole++
		}
	}

	reliability := 1.0
	if totalDemand > 0 {
		reliability = 1 - eue/totalDemand
	}

	return &Result{
		Objective:   sol.Objective,
		Cost:        sol.Objective,
		Reliability: reliability,
		EUE:         eue,
		LOLE:        lole,
		Dispatch:    d,
		SizingMW:    v[h.PBess],
		SizingMWh:   v[h.EBess],
	}
}
