package dispatch

// Handles names every decision variable group built into the model, so the
// result aggregator can read values back by (scenario, step, bucket)
// instead of re-deriving column indices.
type Handles struct {
	H, L, K, S, G int // horizon, deadline buckets (0..L), piecewise points, scenario count, generator count

	PBess, EBess int

	Lambda   [][]int // [t][k]
	PCompute []int   // [t]
	X        []int   // [t]
	Q        [][]int // [t][a], a in 0..L
	Served   [][]int // [t][a]
	Unmet    []int   // [t]

	PCh       [][]int   // [s][t]
	PDis      [][]int   // [s][t]
	SOC       [][]int   // [s][t]
	Imp       [][]int   // [s][t]
	Exp       [][]int   // [s][t]
	Z         [][]int   // [s][t]
	ChargeBin [][]int   // [s][t]
	GridBin   [][]int   // [s][t]
	PGen      [][][]int // [g][s][t]
}

// allocator hands out sequential variable indices and records names.
type allocator struct {
	names []string
}

func (a *allocator) alloc(name string) int {
	idx := len(a.names)
	a.names = append(a.names, name)
	return idx
}
