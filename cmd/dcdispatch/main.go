// Command dcdispatch is the offline CLI entry point for the dispatch
// planner: it loads a scenario file, solves it (either a single point or a
// reliability-target sweep), and renders the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/devskill-org/dcdispatch/dispatch"
	"github.com/devskill-org/dcdispatch/scenario"
	"github.com/devskill-org/dcdispatch/solver"
)

func main() {
	var (
		scenarioPath   = flag.String("scenario", "", "Path to scenario file (JSON or YAML)")
		yamlInput      = flag.Bool("yaml", false, "Parse -scenario as YAML instead of JSON")
		pareto         = flag.Bool("pareto", false, "Solve the scenario's reliability sweep instead of a single target")
		tolerant       = flag.Bool("tolerant", false, "In -pareto mode, continue past an infeasible target instead of aborting")
		sizingOverride = flag.Bool("sizing-override", false, "Force sizing optimization on for this run, regardless of the scenario file's optimize_sizing setting")
		help           = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help || *scenarioPath == "" {
		showHelp()
		if *scenarioPath == "" && !*help {
			os.Exit(2)
		}
		return
	}

	logger := log.New(os.Stderr, "[dcdispatch] ", log.LstdFlags)

	var (
		s   *scenario.Scenario
		err error
	)
	if *yamlInput || strings.HasSuffix(*scenarioPath, ".yaml") || strings.HasSuffix(*scenarioPath, ".yml") {
		s, err = scenario.LoadYAML(*scenarioPath)
	} else {
		s, err = scenario.Load(*scenarioPath)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading scenario:", err)
		os.Exit(1)
	}

	if *sizingOverride {
		s.BESS.OptimizeSizing = true
	}

	planner := dispatch.NewPlanner(solver.NewLPSolveBackend(), logger)
	ctx := context.Background()

	if *pareto {
		targets := s.ReliabilitySweep
		if len(targets) == 0 {
			fmt.Fprintln(os.Stderr, "Error: -pareto requires a non-empty reliability_sweep in the scenario")
			os.Exit(1)
		}

		var results []dispatch.Result
		if *tolerant {
			results = planner.SweepTolerant(ctx, s, targets)
		} else {
			var sweepErr error
			results, sweepErr = planner.Sweep(ctx, s, targets)
			if sweepErr != nil {
				logger.Printf("sweep aborted: %v", sweepErr)
			}
		}
		writeJSON(results)
		return
	}

	result, err := planner.Solve(ctx, s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error solving scenario:", err)
		os.Exit(1)
	}
	writeJSON(result)
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "Error encoding result:", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("dcdispatch - data center dispatch and sizing MILP optimizer")
	fmt.Println()
	fmt.Println("Usage: dcdispatch -scenario <path> [flags]")
	fmt.Println()
	flag.PrintDefaults()
}
