package apiserver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devskill-org/dcdispatch/dispatch"
	"github.com/devskill-org/dcdispatch/scenario"
)

// scenarioHash fingerprints a scenario so history rows from repeated
// solves/sweeps of the same input can be correlated without storing the
// full scenario body alongside every result.
func scenarioHash(s *scenario.Scenario) string {
	body, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// saveResult persists res under hash if a history store is configured. It
// is best-effort: a history failure is logged, not surfaced to the caller,
// since the solve itself already succeeded.
func (s *Server) saveResult(c *gin.Context, hash string, res *dispatch.Result) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveResult(c.Request.Context(), hash, res); err != nil && s.logger != nil {
		s.logger.Printf("apiserver: save history: %v", err)
	}
}

// sweepRequest is the body of POST /v1/sweep.
type sweepRequest struct {
	Scenario scenario.Scenario `json:"scenario"`
	Targets  []float64         `json:"targets"`
	Tolerant bool              `json:"tolerant"`
}

func (s *Server) handleSolve(c *gin.Context) {
	sc, err := scenario.LoadFromReader(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.planner.Solve(c.Request.Context(), sc)
	if err != nil {
		writeSolveError(c, err)
		return
	}
	s.saveResult(c, scenarioHash(sc), result)

	if c.Query("actuate") == "true" {
		if s.actuator == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "apiserver: no actuator configured for this server"})
			return
		}
		if err := s.actuator.ApplyDispatch(c.Request.Context(), result); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Scenario.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apiserver: sweep requires at least one target"})
		return
	}

	hash := scenarioHash(&req.Scenario)

	if req.Tolerant {
		results := s.planner.SweepTolerant(c.Request.Context(), &req.Scenario, req.Targets)
		s.saveSweepResults(c, hash, results)
		c.JSON(http.StatusOK, gin.H{"results": results})
		return
	}

	results, err := s.planner.Sweep(c.Request.Context(), &req.Scenario, req.Targets)
	s.saveSweepResults(c, hash, results)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"results": results, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// saveSweepResults persists every successfully solved point of a sweep
// under the same scenario hash; points that failed (Tolerant mode's
// per-target Err) carry no result worth recording.
func (s *Server) saveSweepResults(c *gin.Context, hash string, results []dispatch.Result) {
	if s.history == nil {
		return
	}
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		s.saveResult(c, hash, &results[i])
	}
}

// writeSolveError maps the dispatch error taxonomy (§7) onto HTTP status
// codes: a bad input is a client error, infeasibility is unprocessable,
// anything else is a server-side solver failure.
func writeSolveError(c *gin.Context, err error) {
	var valErr *scenario.ValidationError
	var infErr *dispatch.InfeasibilityError
	var solErr *dispatch.SolverError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &infErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &solErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
