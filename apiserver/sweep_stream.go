package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/devskill-org/dcdispatch/scenario"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sweepProgress is one message pushed over the stream: a solved point, a
// target's error (which ends the sweep unless the request is Tolerant,
// mirroring Sweep versus SweepTolerant, §4.4), or the final Done message.
type sweepProgress struct {
	Target float64 `json:"target"`
	Result any     `json:"result,omitempty"`
	Err    string  `json:"error,omitempty"`
	Done   bool    `json:"done"`
}

// handleSweepStream upgrades to a websocket, reads one sweepRequest as the
// handshake message, then pushes one JSON message per solved target as the
// sweep progresses — adapting the teacher's WebServer broadcast-channel
// pattern (server.go's clients/broadcast/done trio) from periodic
// miner-status pushes to a single connection's sweep-progress pushes.
func (s *Server) handleSweepStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("apiserver: websocket upgrade failed: %v", err)
		}
		return
	}
	defer conn.Close()

	var req sweepRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(sweepProgress{Err: "apiserver: invalid sweep request: " + err.Error(), Done: true})
		return
	}
	if err := req.Scenario.Validate(); err != nil {
		conn.WriteJSON(sweepProgress{Err: err.Error(), Done: true})
		return
	}

	ctx := c.Request.Context()
	for _, target := range req.Targets {
		target := target
		result, solveErr := s.planner.Solve(ctx, scenarioWithTarget(&req.Scenario, target))

		msg := sweepProgress{Target: target}
		if solveErr != nil {
			msg.Err = solveErr.Error()
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			if !req.Tolerant {
				break
			}
			continue
		}
		msg.Result = result
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}

	conn.WriteJSON(sweepProgress{Done: true})
}

func scenarioWithTarget(s *scenario.Scenario, target float64) *scenario.Scenario {
	clone := *s
	clone.ReliabilityTarget = &target
	return &clone
}
