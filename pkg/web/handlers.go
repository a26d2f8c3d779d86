package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dbehnke/cdma-visualizer/pkg/cdma"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

// maxBodyBytes bounds the simulate request body
const maxBodyBytes = 1 << 20

type simulateRequest struct {
	Stations []string `json:"stations"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		s.logger.Debug("Invalid simulate request body", logger.Error(err))
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Stations) == 0 {
		s.writeError(w, http.StatusBadRequest, "No stations provided")
		return
	}

	result, err := s.simulator.Run(req.Stations)
	if err != nil {
		if simulation.IsClientError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Simulation error", logger.Error(err), logger.Int("stations", len(req.Stations)))
		s.writeError(w, http.StatusInternalServerError, "Internal server error during simulation")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWalsh(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(mux.Vars(r)["size"])
	if err != nil || !cdma.IsPowerOfTwo(size) {
		s.writeError(w, http.StatusBadRequest, "Size must be a positive power of 2")
		return
	}

	result, err := s.simulator.Walsh(size)
	if err != nil {
		if errors.Is(err, simulation.ErrSizeTooLarge) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Walsh matrix error", logger.Error(err), logger.Int("size", size))
		s.writeError(w, http.StatusInternalServerError, "Error generating Walsh matrix")
		return
	}

	s.mu.Lock()
	s.stats.MatricesServed++
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, result)
}

// statsResponse builds the stats payload shared by HTTP and WebSocket
func (s *Server) statsResponse() map[string]interface{} {
	stats := s.snapshot()
	return map[string]interface{}{
		"uptime":            int(time.Since(s.startTime).Seconds()),
		"totalSimulations":  stats.TotalSimulations,
		"failedSimulations": stats.FailedSimulations,
		"clientErrors":      stats.ClientErrors,
		"stationsProcessed": stats.StationsProcessed,
		"matricesServed":    stats.MatricesServed,
		"websocketClients":  s.websocketHub.Count(),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.statsResponse())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.config.Simulation.HistorySize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	s.mu.RLock()
	logs := s.history
	if len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]HistoryEntry, len(logs))
	copy(out, logs)
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": out,
	})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":         "CDMA Visualizer",
		"version":      s.version,
		"buildTime":    s.buildTime,
		"host":         s.config.Server.Host,
		"port":         s.config.Server.Port,
		"maxStations":  s.config.Simulation.MaxStations,
		"maxBitLength": s.config.Simulation.MaxBitLength,
		"maxWalshSize": s.config.Simulation.MaxWalshSize,
		"websocket":    s.config.WebSocket.Enabled,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "Route not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
