package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dbehnke/cdma-visualizer/pkg/config"
	"github.com/dbehnke/cdma-visualizer/pkg/logger"
	"github.com/dbehnke/cdma-visualizer/pkg/simulation"
)

//go:embed dist
var staticFiles embed.FS

// Server serves the simulation API, live updates and the browser UI
type Server struct {
	config       *config.Config
	logger       *logger.Logger
	httpServer   *http.Server
	simulator    *simulation.Simulator
	eventChan    <-chan simulation.Event
	history      []HistoryEntry
	stats        Stats
	websocketHub *WebSocketHub
	startTime    time.Time
	version      string
	buildTime    string
	mu           sync.RWMutex
	running      bool
	nextID       int64
}

// HistoryEntry records one simulation request
type HistoryEntry struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Stations     int       `json:"stations"`
	WalshSize    int       `json:"walshSize,omitempty"`
	OriginalData []string  `json:"originalData,omitempty"`
	Error        string    `json:"error,omitempty"`
	DurationUS   int64     `json:"durationUs"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stats holds request counters
type Stats struct {
	TotalSimulations  uint64 `json:"totalSimulations"`
	FailedSimulations uint64 `json:"failedSimulations"`
	ClientErrors      uint64 `json:"clientErrors"`
	StationsProcessed uint64 `json:"stationsProcessed"`
	MatricesServed    uint64 `json:"matricesServed"`
}

// NewServer creates a new web server. eventChan must be the channel the
// simulator publishes to; it may be nil when no history is wanted.
func NewServer(cfg *config.Config, log *logger.Logger, sim *simulation.Simulator, eventChan <-chan simulation.Event, version, buildTime string) *Server {
	bufferSize := cfg.WebSocket.BufferSize
	if bufferSize < 1 {
		bufferSize = 1
	}

	return &Server{
		config:       cfg,
		logger:       log.WithComponent("web"),
		simulator:    sim,
		eventChan:    eventChan,
		history:      make([]HistoryEntry, 0),
		websocketHub: newWebSocketHub(bufferSize, log.WithComponent("web.hub")),
		startTime:    time.Now(),
		version:      version,
		buildTime:    buildTime,
	}
}

// Start starts the web server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("web server already running")
	}
	s.running = true
	s.mu.Unlock()

	s.startWorkers(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.Info("Starting web server", logger.String("address", addr))

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down web server")
		return s.Stop()
	}
}

// Stop stops the web server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Handler returns the HTTP handler without starting any listener
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// startWorkers runs the websocket hub and the event processor until ctx ends
func (s *Server) startWorkers(ctx context.Context) {
	go s.websocketHub.run(ctx)
	go s.processEvents(ctx)
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.recoveryMiddleware)
	router.Use(s.logMiddleware)

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	s.registerSimulationRoutes(api)
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/system/info", s.handleSystemInfo).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.PathPrefix("/").HandlerFunc(s.handleNotFound)

	// The same simulation endpoints without the /api prefix
	root := router.NewRoute().Subrouter()
	s.registerSimulationRoutes(root)

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (embedded frontend)
	s.setupStaticRoutes(router)

	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	return router
}

func (s *Server) registerSimulationRoutes(r *mux.Router) {
	if s.config.Server.CORS {
		r.Use(s.corsMiddleware)
	}
	r.Use(s.jsonMiddleware)

	r.HandleFunc("/simulate", s.handleSimulate).Methods("POST")
	r.HandleFunc("/simulate", s.handleMethodNotAllowed)
	r.HandleFunc("/walsh/{size}", s.handleWalsh).Methods("GET")
	r.HandleFunc("/walsh/{size}", s.handleMethodNotAllowed)
}

// setupStaticRoutes serves the embedded UI; unknown paths get a JSON 404
func (s *Server) setupStaticRoutes(router *mux.Router) {
	distFS, err := fs.Sub(staticFiles, "dist")
	if err != nil {
		s.logger.Error("Failed to setup static files", logger.Error(err))
		return
	}

	fileServer := http.FileServer(http.FS(distFS))

	router.PathPrefix("/").Methods("GET", "HEAD").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean(r.URL.Path)
		if name != "/" {
			f, err := distFS.Open(name[1:])
			if err != nil {
				s.handleNotFound(w, r)
				return
			}
			if err := f.Close(); err != nil {
				s.logger.Warn("static file close failed", logger.Error(err))
			}
		}
		fileServer.ServeHTTP(w, r)
	})
}

// processEvents records simulator events and broadcasts them via WebSocket
func (s *Server) processEvents(ctx context.Context) {
	if s.eventChan == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.eventChan:
			s.handleEvent(event)
		}
	}
}

// handleEvent updates counters and history for one simulation event
func (s *Server) handleEvent(event simulation.Event) {
	s.mu.Lock()
	s.nextID++
	entry := HistoryEntry{
		ID:         s.nextID,
		Type:       event.Type,
		Stations:   event.Stations,
		WalshSize:  event.WalshSize,
		Error:      event.Error,
		DurationUS: event.Duration.Microseconds(),
		Timestamp:  event.Timestamp,
	}
	if event.Result != nil {
		entry.OriginalData = event.Result.OriginalData
	}

	s.stats.TotalSimulations++
	switch {
	case event.Type == simulation.EventFailed && event.ClientError:
		s.stats.ClientErrors++
	case event.Type == simulation.EventFailed:
		s.stats.FailedSimulations++
	default:
		s.stats.StationsProcessed += uint64(event.Stations)
	}

	limit := s.config.Simulation.HistorySize
	if limit > 0 {
		s.history = append([]HistoryEntry{entry}, s.history...)
		if len(s.history) > limit {
			s.history = s.history[:limit]
		}
	}
	s.mu.Unlock()

	if event.Type == simulation.EventSimulated {
		s.broadcastWebSocketMessage("simulation", event)
	} else {
		s.broadcastWebSocketMessage("simulation_failed", entry)
	}
}

// snapshot returns a copy of the counters
func (s *Server) snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// writeJSON writes v with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", logger.Error(err))
	}
}

// writeError writes {"error": message}
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
