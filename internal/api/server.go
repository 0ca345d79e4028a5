package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anamarijapotokar/Baccarat/internal/config"
	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
)

// Server handles HTTP requests
type Server struct {
	db           store.DB
	cfg          config.Config
	errorHandler *ErrorHandler
	logger       *log.Logger
	simLogger    *log.Logger
	startTime    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the [API] logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSimLogger replaces the [SIM] logger handed to simulators.
func WithSimLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.simLogger = l
		}
	}
}

// NewServer creates a new API server. db may be nil, which disables
// persistence and the /runs endpoints.
func NewServer(db store.DB, cfg config.Config, opts ...Option) *Server {
	server := &Server{
		db:        db,
		cfg:       cfg,
		logger:    log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile),
		simLogger: log.New(os.Stdout, "[SIM] ", log.LstdFlags),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.errorHandler = NewErrorHandler(server.logger)

	server.logger.Printf("server_init systems=%d database_enabled=%t max_hands=%d request_timeout=%s engine_version=%s",
		len(games.SystemNames()), db != nil, cfg.MaxHands, cfg.RequestTimeout, EngineVersion)

	return server
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORSMiddleware)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		// The stream manages its own lifetime once upgraded.
		r.Get("/simulations/stream", s.handleSimulationStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))

			r.Get("/systems", s.handleListSystems)
			r.Post("/simulations", s.handleSimulation)
			r.Post("/simulations/compare", s.handleCompare)
			r.Post("/strategies", s.handleStrategy)
			r.Post("/ruin", s.handleRuin)
			r.Post("/settle", s.handleSettle)
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
		})
	})

	return r
}

func (s *Server) simulator(opts ...sim.Option) *sim.Simulator {
	opts = append([]sim.Option{sim.WithWorkers(s.cfg.Workers), sim.WithLogger(s.simLogger)}, opts...)
	return sim.NewSimulator(opts...)
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("response_encode_failed status=%d err=%v", status, err)
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
