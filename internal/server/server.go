// FilePath: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itsatony/misting-hub/api"
	"github.com/itsatony/misting-hub/internal/config"
	"github.com/itsatony/misting-hub/internal/database"
	"github.com/itsatony/misting-hub/internal/hubservice"
	"github.com/itsatony/misting-hub/internal/monitoring"
	"github.com/itsatony/misting-hub/internal/mqtt"
	"github.com/itsatony/misting-hub/internal/pipeline"
	"github.com/itsatony/misting-hub/internal/ratelimit"
	"github.com/itsatony/misting-hub/internal/repository"
	"github.com/itsatony/misting-hub/internal/repository/rediscache"
	"github.com/itsatony/misting-hub/internal/repository/timescale"
	"github.com/itsatony/misting-hub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// Server owns the HTTP surface and the MQTT ingestion side
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	transport  *mqtt.Client
	monitoring *monitoring.Service
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

// Start wires all services, connects the transport and begins listening
// for requests
func (s *Server) Start() error {
	s.hubservice, s.transport = initializeHubService(s.config)
	s.monitoring = monitoring.NewService()

	// Set up pipeline event handlers
	s.setupPipelineHandlers()

	// Setup routes
	router := api.NewRouter(s.hubservice)
	router.Resources().SetHealthCheck(s.handleHealth())
	router.Resources().SetMetrics(s.handleMetrics())

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Connect transport; subscriptions re-establish on every reconnect
	ctx, cancel := context.WithTimeout(context.Background(), s.config.MQTT.MaxConnectWait)
	defer cancel()
	if err := s.transport.Connect(ctx); err != nil {
		return fmt.Errorf("error connecting to MQTT broker: %w", err)
	}

	// Start retention janitor
	go s.hubservice.Cleanup.Run(s.config.Ingest.CleanupInterval, s.config.Ingest.Retention)

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	s.hubservice.Cleanup.Stop()
	s.transport.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

// handleMetrics exposes the monitoring counters
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.monitoring.Counters())
	}
}

func (s *Server) setupPipelineHandlers() {
	s.hubservice.Pipeline.On(pipeline.EventReadingPersisted, func(args ...interface{}) {
		if len(args) > 0 {
			if key, ok := args[0].(string); ok {
				s.monitoring.RecordEvent("reading_persisted", map[string]string{
					"stream_key": key,
				})
			}
		}
	})

	s.hubservice.Pipeline.On(pipeline.EventPersisted, func(args ...interface{}) {
		if len(args) > 0 {
			if trigger, ok := args[0].(string); ok {
				s.monitoring.RecordEvent("event_persisted", map[string]string{
					"trigger_type": trigger,
				})
			}
		}
	})

	s.hubservice.Cleanup.OnCleanup("readings.pruned", func(count int64) {
		nuts.L.Infof("[Cleanup] %d readings pruned", count)
	})
	s.hubservice.Cleanup.OnCleanup("events.pruned", func(count int64) {
		nuts.L.Infof("[Cleanup] %d events pruned", count)
	})
}

// initializeHubService creates and configures the hub service and transport
func initializeHubService(cfg *config.Config) (*hubservice.HubService, *mqtt.Client) {
	// Initialize database connection
	tsdb := initTimescaleDB(cfg.Database.TimescaleDB)

	// Initialize repositories
	readings, err := timescale.NewReadingRepository(tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}
	events, err := timescale.NewEventRepository(tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize event repository: %v", err)
	}

	// Optional snapshot mirror
	var cache repository.SnapshotCache
	if cfg.Redis.Host != "" {
		redisCache, err := rediscache.New(cfg.Redis)
		if err != nil {
			nuts.L.Warnf("[Server] Snapshot mirror disabled: %v", err)
		} else {
			cache = redisCache
		}
	}

	// Ingestion core
	aggregator := state.New(cfg.Ingest.AverageFreshness)
	limiter := ratelimit.New(cfg.Ingest.ReadingCooldown)
	pipe := pipeline.New(pipeline.Deps{
		Aggregator:   aggregator,
		Limiter:      limiter,
		Readings:     readings,
		Events:       events,
		Cache:        cache,
		WriteTimeout: cfg.Ingest.WriteTimeout,
	})

	// Transport
	transport := mqtt.NewClient(cfg.MQTT, pipe.OnMessage)

	// Create and return hub service
	svc := hubservice.New(readings, events, aggregator, pipe, transport)
	if err := svc.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid service wiring: %v", err)
	}
	return svc, transport
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}
	// Set up connection timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}
