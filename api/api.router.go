// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/itsatony/misting-hub/api/resources"
	"github.com/itsatony/misting-hub/internal/hubservice"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

// NewRouter wires the HTTP surface over the hub service. The API carries
// no authentication; it is meant to sit on a trusted network, like the
// dashboard it serves.
func NewRouter(svc *hubservice.HubService) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

// Resources exposes the handler set so the server can attach health and
// metrics handlers.
func (r *Router) Resources() *resources.Resources {
	return r.resources
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.handleFunc(func() http.HandlerFunc { return r.resources.HealthCheck })).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.handleFunc(func() http.HandlerFunc { return r.resources.Metrics })).Methods(http.MethodGet)

	// State and history
	api.HandleFunc("/state", r.resources.State.GetState).Methods(http.MethodGet)
	api.HandleFunc("/readings/{streamKey}", r.resources.Readings.GetReadings).Methods(http.MethodGet)
	api.HandleFunc("/events", r.resources.Events.ListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/summary", r.resources.Events.SummarizeEvents).Methods(http.MethodGet)

	// Outbound commands
	api.HandleFunc("/control/misting", r.resources.Control.ControlMisting).Methods(http.MethodPost)
	api.HandleFunc("/control/mode", r.resources.Control.SetMode).Methods(http.MethodPost)
}

// handleFunc defers resolution of late-bound handlers (health, metrics)
// that the server attaches after router construction.
func (r *Router) handleFunc(resolve func() http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if h := resolve(); h != nil {
			h(w, req)
			return
		}
		http.NotFound(w, req)
	}
}

// Handler returns the router wrapped with CORS for the dashboard clients,
// which are served from arbitrary origins.
func (r *Router) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(r.router)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
