// Package api is the HTTP front end: it validates requests, authenticates
// them, resolves the target book and forwards one command to its engine.
// All matching logic lives behind the engine boundary.
package api

import (
	"fmt"
	"net/http"

	vmetrics "github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/params"
	"github.com/rooklift/disorderbook/pkg/exchange"
)

const frontPage = `disorderbook: an unofficial Stockfighter server, rewritten in Go.
API lives under /ob/api/ -- see the Stockfighter docs.
`

// Server routes requests to per-book engines via the registry. Each engine
// serializes its own commands, so handlers may run concurrently.
type Server struct {
	cfg      params.Config
	registry *exchange.Registry
	accounts *exchange.Accounts
	keyring  *exchange.Keyring
	router   *mux.Router
	log      *zap.SugaredLogger
}

func NewServer(
	cfg params.Config,
	registry *exchange.Registry,
	accounts *exchange.Accounts,
	keyring *exchange.Keyring,
	log *zap.SugaredLogger,
) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		accounts: accounts,
		keyring:  keyring,
		router:   mux.NewRouter(),
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.instrument)
	s.router.NotFoundHandler = s.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, msgUnknownPath)
	}))

	api := s.router.PathPrefix("/ob/api").Subrouter()

	api.HandleFunc("/heartbeat", s.handleHeartbeat).Methods("GET")
	api.HandleFunc("/venues", s.handleVenues).Methods("GET")
	api.HandleFunc("/venues/{venue}/heartbeat", s.handleVenueHeartbeat).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks", s.handleStocks).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}", s.handleDepth).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/quote", s.handleQuote).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/orders", s.handlePlace).Methods("POST")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/orders/{id}", s.handleStatus).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/orders/{id}", s.handleCancel).Methods("DELETE")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/orders/{id}/cancel", s.handleCancel).Methods("POST")

	// Extras: disabled unless the extras flag is set.
	api.HandleFunc("/venues/{venue}/accounts/{account}/stocks/{symbol}/orders", s.handleStatusAll).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/positions", s.handlePositions).Methods("GET")
	api.HandleFunc("/venues/{venue}/stocks/{symbol}/debug", s.handleDebug).Methods("GET")

	s.router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		vmetrics.WritePrometheus(w, true)
	}).Methods("GET")

	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, frontPage)
	}).Methods("GET")
}

// instrument counts requests per route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		vmetrics.GetOrCreateCounter(fmt.Sprintf(`http_requests_total{path=%q}`, path)).Inc()
		next.ServeHTTP(w, r)
	})
}

// Handler returns the fully wired handler, for tests and for Start.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Starfighter-Authorization", "X-Stockfighter-Authorization"},
	})
	return c.Handler(s.router)
}

func (s *Server) Start(addr string) error {
	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
