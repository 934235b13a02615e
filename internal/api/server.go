// Package api provides the HTTP server for fitpet.
// It exposes the game engine as a JSON REST API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fitpet-app/fitpet/internal/app/game"
	"github.com/fitpet-app/fitpet/internal/domain"
	"github.com/fitpet-app/fitpet/internal/health"
	"github.com/fitpet-app/fitpet/internal/infra/metrics"
)

// Server is the fitpet HTTP API server.
type Server struct {
	engine         *game.Engine
	health         *health.Checker
	locks          *playerLocks
	logger         *zap.Logger
	version        string
	timeout        time.Duration
	metricsEnabled bool
}

// NewServer creates a new API server over the engine.
func NewServer(engine *game.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:  engine,
		locks:   newPlayerLocks(),
		logger:  logger.Named("api"),
		version: "dev",
		timeout: 30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches a health checker to /health.
func (s *Server) SetHealth(c *health.Checker) { s.health = c }

// SetVersion sets the version reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// SetTimeout overrides the per-request timeout.
func (s *Server) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/treats", s.handleTreats)
		r.Get("/milestones", s.handleMilestones)
		r.Get("/unlocks", s.handleUnlocks)

		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates", s.handleCreateTemplate)

		r.Get("/players", s.handleListPlayers)
		r.Post("/players", s.handleCreatePlayer)

		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Get("/workouts", s.handleHistory)
			r.Get("/ledger", s.handleLedger)
			r.Get("/shop", s.handleShop)

			// Mutations are serialized per player.
			r.Group(func(r chi.Router) {
				r.Use(s.serializePlayer)
				r.Post("/refresh", s.handleRefresh)
				r.Post("/workouts", s.handleLogWorkout)
				r.Post("/pet/feed", s.handleFeed)
				r.Post("/pet/recover", s.handleRecover)
				r.Post("/pet/accessories/{accessoryID}", s.handleEquip)
				r.Delete("/pet/accessories/{accessoryID}", s.handleUnequip)
				r.Post("/shop/{accessoryID}", s.handlePurchase)
			})
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.health.Statuses(),
	})
}

// ─── Middleware ─────────────────────────────────────────────────────────────

// serializePlayer holds the player's lock for the duration of the request.
func (s *Server) serializePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unlock := s.locks.Lock(chi.URLParam(r, "playerID"))
		defer unlock()
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request and records route metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.APIRequests.WithLabelValues(route, statusClass(ww.Status())).Inc()
		metrics.APILatency.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Debug("request",
			zap.String("id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", elapsed))
	})
}

func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code/100) + "xx"
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── Responses ──────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"code":    code,
		},
	})
}

// errorMappings maps engine sentinels to HTTP status and a stable code.
var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
	{domain.ErrTemplateNotFound, http.StatusNotFound, "template_not_found"},
	{domain.ErrAccessoryNotFound, http.StatusNotFound, "accessory_not_found"},
	{domain.ErrNoPet, http.StatusNotFound, "no_pet"},
	{domain.ErrInvalidMetric, http.StatusBadRequest, "invalid_metric"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrUnknownTreat, http.StatusBadRequest, "unknown_treat"},
	{domain.ErrUnknownSpecies, http.StatusBadRequest, "unknown_species"},
	{domain.ErrInsufficientCurrency, http.StatusPaymentRequired, "insufficient_currency"},
	{domain.ErrAlreadyUnlocked, http.StatusConflict, "already_unlocked"},
	{domain.ErrPetAway, http.StatusConflict, "pet_away"},
	{domain.ErrNotUnlocked, http.StatusUnprocessableEntity, "not_unlocked"},
	{domain.ErrRecoveryIneligible, http.StatusUnprocessableEntity, "recovery_ineligible"},
}

// writeEngineError maps an engine error onto a status code.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	s.logger.Error("request failed",
		zap.String("id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
