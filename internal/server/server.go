// Package server provides the HTTP REST API for the matchmaker.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/AILLCSteve/rotary-networking-app/internal/config"
	"github.com/AILLCSteve/rotary-networking-app/internal/db"
	"github.com/AILLCSteve/rotary-networking-app/internal/llm"
	"github.com/AILLCSteve/rotary-networking-app/internal/pipeline"
	"github.com/AILLCSteve/rotary-networking-app/internal/research"
	"github.com/AILLCSteve/rotary-networking-app/internal/server/middleware"
	"github.com/AILLCSteve/rotary-networking-app/internal/server/ratelimit"
	"github.com/AILLCSteve/rotary-networking-app/internal/types"
)

// Store is the persistence surface the HTTP layer needs. *db.DB satisfies it.
type Store interface {
	pipeline.Store
	CreateAttendee(ctx context.Context, a *types.Attendee) error
	ListAttendees(ctx context.Context) ([]*types.Attendee, error)
	DeleteAttendee(ctx context.Context, id uuid.UUID) error
	ListVectorIDs(ctx context.Context) (map[uuid.UUID]bool, error)
	ListMatchesForSubject(ctx context.Context, subjectID uuid.UUID) ([]*types.MatchRecord, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*types.MatchRecord, error)
	AcknowledgeMatch(ctx context.Context, id uuid.UUID) error
	ResetMatches(ctx context.Context) (int64, error)
	CountMatchesBySubject(ctx context.Context) (map[uuid.UUID]db.MatchCounts, error)
}

// runFunc generates one tier of matches; swapped out in tests.
type runFunc func(ctx context.Context, opts pipeline.RunOptions, subjectID uuid.UUID, tier types.Tier) (*pipeline.Result, error)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server

	store       Store
	client      llm.Client
	jwtService  *JWTService
	passwordCfg *config.PasswordConfig
	rateLimiter *ratelimit.Limiter

	adminUsername     string
	adminPasswordHash string
	verbose           bool

	run runFunc
}

// Config holds server configuration
type Config struct {
	Port              int
	DatabaseURL       string
	APIKey            string
	AdminUsername     string
	AdminPasswordHash string
	Verbose           bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	passwordCfg, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := newServer(database, client, NewJWTService(jwtConfig), passwordCfg, cfg)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for match generation runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newServer wires the handler dependencies without opening connections.
func newServer(store Store, client llm.Client, jwtService *JWTService, passwordCfg *config.PasswordConfig, cfg Config) *Server {
	return &Server{
		store:             store,
		client:            client,
		jwtService:        jwtService,
		passwordCfg:       passwordCfg,
		adminUsername:     cfg.AdminUsername,
		adminPasswordHash: cfg.AdminPasswordHash,
		verbose:           cfg.Verbose,
		run:               pipeline.Run,
	}
}

// routes builds the request router.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Public registration and dashboard surface
	mux.HandleFunc("POST /attendees", s.handleRegisterAttendee)
	mux.HandleFunc("GET /attendees/{id}/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /attendees/{id}/matches/top", s.handleGenerateTop)
	mux.HandleFunc("POST /attendees/{id}/matches/broader", s.handleGenerateBroader)
	mux.HandleFunc("POST /matches/{id}/acknowledge", s.handleAcknowledgeMatch)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Admin surface
	mux.HandleFunc("POST /admin/login", s.handleAdminLogin)

	requireAuth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	mux.Handle("GET /admin/attendees", requireAuth(http.HandlerFunc(s.handleListAttendees)))
	mux.Handle("DELETE /admin/attendees/{id}", requireAuth(http.HandlerFunc(s.handleDeleteAttendee)))
	mux.Handle("POST /admin/embeddings/regenerate", requireAuth(http.HandlerFunc(s.handleRegenerateEmbeddings)))
	mux.Handle("POST /admin/matches/reset", requireAuth(http.HandlerFunc(s.handleResetMatches)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.client != nil {
		_ = s.client.Close()
	}
	if database, ok := s.store.(*db.DB); ok {
		database.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
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

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, retryAfter := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		if !allowed {
			if retryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			}
			log.Printf("[rate-limit] %s %s throttled for %s", r.Method, r.URL.Path, s.extractClientID(r))
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// researcher returns the staged research runner, or nil when no LLM client
// is configured (fallback rationales only).
func (s *Server) researcher() pipeline.Researcher {
	if s.client == nil {
		return nil
	}
	return research.NewOrchestrator(s.client)
}

// extractClientID keys rate limiting by the remote IP.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
