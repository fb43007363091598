package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/extraction"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/translation"
)

// Config holds server configuration
type Config struct {
	Port            int
	APIKey          string
	DatabaseURL     string
	DefaultLanguage string
	Cooldown        time.Duration
	Verbose         bool
}

// session is one browser session: its own document store and orchestrator.
type session struct {
	id    uuid.UUID
	store *store.Store
	orch  *translation.Orchestrator
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	llmClient  llm.Client
	gateway    extraction.Gateway
	translator translation.SectionTranslator
	jwtService *JWTService
	db         *db.DB // nil when persistence is not configured

	rateLimiter *ratelimit.Limiter // nil disables limiting

	defaultLang string
	cooldown    time.Duration
	verbose     bool

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	// Optional snapshot persistence; the server runs fine without it.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: failed to connect to database: %v", err)
			log.Printf("Continuing without snapshot persistence...")
			database = nil
		} else if err := database.EnsureSchema(context.Background()); err != nil {
			log.Printf("Warning: failed to prepare database schema: %v", err)
			database.Close()
			database = nil
		}
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := newServer(cfg, client, extraction.NewGeminiGateway(client), translation.NewGeminiTranslator(client), database)
	s.jwtService = NewJWTService(jwtConfig)
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	s.routes()
	return s, nil
}

// newServer wires a server with explicit collaborators. Tests use it to
// substitute fake gateways and translators.
func newServer(cfg Config, client llm.Client, gateway extraction.Gateway, translator translation.SectionTranslator, database *db.DB) *Server {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = translation.DefaultCooldown
	}
	return &Server{
		llmClient:   client,
		gateway:     gateway,
		translator:  translator,
		db:          database,
		defaultLang: cfg.DefaultLanguage,
		cooldown:    cfg.Cooldown,
		verbose:     cfg.Verbose,
		sessions:    make(map[uuid.UUID]*session),
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// routes sets up the router. Split from newServer so tests can install a
// jwtService first.
func (s *Server) routes() {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /health", s.handleHealth)

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	mux.Handle("GET /cv", auth(http.HandlerFunc(s.handleGetCV)))
	mux.Handle("POST /cv/reset", auth(http.HandlerFunc(s.handleReset)))
	mux.Handle("PUT /cv/sections/{key}", auth(http.HandlerFunc(s.handleEditSection)))
	mux.Handle("POST /cv/upload", auth(http.HandlerFunc(s.handleUpload)))
	mux.Handle("POST /cv/translate", auth(http.HandlerFunc(s.handleTranslate)))

	var handler http.Handler = mux
	if s.verbose {
		handler = s.withLogging(handler)
	}
	s.httpServer.Handler = s.withRateLimit(handler)
}

// withRateLimit enforces per-client limits before any other handling.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(clientAddr(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with its duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// clientAddr identifies the client for rate limiting by its IP.
func clientAddr(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Start runs the HTTP server until an interrupt or fatal error, then shuts
// down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("CV builder API listening on %s", s.httpServer.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.closeResources()
	return err
}

func (s *Server) closeResources() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		if err := s.llmClient.Close(); err != nil {
			log.Printf("Warning: failed to close LLM client: %v", err)
		}
	}
	if s.db != nil {
		s.db.Close()
	}
}

// getSession returns the session for an ID, or nil if it does not exist.
func (s *Server) getSession(id uuid.UUID) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// addSession registers a new session.
func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

// jsonResponse writes a JSON response with the given status code
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// errorResponse writes a JSON error response with the given status code
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
