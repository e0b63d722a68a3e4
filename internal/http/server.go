// Package http exposes the JSON API. Every entity route is gated by
// bearer-token authentication and scoped to the authenticated owner.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

type Server struct {
	http.Server

	storage     *storage.SQLiteRepository
	categories  *services.CategoryService
	expenses    *services.LedgerService
	income      *services.LedgerService
	budgets     *services.BudgetService
	goals       *services.GoalService
	dashboard   *services.DashboardService
	rateLimiter *rateLimiter
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.SQLiteRepository) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:     repo,
		categories:  services.NewCategoryService(repo),
		expenses:    services.NewLedgerService(repo, core.LedgerExpense),
		income:      services.NewLedgerService(repo, core.LedgerIncome),
		budgets:     services.NewBudgetService(repo),
		goals:       services.NewGoalService(repo),
		dashboard:   services.NewDashboardService(repo),
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	handle := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, s.withMiddleware(handler))
	}

	handle("GET /categories/", s.handleListCategories)
	handle("POST /categories/", s.handleCreateCategory)
	handle("GET /categories/{id}/", s.handleGetCategory)
	handle("PUT /categories/{id}/", s.handleUpdateCategory)
	handle("DELETE /categories/{id}/", s.handleDeleteCategory)

	handle("GET /expenses/", s.ledgerList(s.expenses))
	handle("POST /expenses/", s.ledgerCreate(s.expenses))
	handle("GET /expenses/{id}/", s.ledgerGet(s.expenses))
	handle("PUT /expenses/{id}/", s.ledgerUpdate(s.expenses))
	handle("DELETE /expenses/{id}/", s.ledgerDelete(s.expenses))

	handle("GET /income/", s.ledgerList(s.income))
	handle("POST /income/", s.ledgerCreate(s.income))
	handle("GET /income/{id}/", s.ledgerGet(s.income))
	handle("PUT /income/{id}/", s.ledgerUpdate(s.income))
	handle("DELETE /income/{id}/", s.ledgerDelete(s.income))

	handle("GET /budgets/", s.handleListBudgets)
	handle("POST /budgets/", s.handleCreateBudget)
	handle("GET /budgets/{id}/", s.handleGetBudget)
	handle("PUT /budgets/{id}/", s.handleUpdateBudget)
	handle("DELETE /budgets/{id}/", s.handleDeleteBudget)

	handle("GET /goals/", s.handleListGoals)
	handle("POST /goals/", s.handleCreateGoal)
	handle("GET /goals/{id}/", s.handleGetGoal)
	handle("PUT /goals/{id}/", s.handleUpdateGoal)
	handle("DELETE /goals/{id}/", s.handleDeleteGoal)

	handle("GET /dashboard/", s.handleDashboard)

	return s
}

// Shutdown stops the server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

type contextKey string

const principalKey contextKey = "principal"

// principalFrom returns the authenticated user stored by the auth
// middleware.
func principalFrom(ctx context.Context) storage.User {
	u, _ := ctx.Value(principalKey).(storage.User)
	return u
}

// withMiddleware chains request tracing, security headers, rate
// limiting on mutations, and bearer-token authentication.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		user, err := s.authenticate(r)
		if err != nil {
			slog.WarnContext(ctx, "Authentication rejected",
				applog.FieldRequestID, requestID, applog.FieldClientIP, clientIP, applog.FieldError, err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), principalKey, user))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatus, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			"user", user.Username)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// authenticate resolves the bearer token to a user. An unknown token
// and a missing header are both rejections; the caller learns nothing
// about which tokens exist.
func (s *Server) authenticate(r *http.Request) (storage.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return storage.User{}, fmt.Errorf("missing bearer token: %w", core.ErrUnauthenticated)
	}

	user, err := s.storage.GetUserByToken(r.Context(), token)
	if errors.Is(err, core.ErrNotFound) {
		return storage.User{}, fmt.Errorf("unknown token: %w", core.ErrUnauthenticated)
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("token lookup: %w", err)
	}
	return user, nil
}

// pathID parses the {id} segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.categories.List(r.Context(), nil); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter, per client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset the window after a minute of quiet.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Up to 60 mutating requests per minute.
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}
