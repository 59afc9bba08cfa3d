package bill

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Server handles HTTP requests for receipts and shared bills
type Server struct {
	service        *Service
	allowedOrigins []string
	mux            *http.ServeMux
	logger         *slog.Logger
}

// NewServer creates a new Server. Requests carrying an Origin header must
// match one of allowedOrigins.
func NewServer(service *Service, allowedOrigins []string, logger *slog.Logger) *Server {
	return NewServerWithMux(service, allowedOrigins, http.NewServeMux(), logger)
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, allowedOrigins []string, mux *http.ServeMux, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:        service,
		allowedOrigins: allowedOrigins,
		mux:            mux,
		logger:         logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/receipt", s.handleScanReceipt)
	s.mux.HandleFunc("POST /api/share", s.handleShareBill)
	s.mux.HandleFunc("GET /api/share/{id}", s.handleGetSharedBill)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

func (s *Server) originAllowed(origin string) bool {
	return origin == "" || slices.Contains(s.allowedOrigins, strings.TrimRight(origin, "/"))
}

// corsMiddleware rejects requests from origins outside the allow-list and
// answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.originAllowed(origin) {
			s.logger.Warn("Rejected request from origin", "origin", origin, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, "The CORS policy for this site does not allow access from the specified Origin.")
			return
		}

		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the mux wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}
