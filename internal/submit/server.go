// Package submit runs a localhost HTTP server collaborators use to hand
// a credential straight into the secret store without it touching shell
// history or the auth store file.
package submit

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	claverrors "github.com/openclaw/clawvault/internal/errors"
	"github.com/openclaw/clawvault/internal/logging"
	"github.com/openclaw/clawvault/internal/migrate"
	"github.com/openclaw/clawvault/internal/secure"
	"github.com/openclaw/clawvault/internal/stores"
)

// ServerConfig holds configuration for the submission server.
type ServerConfig struct {
	// Port to listen on, loopback only.
	Port int

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// DefaultServerConfig returns the default submission server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         7784,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server accepts one secret submission over loopback HTTP. The bearer
// token is single-use: the first accepted POST consumes it and later
// requests are refused. Submitted values live in protected memory until
// the store write completes and are never logged.
type Server struct {
	config ServerConfig
	logger *logging.Logger
	store  stores.Store
	server *http.Server

	mu       sync.Mutex
	token    string
	consumed bool
}

// NewServer creates a submission server with a fresh one-time token.
func NewServer(config ServerConfig, logger *logging.Logger, store stores.Store) (*Server, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generating submission token: %w", err)
	}

	return &Server{
		config: config,
		logger: logger,
		store:  store,
		token:  hex.EncodeToString(tokenBytes),
	}, nil
}

// Token returns the one-time bearer token for this server instance.
func (s *Server) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// URL returns the submission endpoint.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d/submit", s.config.Port)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start serves on the loopback interface until ctx is cancelled or one
// submission has been accepted.
func (s *Server) Start(ctx context.Context) error {
	migrate.InitMetrics()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("Submission server listening on %s", s.URL())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type submission struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.authorize(r) {
		s.logger.Warn("Rejected submission with invalid or consumed token")
		http.Error(w, "invalid or consumed token", http.StatusForbidden)
		return
	}

	var sub submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&sub); err != nil {
		s.release()
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := migrate.ValidateEnvVarName(sub.Name); err != nil {
		s.release()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if sub.Value == "" {
		s.release()
		http.Error(w, "value must not be empty", http.StatusBadRequest)
		return
	}

	// Move the value into protected memory; the request struct keeps no
	// copy worth worrying about beyond this scope.
	valueLen := len(sub.Value)
	buf := secure.NewSecureBufferFromString(sub.Value)
	sub.Value = ""
	defer buf.Destroy()

	err := buf.WithValue(func(value []byte) error {
		return s.store.Set(r.Context(), sub.Name, string(value))
	})
	if err != nil {
		s.release()
		s.logger.Error("Storing %s in %s store failed: %v", sub.Name, s.store.Name(), err)
		storageErr := claverrors.StorageError{Store: s.store.Name(), EnvVar: sub.Name, Err: err}
		http.Error(w, storageErr.Error(), http.StatusBadGateway)
		return
	}

	s.logger.Info("Stored %s in %s store (%d bytes)", sub.Name, s.store.Name(), valueLen)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"name":  sub.Name,
		"store": s.store.Name(),
	})
}

// authorize checks and consumes the one-time token.
func (s *Server) authorize(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	presented, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumed {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.token)) != 1 {
		return false
	}
	s.consumed = true
	return true
}

// release un-consumes the token after a request that was authorized but
// failed before a secret reached the store, so the collaborator can
// retry.
func (s *Server) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumed = false
}
