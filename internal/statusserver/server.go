// Package statusserver exposes a read-only JSON snapshot of buffer pool
// and lock table gauges. It is not a query endpoint: nothing here parses
// or executes SQL, it only reports counters a caller's own executors and
// pool already track.
package statusserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Gauges is whatever the embedding DB can report about itself at a point
// in time. A caller supplies a function returning a fresh snapshot on
// every request rather than a fixed value, since pool occupancy and lock
// counts change between requests.
type Gauges struct {
	EmptyFrames      int   `json:"empty_frames"`
	ActiveShared     int   `json:"active_shared_locks"`
	ActiveExclusive  int   `json:"active_exclusive_locks"`
	OldestTxnStarted int64 `json:"oldest_txn_started_at"`
}

type Server struct {
	router  *chi.Mux
	port    int
	snapshot func() Gauges
}

// NewServer builds a status server on port; snapshot is called fresh on
// every GET /status.
func NewServer(port int, snapshot func() Gauges) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	s := &Server{router: r, port: port, snapshot: snapshot}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/status", s.handleStatus)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshot())
}

// ListenAndServe blocks serving HTTP until ctx is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.port), Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
