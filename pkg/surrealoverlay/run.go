package surrealoverlay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Router returns the HTTP API:
//
//	GET    /health, /api/health    - service health
//	GET    /api/overlays           - list overlays by ascending zIndex
//	POST   /api/overlays           - create an overlay
//	GET    /api/overlays/{id}      - get one overlay
//	PUT    /api/overlays/{id}      - merge a partial update
//	DELETE /api/overlays/{id}      - delete an overlay
//	GET    /api/admin/read-only    - read maintenance mode
//	POST   /api/admin/read-only    - set maintenance mode
func (a *App) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(a.logRequests)

	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/health", a.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/api/overlays", a.handleListOverlays).Methods(http.MethodGet)
	router.HandleFunc("/api/overlays", a.handleCreateOverlay).Methods(http.MethodPost)
	router.HandleFunc("/api/overlays/{id}", a.handleGetOverlay).Methods(http.MethodGet)
	router.HandleFunc("/api/overlays/{id}", a.handleUpdateOverlay).Methods(http.MethodPut)
	router.HandleFunc("/api/overlays/{id}", a.handleDeleteOverlay).Methods(http.MethodDelete)

	router.HandleFunc("/api/admin/read-only", a.handleGetReadOnly).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/read-only", a.handleSetReadOnly).Methods(http.MethodPost)

	// mux does not run middleware for unmatched requests.
	router.NotFoundHandler = a.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "Route not found")
	}))
	router.MethodNotAllowedHandler = a.logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	}))

	return router
}

// Run serves the API on the configured port until ctx is cancelled, then
// shuts down gracefully, giving in-flight requests five seconds to finish.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	if cmd != nil && cmd.Migrate {
		if err := a.Migrate(ctx, &MigrateCommand{}); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info().
		Str("addr", listener.Addr().String()).
		Str("store", string(a.config.Store)).
		Bool("readOnly", a.IsReadOnly()).
		Msg("starting overlay server")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
