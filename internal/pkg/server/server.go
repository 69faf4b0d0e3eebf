// Package server runs an HTTP server until its context ends.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ShutdownTimeout bounds graceful shutdown once the context is done.
const ShutdownTimeout = 10 * time.Second

// Server is the part of *echo.Echo that Serve drives.
type Server interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// Serve starts srv on addr and blocks until ctx is cancelled or the server
// fails to start. On cancellation it shuts srv down gracefully.
func Serve(ctx context.Context, srv Server, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		if ctx.Err() == nil {
			return nil
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
