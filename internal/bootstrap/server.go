package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/airbook/config"
	"github.com/sirupsen/logrus"
)

// Run serves handler on cfg.HTTP.Address and blocks until ctx is canceled
// or the server fails. On cancel it drains in-flight requests.
func Run(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, log *logrus.Entry) error {
	srv := newServer(cfg, handler)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("address", cfg.Address).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdownTimeout(cfg config.HTTPConfig) time.Duration {
	if cfg.ShutdownSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.ShutdownSeconds) * time.Second
}
