package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// New はミドルウェアとルートを登録したechoを返す
func New(log zerolog.Logger, hs ...RouteRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Recover(log))

	RegisterRoutes(e, hs...)
	return e
}

// Start はctxが終わるまでサーバーを動かし、終わったらgracefulに止める
func Start(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
