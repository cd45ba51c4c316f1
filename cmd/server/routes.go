package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/handlers"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// newRouter builds the engine with global middleware and every route.
func newRouter(cfg *config.Config, svc *appServices) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	handlers.RegisterRoutes(r, handlers.Deps{
		DB:          models.GetDB(),
		Config:      cfg,
		Audit:       svc.auditService,
		AuthLimiter: svc.authLimiter,
	})
	return r
}

// serve runs the API until ctx is done or SIGINT/SIGTERM arrives.
func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	defer svc.shutdown()

	srv := &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           newRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
