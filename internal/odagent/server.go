// Package odagent wires the started OdaContext into an HTTP server: the
// v1 API routes, the pprof surface, and the periodic idle-session reaper.
package odagent

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/core"
	"github.com/onedragon/odagent/internal/odagent/options"
	"github.com/onedragon/odagent/pkg/logger"
	"github.com/robfig/cron/v3"
)

type apiServer struct {
	engine *gin.Engine
	odaCtx *core.OdaContext
	opts   *options.Options
	cron   *cron.Cron
}

func createAPIServer(odaCtx *core.OdaContext, opts *options.Options) *apiServer {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())

	if opts.EnablePprof {
		pprof.Register(g)
	}
	initRouter(g, odaCtx)

	return &apiServer{
		engine: g,
		odaCtx: odaCtx,
		opts:   opts,
		cron:   cron.New(),
	}
}

// Run serves until SIGINT/SIGTERM, then drains the HTTP server and stops
// the reaper.
func (s *apiServer) Run() error {
	reapSpec := fmt.Sprintf("@every %s", s.opts.SessionReapInterval)
	_, err := s.cron.AddFunc(reapSpec, func() {
		sm := s.odaCtx.SessionManager()
		if sm == nil {
			return
		}
		if err := sm.CleanupInactiveSessions(context.Background(), s.opts.SessionIdleTimeout); err != nil {
			logger.Warn("idle session cleanup failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	s.cron.Start()
	defer s.cron.Stop()

	addr := fmt.Sprintf("%s:%d", s.opts.BindAddress, s.opts.BindPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("odagent server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received signal %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Run starts the context, serves HTTP, and stops the context on exit.
func Run(opts *options.Options) error {
	odaCtx := core.NewOdaContext(opts.ContextConfig())
	if err := odaCtx.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start context: %w", err)
	}
	defer func() {
		if err := odaCtx.Stop(context.Background()); err != nil {
			logger.Warn("context stop failed: %v", err)
		}
	}()

	return createAPIServer(odaCtx, opts).Run()
}
