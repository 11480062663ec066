package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"barrot/backend/config"
	"barrot/backend/responder"
	"barrot/backend/routers"
	"barrot/database"
)

// Server bundles the gin engine with the store it serves.
// 功能: 启动时建表，收到退出信号后优雅关闭 HTTP 并释放数据库。
type Server struct {
	Engine *gin.Engine
	Store  *database.Store

	cfg *config.Config
	log *slog.Logger
}

// NewServer opens the store, makes sure the schema exists and mounts routes.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	store, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info("database ready", "path", cfg.DBPath)

	router := gin.New()
	router.Use(gin.Logger(), routers.Recovery(log))
	routers.RegisterBackendRoutes(router, routers.Deps{
		Store:     store,
		Generate:  responder.Generate,
		Log:       log,
		StaticDir: cfg.StaticDir,
	})
	return &Server{Engine: router, Store: store, cfg: cfg, log: log}, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests and
// closes the store.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr(), Handler: s.Engine}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Barrot server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown: %w", err)
		}
	}

	if err := s.Close(); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}

// Close releases the store.
func (s *Server) Close() error {
	if err := s.Store.Close(); err != nil {
		s.log.Error("error closing database", "err", err)
		return err
	}
	s.log.Info("database connection closed")
	return nil
}
