package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dkathuria/codeaudit/internal/config"
	"github.com/dkathuria/codeaudit/internal/keypool"
	"github.com/dkathuria/codeaudit/internal/review"
	"github.com/dkathuria/codeaudit/internal/scan"
	"github.com/dkathuria/codeaudit/internal/store"
)

// Server is the HTTP front for the analysis pipeline.
type Server struct {
	cfg    config.Config
	engine *review.Engine
	keys   *keypool.Manager
	filter *scan.Filter
	store  *store.Store
	log    *logrus.Logger
	router *gin.Engine

	// The key pool and its bound client are mutable shared state with no
	// internal locking, so analyze batches are serialized here.
	analyzeMu sync.Mutex
}

// New assembles the router. The store may be nil, which disables /history and
// run persistence.
func New(cfg config.Config, engine *review.Engine, keys *keypool.Manager, st *store.Store, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		engine: engine,
		keys:   keys,
		filter: scan.NewFilter(cfg.SkipFolders),
		store:  st,
		log:    log,
		router: gin.New(),
	}

	s.router.Use(gin.RecoveryWithWriter(log.Writer()))
	s.router.Use(corsMiddleware())
	s.router.Use(requestLoggerMiddleware(log))

	limiter := newIPRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	api := s.router.Group("/")
	api.Use(rateLimitMiddleware(limiter))
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/history", s.handleHistory)
	}
	s.router.GET("/healthz", s.handleHealthz)

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		s.router.Static("/static", cfg.StaticDir)
		index := filepath.Join(cfg.StaticDir, "index.html")
		s.router.GET("/", func(c *gin.Context) { c.File(index) })
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("starting codeaudit on %s", s.cfg.Addr)
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
		s.log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
