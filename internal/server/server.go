// Package server assembles the HTTP surface around the sketch bridge.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mjvo/sketchbridge/internal/api"
	"github.com/mjvo/sketchbridge/internal/api/middleware"
	"github.com/mjvo/sketchbridge/internal/config"
	"github.com/mjvo/sketchbridge/internal/logging"
	"github.com/mjvo/sketchbridge/internal/monitoring"
	"github.com/mjvo/sketchbridge/internal/runtime"
	"github.com/mjvo/sketchbridge/internal/sketch"
	"github.com/mjvo/sketchbridge/internal/transpile"
	"github.com/mjvo/sketchbridge/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	sketches *sketch.Manager
	httpSrv  *http.Server
}

// New builds the full service from configuration.
func New(cfg *config.Config, log *logging.Logger) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics()
	transpiler := transpile.New(transpile.DefaultSymbols(), log)
	rt := runtime.New(runtime.Config{
		Timeout:      cfg.Runtime.Timeout(),
		MaxCallStack: cfg.Runtime.MaxCallStack,
	}, transpile.DefaultSymbols(), log)

	sketches := sketch.NewManager(sketch.Config{
		AllowedOrigins:  cfg.Bridge.AllowedOrigins,
		ThrottleWindow:  cfg.Bridge.ThrottleWindow(),
		RequireSketchID: cfg.Bridge.RequireSketchID,
	}, transpiler, rt, log, metrics)

	handlers := api.NewHandlers(sketches, transpiler, log)
	wsHandler := ws.NewHandler(sketches, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.CORSConfig{AllowOrigins: cfg.Bridge.AllowedOrigins}))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(metrics.Middleware())

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", monitoring.Handler())

	router.POST("/transpile", handlers.Transpile)
	router.POST("/sketches", handlers.Mount)
	router.GET("/sketches", handlers.List)
	router.GET("/sketches/:id", handlers.Get)
	router.POST("/sketches/:id/run", handlers.Run)
	router.DELETE("/sketches/:id", handlers.Unmount)

	router.GET("/bridge", wsHandler.HandleConnection)

	return &Server{
		cfg:      cfg,
		log:      log,
		sketches: sketches,
		httpSrv: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("sketch bridge listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains connections and unmounts every surface.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, info := range s.sketches.List() {
		s.sketches.Unmount(info.ID)
	}
	return s.httpSrv.Shutdown(ctx)
}
