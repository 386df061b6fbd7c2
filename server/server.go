package server

import (
	"context"
	"errors"
	"net/http"

	fleetassist "github.com/Desarso/fleetassist"
	"github.com/Desarso/fleetassist/sessions"
	"github.com/Desarso/fleetassist/stores"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping() error
}

// Deps are the collaborators of the relay. Model may be nil when no
// credential is configured; Context, Turns and Health are optional.
type Deps struct {
	Model   sessions.Model
	Context sessions.ContextProvider
	Turns   stores.TurnStore
	Health  Pinger
}

// Server wraps the gin engine with graceful shutdown helpers.
type Server struct {
	cfg     *fleetassist.Config
	engine  *gin.Engine
	log     zerolog.Logger
	metrics *Metrics
}

// New constructs the HTTP server with middleware and routes.
func New(cfg *fleetassist.Config, deps Deps, log zerolog.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(recovery(log), requestLogger(log))
	if cfg.CORSAllowOrigin != "" {
		engine.Use(cors(cfg.CORSAllowOrigin))
	}

	metrics := NewMetrics()
	chat := NewChatHandler(cfg, deps, metrics, log)
	registerRoutes(engine, cfg, deps, chat, metrics)

	return &Server{
		cfg:     cfg,
		engine:  engine,
		log:     log,
		metrics: metrics,
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("HTTP server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("HTTP server error")
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerRoutes(engine *gin.Engine, cfg *fleetassist.Config, deps Deps, chat *ChatHandler, metrics *Metrics) {
	engine.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	engine.GET("/readyz", func(c *gin.Context) {
		if !cfg.HasCredential() || deps.Model == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api")
	api.POST("/chat", chat.Chat)
}
